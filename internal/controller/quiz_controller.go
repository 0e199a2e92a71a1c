package controller

import (
	"errors"

	"notelets-be/internal/dto"
	"notelets-be/internal/pkg/serverutils"
	"notelets-be/internal/service"
	"notelets-be/pkg/quiz"

	"github.com/gofiber/fiber/v2"
)

type IQuizController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	Clarify(ctx *fiber.Ctx) error
	Advance(ctx *fiber.Ctx) error
}

type quizController struct {
	quizService service.IQuizService
}

func NewQuizController(quizService service.IQuizService) IQuizController {
	return &quizController{
		quizService: quizService,
	}
}

func (c *quizController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/quiz/v1")
	h.Post("start", c.Start)
	h.Post("answer", c.Answer)
	h.Post("clarify", c.Clarify)
	h.Post("advance", c.Advance)
}

func (c *quizController) Start(ctx *fiber.Ctx) error {
	var req dto.StartQuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.quizService.Start(ctx.Context(), &req)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewApiError(fiber.StatusNotFound, "Board not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start quiz", res))
}

func (c *quizController) Answer(ctx *fiber.Ctx) error {
	var req dto.SubmitAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.quizService.Answer(ctx.Context(), &req)
	if err != nil {
		return mapQuizError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit answer", res))
}

func (c *quizController) Clarify(ctx *fiber.Ctx) error {
	var req dto.ClarifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.quizService.Clarify(ctx.Context(), &req)
	if err != nil {
		return mapQuizError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clarify", res))
}

func (c *quizController) Advance(ctx *fiber.Ctx) error {
	var req dto.AdvanceQuizRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.quizService.Advance(ctx.Context(), &req)
	if err != nil {
		return mapQuizError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success advance quiz", res))
}

func mapQuizError(err error) error {
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		return serverutils.NewApiError(fiber.StatusNotFound, "Quiz not found")
	case errors.Is(err, quiz.ErrInvalidTransition):
		return serverutils.NewApiError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
