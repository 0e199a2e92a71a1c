package controller

import (
	"notelets-be/internal/dto"
	"notelets-be/internal/pkg/serverutils"
	"notelets-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBoardController interface {
	RegisterRoutes(r fiber.Router)
	Set(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type boardController struct {
	boardService service.IBoardService
}

func NewBoardController(boardService service.IBoardService) IBoardController {
	return &boardController{
		boardService: boardService,
	}
}

func (c *boardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/board/v1")
	h.Get("", c.List)
	h.Post("", c.Set)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *boardController) Set(ctx *fiber.Ctx) error {
	var req dto.SetBoardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.boardService.Set(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set board", res))
}

func (c *boardController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "Invalid board id")
	}

	res, err := c.boardService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewApiError(fiber.StatusNotFound, "Board not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show board", res))
}

func (c *boardController) List(ctx *fiber.Ctx) error {
	res, err := c.boardService.List(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list boards", res))
}

func (c *boardController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "Invalid board id")
	}

	if err := c.boardService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete board", nil))
}
