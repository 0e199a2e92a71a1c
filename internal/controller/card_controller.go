package controller

import (
	"notelets-be/internal/dto"
	"notelets-be/internal/pkg/serverutils"
	"notelets-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICardController interface {
	RegisterRoutes(r fiber.Router)
	Set(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListByBoard(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type cardController struct {
	cardService service.ICardService
}

func NewCardController(cardService service.ICardService) ICardController {
	return &cardController{
		cardService: cardService,
	}
}

func (c *cardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/card/v1")
	h.Post("", c.Set)
	h.Get("board/:boardId", c.ListByBoard)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *cardController) Set(ctx *fiber.Ctx) error {
	var req dto.SetCardRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.cardService.Set(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set card", res))
}

func (c *cardController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "Invalid card id")
	}

	res, err := c.cardService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewApiError(fiber.StatusNotFound, "Card not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show card", res))
}

func (c *cardController) ListByBoard(ctx *fiber.Ctx) error {
	boardId, err := uuid.Parse(ctx.Params("boardId"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "Invalid board id")
	}

	res, err := c.cardService.ListByBoard(ctx.Context(), boardId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list cards", res))
}

func (c *cardController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "Invalid card id")
	}

	if err := c.cardService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete card", nil))
}
