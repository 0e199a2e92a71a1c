package controller

import (
	"notelets-be/internal/dto"
	"notelets-be/internal/pkg/serverutils"
	"notelets-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Set(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ListByBoard(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Set)
	h.Get("board/:boardId", c.ListByBoard)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *chatController) Set(ctx *fiber.Ctx) error {
	var req dto.SetChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Set(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set chat", res))
}

func (c *chatController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "Invalid chat id")
	}

	res, err := c.chatService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewApiError(fiber.StatusNotFound, "Chat not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chat", res))
}

func (c *chatController) ListByBoard(ctx *fiber.Ctx) error {
	boardId, err := uuid.Parse(ctx.Params("boardId"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "Invalid board id")
	}

	res, err := c.chatService.ListByBoard(ctx.Context(), boardId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chats", res))
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "Invalid chat id")
	}

	if err := c.chatService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete chat", nil))
}
