package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"notelets-be/internal/dto"
	"notelets-be/internal/pkg/serverutils"
	"notelets-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
	Models(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Get("models", c.Models)
	h.Post("send", c.Send)
	h.Post("stream", c.Stream)
}

func (c *assistantController) Send(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.SendMessage(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrChatNotFound) {
			return serverutils.NewApiError(fiber.StatusNotFound, "Chat not found")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

// Stream replies over Server-Sent Events: one `data:` frame per text delta,
// an `event: error` frame on failure, and a `data: [DONE]` sentinel at the
// end. Disconnecting cancels the upstream vendor call.
func (c *assistantController) Stream(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The stream writer outlives this handler, so the vendor call gets its
	// own context, canceled when the client stops reading.
	streamCtx, cancel := context.WithCancel(context.Background())

	chunks, err := c.assistantService.StreamMessage(streamCtx, &req)
	if err != nil {
		cancel()
		if errors.Is(err, service.ErrChatNotFound) {
			return serverutils.NewApiError(fiber.StatusNotFound, "Chat not found")
		}
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for chunk := range chunks {
			if chunk.Err != nil {
				payload, _ := json.Marshal(fiber.Map{"message": chunk.Err.Error()})
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
				w.Flush()
				return
			}

			payload, _ := json.Marshal(fiber.Map{"delta": chunk.Content})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			if err := w.Flush(); err != nil {
				// Client went away; stop pulling so the vendor call aborts.
				return
			}
		}

		fmt.Fprint(w, "data: [DONE]\n\n")
		w.Flush()
	}))

	return nil
}

func (c *assistantController) Models(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success list models", c.assistantService.ListModels()))
}
