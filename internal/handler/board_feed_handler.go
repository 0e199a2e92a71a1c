package handler

import (
	"notelets-be/internal/pkg/logger"
	internalWS "notelets-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// BoardFeedHandler upgrades peers onto a board's live change feed. Clients
// receive a frame for every document change on the board.
type BoardFeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewBoardFeedHandler(hub *internalWS.Hub, log logger.ILogger) *BoardFeedHandler {
	return &BoardFeedHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *BoardFeedHandler) ServeWs(c *fiber.Ctx) error {
	boardID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid board id"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("BoardFeedHandler", "Starting board feed session", map[string]interface{}{"board_id": boardID})
			internalWS.ServeWs(h.hub, conn, boardID)
			h.logger.Info("BoardFeedHandler", "Board feed session ended", map[string]interface{}{"board_id": boardID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *BoardFeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/board/:id", h.ServeWs)
}
