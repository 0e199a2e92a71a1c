package handler

import (
	"context"

	"notelets-be/internal/pkg/logger"
	"notelets-be/internal/service"
	"notelets-be/pkg/transcribe/fireworks"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// TranscribeHandler bridges a browser websocket to the upstream transcription
// socket: binary PCM frames go up, consolidated transcript snapshots come
// back as JSON.
type TranscribeHandler struct {
	transcribeService service.ITranscribeService
	logger            logger.ILogger
}

func NewTranscribeHandler(transcribeService service.ITranscribeService, log logger.ILogger) *TranscribeHandler {
	return &TranscribeHandler{
		transcribeService: transcribeService,
		logger:            log,
	}
}

type transcriptFrame struct {
	Text     string              `json:"text"`
	Segments []fireworks.Segment `json:"segments,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func (h *TranscribeHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		session, err := h.transcribeService.NewSession(context.Background())
		if err != nil {
			h.logger.Error("TranscribeHandler", "Failed to open transcription session", map[string]interface{}{"error": err.Error()})
			conn.WriteJSON(transcriptFrame{Error: "transcription unavailable"})
			return
		}
		defer session.Close()

		// Downstream: transcript snapshots back to the browser.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range session.Updates() {
				frame := transcriptFrame{Text: update.Text, Segments: update.Segments}
				if update.Err != nil {
					frame.Error = update.Err.Error()
				}
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			}
		}()

		// Upstream: audio frames from the browser.
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			if err := session.SendAudio(data); err != nil {
				h.logger.Warn("TranscribeHandler", "Audio forward failed", map[string]interface{}{"error": err.Error()})
				break
			}
		}

		session.Close()
		<-done
	})(c)
}

func (h *TranscribeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/transcribe", h.ServeWs)
}
