package service

import (
	"context"
	"encoding/json"
	"time"

	"notelets-be/internal/pkg/logger"
	"notelets-be/internal/store"
	"notelets-be/internal/websocket"
	"notelets-be/pkg/events"
	pktNats "notelets-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type ISyncService interface {
	Consume(ctx context.Context) error
}

// syncService drains the in-process change bus and fans each change out:
// websocket clients on the affected board, the mirror database, and the
// cross-service NATS stream. Every leg is independent; one failing leg does
// not hold back the others.
type syncService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	primary        store.DocumentDB
	mirror         store.DocumentDB
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewSyncService(
	pubSub *gochannel.GoChannel,
	topicName string,
	primary store.DocumentDB,
	mirror store.DocumentDB,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISyncService {
	return &syncService{
		pubSub:         pubSub,
		topicName:      topicName,
		primary:        primary,
		mirror:         mirror,
		hub:            hub,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *syncService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *syncService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := decodeChangeMessage(msg)
	if err != nil {
		s.logger.Error("SyncService", "Failed to decode change message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying will not help
		return
	}

	if s.hub != nil {
		s.hub.BroadcastChange(event)
	}

	if s.mirror != nil {
		if err := s.mirrorChange(ctx, event); err != nil {
			s.logger.Warn("SyncService", "Mirror write failed", map[string]interface{}{
				"collection":  event.Collection,
				"document_id": event.DocumentId,
				"error":       err.Error(),
			})
		}
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("SyncService", "NATS publish failed", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}

// mirrorChange copies the document's current primary state into the mirror.
// Reading back from the primary instead of shipping the payload keeps the
// mirror converging on the latest write even when events arrive out of order.
func (s *syncService) mirrorChange(ctx context.Context, event events.DocumentChangedEvent) error {
	id := event.DocumentId.String()

	if event.Op == events.OpDelete {
		return s.mirror.Delete(ctx, event.Collection, id)
	}

	doc, err := s.primary.Get(ctx, event.Collection, id)
	if err != nil {
		return err
	}
	if doc == nil {
		// Deleted between event and mirror read.
		return s.mirror.Delete(ctx, event.Collection, id)
	}
	return s.mirror.Upsert(ctx, event.Collection, id, doc)
}

func decodeChangeMessage(msg *message.Message) (events.DocumentChangedEvent, error) {
	var payload struct {
		Collection string    `json:"collection"`
		DocumentId string    `json:"document_id"`
		BoardId    string    `json:"board_id"`
		Op         string    `json:"op"`
		OccurredAt time.Time `json:"occurred_at"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return events.DocumentChangedEvent{}, err
	}

	documentId, err := uuid.Parse(payload.DocumentId)
	if err != nil {
		return events.DocumentChangedEvent{}, err
	}
	boardId, err := uuid.Parse(payload.BoardId)
	if err != nil {
		return events.DocumentChangedEvent{}, err
	}

	return events.DocumentChangedEvent{
		Collection: payload.Collection,
		DocumentId: documentId,
		BoardId:    boardId,
		Op:         payload.Op,
		OccurredAt: payload.OccurredAt,
	}, nil
}
