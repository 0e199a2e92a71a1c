package service

import (
	"context"
	"encoding/json"
	"time"

	"notelets-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicDocumentChanged is the in-process bus topic the store's change events
// travel on before they fan out to websockets, the mirror and NATS.
const TopicDocumentChanged = "document.changed"

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewPublisherService(pubSub *gochannel.GoChannel, topic string) IPublisherService {
	return &publisherService{
		pubSub: pubSub,
		topic:  topic,
	}
}

// Publish serializes the event onto the in-process bus. The event type rides
// in message metadata so consumers can dispatch without unmarshalling.
func (p *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	msg.Metadata.Set("occurred_at", event.Timestamp().Format(time.RFC3339Nano))

	return p.pubSub.Publish(p.topic, msg)
}
