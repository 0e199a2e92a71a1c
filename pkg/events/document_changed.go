package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeDocumentChanged = "DOCUMENT_CHANGED"

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// DocumentChangedEvent is emitted by the store after every successful write or
// delete. BoardId is the owning board for cards and chats, and the document's
// own id for boards.
type DocumentChangedEvent struct {
	Collection string
	DocumentId uuid.UUID
	BoardId    uuid.UUID
	Op         string
	OccurredAt time.Time
}

func NewDocumentChangedEvent(collection string, documentId, boardId uuid.UUID, op string) DocumentChangedEvent {
	return DocumentChangedEvent{
		Collection: collection,
		DocumentId: documentId,
		BoardId:    boardId,
		Op:         op,
		OccurredAt: time.Now(),
	}
}

func (e DocumentChangedEvent) EventType() string {
	return EventTypeDocumentChanged
}

func (e DocumentChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"collection":  e.Collection,
		"document_id": e.DocumentId.String(),
		"board_id":    e.BoardId.String(),
		"op":          e.Op,
		"occurred_at": e.OccurredAt,
	}
}

func (e DocumentChangedEvent) Timestamp() time.Time {
	return e.OccurredAt
}
