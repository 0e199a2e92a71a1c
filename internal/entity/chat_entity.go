package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role      string
	Content   string
	LLM       string
	CreatedAt time.Time
}

// Chat is a named message thread on a board. Messages are stored inline and
// written back as a whole document on every append.
type Chat struct {
	Id        uuid.UUID
	BoardId   uuid.UUID
	Title     string
	Messages  []ChatMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}
