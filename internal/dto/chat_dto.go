package dto

import (
	"time"

	"github.com/google/uuid"
)

type SetChatRequest struct {
	Id      *uuid.UUID `json:"id,omitempty"`
	BoardId uuid.UUID  `json:"board_id" validate:"required"`
	Title   string     `json:"title"`
}

type SetChatResponse struct {
	Id uuid.UUID `json:"id"`
}

type ChatMessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	LLM       string    `json:"llm,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ShowChatResponse struct {
	Id        uuid.UUID        `json:"id"`
	BoardId   uuid.UUID        `json:"board_id"`
	Title     string           `json:"title"`
	Messages  []ChatMessageDTO `json:"messages"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
