package dto

import (
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	ChatId         uuid.UUID `json:"chat_id" validate:"required"`
	Content        string    `json:"content" validate:"required"`
	Model          string    `json:"model,omitempty"`
	ThinkingTokens int       `json:"thinking_tokens,omitempty" validate:"omitempty,min=1024"`
	Effort         string    `json:"effort,omitempty" validate:"omitempty,oneof=low medium high"`
}

type SendMessageResponse struct {
	ChatId uuid.UUID      `json:"chat_id"`
	Reply  ChatMessageDTO `json:"reply"`
}

type ModelInfoResponse struct {
	Id               string `json:"id"`
	Provider         string `json:"provider"`
	Name             string `json:"name"`
	SupportsThinking bool   `json:"supports_thinking"`
	SupportsEffort   bool   `json:"supports_effort"`
}
