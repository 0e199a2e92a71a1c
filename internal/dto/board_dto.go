package dto

import (
	"time"

	"github.com/google/uuid"
)

type LayoutConfigDTO struct {
	SelectedCardId *uuid.UUID `json:"selected_card_id,omitempty"`
}

type SetBoardRequest struct {
	Id           *uuid.UUID      `json:"id,omitempty"`
	Title        string          `json:"title" validate:"required"`
	ViewType     string          `json:"view_type" validate:"omitempty,oneof=canvas list grid"`
	LayoutConfig LayoutConfigDTO `json:"layout_config"`
}

type SetBoardResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowBoardResponse struct {
	Id           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	ViewType     string          `json:"view_type"`
	LayoutConfig LayoutConfigDTO `json:"layout_config"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
