package entity

import (
	"time"

	"github.com/google/uuid"
)

// LayoutConfig captures per-board view state, currently just the selected card.
type LayoutConfig struct {
	SelectedCardId *uuid.UUID
}

type Board struct {
	Id           uuid.UUID
	Title        string
	ViewType     string
	LayoutConfig LayoutConfig
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
