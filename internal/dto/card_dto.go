package dto

import (
	"time"

	"github.com/google/uuid"
)

type FileAttachmentDTO struct {
	URL      string `json:"url" validate:"required,url"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

type ImageAttachmentDTO struct {
	URL string `json:"url" validate:"required,url"`
	Alt string `json:"alt"`
}

type SetCardRequest struct {
	Id      *uuid.UUID          `json:"id,omitempty"`
	BoardId uuid.UUID           `json:"board_id" validate:"required"`
	Kind    string              `json:"kind" validate:"required,oneof=richtext file image"`
	Title   string              `json:"title"`
	Content string              `json:"content"`
	File    *FileAttachmentDTO  `json:"file,omitempty"`
	Image   *ImageAttachmentDTO `json:"image,omitempty"`
}

type SetCardResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowCardResponse struct {
	Id        uuid.UUID           `json:"id"`
	BoardId   uuid.UUID           `json:"board_id"`
	Kind      string              `json:"kind"`
	Title     string              `json:"title"`
	Content   string              `json:"content,omitempty"`
	File      *FileAttachmentDTO  `json:"file,omitempty"`
	Image     *ImageAttachmentDTO `json:"image,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
