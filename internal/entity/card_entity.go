package entity

import (
	"time"

	"github.com/google/uuid"
)

type CardKind string

const (
	CardKindRichtext CardKind = "richtext"
	CardKindFile     CardKind = "file"
	CardKindImage    CardKind = "image"
)

type FileAttachment struct {
	URL      string
	Filename string
	MimeType string
}

type ImageAttachment struct {
	URL string
	Alt string
}

// Card is a tagged union over Kind: richtext cards carry markdown in Content,
// file and image cards carry their respective attachment. Every card belongs
// to exactly one board; the store does not enforce the reference.
type Card struct {
	Id        uuid.UUID
	BoardId   uuid.UUID
	Kind      CardKind
	Title     string
	Content   string
	File      *FileAttachment
	Image     *ImageAttachment
	CreatedAt time.Time
	UpdatedAt time.Time
}
