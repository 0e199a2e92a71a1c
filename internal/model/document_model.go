// Storage-boundary documents. The application schema keys entities by "id";
// the document database keys them by "_id". These models carry the "_id"
// rendering plus the camelCase field names the synced document schema uses.
package model

import "time"

const (
	CollectionBoards = "boards"
	CollectionCards  = "cards"
	CollectionChats  = "chats"
)

type LayoutConfigDocument struct {
	SelectedCardId string `json:"selectedCardId,omitempty"`
}

type BoardDocument struct {
	Id           string               `json:"_id"`
	Title        string               `json:"title"`
	ViewType     string               `json:"viewType"`
	LayoutConfig LayoutConfigDocument `json:"layoutConfig"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

type FileAttachmentDocument struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
}

type ImageAttachmentDocument struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type CardDocument struct {
	Id        string                   `json:"_id"`
	BoardId   string                   `json:"boardId"`
	Kind      string                   `json:"kind"`
	Title     string                   `json:"title,omitempty"`
	Content   string                   `json:"content,omitempty"`
	File      *FileAttachmentDocument  `json:"file,omitempty"`
	Image     *ImageAttachmentDocument `json:"image,omitempty"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

type ChatMessageDocument struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	LLM       string    `json:"llm,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatDocument struct {
	Id        string                `json:"_id"`
	BoardId   string                `json:"boardId"`
	Title     string                `json:"title"`
	Messages  []ChatMessageDocument `json:"messages"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}
