package mapper

import (
	"notelets-be/internal/entity"
	"notelets-be/internal/model"

	"github.com/google/uuid"
)

// DocumentMapper translates between the id-keyed application entities and the
// _id-keyed documents the store persists.
type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) BoardToDocument(b *entity.Board) *model.BoardDocument {
	if b == nil {
		return nil
	}
	doc := &model.BoardDocument{
		Id:        b.Id.String(),
		Title:     b.Title,
		ViewType:  b.ViewType,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.LayoutConfig.SelectedCardId != nil {
		doc.LayoutConfig.SelectedCardId = b.LayoutConfig.SelectedCardId.String()
	}
	return doc
}

func (m *DocumentMapper) BoardToEntity(d *model.BoardDocument) *entity.Board {
	if d == nil {
		return nil
	}
	b := &entity.Board{
		Id:        parseId(d.Id),
		Title:     d.Title,
		ViewType:  d.ViewType,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.LayoutConfig.SelectedCardId != "" {
		if id, err := uuid.Parse(d.LayoutConfig.SelectedCardId); err == nil {
			b.LayoutConfig.SelectedCardId = &id
		}
	}
	return b
}

func (m *DocumentMapper) CardToDocument(c *entity.Card) *model.CardDocument {
	if c == nil {
		return nil
	}
	doc := &model.CardDocument{
		Id:        c.Id.String(),
		BoardId:   c.BoardId.String(),
		Kind:      string(c.Kind),
		Title:     c.Title,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.File != nil {
		doc.File = &model.FileAttachmentDocument{
			URL:      c.File.URL,
			Filename: c.File.Filename,
			MimeType: c.File.MimeType,
		}
	}
	if c.Image != nil {
		doc.Image = &model.ImageAttachmentDocument{
			URL: c.Image.URL,
			Alt: c.Image.Alt,
		}
	}
	return doc
}

func (m *DocumentMapper) CardToEntity(d *model.CardDocument) *entity.Card {
	if d == nil {
		return nil
	}
	c := &entity.Card{
		Id:        parseId(d.Id),
		BoardId:   parseId(d.BoardId),
		Kind:      entity.CardKind(d.Kind),
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.File != nil {
		c.File = &entity.FileAttachment{
			URL:      d.File.URL,
			Filename: d.File.Filename,
			MimeType: d.File.MimeType,
		}
	}
	if d.Image != nil {
		c.Image = &entity.ImageAttachment{
			URL: d.Image.URL,
			Alt: d.Image.Alt,
		}
	}
	return c
}

func (m *DocumentMapper) ChatToDocument(c *entity.Chat) *model.ChatDocument {
	if c == nil {
		return nil
	}
	messages := make([]model.ChatMessageDocument, len(c.Messages))
	for i, msg := range c.Messages {
		messages[i] = model.ChatMessageDocument{
			Role:      msg.Role,
			Content:   msg.Content,
			LLM:       msg.LLM,
			CreatedAt: msg.CreatedAt,
		}
	}
	return &model.ChatDocument{
		Id:        c.Id.String(),
		BoardId:   c.BoardId.String(),
		Title:     c.Title,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *DocumentMapper) ChatToEntity(d *model.ChatDocument) *entity.Chat {
	if d == nil {
		return nil
	}
	messages := make([]entity.ChatMessage, len(d.Messages))
	for i, msg := range d.Messages {
		messages[i] = entity.ChatMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			LLM:       msg.LLM,
			CreatedAt: msg.CreatedAt,
		}
	}
	return &entity.Chat{
		Id:        parseId(d.Id),
		BoardId:   parseId(d.BoardId),
		Title:     d.Title,
		Messages:  messages,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func parseId(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
