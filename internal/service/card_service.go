package service

import (
	"context"
	"time"

	"notelets-be/internal/dto"
	"notelets-be/internal/entity"
	"notelets-be/internal/pkg/serverutils"
	"notelets-be/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICardService interface {
	Set(ctx context.Context, req *dto.SetCardRequest) (*dto.SetCardResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowCardResponse, error)
	ListByBoard(ctx context.Context, boardId uuid.UUID) ([]*dto.ShowCardResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type cardService struct {
	store *store.Store
}

func NewCardService(st *store.Store) ICardService {
	return &cardService{store: st}
}

func (s *cardService) Set(ctx context.Context, req *dto.SetCardRequest) (*dto.SetCardResponse, error) {
	kind := entity.CardKind(req.Kind)
	switch kind {
	case entity.CardKindFile:
		if req.File == nil {
			return nil, serverutils.NewApiError(fiber.StatusBadRequest, "file card requires a file attachment")
		}
	case entity.CardKindImage:
		if req.Image == nil {
			return nil, serverutils.NewApiError(fiber.StatusBadRequest, "image card requires an image attachment")
		}
	}

	now := time.Now()
	card := entity.Card{
		Id:        uuid.New(),
		BoardId:   req.BoardId,
		Kind:      kind,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.File != nil {
		card.File = &entity.FileAttachment{
			URL:      req.File.URL,
			Filename: req.File.Filename,
			MimeType: req.File.MimeType,
		}
	}
	if req.Image != nil {
		card.Image = &entity.ImageAttachment{
			URL: req.Image.URL,
			Alt: req.Image.Alt,
		}
	}

	if req.Id != nil {
		card.Id = *req.Id
		existing, err := s.store.Card(ctx, card.Id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			card.CreatedAt = existing.CreatedAt
		}
	}

	if err := s.store.SetCard(ctx, &card); err != nil {
		return nil, err
	}

	return &dto.SetCardResponse{Id: card.Id}, nil
}

func (s *cardService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowCardResponse, error) {
	card, err := s.store.Card(ctx, id)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, nil // Not found
	}
	return cardToResponse(card), nil
}

func (s *cardService) ListByBoard(ctx context.Context, boardId uuid.UUID) ([]*dto.ShowCardResponse, error) {
	cards, err := s.store.CardsByBoard(ctx, boardId)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowCardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, cardToResponse(card))
	}
	return responses, nil
}

func (s *cardService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.RemoveCard(ctx, id)
}

func cardToResponse(card *entity.Card) *dto.ShowCardResponse {
	resp := &dto.ShowCardResponse{
		Id:        card.Id,
		BoardId:   card.BoardId,
		Kind:      string(card.Kind),
		Title:     card.Title,
		Content:   card.Content,
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
	if card.File != nil {
		resp.File = &dto.FileAttachmentDTO{
			URL:      card.File.URL,
			Filename: card.File.Filename,
			MimeType: card.File.MimeType,
		}
	}
	if card.Image != nil {
		resp.Image = &dto.ImageAttachmentDTO{
			URL: card.Image.URL,
			Alt: card.Image.Alt,
		}
	}
	return resp
}
