package service

import (
	"context"
	"time"

	"notelets-be/internal/dto"
	"notelets-be/internal/entity"
	"notelets-be/internal/store"

	"github.com/google/uuid"
)

type IChatService interface {
	Set(ctx context.Context, req *dto.SetChatRequest) (*dto.SetChatResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowChatResponse, error)
	ListByBoard(ctx context.Context, boardId uuid.UUID) ([]*dto.ShowChatResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type chatService struct {
	store *store.Store
}

func NewChatService(st *store.Store) IChatService {
	return &chatService{store: st}
}

// Set creates or renames a chat thread. Messages are appended by the
// assistant service, never through this call; an existing chat keeps its
// message history.
func (s *chatService) Set(ctx context.Context, req *dto.SetChatRequest) (*dto.SetChatResponse, error) {
	now := time.Now()
	chat := entity.Chat{
		Id:        uuid.New(),
		BoardId:   req.BoardId,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.Id != nil {
		chat.Id = *req.Id
		existing, err := s.store.Chat(ctx, chat.Id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			chat.CreatedAt = existing.CreatedAt
			chat.Messages = existing.Messages
		}
	}

	if err := s.store.SetChat(ctx, &chat); err != nil {
		return nil, err
	}

	return &dto.SetChatResponse{Id: chat.Id}, nil
}

func (s *chatService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowChatResponse, error) {
	chat, err := s.store.Chat(ctx, id)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, nil // Not found
	}
	return chatToResponse(chat), nil
}

func (s *chatService) ListByBoard(ctx context.Context, boardId uuid.UUID) ([]*dto.ShowChatResponse, error) {
	chats, err := s.store.ChatsByBoard(ctx, boardId)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ShowChatResponse, 0, len(chats))
	for _, chat := range chats {
		responses = append(responses, chatToResponse(chat))
	}
	return responses, nil
}

func (s *chatService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.RemoveChat(ctx, id)
}

func chatToResponse(chat *entity.Chat) *dto.ShowChatResponse {
	messages := make([]dto.ChatMessageDTO, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		messages = append(messages, dto.ChatMessageDTO{
			Role:      m.Role,
			Content:   m.Content,
			LLM:       m.LLM,
			CreatedAt: m.CreatedAt,
		})
	}
	return &dto.ShowChatResponse{
		Id:        chat.Id,
		BoardId:   chat.BoardId,
		Title:     chat.Title,
		Messages:  messages,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
}
