package service

import (
	"context"
	"fmt"
	"time"

	"notelets-be/internal/dto"
	"notelets-be/internal/entity"
	"notelets-be/internal/pkg/logger"
	"notelets-be/internal/store"
	"notelets-be/pkg/llm"
	"notelets-be/pkg/llm/factory"

	"github.com/google/uuid"
)

type IAssistantService interface {
	// SendMessage appends the user's message to the chat, runs one blocking
	// completion and appends the reply. Returns nil when the chat is absent.
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)

	// StreamMessage is SendMessage with a streamed reply. The assistant
	// message is written back to the chat once the stream finishes cleanly.
	StreamMessage(ctx context.Context, req *dto.SendMessageRequest) (<-chan llm.StreamChunk, error)

	ListModels() []*dto.ModelInfoResponse
}

var ErrChatNotFound = fmt.Errorf("chat not found")

type assistantService struct {
	store        *store.Store
	llmConfig    factory.Config
	defaultModel string
	logger       logger.ILogger
}

func NewAssistantService(st *store.Store, llmConfig factory.Config, defaultModel string, log logger.ILogger) IAssistantService {
	return &assistantService{
		store:        st,
		llmConfig:    llmConfig,
		defaultModel: defaultModel,
		logger:       log,
	}
}

func (s *assistantService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	chat, client, modelID, opts, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	completion, err := client.CreateChatCompletion(ctx, historyToMessages(chat.Messages), opts...)
	if err != nil {
		return nil, err
	}

	reply, err := s.appendAssistantMessage(ctx, chat.Id, completion.Content, modelID)
	if err != nil {
		return nil, err
	}

	return &dto.SendMessageResponse{
		ChatId: chat.Id,
		Reply: dto.ChatMessageDTO{
			Role:      reply.Role,
			Content:   reply.Content,
			LLM:       reply.LLM,
			CreatedAt: reply.CreatedAt,
		},
	}, nil
}

func (s *assistantService) StreamMessage(ctx context.Context, req *dto.SendMessageRequest) (<-chan llm.StreamChunk, error) {
	chat, client, modelID, opts, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	upstream, err := client.CreateStreamingChatCompletion(ctx, historyToMessages(chat.Messages), opts...)
	if err != nil {
		return nil, err
	}

	out := make(chan llm.StreamChunk)
	go func() {
		defer close(out)

		var accumulated string
		failed := false
		for chunk := range upstream {
			if chunk.Err != nil {
				failed = true
			} else {
				accumulated += chunk.Content
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}

		// Only a cleanly finished stream is written back; an aborted one
		// leaves the chat as it was before the reply started.
		if failed || accumulated == "" {
			return
		}
		if _, err := s.appendAssistantMessage(context.Background(), chat.Id, accumulated, modelID); err != nil {
			s.logger.Error("AssistantService", "Failed to persist streamed reply", map[string]interface{}{
				"chat_id": chat.Id,
				"error":   err.Error(),
			})
		}
	}()

	return out, nil
}

func (s *assistantService) ListModels() []*dto.ModelInfoResponse {
	responses := make([]*dto.ModelInfoResponse, 0, len(llm.Models))
	for _, m := range llm.Models {
		responses = append(responses, &dto.ModelInfoResponse{
			Id:               m.ID,
			Provider:         string(m.Provider),
			Name:             m.Name,
			SupportsThinking: m.SupportsThinking,
			SupportsEffort:   m.SupportsEffort,
		})
	}
	return responses
}

// prepare resolves the chat and model, persists the user's message and builds
// the vendor client. The user message is saved before the vendor call so it
// survives a failed completion.
func (s *assistantService) prepare(ctx context.Context, req *dto.SendMessageRequest) (*entity.Chat, llm.Client, string, []llm.Option, error) {
	chat, err := s.store.Chat(ctx, req.ChatId)
	if err != nil {
		return nil, nil, "", nil, err
	}
	if chat == nil {
		return nil, nil, "", nil, ErrChatNotFound
	}

	modelID := req.Model
	if modelID == "" {
		modelID = s.defaultModel
	}
	info, ok := llm.Lookup(modelID)
	if !ok {
		return nil, nil, "", nil, fmt.Errorf("unknown model: %s", modelID)
	}

	client, err := factory.NewClient(ctx, s.llmConfig, modelID)
	if err != nil {
		return nil, nil, "", nil, err
	}

	chat.Messages = append(chat.Messages, entity.ChatMessage{
		Role:      entity.RoleUser,
		Content:   req.Content,
		CreatedAt: time.Now(),
	})
	chat.UpdatedAt = time.Now()
	if err := s.store.SetChat(ctx, chat); err != nil {
		return nil, nil, "", nil, err
	}

	opts := []llm.Option{llm.WithModel(modelID)}
	if system := s.boardContext(ctx, chat.BoardId); system != "" {
		opts = append(opts, llm.WithSystem(system))
	}
	if req.ThinkingTokens > 0 && info.SupportsThinking {
		opts = append(opts, llm.WithThinkingTokens(req.ThinkingTokens))
	}
	if req.Effort != "" && info.SupportsEffort {
		opts = append(opts, llm.WithReasoningEffort(req.Effort))
	}

	return chat, client, modelID, opts, nil
}

// boardContext assembles the chat's board into a system prompt so the
// assistant can answer questions about the cards. A missing or empty board
// yields no system prompt.
func (s *assistantService) boardContext(ctx context.Context, boardId uuid.UUID) string {
	board, err := s.store.Board(ctx, boardId)
	if err != nil || board == nil {
		if err != nil {
			s.logger.Warn("AssistantService", "Board context read failed", map[string]interface{}{
				"board_id": boardId,
				"error":    err.Error(),
			})
		}
		return ""
	}
	cards, err := s.store.CardsByBoard(ctx, boardId)
	if err != nil {
		s.logger.Warn("AssistantService", "Board context read failed", map[string]interface{}{
			"board_id": boardId,
			"error":    err.Error(),
		})
		return ""
	}
	material := studyMaterial(board.Title, cards)
	if material == "" {
		return ""
	}
	return "You are an assistant on the user's note board. Use the board content below when it is relevant.\n\n" + material
}

// appendAssistantMessage re-reads the chat before appending so a concurrent
// rename between request and reply is not clobbered.
func (s *assistantService) appendAssistantMessage(ctx context.Context, chatId uuid.UUID, content, modelID string) (*entity.ChatMessage, error) {
	chat, err := s.store.Chat(ctx, chatId)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	message := entity.ChatMessage{
		Role:      entity.RoleAssistant,
		Content:   content,
		LLM:       modelID,
		CreatedAt: time.Now(),
	}
	chat.Messages = append(chat.Messages, message)
	chat.UpdatedAt = message.CreatedAt

	if err := s.store.SetChat(ctx, chat); err != nil {
		return nil, err
	}
	return &message, nil
}

func historyToMessages(history []entity.ChatMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}
