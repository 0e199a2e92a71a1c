package service

import (
	"context"
	"testing"
	"time"

	"notelets-be/internal/dto"
	"notelets-be/internal/entity"
	"notelets-be/internal/store"
	"notelets-be/internal/store/memdb"
	"notelets-be/pkg/llm"
	"notelets-be/pkg/llm/factory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func seedBoardWithChat(t *testing.T, st *store.Store, cardContent string) *entity.Chat {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	board := &entity.Board{Id: uuid.New(), Title: "Mechanics", ViewType: "canvas", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.SetBoard(ctx, board))

	if cardContent != "" {
		card := &entity.Card{
			Id:        uuid.New(),
			BoardId:   board.Id,
			Kind:      entity.CardKindRichtext,
			Title:     "Laws",
			Content:   cardContent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, st.SetCard(ctx, card))
	}

	chat := &entity.Chat{Id: uuid.New(), BoardId: board.Id, Title: "questions", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.SetChat(ctx, chat))
	return chat
}

func TestPrepareBuildsBoardContextSystemPrompt(t *testing.T) {
	ctx := context.Background()
	st := store.NewStore(memdb.New(), nil, nopLogger{})
	chat := seedBoardWithChat(t, st, "Newton's second law: F = ma.")

	svc := &assistantService{
		store:        st,
		llmConfig:    factory.Config{},
		defaultModel: "claude-3-5-haiku-latest",
		logger:       nopLogger{},
	}

	_, _, modelID, opts, err := svc.prepare(ctx, &dto.SendMessageRequest{
		ChatId:  chat.Id,
		Content: "What does the second law say?",
	})
	require.NoError(t, err)

	options := llm.ApplyOptions(modelID, opts...)
	assert.Contains(t, options.System, "Mechanics")
	assert.Contains(t, options.System, "Newton's second law")

	// The user message is persisted before any vendor call.
	got, err := st.Chat(ctx, chat.Id)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, entity.RoleUser, got.Messages[0].Role)
}

func TestPrepareSkipsSystemPromptForEmptyBoard(t *testing.T) {
	ctx := context.Background()
	st := store.NewStore(memdb.New(), nil, nopLogger{})
	chat := seedBoardWithChat(t, st, "")

	svc := &assistantService{
		store:        st,
		llmConfig:    factory.Config{},
		defaultModel: "claude-3-5-haiku-latest",
		logger:       nopLogger{},
	}

	_, _, modelID, opts, err := svc.prepare(ctx, &dto.SendMessageRequest{
		ChatId:  chat.Id,
		Content: "hello",
	})
	require.NoError(t, err)

	options := llm.ApplyOptions(modelID, opts...)
	assert.Empty(t, options.System)
}
