package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"notelets-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChatCompletion(t *testing.T) {
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Write([]byte(`{
			"model": "claude-3-5-haiku-latest",
			"content": [
				{"type": "text", "text": "Hello "},
				{"type": "text", "text": "world"}
			],
			"usage": {"input_tokens": 10, "output_tokens": 2}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "claude-3-5-haiku-latest")
	completion, err := client.CreateChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}},
		llm.WithSystem("Be brief"),
	)
	require.NoError(t, err)

	assert.Equal(t, "Hello world", completion.Content)
	assert.Equal(t, 10, completion.Usage.InputTokens)

	// System prompt rides as a top-level field, not a message.
	assert.Equal(t, "Be brief", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestThinkingBudgetDropsTemperature(t *testing.T) {
	var gotReq messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"content": [{"type": "text", "text": "ok"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "claude-sonnet-4-20250514")
	_, err := client.CreateChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Think hard"}},
		llm.WithThinkingTokens(2048),
	)
	require.NoError(t, err)

	require.NotNil(t, gotReq.Thinking)
	assert.Equal(t, "enabled", gotReq.Thinking.Type)
	assert.Equal(t, 2048, gotReq.Thinking.BudgetTokens)
	assert.Zero(t, gotReq.Temperature)
}

func TestCreateStreamingChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("event: message_start\ndata: {\"type\":\"message_start\"}\n\n"))
		w.Write([]byte("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hel\"}}\n\n"))
		w.Write([]byte("event: ping\ndata: {\"type\":\"ping\"}\n\n"))
		w.Write([]byte("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"lo\"}}\n\n"))
		w.Write([]byte("event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "claude-3-5-haiku-latest")
	ch, err := client.CreateStreamingChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}})
	require.NoError(t, err)

	var deltas []string
	for chunk := range ch {
		require.NoError(t, chunk.Err)
		deltas = append(deltas, chunk.Content)
	}
	assert.Equal(t, []string{"Hel", "lo"}, deltas)
}

func TestStreamErrorEventAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"partial\"}}\n\n"))
		w.Write([]byte("event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n"))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "claude-3-5-haiku-latest")
	ch, err := client.CreateStreamingChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}})
	require.NoError(t, err)

	var deltas []string
	var streamErr error
	for chunk := range ch {
		if chunk.Err != nil {
			streamErr = chunk.Err
			continue
		}
		deltas = append(deltas, chunk.Content)
	}
	assert.Equal(t, []string{"partial"}, deltas)
	require.Error(t, streamErr)
	assert.Contains(t, streamErr.Error(), "overloaded_error")
}

func TestAPIErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid x-api-key"}}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", srv.URL, "claude-3-5-haiku-latest")
	_, err := client.CreateChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}})

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "anthropic", apiErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
