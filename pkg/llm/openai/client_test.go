package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"notelets-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChatCompletion(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "gpt-4o",
			"choices": [{"message": {"content": "Hello there"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3}
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	completion, err := client.CreateChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}},
		llm.WithSystem("Be brief"),
	)
	require.NoError(t, err)

	assert.Equal(t, "Hello there", completion.Content)
	assert.Equal(t, "gpt-4o", completion.Model)
	assert.Equal(t, 12, completion.Usage.InputTokens)
	assert.Equal(t, 3, completion.Usage.OutputTokens)

	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "Be brief", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.False(t, gotReq.Stream)
}

func TestCreateChatCompletionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	_, err := client.CreateChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}})

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "openai", apiErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate limited")
}

func TestCreateChatCompletionEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model": "gpt-4o", "choices": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	_, err := client.CreateChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}})

	assert.True(t, errors.Is(err, llm.ErrEmptyCompletion))
}

func TestCreateStreamingChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
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

func TestStreamSkipsMalformedAndEmptyEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: not-json\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
	ch, err := client.CreateStreamingChatCompletion(context.Background(),
		[]llm.Message{{Role: llm.RoleUser, Content: "Hi"}})
	require.NoError(t, err)

	var deltas []string
	for chunk := range ch {
		require.NoError(t, chunk.Err)
		deltas = append(deltas, chunk.Content)
	}
	assert.Equal(t, []string{"ok"}, deltas)
}

func TestStreamErrorEventAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n"))
		w.Write([]byte("data: {\"error\":{\"message\":\"overloaded\"}}\n\n"))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "gpt-4o")
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
	assert.Contains(t, streamErr.Error(), "overloaded")
}
