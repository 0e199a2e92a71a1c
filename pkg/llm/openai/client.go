// Package openai implements the chat completion client for OpenAI and any
// OpenAI-compatible host (the base URL is configurable).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"notelets-be/pkg/llm"
	"notelets-be/pkg/llm/sse"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *zap.Logger
}

// Ensure Client implements llm.Client
var _ llm.Client = &Client{}

func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: zap.NewNop(),
	}
}

// SetLogger routes stream-decode warnings through the caller's logger.
func (c *Client) SetLogger(log *zap.Logger) {
	if log != nil {
		c.log = log
	}
}

// --- Request/Response structs (OpenAI wire format) ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type apiErrorBody struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *apiErrorBody `json:"error,omitempty"`
}

type streamPayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *apiErrorBody `json:"error,omitempty"`
}

func (c *Client) buildRequest(messages []llm.Message, options *llm.Options, stream bool) chatRequest {
	wire := make([]chatMessage, 0, len(messages)+1)
	if options.System != "" {
		wire = append(wire, chatMessage{Role: "system", Content: options.System})
	}
	for _, msg := range messages {
		wire = append(wire, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	return chatRequest{
		Model:       options.Model,
		Messages:    wire,
		MaxTokens:   options.MaxTokens,
		Temperature: options.Temperature,
		Stream:      stream,
	}
}

func (c *Client) send(ctx context.Context, payload chatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &llm.APIError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}
	return resp, nil
}

func (c *Client) CreateChatCompletion(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Completion, error) {
	options := llm.ApplyOptions(c.model, opts...)

	resp, err := c.send(ctx, c.buildRequest(messages, options, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai api returned error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return nil, llm.ErrEmptyCompletion
	}

	return &llm.Completion{
		Content: chatResp.Choices[0].Message.Content,
		Model:   chatResp.Model,
		Usage: llm.Usage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
		},
	}, nil
}

func (c *Client) CreateStreamingChatCompletion(ctx context.Context, messages []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	options := llm.ApplyOptions(c.model, opts...)

	resp, err := c.send(ctx, c.buildRequest(messages, options, true))
	if err != nil {
		return nil, err
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		sse.StreamDeltas(ctx, resp.Body, ch, "openai", ExtractDelta, c.log)
	}()
	return ch, nil
}

// ExtractDelta pulls the incremental text out of one OpenAI-compatible stream
// event. OpenRouter reuses it since the framing is identical.
func ExtractDelta(_ string, data []byte) (delta string, ok bool, err error) {
	var payload streamPayload
	if jsonErr := json.Unmarshal(data, &payload); jsonErr != nil {
		return "", false, nil // malformed line: skipped by the caller
	}
	if payload.Error != nil {
		return "", false, fmt.Errorf("openai stream error: %s", payload.Error.Message)
	}
	if len(payload.Choices) == 0 || payload.Choices[0].Delta.Content == "" {
		return "", false, nil
	}
	return payload.Choices[0].Delta.Content, true, nil
}
