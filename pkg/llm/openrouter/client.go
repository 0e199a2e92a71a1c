// Package openrouter implements the chat completion client for OpenRouter.
// The wire format is OpenAI-compatible with two extra attribution headers and
// an optional reasoning-effort knob.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"notelets-be/pkg/llm"
	"notelets-be/pkg/llm/openai"
	"notelets-be/pkg/llm/sse"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	referer    string
	title      string
	httpClient *http.Client
	log        *zap.Logger
}

var _ llm.Client = &Client{}

func NewClient(apiKey, model, referer, title string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   model,
		referer: referer,
		title:   title,
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

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type reasoningConfig struct {
	Effort string `json:"effort"`
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []chatMessage    `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
	Reasoning   *reasoningConfig `json:"reasoning,omitempty"`
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
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) buildRequest(messages []llm.Message, options *llm.Options, stream bool) chatRequest {
	wire := make([]chatMessage, 0, len(messages)+1)
	if options.System != "" {
		wire = append(wire, chatMessage{Role: "system", Content: options.System})
	}
	for _, msg := range messages {
		wire = append(wire, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	req := chatRequest{
		Model:       options.Model,
		Messages:    wire,
		MaxTokens:   options.MaxTokens,
		Temperature: options.Temperature,
		Stream:      stream,
	}
	if options.ReasoningEffort != "" {
		req.Reasoning = &reasoningConfig{Effort: options.ReasoningEffort}
	}
	return req
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
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &llm.APIError{
			Provider:   "openrouter",
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
		return nil, fmt.Errorf("openrouter api returned error: %s", chatResp.Error.Message)
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
		// Identical delta framing to OpenAI, so the extractor is shared.
		sse.StreamDeltas(ctx, resp.Body, ch, "openrouter", openai.ExtractDelta, c.log)
	}()
	return ch, nil
}
