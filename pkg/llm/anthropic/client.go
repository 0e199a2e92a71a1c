// Package anthropic implements the chat completion client for the Anthropic
// Messages API.
package anthropic

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

const (
	DefaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        *zap.Logger
}

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

// --- Request/Response structs (Messages API wire format) ---

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type thinkingConfig struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

type messagesRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []message       `json:"messages"`
	System      string          `json:"system,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
	Thinking    *thinkingConfig `json:"thinking,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) buildRequest(messages []llm.Message, options *llm.Options, stream bool) messagesRequest {
	wire := make([]message, len(messages))
	for i, msg := range messages {
		wire[i] = message{Role: msg.Role, Content: msg.Content}
	}
	req := messagesRequest{
		Model:       options.Model,
		MaxTokens:   options.MaxTokens,
		Messages:    wire,
		System:      options.System,
		Temperature: options.Temperature,
		Stream:      stream,
	}
	if options.ThinkingTokens > 0 {
		req.Thinking = &thinkingConfig{
			Type:         "enabled",
			BudgetTokens: options.ThinkingTokens,
		}
		// The API rejects a temperature alongside extended thinking.
		req.Temperature = 0
	}
	return req
}

func (c *Client) send(ctx context.Context, payload messagesRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &llm.APIError{
			Provider:   "anthropic",
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

	var msgResp messagesResponse
	if err := json.Unmarshal(bodyBytes, &msgResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var content string
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	if content == "" {
		return nil, llm.ErrEmptyCompletion
	}

	return &llm.Completion{
		Content: content,
		Model:   msgResp.Model,
		Usage: llm.Usage{
			InputTokens:  msgResp.Usage.InputTokens,
			OutputTokens: msgResp.Usage.OutputTokens,
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
		sse.StreamDeltas(ctx, resp.Body, ch, "anthropic", ExtractDelta, c.log)
	}()
	return ch, nil
}

// ExtractDelta pulls the incremental text out of one Messages API stream
// event. Only content_block_delta text carries output; an error event aborts
// the stream; ping and lifecycle events are ignored.
func ExtractDelta(name string, data []byte) (delta string, ok bool, err error) {
	var ev streamEvent
	if jsonErr := json.Unmarshal(data, &ev); jsonErr != nil {
		return "", false, nil // malformed line: skipped by the caller
	}
	eventType := ev.Type
	if eventType == "" {
		eventType = name
	}
	switch eventType {
	case "error":
		if ev.Error != nil {
			return "", false, fmt.Errorf("anthropic stream error: %s: %s", ev.Error.Type, ev.Error.Message)
		}
		return "", false, fmt.Errorf("anthropic stream error")
	case "content_block_delta":
		if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
			return ev.Delta.Text, true, nil
		}
	}
	return "", false, nil
}
