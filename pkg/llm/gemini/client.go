// Package gemini implements the chat completion client for Google Gemini
// through the official genai SDK; there is no hand-rolled wire code here.
package gemini

import (
	"context"
	"fmt"

	"notelets-be/pkg/llm"

	"google.golang.org/genai"
)

type Client struct {
	client *genai.Client
	model  string
}

var _ llm.Client = &Client{}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func buildContents(messages []llm.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		var role genai.Role = genai.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

func buildConfig(options *llm.Options) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(options.Temperature)),
		MaxOutputTokens: int32(options.MaxTokens),
	}
	if options.System != "" {
		config.SystemInstruction = genai.NewContentFromText(options.System, genai.RoleUser)
	}
	return config
}

func (c *Client) CreateChatCompletion(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Completion, error) {
	options := llm.ApplyOptions(c.model, opts...)

	resp, err := c.client.Models.GenerateContent(ctx, options.Model, buildContents(messages), buildConfig(options))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	content := resp.Text()
	if content == "" {
		return nil, llm.ErrEmptyCompletion
	}

	completion := &llm.Completion{
		Content: content,
		Model:   options.Model,
	}
	if resp.UsageMetadata != nil {
		completion.Usage = llm.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return completion, nil
}

func (c *Client) CreateStreamingChatCompletion(ctx context.Context, messages []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	options := llm.ApplyOptions(c.model, opts...)

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		for resp, err := range c.client.Models.GenerateContentStream(ctx, options.Model, buildContents(messages), buildConfig(options)) {
			if err != nil {
				select {
				case ch <- llm.StreamChunk{Err: fmt.Errorf("gemini stream error: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			select {
			case ch <- llm.StreamChunk{Content: text}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
