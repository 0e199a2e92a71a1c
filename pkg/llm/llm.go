package llm

import "context"

// Message represents a chat message in a provider-agnostic format.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Model           string // Override default model
	MaxTokens       int
	Temperature     float64
	System          string // System prompt, sent the way each vendor expects
	ThinkingTokens  int    // Extended-reasoning budget, vendors that support it
	ReasoningEffort string // "low" | "medium" | "high", vendors that support it
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithSystem(system string) Option {
	return func(o *Options) {
		o.System = system
	}
}

func WithThinkingTokens(n int) Option {
	return func(o *Options) {
		o.ThinkingTokens = n
	}
}

func WithReasoningEffort(effort string) Option {
	return func(o *Options) {
		o.ReasoningEffort = effort
	}
}

// ApplyOptions folds the given options over sane defaults.
func ApplyOptions(defaultModel string, opts ...Option) *Options {
	options := &Options{
		Model:       defaultModel,
		MaxTokens:   1024,
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Completion is the normalized result of a non-streaming call.
type Completion struct {
	Content string
	Model   string
	Usage   Usage
}

// StreamChunk carries one incremental text delta. A chunk with Err set is the
// last one delivered before the channel closes.
type StreamChunk struct {
	Content string
	Err     error
}

// Client is implemented once per vendor. Both calls honor ctx cancellation;
// canceling mid-stream ends the channel after an error chunk, with no
// partial-result salvage. Neither call retries: every failure surfaces.
type Client interface {
	// CreateChatCompletion issues one blocking request and returns the
	// normalized completion.
	CreateChatCompletion(ctx context.Context, messages []Message, opts ...Option) (*Completion, error)

	// CreateStreamingChatCompletion returns a channel of text deltas, closed
	// when the vendor stream ends.
	CreateStreamingChatCompletion(ctx context.Context, messages []Message, opts ...Option) (<-chan StreamChunk, error)
}
