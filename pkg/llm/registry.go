package llm

// Provider identifies which adapter serves a model.
type Provider string

const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

// ModelInfo describes one entry in the model registry.
type ModelInfo struct {
	ID               string
	Provider         Provider
	Name             string
	SupportsThinking bool
	SupportsEffort   bool
}

// Models is the registry the factory selects adapters from.
var Models = []ModelInfo{
	{ID: "claude-sonnet-4-20250514", Provider: ProviderAnthropic, Name: "Claude Sonnet 4", SupportsThinking: true},
	{ID: "claude-3-5-haiku-latest", Provider: ProviderAnthropic, Name: "Claude 3.5 Haiku"},
	{ID: "gpt-4o", Provider: ProviderOpenAI, Name: "GPT-4o"},
	{ID: "gpt-4o-mini", Provider: ProviderOpenAI, Name: "GPT-4o mini"},
	{ID: "o3-mini", Provider: ProviderOpenAI, Name: "o3-mini", SupportsEffort: true},
	{ID: "gemini-2.5-flash", Provider: ProviderGemini, Name: "Gemini 2.5 Flash"},
	{ID: "gemini-2.5-pro", Provider: ProviderGemini, Name: "Gemini 2.5 Pro"},
	{ID: "deepseek/deepseek-chat-v3-0324", Provider: ProviderOpenRouter, Name: "DeepSeek V3"},
	{ID: "meta-llama/llama-3.3-70b-instruct", Provider: ProviderOpenRouter, Name: "Llama 3.3 70B"},
}

// Lookup finds a registry entry by model id.
func Lookup(modelID string) (ModelInfo, bool) {
	for _, m := range Models {
		if m.ID == modelID {
			return m, true
		}
	}
	return ModelInfo{}, false
}
