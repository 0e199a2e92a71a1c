package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	HubLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	// Backend selects the local document store: "memory" or "postgres".
	Backend    string
	Connection string
}

type APIKeys struct {
	Anthropic  string
	OpenAI     string
	OpenRouter string
	Gemini     string
	Fireworks  string
}

type AIConfig struct {
	DefaultModel    string
	OpenAIBaseURL   string
	OpenRouterSite  string
	OpenRouterTitle string
	TranscribeModel string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			HubLogFilePath:     getEnv("HUB_LOG_FILE_PATH", "hub.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Backend:    getEnv("STORE_BACKEND", "memory"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Anthropic:  getEnv("ANTHROPIC_API_KEY", ""),
			OpenAI:     getEnv("OPENAI_API_KEY", ""),
			OpenRouter: getEnv("OPENROUTER_API_KEY", ""),
			Gemini:     getEnv("GEMINI_API_KEY", ""),
			Fireworks:  getEnv("FIREWORKS_API_KEY", ""),
		},
		Ai: AIConfig{
			DefaultModel:    getEnv("DEFAULT_MODEL", "claude-3-5-haiku-latest"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
			OpenRouterSite:  getEnv("OPENROUTER_SITE_URL", "https://notelets.app"),
			OpenRouterTitle: getEnv("OPENROUTER_APP_TITLE", "Notelets"),
			TranscribeModel: getEnv("TRANSCRIBE_MODEL", "whisper-v3-turbo"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
