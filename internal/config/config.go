package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// LLM settings
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"groq"`
	LLMAPIKey   string `env:"LLM_API_KEY,required"`
	LLMBaseURL  string `env:"LLM_BASE_URL"`
	LLMModel    string `env:"LLM_MODEL" envDefault:"llama-3.1-8b-instant"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// Storage
	DataDir     string `env:"DATA_DIR" envDefault:"data/users"`
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/server.log"`

	// Google OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	// Session tokens
	JWTSecret string `env:"JWT_SECRET,required"`

	// Quote API
	QuoteAPIURL string `env:"QUOTE_API_URL" envDefault:"https://zenquotes.io/api"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
