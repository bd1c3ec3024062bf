package llm

import (
	"fmt"
	"strings"

	"mindwell/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Factory creates LLM clients with consistent logic.
type Factory struct {
	APIKey  string
	BaseURL string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
	}
}

func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return NewOpenAI(f.APIKey, f.BaseURL, model), nil
	case ProviderGroq:
		base := f.BaseURL
		if base == "" {
			base = groqBaseURL
		}
		return NewOpenAI(f.APIKey, base, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
