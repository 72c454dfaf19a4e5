// In file: internal/llm/provider.go
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Supported values for LLM_PROVIDER.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

// ProviderConfig selects and configures one Completer.
type ProviderConfig struct {
	Provider      string
	Model         string
	OllamaHost    string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	HTTPURL       string
}

// NewCompleter builds the Completer named by cfg.Provider. Ollama is the default.
func NewCompleter(ctx context.Context, cfg ProviderConfig, gen GenerationConfig) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOllama:
		return NewOllamaCompleter(cfg.OllamaHost)
	case ProviderGemini:
		return NewGeminiCompleter(ctx, cfg.GeminiAPIKey, gen)
	case ProviderOpenAI:
		return NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	case ProviderHTTP:
		return NewHTTPCompleter(cfg.HTTPURL)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// DefaultModel is the model used when LLM_MODEL is unset.
func DefaultModel(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini:
		return defaultGeminiModel
	case ProviderOpenAI:
		return defaultOpenAIModel
	case ProviderHTTP:
		return ""
	default:
		return defaultOllamaModel
	}
}
