// In file: internal/llm/constants.go
package llm

import "time"

// Defaults shared by the completers and the Client.
const (
	defaultTimeout     = 60 * time.Second
	defaultRetries     = 1
	initialRetryDelay  = 1 * time.Second
	defaultTemperature = 0.3
	defaultTopP        = 0.9
	defaultNumCtx      = 4096
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "phi"
	defaultGeminiModel = "gemini-1.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)
