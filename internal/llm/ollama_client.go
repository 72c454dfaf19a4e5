// In file: internal/llm/ollama_client.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// OllamaCompleter calls a local Ollama server's generate endpoint.
type OllamaCompleter struct {
	client *ollama.Client
}

var _ Completer = (*OllamaCompleter)(nil)
var _ Pinger = (*OllamaCompleter)(nil)

// NewOllamaCompleter connects to host (default http://localhost:11434). Timeouts come
// from the caller's context, so the HTTP client carries none of its own.
func NewOllamaCompleter(host string) (*OllamaCompleter, error) {
	if strings.TrimSpace(host) == "" {
		host = defaultOllamaHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}
	return &OllamaCompleter{client: ollama.NewClient(u, &http.Client{})}, nil
}

func (o *OllamaCompleter) Name() string { return "ollama" }

func (o *OllamaCompleter) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	stream := false
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	options := map[string]any{}
	if cfg.Temperature != nil {
		options["temperature"] = *cfg.Temperature
	}
	if cfg.TopP != nil {
		options["top_p"] = *cfg.TopP
	}
	if cfg.NumCtx > 0 {
		options["num_ctx"] = cfg.NumCtx
	}

	req := &ollama.GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: options,
	}

	var text strings.Builder
	err := o.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		var se ollama.StatusError
		if errors.As(err, &se) {
			return "", &StatusError{Provider: o.Name(), Status: se.StatusCode, Body: se.ErrorMessage}
		}
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return text.String(), nil
}

func (o *OllamaCompleter) Ping(ctx context.Context) error {
	return o.client.Heartbeat(ctx)
}
