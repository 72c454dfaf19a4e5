// In file: internal/llm/http_client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxErrorBody = 512

// StatusError is a non-2xx answer from a model service.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: status %d, body: %s", e.Provider, e.Status, e.Body)
}

// Retryable reports whether repeating the request could succeed. Client errors
// (e.g., 400 Bad Request) are final; 429 is not.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// HTTPCompleter speaks the minimal generation contract:
// POST {prompt, responseFormat:"json"} and read back {text}.
type HTTPCompleter struct {
	endpoint   string
	httpClient *http.Client
}

var _ Completer = (*HTTPCompleter)(nil)

type httpGenerateRequest struct {
	Prompt         string   `json:"prompt"`
	ResponseFormat string   `json:"responseFormat"`
	Model          string   `json:"model,omitempty"`
	Temperature    *float32 `json:"temperature,omitempty"`
}

type httpGenerateResponse struct {
	Text string `json:"text"`
}

func NewHTTPCompleter(endpoint string) (*HTTPCompleter, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("LLM_HTTP_URL cannot be empty")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid LLM_HTTP_URL %q: %w", endpoint, err)
	}
	return &HTTPCompleter{endpoint: endpoint, httpClient: &http.Client{}}, nil
}

func (c *HTTPCompleter) Name() string { return "http" }

func (c *HTTPCompleter) Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	payload, err := json.Marshal(httpGenerateRequest{
		Prompt:         prompt,
		ResponseFormat: "json",
		Model:          cfg.Model,
		Temperature:    cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build generation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return "", &StatusError{Provider: c.Name(), Status: resp.StatusCode, Body: string(body)}
	}

	var out httpGenerateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}
	return out.Text, nil
}
