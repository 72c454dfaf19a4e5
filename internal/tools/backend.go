// In file: internal/tools/backend.go
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/identity"

	"github.com/rs/zerolog"
)

const (
	defaultBackendURL     = "http://localhost:8000/api/v1"
	defaultBackendTimeout = 15 * time.Second
	defaultRetryDelay     = 500 * time.Millisecond
	userAgent             = "Jet-Concierge-Gateway/1.0"
	maxDetailLength       = 500
)

// BackendConfig configures the REST client shared by every executor.
type BackendConfig struct {
	BaseURL string
	// Timeout bounds one logical backend call, retries included.
	Timeout time.Duration
	// MaxAttempts applies to idempotent GETs only; writes are attempted once.
	MaxAttempts int
	RetryDelay  time.Duration
}

// Backend is a thin authenticated client for the jet-booking REST API.
// It holds no credentials; every call takes the caller's identity.
type Backend struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
}

func NewBackend(cfg BackendConfig) (*Backend, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBackendURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid backend URL %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBackendTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Backend{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
	}, nil
}

// Get fetches a resource and decodes the JSON body into out.
func (b *Backend) Get(ctx context.Context, id identity.Identity, path string, query url.Values, out any) error {
	return b.do(ctx, request{method: http.MethodGet, path: path, query: query, token: id.Token}, out)
}

// Post sends body as JSON.
func (b *Backend) Post(ctx context.Context, id identity.Identity, path string, query url.Values, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	return b.do(ctx, request{method: http.MethodPost, path: path, query: query, token: id.Token, body: payload, contentType: "application/json"}, out)
}

// Put sends body as JSON.
func (b *Backend) Put(ctx context.Context, id identity.Identity, path string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	return b.do(ctx, request{method: http.MethodPut, path: path, token: id.Token, body: payload, contentType: "application/json"}, out)
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        []byte
	contentType string
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backend request: %w", err)
	}
	return payload, nil
}

// do performs one logical call. GETs are retried with exponential backoff on
// transport errors and 5xx responses; 4xx responses are never retried.
func (b *Backend) do(ctx context.Context, req request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	logger := zerolog.Ctx(ctx)
	attempts := 1
	if req.method == http.MethodGet {
		attempts = b.maxAttempts
	}

	target := b.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var lastErr error
	delay := b.retryDelay
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return classifyTransport(ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bytes.NewReader(req.body))
		if err != nil {
			return &ExecError{Code: ExecBackendError, Message: userMessageFor(ExecBackendError), Err: err}
		}
		if req.contentType != "" {
			httpReq.Header.Set("Content-Type", req.contentType)
		}
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("User-Agent", userAgent)
		if req.token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+req.token)
		}

		resp, err := b.httpClient.Do(httpReq)
		if err != nil {
			lastErr = classifyTransport(err)
			logger.Warn().Err(err).Str("method", req.method).Str("path", req.path).
				Int("attempt", i+1).Msg("backend request failed")
			if ctx.Err() != nil {
				return classifyTransport(ctx.Err())
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = classifyTransport(readErr)
			continue
		}

		logger.Debug().Str("method", req.method).Str("path", req.path).
			Int("status", resp.StatusCode).Int("attempt", i+1).Msg("backend response")

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return &ExecError{
					Code:    ExecBadBackendResponse,
					Message: userMessageFor(ExecBadBackendResponse),
					Detail:  err.Error(),
					Status:  resp.StatusCode,
					Err:     err,
				}
			}
			return nil
		}

		lastErr = statusError(resp.StatusCode, body)
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}

func statusError(status int, body []byte) *ExecError {
	code := ExecBackendError
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		code = ExecValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = ExecBackendUnauthorized
	case status == http.StatusNotFound:
		code = ExecNotFound
	case status == http.StatusConflict:
		code = ExecConflict
	}
	return &ExecError{
		Code:    code,
		Message: userMessageFor(code),
		Detail:  extractDetail(body, status),
		Status:  status,
	}
}

func classifyTransport(err error) *ExecError {
	code := ExecNetworkError
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		code = ExecTimeout
	}
	return &ExecError{Code: code, Message: userMessageFor(code), Detail: err.Error(), Err: err}
}

func userMessageFor(code string) string {
	switch code {
	case ExecNotFound:
		return "I couldn't find what you were looking for."
	case ExecValidation:
		return "Some details were missing or invalid. Please check your request and try again."
	case ExecBackendUnauthorized:
		return "Your session has expired or you don't have permission for that action."
	case ExecConflict:
		return "That request conflicts with the current state of your reservation."
	case ExecTimeout:
		return "The booking service took too long to respond. Please try again."
	case ExecNetworkError:
		return "I couldn't reach the booking service. Please try again later."
	case ExecBadBackendResponse:
		return "The booking service returned an unexpected response."
	default:
		return "The booking service is currently unavailable. Please try again later."
	}
}

// extractDetail pulls a human-readable reason out of an error body. It understands
// {"detail": "..."}, validation arrays of {"loc": [...], "msg": "..."}, and {"message": "..."}.
func extractDetail(body []byte, status int) string {
	var parsed struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if d := detailText(parsed.Detail); d != "" {
			return truncate(d)
		}
		if parsed.Message != "" {
			return truncate(parsed.Message)
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return truncate(text)
	}
	return fmt.Sprintf("backend returned status %d", status)
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			field := fieldFromLoc(it.Loc)
			if field == "" {
				parts = append(parts, it.Msg)
				continue
			}
			parts = append(parts, field+": "+it.Msg)
		}
		return strings.Join(parts, "; ")
	}
	return strings.TrimSpace(string(raw))
}

// fieldFromLoc drops the leading "body"/"query" segment of a validation location.
func fieldFromLoc(loc []any) string {
	segs := make([]string, 0, len(loc))
	for i, seg := range loc {
		s := fmt.Sprint(seg)
		if i == 0 && (s == "body" || s == "query" || s == "path") && len(loc) > 1 {
			continue
		}
		segs = append(segs, s)
	}
	return strings.Join(segs, ".")
}

func truncate(s string) string {
	if len(s) <= maxDetailLength {
		return s
	}
	return s[:maxDetailLength] + "..."
}
