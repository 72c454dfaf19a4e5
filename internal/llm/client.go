// In file: internal/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/version"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrEmptyCompletion is returned when the model answers with nothing at all.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// GenerationConfig holds the sampling parameters sent with every completion.
type GenerationConfig struct {
	// The model to use (e.g., "phi", "gemini-1.5-flash", "gpt-4o-mini").
	Model string
	// Pointers distinguish 0.0 from unset.
	Temperature *float32
	TopP        *float32
	// Context window, honoured by backends that expose it (Ollama).
	NumCtx int
}

// DefaultGenerationConfig returns the deterministic-leaning settings used for tool selection.
func DefaultGenerationConfig(model string) GenerationConfig {
	temp := float32(defaultTemperature)
	topP := float32(defaultTopP)
	return GenerationConfig{Model: model, Temperature: &temp, TopP: &topP, NumCtx: defaultNumCtx}
}

// Completer is one model-service backend. Implementations request a single,
// non-streamed, JSON-constrained completion and return the raw text.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}

// Pinger is implemented by completers that can cheaply probe their service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client wraps a Completer with the generation policy: bounded time, one retry,
// optional rate limiting and caching, and JSON recovery of the output.
type Client struct {
	completer  Completer
	config     GenerationConfig
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	limiter    *rate.Limiter
	cache      *RedisCache
	profiler   *Profiler
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many extra attempts follow a failed one.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

func WithGenerationConfig(cfg GenerationConfig) Option {
	return func(c *Client) { c.config = cfg }
}

// WithRateLimit caps outgoing completions per second. Zero disables the limiter.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithCache(cache *RedisCache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithProfiler(p *Profiler) Option {
	return func(c *Client) { c.profiler = p }
}

// NewClient builds a Client around completer.
func NewClient(completer Completer, opts ...Option) *Client {
	c := &Client{
		completer:  completer,
		config:     DefaultGenerationConfig(""),
		timeout:    defaultTimeout,
		retries:    defaultRetries,
		retryDelay: initialRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model names the backend and model in use, e.g. "ollama/phi".
func (c *Client) Model() string {
	if c.config.Model == "" {
		return c.completer.Name()
	}
	return c.completer.Name() + "/" + c.config.Model
}

// Generate sends prompt to the model and returns its output, normalized by
// RecoverJSON. A service failure returns an error; unparseable output does not.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	logger := zerolog.Ctx(ctx)
	cacheKey := version.GenerateVersionedCacheKey("gen:"+c.Model(), prompt)

	if c.cache != nil {
		if hit, ok := c.cache.Get(ctx, cacheKey); ok {
			logger.Debug().Str("model", c.Model()).Msg("generation cache hit")
			return hit, nil
		}
	}

	start := time.Now()
	raw, err := c.completeWithRetry(ctx, prompt)
	if err != nil {
		if c.profiler != nil {
			c.profiler.RecordFailure(ctx, c.Model())
		}
		return "", err
	}
	if c.profiler != nil {
		c.profiler.RecordSuccess(ctx, c.Model(), time.Since(start))
	}

	out, ok := RecoverJSON(stripCodeFence(raw))
	if !ok {
		logger.Warn().Str("model", c.Model()).Int("length", len(raw)).Msg("model output contained no JSON object")
		return raw, nil
	}
	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, out)
	}
	return out, nil
}

func (c *Client) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	logger := zerolog.Ctx(ctx)
	attempts := c.retries + 1

	var lastErr error
	delay := c.retryDelay
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("generation cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("generation rate limit: %w", err)
			}
		}

		text, err := c.completeOnce(ctx, prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return "", ErrEmptyCompletion
			}
			return text, nil
		}

		lastErr = fmt.Errorf("%s completion failed (attempt %d/%d): %w", c.completer.Name(), i+1, attempts, err)
		logger.Warn().Err(err).Str("model", c.Model()).Int("attempt", i+1).Msg("generation attempt failed")

		// A timed-out or cancelled request is not retried.
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			break
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			break
		}
	}
	return "", lastErr
}

func (c *Client) completeOnce(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	text, err := c.completer.Complete(callCtx, prompt, c.config)
	if err != nil && callCtx.Err() != nil && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", callCtx.Err(), err)
	}
	return text, err
}

// Ping probes the backend if it supports probing; otherwise it is a no-op.
func (c *Client) Ping(ctx context.Context) error {
	p, ok := c.completer.(Pinger)
	if !ok {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return p.Ping(callCtx)
}

// Close releases the backend's connection when it holds one (Gemini's gRPC client).
func (c *Client) Close() error {
	if closer, ok := c.completer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
