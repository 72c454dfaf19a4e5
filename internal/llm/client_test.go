package llm

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter answers from a function and counts calls.
type stubCompleter struct {
	calls atomic.Int32
	fn    func(ctx context.Context, call int) (string, error)
}

func (s *stubCompleter) Name() string { return "stub" }

func (s *stubCompleter) Complete(ctx context.Context, _ string, _ GenerationConfig) (string, error) {
	n := int(s.calls.Add(1))
	return s.fn(ctx, n)
}

func answer(text string) *stubCompleter {
	return &stubCompleter{fn: func(context.Context, int) (string, error) { return text, nil }}
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestGenerateNormalizesOutput(t *testing.T) {
	c := NewClient(answer("Here it is:\n```json\n{\"tool\": \"listUserBookings\", \"params\": {}}\n```"))

	out, err := c.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"tool":"listUserBookings","params":{}}`, out)
}

func TestGenerateReturnsRawTextWhenNoObject(t *testing.T) {
	c := NewClient(answer("I cannot help with that."))

	out, err := c.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "I cannot help with that.", out)
}

func TestGenerateEmptyCompletionIsError(t *testing.T) {
	c := NewClient(answer("   "))

	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGenerateRetriesOnceOnServiceError(t *testing.T) {
	stub := &stubCompleter{fn: func(_ context.Context, call int) (string, error) {
		if call == 1 {
			return "", errors.New("connection refused")
		}
		return `{"tool":"searchJets","params":{}}`, nil
	}}
	c := NewClient(stub, WithRetryDelay(time.Millisecond))

	out, err := c.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"tool":"searchJets","params":{}}`, out)
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestGenerateGivesUpAfterRetries(t *testing.T) {
	stub := &stubCompleter{fn: func(context.Context, int) (string, error) {
		return "", errors.New("connection refused")
	}}
	c := NewClient(stub, WithRetries(1), WithRetryDelay(time.Millisecond))

	_, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempt 2/2")
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	stub := &stubCompleter{fn: func(context.Context, int) (string, error) {
		return "", &StatusError{Provider: "stub", Status: http.StatusBadRequest, Body: "bad prompt"}
	}}
	c := NewClient(stub, WithRetryDelay(time.Millisecond))

	_, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestGenerateTimeoutIsNotRetried(t *testing.T) {
	stub := &stubCompleter{fn: func(ctx context.Context, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	c := NewClient(stub, WithTimeout(20*time.Millisecond), WithRetryDelay(time.Millisecond))

	start := time.Now()
	_, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), stub.calls.Load())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerateRespectsCallerCancellation(t *testing.T) {
	stub := &stubCompleter{fn: func(ctx context.Context, _ int) (string, error) { return "", ctx.Err() }}
	c := NewClient(stub, WithRetryDelay(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, "prompt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateUsesCache(t *testing.T) {
	rdb := newTestRedis(t)
	stub := answer(`{"tool":"searchJets","params":{"location":"Delhi"}}`)
	c := NewClient(stub, WithCache(NewRedisCache(rdb, time.Minute)))

	first, err := c.Generate(context.Background(), "find jets in Delhi")
	require.NoError(t, err)
	second, err := c.Generate(context.Background(), "find jets in Delhi")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), stub.calls.Load())

	_, err = c.Generate(context.Background(), "find jets in Goa")
	require.NoError(t, err)
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestGenerateDoesNotCacheUnparseableOutput(t *testing.T) {
	rdb := newTestRedis(t)
	stub := answer("no json here")
	c := NewClient(stub, WithCache(NewRedisCache(rdb, time.Minute)))

	for i := 0; i < 2; i++ {
		_, err := c.Generate(context.Background(), "hello")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestGenerateRecordsProfile(t *testing.T) {
	rdb := newTestRedis(t)
	profiler := NewProfiler(rdb)
	ok := NewClient(answer(`{"tool":"searchJets","params":{}}`),
		WithGenerationConfig(GenerationConfig{Model: "phi"}), WithProfiler(profiler))

	_, err := ok.Generate(context.Background(), "p")
	require.NoError(t, err)

	profile, err := profiler.GetProfile(context.Background(), "stub/phi")
	require.NoError(t, err)
	assert.Equal(t, StatusOnline, profile.Status)
	assert.Equal(t, int64(1), profile.TotalSuccesses)

	failing := NewClient(&stubCompleter{fn: func(context.Context, int) (string, error) {
		return "", &StatusError{Provider: "stub", Status: http.StatusUnauthorized}
	}}, WithGenerationConfig(GenerationConfig{Model: "phi"}), WithProfiler(profiler))
	_, err = failing.Generate(context.Background(), "p")
	require.Error(t, err)

	profile, err = profiler.GetProfile(context.Background(), "stub/phi")
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, profile.Status)
	assert.Equal(t, int64(1), profile.TotalFailures)
	assert.InDelta(t, 0.5, profile.ErrorRate, 0.001)
}

func TestRateLimitedClientStillGenerates(t *testing.T) {
	stub := answer(`{"tool":"searchJets","params":{}}`)
	c := NewClient(stub, WithRateLimit(1000, 1))

	for i := 0; i < 3; i++ {
		_, err := c.Generate(context.Background(), "p")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), stub.calls.Load())
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "stub", NewClient(answer("")).Model())
	assert.Equal(t, "stub/phi", NewClient(answer(""), WithGenerationConfig(GenerationConfig{Model: "phi"})).Model())
}

// closingCompleter records whether Close was called.
type closingCompleter struct {
	*stubCompleter
	closed bool
}

func (c *closingCompleter) Close() error {
	c.closed = true
	return nil
}

func TestCloseReleasesClosableBackend(t *testing.T) {
	cc := &closingCompleter{stubCompleter: answer(`{}`)}
	require.NoError(t, NewClient(cc).Close())
	assert.True(t, cc.closed)

	assert.NoError(t, NewClient(answer(`{}`)).Close(), "backends without Close are a no-op")
}
