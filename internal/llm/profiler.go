// In file: internal/llm/profiler.go
package llm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/api"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StatusOnline   = "online"
	StatusDegraded = "degraded"
	StatusOffline  = "offline"
	StatusUnknown  = "unknown"
)

// ModelProfile tracks latency and reliability for one model.
type ModelProfile struct {
	ModelID         string    `json:"model_id" redis:"model_id"`
	AvgLatencyMS    int64     `json:"avg_latency_ms" redis:"avg_latency_ms"`
	Status          string    `json:"status" redis:"status"`
	ErrorRate       float64   `json:"error_rate" redis:"error_rate"`
	TotalSuccesses  int64     `json:"total_successes" redis:"total_successes"`
	TotalFailures   int64     `json:"total_failures" redis:"total_failures"`
	LastHealthCheck time.Time `json:"last_health_check" redis:"last_health_check"`
}

// Profiler keeps ModelProfiles in Redis hashes.
type Profiler struct {
	rdb *redis.Client
}

func NewProfiler(rdb *redis.Client) *Profiler {
	return &Profiler{rdb: rdb}
}

func (p *Profiler) profileKey(modelID string) string {
	return fmt.Sprintf("profile:%s", modelID)
}

// GetProfile returns the stored profile; a model never seen has status "unknown".
func (p *Profiler) GetProfile(ctx context.Context, modelID string) (*ModelProfile, error) {
	data, err := p.rdb.HGetAll(ctx, p.profileKey(modelID)).Result()
	if err != nil {
		return nil, err
	}
	profile := &ModelProfile{ModelID: modelID, Status: StatusUnknown}
	if len(data) == 0 {
		return profile, nil
	}
	if s := data["status"]; s != "" {
		profile.Status = s
	}
	profile.AvgLatencyMS, _ = strconv.ParseInt(data["avg_latency_ms"], 10, 64)
	profile.ErrorRate, _ = strconv.ParseFloat(data["error_rate"], 64)
	profile.TotalSuccesses, _ = strconv.ParseInt(data["total_successes"], 10, 64)
	profile.TotalFailures, _ = strconv.ParseInt(data["total_failures"], 10, 64)
	profile.LastHealthCheck, _ = time.Parse(time.RFC3339Nano, data["last_health_check"])
	return profile, nil
}

// RecordSuccess folds latency into an exponential moving average and marks the model online.
func (p *Profiler) RecordSuccess(ctx context.Context, modelID string, latency time.Duration) {
	key := p.profileKey(modelID)
	const alpha = 0.1
	logger := zerolog.Ctx(ctx)

	err := p.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, "avg_latency_ms").Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		next := latency.Milliseconds()
		if err == nil {
			next = int64(alpha*float64(latency.Milliseconds()) + (1.0-alpha)*float64(current))
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, "avg_latency_ms", next)
			return nil
		})
		return err
	}, key)
	if err != nil {
		logger.Warn().Err(err).Str("model", modelID).Msg("profiler latency update failed")
	}

	pipe := p.rdb.Pipeline()
	successes := pipe.HIncrBy(ctx, key, "total_successes", 1)
	failures := pipe.HGet(ctx, key, "total_failures")
	pipe.HSet(ctx, key, "model_id", modelID, "status", StatusOnline)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		logger.Warn().Err(err).Str("model", modelID).Msg("profiler success update failed")
		return
	}
	total, _ := strconv.ParseInt(failures.Val(), 10, 64)
	p.storeErrorRate(ctx, key, successes.Val(), total)
}

// RecordFailure counts a failed generation and marks the model degraded.
func (p *Profiler) RecordFailure(ctx context.Context, modelID string) {
	key := p.profileKey(modelID)
	pipe := p.rdb.Pipeline()
	failures := pipe.HIncrBy(ctx, key, "total_failures", 1)
	successes := pipe.HGet(ctx, key, "total_successes")
	pipe.HSet(ctx, key, "model_id", modelID, "status", StatusDegraded)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("model", modelID).Msg("profiler failure update failed")
		return
	}
	total, _ := strconv.ParseInt(successes.Val(), 10, 64)
	p.storeErrorRate(ctx, key, total, failures.Val())
}

// RecordHealthCheck stores the outcome of a proactive probe.
func (p *Profiler) RecordHealthCheck(ctx context.Context, modelID string, healthy bool) {
	status := StatusOffline
	if healthy {
		status = StatusOnline
	}
	err := p.rdb.HSet(ctx, p.profileKey(modelID),
		"model_id", modelID,
		"status", status,
		"last_health_check", time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("model", modelID).Msg("profiler health update failed")
	}
}

// Health renders the profile for the health route.
func (p *Profiler) Health(ctx context.Context, modelID string) *api.ModelHealth {
	profile, err := p.GetProfile(ctx, modelID)
	if err != nil {
		return &api.ModelHealth{Model: modelID, Status: StatusUnknown}
	}
	h := &api.ModelHealth{
		Model:        modelID,
		Status:       profile.Status,
		AvgLatencyMS: profile.AvgLatencyMS,
		ErrorRate:    profile.ErrorRate,
	}
	if !profile.LastHealthCheck.IsZero() {
		h.LastCheck = profile.LastHealthCheck.Format(time.RFC3339)
	}
	return h
}

func (p *Profiler) storeErrorRate(ctx context.Context, key string, successes, failures int64) {
	if successes+failures == 0 {
		return
	}
	rate := float64(failures) / float64(successes+failures)
	p.rdb.HSet(ctx, key, "error_rate", rate)
}
