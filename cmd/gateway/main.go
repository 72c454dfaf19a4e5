// In file: cmd/gateway/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/agent"
	"github.com/dileep-u-k/jet-concierge/internal/llm"
	"github.com/dileep-u-k/jet-concierge/internal/logx"
	"github.com/dileep-u-k/jet-concierge/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	roleConcierge = tools.RoleConcierge
	roleAdmin     = tools.RoleAdmin
	roleReporting = tools.RoleReporting
)

// main is the composition root: it loads configuration, builds every service,
// injects dependencies, and runs the server until SIGINT/SIGTERM.
func main() {
	cfg, err := LoadConfig()
	if err != nil {
		logx.Init()
		log.Fatal().Err(err).Msg("configuration error")
	}
	logx.Init(cfg.Config)

	info := GetBuildInfo()
	log.Info().Str("version", info.Version).Str("commit", info.GitCommit).Msg("starting jet concierge gateway")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. REDIS (optional): generation cache and model profile.
	var (
		rdb      *redis.Client
		profiler *llm.Profiler
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("could not connect to Redis")
		}
		defer rdb.Close()
		profiler = llm.NewProfiler(rdb)
	}

	// 2. MODEL CLIENT
	client, err := initializeLLMClient(ctx, cfg, rdb, profiler)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create model client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("model client close failed")
		}
	}()

	// 3. TOOLS AND AGENTS
	backend, err := tools.NewBackend(tools.BackendConfig{
		BaseURL:     cfg.BackendURL,
		Timeout:     cfg.ToolTimeout,
		MaxAttempts: cfg.BackendMaxRetries,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid backend configuration")
	}
	registry, err := tools.NewCatalog(backend)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build tool registry")
	}
	agents, err := initializeAgents(registry, client)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build agents")
	}
	log.Info().Int("tools", registry.ToolCount()).Str("model", client.Model()).Msg("all services initialized")

	// 4. BACKGROUND PROCESSES
	if profiler != nil {
		go startHealthChecker(ctx, client, profiler, cfg.File.HealthCheckInterval)
	}

	// 5. WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	var health HealthReporter
	if profiler != nil {
		health = profiler
	}
	handler := NewGatewayHandler(agents, registry, backend, health, client.Model())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           newRouter(handler, cfg.File),
		ReadHeaderTimeout: 10 * time.Second,
	}
	runServerWithGracefulShutdown(ctx, srv)
}

func initializeLLMClient(ctx context.Context, cfg *AppConfig, rdb *redis.Client, profiler *llm.Profiler) (*llm.Client, error) {
	gen := cfg.generationConfig()
	completer, err := llm.NewCompleter(ctx, cfg.providerConfig(), gen)
	if err != nil {
		return nil, err
	}
	opts := []llm.Option{
		llm.WithGenerationConfig(gen),
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithRetries(cfg.LLMRetries),
		llm.WithRateLimit(cfg.LLMRateLimit, 1),
	}
	if rdb != nil {
		opts = append(opts, llm.WithCache(llm.NewRedisCache(rdb, cfg.CacheTTL)), llm.WithProfiler(profiler))
	}
	return llm.NewClient(completer, opts...), nil
}

// initializeAgents builds one agent per role from the shared registry.
func initializeAgents(registry *tools.Registry, gen agent.Generator) (map[string]*agent.Agent, error) {
	agents := make(map[string]*agent.Agent, 3)
	for _, role := range []string{roleConcierge, roleAdmin, roleReporting} {
		a, err := agent.NewForRole(role, registry, gen)
		if err != nil {
			return nil, err
		}
		agents[role] = a
		log.Info().Str("agent", role).Strs("tools", a.Tools()).Msg("agent ready")
	}
	return agents, nil
}

// startHealthChecker probes the model on an interval and records the result.
func startHealthChecker(ctx context.Context, client *llm.Client, profiler *llm.Profiler, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runCheck := func() {
		checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := client.Ping(checkCtx)
		cancel()
		profiler.RecordHealthCheck(ctx, client.Model(), err == nil)
		if err != nil {
			log.Warn().Err(err).Str("model", client.Model()).Msg("model health check failed")
			return
		}
		log.Debug().Str("model", client.Model()).Msg("model health check passed")
	}

	log.Info().Dur("interval", interval).Msg("health checker started")
	runCheck()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCheck()
		}
	}
}

// runServerWithGracefulShutdown serves until ctx is cancelled, then drains.
func runServerWithGracefulShutdown(ctx context.Context, srv *http.Server) {
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("gateway is listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return
	}
	log.Info().Msg("server exited gracefully")
}
