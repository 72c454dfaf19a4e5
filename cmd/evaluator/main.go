// In file: cmd/evaluator/main.go

// Package main implements the offline tool-selection evaluator. It replays
// labelled utterances through each agent's planner against the configured model
// and reports how often the expected tool was chosen. No tool is executed and
// no backend call is made.
//
// Case files live under <data>/<role>/*.yaml:
//
//	cases:
//	  - message: "Show me my bookings"
//	    expect_tool: listUserBookings
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/agent"
	"github.com/dileep-u-k/jet-concierge/internal/llm"
	"github.com/dileep-u-k/jet-concierge/internal/logx"
	"github.com/dileep-u-k/jet-concierge/internal/tools"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config is the model half of the gateway configuration plus evaluator settings.
type Config struct {
	LLMProvider    string        `envconfig:"LLM_PROVIDER" default:"ollama"`
	LLMModel       string        `envconfig:"LLM_MODEL"`
	OllamaHost     string        `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	GeminiAPIKey   string        `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey   string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `envconfig:"OPENAI_BASE_URL"`
	LLMHTTPURL     string        `envconfig:"LLM_HTTP_URL"`
	LLMTimeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	LLMRetries     int           `envconfig:"LLM_RETRIES" default:"1"`
	LLMTemperature float32       `envconfig:"LLM_TEMPERATURE" default:"0.3"`

	DataDir     string  `envconfig:"EVAL_DATA_DIR" default:"./data/evals"`
	MinAccuracy float64 `envconfig:"EVAL_MIN_ACCURACY" default:"0"`

	logx.Config
}

func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, relying on environment variables")
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = llm.DefaultModel(cfg.LLMProvider)
	}
	return &cfg, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logx.Init()
		log.Fatal().Err(err).Msg("configuration error")
	}
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory holding <role>/*.yaml case files")
	flag.Float64Var(&cfg.MinAccuracy, "min-accuracy", cfg.MinAccuracy, "exit non-zero below this overall accuracy (0-1)")
	out := flag.String("out", "", "write the JSON report to this file instead of stdout")
	flag.Parse()
	logx.Init(cfg.Config)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create model client")
	}
	planners, err := newPlanners(client)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build agents")
	}

	log.Info().Str("model", client.Model()).Str("data", cfg.DataDir).Msg("starting tool-selection evaluation")
	report, err := NewEvaluator(cfg.DataDir, client.Model(), planners).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create report file")
		}
		defer f.Close()
		w = f
	}
	if err := writeReport(w, report); err != nil {
		log.Fatal().Err(err).Msg("could not write report")
	}

	log.Info().Int("passed", report.Passed).Int("total", report.Total).Float64("accuracy", report.Accuracy).Msg("evaluation complete")
	if report.Accuracy < cfg.MinAccuracy {
		log.Error().Float64("min", cfg.MinAccuracy).Msg("accuracy below threshold")
		stop()
		os.Exit(1)
	}
}

func newClient(ctx context.Context, cfg *Config) (*llm.Client, error) {
	gen := llm.DefaultGenerationConfig(cfg.LLMModel)
	temp := cfg.LLMTemperature
	gen.Temperature = &temp
	completer, err := llm.NewCompleter(ctx, llm.ProviderConfig{
		Provider:      cfg.LLMProvider,
		Model:         cfg.LLMModel,
		OllamaHost:    cfg.OllamaHost,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		HTTPURL:       cfg.LLMHTTPURL,
	}, gen)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(completer,
		llm.WithGenerationConfig(gen),
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithRetries(cfg.LLMRetries),
	), nil
}

// newPlanners builds one agent per role. The backend is never dialled
// because planning stops before execution.
func newPlanners(gen agent.Generator) (map[string]Planner, error) {
	backend, err := tools.NewBackend(tools.BackendConfig{})
	if err != nil {
		return nil, err
	}
	registry, err := tools.NewCatalog(backend)
	if err != nil {
		return nil, err
	}
	planners := make(map[string]Planner, len(tools.RoleTools))
	for role := range tools.RoleTools {
		a, err := agent.NewForRole(role, registry, gen)
		if err != nil {
			return nil, err
		}
		planners[role] = a
	}
	return planners, nil
}

func writeReport(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
