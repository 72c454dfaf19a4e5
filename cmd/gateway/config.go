// In file: cmd/gateway/config.go
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/llm"
	"github.com/dileep-u-k/jet-concierge/internal/logx"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppConfig holds all configuration for the gateway, loaded from the environment.
type AppConfig struct {
	Port       string `envconfig:"PORT" default:"3010"`
	BackendURL string `envconfig:"BACKEND_URL" default:"http://localhost:8000/api/v1"`

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
	// Completions per second; zero disables the limiter.
	LLMRateLimit float64 `envconfig:"LLM_RATE_LIMIT" default:"0"`

	ToolTimeout       time.Duration `envconfig:"TOOL_TIMEOUT" default:"15s"`
	BackendMaxRetries int           `envconfig:"BACKEND_MAX_RETRIES" default:"2"`

	// Empty disables the generation cache and the model profiler.
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.yaml"`

	logx.Config

	File FileConfig `ignored:"true"`
}

// FileConfig is the optional YAML part of the configuration.
type FileConfig struct {
	CORS                CORSConfig    `yaml:"cors"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
}

type CORSConfig struct {
	AllowOrigins     []string      `yaml:"allow_origins"`
	AllowMethods     []string      `yaml:"allow_methods"`
	AllowHeaders     []string      `yaml:"allow_headers"`
	ExposeHeaders    []string      `yaml:"expose_headers"`
	AllowCredentials bool          `yaml:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age"`
}

// DefaultFileConfig is used when config.yaml is absent, and fills any section it leaves out.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", "X-Auth-Token", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length", "X-Auth-Token", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		HealthCheckInterval: 5 * time.Minute,
	}
}

// LoadConfig reads .env (outside release mode), the environment, and config.yaml.
func LoadConfig() (*AppConfig, error) {
	// In Docker (GIN_MODE=release) configuration arrives as real environment variables.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg("no .env file found for local development")
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = llm.DefaultModel(cfg.LLMProvider)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	file, err := LoadFileConfig(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.File = file
	return &cfg, nil
}

// Validate checks combinations envconfig cannot express.
func (c *AppConfig) Validate() error {
	var errs []error
	switch strings.ToLower(c.LLMProvider) {
	case llm.ProviderOllama:
	case llm.ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("LLM_PROVIDER=gemini requires GEMINI_API_KEY"))
		}
	case llm.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("LLM_PROVIDER=openai requires OPENAI_API_KEY"))
		}
	case llm.ProviderHTTP:
		if c.LLMHTTPURL == "" {
			errs = append(errs, errors.New("LLM_PROVIDER=http requires LLM_HTTP_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	if c.LLMRetries < 0 {
		errs = append(errs, errors.New("LLM_RETRIES must not be negative"))
	}
	if c.BackendMaxRetries < 1 {
		errs = append(errs, errors.New("BACKEND_MAX_RETRIES must be at least 1"))
	}
	return errors.Join(errs...)
}

// LoadFileConfig parses path over the defaults. A missing file yields the defaults.
func LoadFileConfig(path string) (FileConfig, error) {
	cfg := DefaultFileConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info().Str("path", path).Msg("config file not found, using defaults")
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(parsed.CORS.AllowOrigins) > 0 {
		cfg.CORS = mergeCORS(cfg.CORS, parsed.CORS)
	}
	if parsed.HealthCheckInterval > 0 {
		cfg.HealthCheckInterval = parsed.HealthCheckInterval
	}
	return cfg, nil
}

func mergeCORS(def, over CORSConfig) CORSConfig {
	out := over
	if len(out.AllowMethods) == 0 {
		out.AllowMethods = def.AllowMethods
	}
	if len(out.AllowHeaders) == 0 {
		out.AllowHeaders = def.AllowHeaders
	}
	if len(out.ExposeHeaders) == 0 {
		out.ExposeHeaders = def.ExposeHeaders
	}
	if out.MaxAge == 0 {
		out.MaxAge = def.MaxAge
	}
	return out
}

// providerConfig is the slice of AppConfig the llm package needs.
func (c *AppConfig) providerConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider:      c.LLMProvider,
		Model:         c.LLMModel,
		OllamaHost:    c.OllamaHost,
		GeminiAPIKey:  c.GeminiAPIKey,
		OpenAIAPIKey:  c.OpenAIAPIKey,
		OpenAIBaseURL: c.OpenAIBaseURL,
		HTTPURL:       c.LLMHTTPURL,
	}
}

func (c *AppConfig) generationConfig() llm.GenerationConfig {
	gen := llm.DefaultGenerationConfig(c.LLMModel)
	temp := c.LLMTemperature
	gen.Temperature = &temp
	return gen
}
