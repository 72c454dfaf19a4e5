// In file: internal/agent/agent.go

// Package agent turns one natural-language message into at most one tool
// invocation and reports the outcome as an api.Envelope.
//
// An Agent is configured with a role, the subset of the tool registry that role
// may use, and a policy for model output that names no tool. The same type backs
// the concierge, admin, and reporting endpoints.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/api"
	"github.com/dileep-u-k/jet-concierge/internal/identity"
	"github.com/dileep-u-k/jet-concierge/internal/prompt"
	"github.com/dileep-u-k/jet-concierge/internal/tools"

	"github.com/rs/zerolog"
)

const defaultConverseMessage = "I understand your request but no specific tool is needed."

// ErrGeneration marks a failure of the model service itself.
var ErrGeneration = errors.New("generation failed")

type generationError struct{ err error }

func (e *generationError) Error() string        { return ErrGeneration.Error() + ": " + e.err.Error() }
func (e *generationError) Unwrap() error        { return e.err }
func (e *generationError) Is(target error) bool { return target == ErrGeneration }

// Generator produces model output for a prompt. *llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MissingToolPolicy decides what happens when the model picks no tool.
type MissingToolPolicy int

const (
	// Converse answers conversationally with the model's own message.
	Converse MissingToolPolicy = iota
	// Reject treats the output as not understood.
	Reject
)

func (p MissingToolPolicy) String() string {
	if p == Converse {
		return "converse"
	}
	return "reject"
}

// Config describes one agent instance.
type Config struct {
	Role        string
	Toolset     *tools.Toolset
	Generator   Generator
	MissingTool MissingToolPolicy
}

// Agent is safe for concurrent use; it holds no per-request state.
type Agent struct {
	role        string
	toolset     *tools.Toolset
	toolInfo    []prompt.ToolInfo
	generator   Generator
	missingTool MissingToolPolicy
}

func New(cfg Config) (*Agent, error) {
	if cfg.Role == "" {
		return nil, errors.New("agent role is required")
	}
	if cfg.Toolset == nil {
		return nil, fmt.Errorf("agent %s: toolset is required", cfg.Role)
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("agent %s: generator is required", cfg.Role)
	}

	info := make([]prompt.ToolInfo, 0, cfg.Toolset.Len())
	for _, d := range cfg.Toolset.Descriptors() {
		info = append(info, prompt.ToolInfo{
			Name:        d.Name(),
			Description: d.Description(),
			Params:      d.Definition().Function.Parameters.ParamNames(),
		})
	}

	return &Agent{
		role:        cfg.Role,
		toolset:     cfg.Toolset,
		toolInfo:    info,
		generator:   cfg.Generator,
		missingTool: cfg.MissingTool,
	}, nil
}

// NewForRole builds an agent from the registry using the role's standard tool
// subset and policy: concierge converses, every other role rejects.
func NewForRole(role string, registry *tools.Registry, gen Generator) (*Agent, error) {
	names, ok := tools.RoleTools[role]
	if !ok {
		return nil, fmt.Errorf("unknown agent role %q", role)
	}
	toolset, err := registry.Subset(names...)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", role, err)
	}
	policy := Reject
	if role == tools.RoleConcierge {
		policy = Converse
	}
	return New(Config{Role: role, Toolset: toolset, Generator: gen, MissingTool: policy})
}

func (a *Agent) Role() string { return a.role }

// Tools returns the names this agent exposes, in prompt order.
func (a *Agent) Tools() []string { return a.toolset.Names() }

// HandleRequest runs the full pipeline for one message. It never panics and
// always returns exactly one envelope.
func (a *Agent) HandleRequest(ctx context.Context, message string, id identity.Identity) (env api.Envelope) {
	logger := zerolog.Ctx(ctx).With().Str("agent", a.role).Logger()
	ctx = logger.WithContext(ctx)
	defer recoverEnvelope(&logger, &env)

	if !id.Valid() {
		logger.Info().Msg("request rejected: no identity")
		return api.Fail(api.CodeUnauthorized, nil)
	}
	if sub := id.Subject(); sub != "" {
		logger = logger.With().Str("subject", sub).Logger()
		ctx = logger.WithContext(ctx)
	}

	start := time.Now()
	call, err := a.Plan(ctx, message)
	switch {
	case errors.Is(err, ErrGeneration):
		logger.Error().Err(err).Dur("latency", time.Since(start)).Msg("generation failed")
		return api.Fail(api.CodeLLMError, errors.Unwrap(err).Error())
	case err != nil:
		logger.Warn().Err(err).Msg("model output rejected")
		return api.Fail(api.CodeInvalidResponse, nil)
	}
	logger.Debug().Dur("latency", time.Since(start)).Str("tool", call.Tool).Msg("model chose tool")

	if call.Tool == "" || call.Tool == prompt.NoToolNeeded {
		return a.handleMissingTool(&logger, call)
	}

	d, ok := a.toolset.Lookup(call.Tool)
	if !ok {
		logger.Warn().Str("tool", call.Tool).Msg("model chose a tool outside this agent")
		return api.Fail(api.CodeToolNotFound, map[string]string{"tool": call.Tool})
	}

	return Execute(ctx, d, id, call.Params)
}

// Plan asks the model which tool to call for message without executing it.
// Model-service failures wrap ErrGeneration; unusable output wraps ErrMalformedToolCall.
func (a *Agent) Plan(ctx context.Context, message string) (ToolCall, error) {
	raw, err := a.generator.Generate(ctx, prompt.Build(message, a.toolInfo))
	if err != nil {
		return ToolCall{}, &generationError{err: err}
	}
	return ParseToolCall(raw)
}

func (a *Agent) handleMissingTool(logger *zerolog.Logger, call ToolCall) api.Envelope {
	if a.missingTool == Reject {
		logger.Warn().Str("tool", call.Tool).Msg("no tool selected")
		return api.Fail(api.CodeInvalidResponse, nil)
	}
	msg, _ := call.Params["message"].(string)
	if msg == "" {
		msg = defaultConverseMessage
	}
	logger.Info().Msg("conversational reply")
	return api.OK(nil, msg)
}
