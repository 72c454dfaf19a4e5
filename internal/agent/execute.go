// In file: internal/agent/execute.go
package agent

import (
	"context"
	"errors"

	"github.com/dileep-u-k/jet-concierge/internal/api"
	"github.com/dileep-u-k/jet-concierge/internal/identity"
	"github.com/dileep-u-k/jet-concierge/internal/tools"

	"github.com/rs/zerolog"
)

const defaultSuccessMessage = "Request completed successfully."

// ExecDetails is the Details payload of a TOOL_EXECUTION_ERROR envelope.
type ExecDetails struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
	Tool   string `json:"tool"`
}

// Execute runs one descriptor and classifies the outcome into an envelope.
// Panics inside the executor are recovered as INTERNAL_ERROR.
func Execute(ctx context.Context, d *tools.Descriptor, id identity.Identity, params map[string]any) (env api.Envelope) {
	logger := zerolog.Ctx(ctx).With().Str("tool", d.Name()).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("tool executor panicked")
			env = api.Fail(api.CodeInternalError, nil)
		}
	}()

	result, err := d.Execute(ctx, id, params)
	if err != nil {
		return classify(&logger, d.Name(), err)
	}

	msg := result.Message
	if msg == "" {
		msg = defaultSuccessMessage
	}
	logger.Info().Msg("tool executed")
	return api.OK(result.Data, msg)
}

func classify(logger *zerolog.Logger, tool string, err error) api.Envelope {
	var execErr *tools.ExecError
	switch {
	case errors.Is(err, tools.ErrInvalidParams):
		logger.Warn().Err(err).Msg("tool parameters rejected")
		return api.Fail(api.CodeInvalidToolCall, err.Error())
	case errors.As(err, &execErr):
		logger.Warn().Str("code", execErr.Code).Int("status", execErr.Status).Str("detail", execErr.Detail).
			Msg("tool execution failed")
		return api.FailWithMessage(api.CodeToolExecutionError, execErr.Message, ExecDetails{
			Code:   execErr.Code,
			Detail: execErr.Detail,
			Tool:   tool,
		})
	default:
		logger.Error().Err(err).Msg("unexpected tool error")
		return api.Fail(api.CodeInternalError, nil)
	}
}

// recoverEnvelope converts a panic anywhere in the pipeline into INTERNAL_ERROR.
// It must be deferred directly.
func recoverEnvelope(logger *zerolog.Logger, env *api.Envelope) {
	if r := recover(); r != nil {
		logger.Error().Interface("panic", r).Msg("request pipeline panicked")
		*env = api.Fail(api.CodeInternalError, nil)
	}
}
