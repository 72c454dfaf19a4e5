// In file: internal/agent/direct.go
package agent

import (
	"context"

	"github.com/dileep-u-k/jet-concierge/internal/api"
	"github.com/dileep-u-k/jet-concierge/internal/identity"
	"github.com/dileep-u-k/jet-concierge/internal/tools"

	"github.com/rs/zerolog"
)

// Direct invokes registry tools by name without a model in the loop. Parameters
// still go through schema validation and typed decoding.
type Direct struct {
	registry *tools.Registry
}

func NewDirect(registry *tools.Registry) *Direct {
	return &Direct{registry: registry}
}

// Invoke looks up name in the full registry and executes it for id.
func (d *Direct) Invoke(ctx context.Context, name string, params map[string]any, id identity.Identity) (env api.Envelope) {
	logger := zerolog.Ctx(ctx).With().Str("agent", "direct").Logger()
	ctx = logger.WithContext(ctx)
	defer recoverEnvelope(&logger, &env)

	if !id.Valid() {
		return api.Fail(api.CodeUnauthorized, nil)
	}
	desc, ok := d.registry.Lookup(name)
	if !ok {
		return api.Fail(api.CodeToolNotFound, map[string]string{"tool": name})
	}
	return Execute(ctx, desc, id, params)
}
