// In file: internal/tools/executor.go
package tools

import (
	"context"

	"github.com/dileep-u-k/jet-concierge/internal/identity"
)

// Result is what a successful executor hands back to the agent.
type Result struct {
	Data    any
	Message string
}

// Validator is implemented by parameter records with cross-field rules that a
// schema alone cannot express.
type Validator interface {
	Validate() error
}

// ExecFunc is a typed executor. It receives the caller's identity explicitly and
// must not read credentials from anywhere else.
type ExecFunc[P any] func(ctx context.Context, id identity.Identity, params P) (Result, error)
