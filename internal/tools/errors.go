// In file: internal/tools/errors.go
package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams wraps every schema, decoding, or cross-field failure on tool input.
	ErrInvalidParams = errors.New("invalid tool parameters")
	// ErrNoIdentity is raised (as a panic) when an executor is invoked without a token.
	ErrNoIdentity = errors.New("tool invoked without an identity token")
	// ErrToolNotFound is returned by lookups for names outside a registry or toolset.
	ErrToolNotFound = errors.New("tool not found")
	// ErrDuplicateTool is returned when a name is registered twice.
	ErrDuplicateTool = errors.New("tool already registered")
)

// Executor failure codes carried inside ExecError.Code.
const (
	ExecNotFound            = "NOT_FOUND"
	ExecValidation          = "VALIDATION_ERROR"
	ExecBackendUnauthorized = "BACKEND_UNAUTHORIZED"
	ExecConflict            = "CONFLICT"
	ExecBackendError        = "BACKEND_ERROR"
	ExecTimeout             = "TIMEOUT"
	ExecNetworkError        = "NETWORK_ERROR"
	ExecBadBackendResponse  = "BAD_BACKEND_RESPONSE"
)

// ExecError is a classified executor failure. Message is safe to show a user;
// Detail carries the backend's own error text for logs and diagnostics.
type ExecError struct {
	Code    string
	Message string
	Detail  string
	Status  int
	Err     error
}

func (e *ExecError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *ExecError) Unwrap() error { return e.Err }

func invalidParams(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}
