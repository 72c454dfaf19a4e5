// In file: internal/tools/descriptor.go
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dileep-u-k/jet-concierge/internal/identity"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Descriptor is an immutable, registered tool. Build it with NewDescriptor.
type Descriptor struct {
	definition Tool
	schema     *jsonschema.Schema
	run        func(ctx context.Context, id identity.Identity, params map[string]any) (Result, error)
}

// NewDescriptor compiles the tool's parameter schema and binds a typed executor.
//
// At call time the raw params are validated against the schema, decoded into P
// (json tags, numbers accepted where strings are expected), and checked with
// P's Validate method when it has one. Any failure wraps ErrInvalidParams and the
// executor is not called.
func NewDescriptor[P any](def Tool, exec ExecFunc[P]) (*Descriptor, error) {
	if def.Function.Name == "" {
		return nil, errors.New("tool definition has no name")
	}
	if exec == nil {
		return nil, fmt.Errorf("tool %q has no executor", def.Function.Name)
	}

	raw, err := json.Marshal(def.Function.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema for %s: %w", def.Function.Name, err)
	}
	schema, err := jsonschema.CompileString(def.Function.Name+".json", string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for %s: %w", def.Function.Name, err)
	}

	run := func(ctx context.Context, id identity.Identity, params map[string]any) (Result, error) {
		var p P
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           &p,
		})
		if err != nil {
			return Result{}, fmt.Errorf("failed to build decoder: %w", err)
		}
		if err := decoder.Decode(params); err != nil {
			return Result{}, invalidParams("%s: %v", def.Function.Name, err)
		}
		if v, ok := any(p).(Validator); ok {
			if err := v.Validate(); err != nil {
				return Result{}, invalidParams("%s: %v", def.Function.Name, err)
			}
		}
		return exec(ctx, id, p)
	}

	return &Descriptor{definition: def, schema: schema, run: run}, nil
}

// MustDescriptor is NewDescriptor for statically known definitions.
func MustDescriptor[P any](def Tool, exec ExecFunc[P]) *Descriptor {
	d, err := NewDescriptor(def, exec)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Descriptor) Name() string        { return d.definition.Function.Name }
func (d *Descriptor) Description() string { return d.definition.Function.Description }
func (d *Descriptor) Definition() Tool    { return d.definition }

// Execute validates params and runs the executor under the given identity.
// A missing token is a programming error and panics with ErrNoIdentity before any
// backend call is attempted.
func (d *Descriptor) Execute(ctx context.Context, id identity.Identity, params map[string]any) (Result, error) {
	if !id.Valid() {
		panic(fmt.Errorf("%w: %s", ErrNoIdentity, d.Name()))
	}
	if params == nil {
		params = map[string]any{}
	}
	if err := d.schema.Validate(params); err != nil {
		return Result{}, invalidParams("%s: %v", d.Name(), err)
	}
	return d.run(ctx, id, params)
}
