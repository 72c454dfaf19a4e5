// In file: internal/tools/types.go

// Package tools holds the registry of backend capabilities the agents can dispatch to.
// Each tool pairs a description and a JSON Schema for its parameters with a typed
// executor that performs exactly one authenticated backend operation.
package tools

import "slices"

// ToolTypeFunction is the standard type for function-based tools.
const ToolTypeFunction = "function"

// Tool is the model-facing description of a capability.
type Tool struct {
	Type     string   `json:"type"`
	Function Function `json:"function"`
}

// Function defines the name, description, and parameters of a callable tool.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// JSONSchema is a typed subset of JSON Schema used to describe tool parameters.
// It is marshalled and compiled once per tool, so every keyword set here is enforced.
type JSONSchema struct {
	// Type is left empty for fields that accept more than one JSON type (e.g. ids
	// that may arrive as a number or a string).
	Type        string                 `json:"type,omitempty"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty"`
	MinLength   *int                   `json:"minLength,omitempty"`
	// MinProperties is the fewest keys the params object may carry.
	MinProperties *int `json:"minProperties,omitempty"`
}

// NewFunctionTool builds a Tool of the standard function type.
func NewFunctionTool(name, description string, parameters JSONSchema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}

// ParamNames lists the schema's top-level property names in a stable order:
// required names first, then the rest alphabetically.
func (s JSONSchema) ParamNames() []string {
	seen := make(map[string]bool, len(s.Properties))
	names := make([]string, 0, len(s.Properties))
	for _, r := range s.Required {
		if _, ok := s.Properties[r]; ok && !seen[r] {
			names = append(names, r)
			seen[r] = true
		}
	}
	rest := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

func ptr[T any](v T) *T { return &v }
