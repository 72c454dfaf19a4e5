// In file: internal/agent/toolcall.go
package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedToolCall is returned when model output is not a usable {tool, params} object.
var ErrMalformedToolCall = errors.New("malformed tool call")

// ToolCall is the model's choice of tool and its arguments.
type ToolCall struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

// ParseToolCall decodes model output. The tool may be absent (empty Tool) and
// params may be absent or null (empty map); anything else of the wrong shape is
// an error.
func ParseToolCall(raw string) (ToolCall, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil || fields == nil {
		return ToolCall{}, fmt.Errorf("%w: output is not a JSON object", ErrMalformedToolCall)
	}

	call := ToolCall{Params: map[string]any{}}
	if rawTool, ok := fields["tool"]; ok && !isNull(rawTool) {
		if err := json.Unmarshal(rawTool, &call.Tool); err != nil {
			return ToolCall{}, fmt.Errorf("%w: \"tool\" is not a string", ErrMalformedToolCall)
		}
		call.Tool = strings.TrimSpace(call.Tool)
	}
	if rawParams, ok := fields["params"]; ok && !isNull(rawParams) {
		var params map[string]any
		if err := json.Unmarshal(rawParams, &params); err != nil {
			return ToolCall{}, fmt.Errorf("%w: \"params\" is not an object", ErrMalformedToolCall)
		}
		call.Params = params
	}
	return call, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
