// In file: internal/prompt/builder.go

// Package prompt renders the single instruction prompt sent to the language model.
// Rendering is pure: the same message and tool list always produce the same text.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoToolNeeded is the escape-hatch tool name for conversational input.
const NoToolNeeded = "noToolNeeded"

// ToolInfo is the part of a tool the model needs to see.
type ToolInfo struct {
	Name        string
	Description string
	Params      []string
}

// Example maps one utterance to the exact JSON answer expected for it.
type Example struct {
	Input  string
	Tool   string
	Params map[string]any
}

// Build renders the prompt for message, exposing only the given tools. Examples
// for tools outside that list are dropped; the escape-hatch example is always kept.
func Build(message string, tools []ToolInfo) string {
	allowed := make(map[string]bool, len(tools)+1)
	names := make([]string, 0, len(tools)+1)
	for _, t := range tools {
		allowed[t.Name] = true
		names = append(names, t.Name)
	}
	allowed[NoToolNeeded] = true
	names = append(names, NoToolNeeded)

	var b strings.Builder
	b.WriteString("You are the assistant for a private jet booking platform. ")
	b.WriteString("Read the user's request and choose the single most appropriate tool.\n\n")

	b.WriteString("AVAILABLE TOOLS:\n")
	for _, t := range tools {
		writeTool(&b, t)
	}
	writeTool(&b, ToolInfo{
		Name:        NoToolNeeded,
		Description: "Use for greetings, thanks, or questions that need no action.",
		Params:      []string{"message"},
	})

	b.WriteString("\nEXAMPLES:\n")
	for _, ex := range Examples {
		if !allowed[ex.Tool] {
			continue
		}
		answer, _ := json.Marshal(map[string]any{"tool": ex.Tool, "params": paramsOrEmpty(ex.Params)})
		fmt.Fprintf(&b, "Input: %s\nOutput: %s\n\n", quote(ex.Input), answer)
	}

	b.WriteString("RULES:\n")
	b.WriteString("1. Respond with ONLY one JSON object with exactly two keys: \"tool\" and \"params\". No prose, no code fences.\n")
	fmt.Fprintf(&b, "2. \"tool\" must be one of: %s.\n", strings.Join(names, ", "))
	b.WriteString("3. Only include parameters the user explicitly mentioned. Never invent or guess values.\n")
	b.WriteString("4. Requests to see existing bookings or trips never need a user id.\n")
	fmt.Fprintf(&b, "5. If no tool applies, use %q with params {\"message\": \"<a short friendly reply>\"}.\n\n", NoToolNeeded)

	fmt.Fprintf(&b, "USER REQUEST: %s\nJSON:", quote(message))
	return b.String()
}

func writeTool(b *strings.Builder, t ToolInfo) {
	fmt.Fprintf(b, "- %s: %s", t.Name, oneLine(t.Description))
	if len(t.Params) > 0 {
		fmt.Fprintf(b, " Parameters: %s.", strings.Join(t.Params, ", "))
	} else {
		b.WriteString(" Parameters: none.")
	}
	b.WriteString("\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// quote JSON-escapes s so user text cannot break out of the request line.
func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

func paramsOrEmpty(p map[string]any) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return p
}
