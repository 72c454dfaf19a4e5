// In file: internal/llm/helpers.go

// Package llm talks to the language-model service and normalizes what it returns.
// Several backends (Ollama, Gemini, OpenAI-compatible, plain HTTP) sit behind the
// Completer interface; Client adds timeouts, retry, rate limiting, caching, and
// JSON recovery on top of whichever one is configured.
package llm

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RecoverJSON applies the two-stage output policy:
//
//  1. the whole output parsed strictly as a JSON object;
//  2. otherwise the first balanced top-level {...} span that parses as an object.
//
// Either way the accepted object is returned re-encoded compactly and ok is true.
// When neither stage yields an object the raw text is returned unchanged with
// ok false, so the caller's own parse fails loudly instead of guessing.
func RecoverJSON(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if obj, ok := compactObject(trimmed); ok {
		return obj, true
	}
	// Candidates are top-level spans only; a failed span is skipped whole so
	// nothing nested inside it is mistaken for the tool call.
	for rest := trimmed; ; {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			break
		}
		span, ok := balancedSpan(rest[start:])
		if !ok {
			break
		}
		if obj, ok := compactObject(span); ok {
			return obj, true
		}
		rest = rest[start+len(span):]
	}
	return raw, false
}

// compactObject accepts s only if it is exactly one JSON object.
func compactObject(s string) (string, bool) {
	if !strings.HasPrefix(s, "{") || !json.Valid([]byte(s)) {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return "", false
	}
	return buf.String(), true
}

// balancedSpan returns the prefix of s (which starts with '{') up to its matching
// closing brace. Braces inside JSON strings, including escaped quotes, are ignored.
func balancedSpan(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// stripCodeFence removes a surrounding ```json fence some models add despite instructions.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
