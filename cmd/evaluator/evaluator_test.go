package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dileep-u-k/jet-concierge/internal/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plannerFunc adapts a function to Planner.
type plannerFunc func(ctx context.Context, message string) (agent.ToolCall, error)

func (f plannerFunc) Plan(ctx context.Context, message string) (agent.ToolCall, error) {
	return f(ctx, message)
}

func writeCases(t *testing.T, dir, role, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, role), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, role, name), []byte(body), 0o644))
}

func TestRunScoresEachRole(t *testing.T) {
	dir := t.TempDir()
	writeCases(t, dir, "concierge", "search.yaml", `
cases:
  - message: "Find a jet in Delhi"
    expect_tool: searchJets
    expect_params:
      location: delhi
  - message: "Show my bookings"
    expect_tool: listUserBookings
`)
	writeCases(t, dir, "reporting", "reports.yml", `
cases:
  - message: "Revenue last quarter"
    expect_tool: generateReport
`)
	writeCases(t, dir, "concierge", "notes.txt", "ignored")

	concierge := plannerFunc(func(_ context.Context, msg string) (agent.ToolCall, error) {
		if msg == "Find a jet in Delhi" {
			return agent.ToolCall{Tool: "searchJets", Params: map[string]any{"location": "Delhi"}}, nil
		}
		return agent.ToolCall{Tool: "searchJets", Params: map[string]any{}}, nil
	})
	reporting := plannerFunc(func(context.Context, string) (agent.ToolCall, error) {
		return agent.ToolCall{Tool: "generateReport", Params: map[string]any{}}, nil
	})

	report, err := NewEvaluator(dir, "stub/model", map[string]Planner{
		"concierge": concierge,
		"reporting": reporting,
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "stub/model", report.Model)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Passed)
	assert.InDelta(t, 2.0/3.0, report.Accuracy, 1e-9)

	require.Len(t, report.Roles, 2)
	assert.Equal(t, "concierge", report.Roles[0].Role)
	assert.Equal(t, 0.5, report.Roles[0].Accuracy)
	require.Len(t, report.Roles[0].Failures, 1)
	assert.Equal(t, "wrong tool", report.Roles[0].Failures[0].Reason)
	assert.Equal(t, "listUserBookings", report.Roles[0].Failures[0].Expected)
	assert.Equal(t, "reporting", report.Roles[1].Role)
	assert.Equal(t, 1.0, report.Roles[1].Accuracy)
}

func TestRunSkipsDirectoriesWithoutAgent(t *testing.T) {
	dir := t.TempDir()
	writeCases(t, dir, "concierge", "a.yaml", "cases:\n  - message: hi\n    expect_tool: noToolNeeded\n")
	writeCases(t, dir, "intents", "a.yaml", "cases:\n  - message: hi\n    expect_tool: x\n")

	report, err := NewEvaluator(dir, "m", map[string]Planner{
		"concierge": plannerFunc(func(context.Context, string) (agent.ToolCall, error) {
			return agent.ToolCall{Tool: "noToolNeeded", Params: map[string]any{}}, nil
		}),
	}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Roles, 1)
	assert.Equal(t, 1, report.Passed)
}

func TestRunErrors(t *testing.T) {
	_, err := NewEvaluator(filepath.Join(t.TempDir(), "missing"), "m", nil).Run(context.Background())
	assert.Error(t, err)

	_, err = NewEvaluator(t.TempDir(), "m", nil).Run(context.Background())
	assert.ErrorContains(t, err, "no case directories")

	dir := t.TempDir()
	writeCases(t, dir, "admin", "bad.yaml", "cases:\n  - message: \"\"\n")
	_, err = NewEvaluator(dir, "m", map[string]Planner{"admin": plannerFunc(nil)}).Run(context.Background())
	assert.ErrorContains(t, err, "needs message and expect_tool")
}

func TestCheck(t *testing.T) {
	c := Case{Message: "book", ExpectTool: "createBooking", ExpectParams: map[string]any{"passengers": 4, "origin": "Delhi"}}

	res := check(c, agent.ToolCall{Tool: "createBooking", Params: map[string]any{"passengers": float64(4), "origin": "DELHI", "extra": true}}, nil)
	assert.True(t, res.Passed)

	res = check(c, agent.ToolCall{Tool: "createBooking", Params: map[string]any{"passengers": float64(4)}}, nil)
	assert.False(t, res.Passed)
	assert.Equal(t, `missing param "origin"`, res.Reason)

	res = check(c, agent.ToolCall{Tool: "createBooking", Params: map[string]any{"passengers": float64(2), "origin": "Delhi"}}, nil)
	assert.Equal(t, `param "passengers" is 2, want 4`, res.Reason)

	res = check(c, agent.ToolCall{}, errors.New("malformed tool call"))
	assert.False(t, res.Passed)
	assert.Equal(t, "malformed tool call", res.Reason)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, &Report{Model: "m", Total: 1, Passed: 1, Accuracy: 1}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "m", decoded["model"])
	assert.Equal(t, float64(1), decoded["accuracy"])
}
