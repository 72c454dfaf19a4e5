// In file: cmd/evaluator/evaluator.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/agent"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Case is one labelled utterance. ExpectParams is matched as a subset of the
// params the model produced; values compare by their printed form, ignoring case.
type Case struct {
	Message      string         `yaml:"message"`
	ExpectTool   string         `yaml:"expect_tool"`
	ExpectParams map[string]any `yaml:"expect_params"`
}

type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// Planner picks a tool for a message without running it. *agent.Agent satisfies it.
type Planner interface {
	Plan(ctx context.Context, message string) (agent.ToolCall, error)
}

type Result struct {
	Message  string         `json:"message"`
	Expected string         `json:"expected"`
	Got      string         `json:"got,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
	Passed   bool           `json:"passed"`
	Reason   string         `json:"reason,omitempty"`
	Latency  time.Duration  `json:"latency_ns"`
}

type RoleReport struct {
	Role     string   `json:"role"`
	Total    int      `json:"total"`
	Passed   int      `json:"passed"`
	Accuracy float64  `json:"accuracy"`
	Failures []Result `json:"failures,omitempty"`
}

type Report struct {
	Model    string       `json:"model"`
	Total    int          `json:"total"`
	Passed   int          `json:"passed"`
	Accuracy float64      `json:"accuracy"`
	Roles    []RoleReport `json:"roles"`
}

// Evaluator replays case files from dataDir/<role>/ through that role's planner.
type Evaluator struct {
	dataDir  string
	model    string
	planners map[string]Planner
}

func NewEvaluator(dataDir, model string, planners map[string]Planner) *Evaluator {
	return &Evaluator{dataDir: dataDir, model: model, planners: planners}
}

// Run evaluates every role directory concurrently. Cases within a role run in order.
func (e *Evaluator) Run(ctx context.Context) (*Report, error) {
	roles, err := e.discoverRoles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover case directories: %w", err)
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("no case directories under %s", e.dataDir)
	}

	reports := make([]RoleReport, len(roles))
	errs := make([]error, len(roles))
	var wg sync.WaitGroup
	for i, role := range roles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i], errs[i] = e.evaluateRole(ctx, role)
		}()
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	report := &Report{Model: e.model, Roles: reports}
	for _, r := range reports {
		report.Total += r.Total
		report.Passed += r.Passed
	}
	report.Accuracy = ratio(report.Passed, report.Total)
	return report, nil
}

// discoverRoles returns the subdirectories that have a planner, sorted.
func (e *Evaluator) discoverRoles() ([]string, error) {
	entries, err := os.ReadDir(e.dataDir)
	if err != nil {
		return nil, err
	}
	var roles []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := e.planners[entry.Name()]; !ok {
			log.Warn().Str("dir", entry.Name()).Msg("no agent for case directory, skipping")
			continue
		}
		roles = append(roles, entry.Name())
	}
	slices.Sort(roles)
	return roles, nil
}

func (e *Evaluator) evaluateRole(ctx context.Context, role string) (RoleReport, error) {
	cases, err := loadCases(filepath.Join(e.dataDir, role))
	if err != nil {
		return RoleReport{}, fmt.Errorf("role %s: %w", role, err)
	}
	log.Info().Str("role", role).Int("cases", len(cases)).Msg("evaluating")

	report := RoleReport{Role: role, Total: len(cases)}
	planner := e.planners[role]
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		start := time.Now()
		call, err := planner.Plan(ctx, c.Message)
		res := check(c, call, err)
		res.Latency = time.Since(start)
		if res.Passed {
			report.Passed++
			continue
		}
		log.Debug().Str("role", role).Str("message", c.Message).Str("reason", res.Reason).Msg("case failed")
		report.Failures = append(report.Failures, res)
	}
	report.Accuracy = ratio(report.Passed, report.Total)
	return report, nil
}

// loadCases reads every .yaml/.yml file under dir.
func loadCases(dir string) ([]Case, error) {
	var cases []Case
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := filepath.Ext(path)
		if d.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var f caseFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for i, c := range f.Cases {
			if strings.TrimSpace(c.Message) == "" || c.ExpectTool == "" {
				return fmt.Errorf("%s: case %d needs message and expect_tool", path, i+1)
			}
		}
		cases = append(cases, f.Cases...)
		return nil
	})
	return cases, err
}

func check(c Case, call agent.ToolCall, err error) Result {
	res := Result{Message: c.Message, Expected: c.ExpectTool, Got: call.Tool, Params: call.Params}
	switch {
	case err != nil:
		res.Reason = err.Error()
	case call.Tool != c.ExpectTool:
		res.Reason = "wrong tool"
	default:
		res.Reason = missingParams(c.ExpectParams, call.Params)
		res.Passed = res.Reason == ""
	}
	return res
}

func missingParams(want, got map[string]any) string {
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v, ok := got[k]
		if !ok {
			return fmt.Sprintf("missing param %q", k)
		}
		if !strings.EqualFold(fmt.Sprint(v), fmt.Sprint(want[k])) {
			return fmt.Sprintf("param %q is %v, want %v", k, v, want[k])
		}
	}
	return ""
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
