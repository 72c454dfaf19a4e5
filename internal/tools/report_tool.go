// In file: internal/tools/report_tool.go
package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dileep-u-k/jet-concierge/internal/identity"
)

const GenerateReport = "generateReport"

const reportDateLayout = "2006-01-02"

type GenerateReportParams struct {
	Type      string         `json:"type"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Filters   map[string]any `json:"filters,omitempty"`
}

// Validate accepts plain dates or full RFC 3339 timestamps and rejects inverted ranges.
func (p GenerateReportParams) Validate() error {
	start, err := parseReportDate(p.StartDate)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := parseReportDate(p.EndDate)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	if end.Before(start) {
		return errors.New("end_date is before start_date")
	}
	return nil
}

func parseReportDate(s string) (time.Time, error) {
	if t, err := time.Parse(reportDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func generateReportDefinition() Tool {
	return NewFunctionTool(
		GenerateReport,
		"Generate a booking, revenue, membership, or usage report for a date range.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"type":       {Type: "string", Description: "Kind of report.", Enum: []string{"booking", "revenue", "membership", "usage"}},
				"start_date": {Type: "string", Description: "First day of the range (YYYY-MM-DD)."},
				"end_date":   {Type: "string", Description: "Last day of the range (YYYY-MM-DD)."},
				"filters":    {Type: "object", Description: "Optional extra filters such as jet_id or status."},
			},
			Required: []string{"type", "start_date", "end_date"},
		},
	)
}

func newGenerateReport(b *Backend) *Descriptor {
	return MustDescriptor(generateReportDefinition(), func(ctx context.Context, id identity.Identity, p GenerateReportParams) (Result, error) {
		var report map[string]any
		if err := b.Post(ctx, id, "/reports/generate", nil, p, &report); err != nil {
			return Result{}, err
		}
		return Result{
			Data:    report,
			Message: fmt.Sprintf("Here is the %s report from %s to %s:", p.Type, p.StartDate, p.EndDate),
		}, nil
	})
}
