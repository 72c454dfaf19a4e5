// In file: internal/tools/jets_tool.go
package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dileep-u-k/jet-concierge/internal/identity"
)

const (
	SearchJets     = "searchJets"
	UpdateFleetJet = "updateFleetJet"
)

// --- searchJets ---

type SearchJetsParams struct {
	Category   string   `json:"category,omitempty"`
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	Location   string   `json:"location,omitempty"`
	Passengers *int     `json:"passengers,omitempty"`
	Range      *int     `json:"range,omitempty"`
}

func (p SearchJetsParams) Validate() error {
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return errors.New("min_price cannot exceed max_price")
	}
	return nil
}

// Query encodes only the filters that are present.
func (p SearchJetsParams) Query() url.Values {
	q := url.Values{}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.MinPrice != nil {
		q.Set("min_price", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		q.Set("max_price", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	if p.Location != "" {
		q.Set("location", p.Location)
	}
	if p.Passengers != nil {
		q.Set("passengers", strconv.Itoa(*p.Passengers))
	}
	if p.Range != nil {
		q.Set("range", strconv.Itoa(*p.Range))
	}
	return q
}

// backendJet is the subset of the backend's jet resource the assistant uses.
type backendJet struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Manufacturer  string `json:"manufacturer"`
	MaxSpeedMPH   Number `json:"max_speed_mph"`
	RangeNM       Number `json:"range_nm"`
	MaxPassengers Number `json:"max_passengers"`
	PricePerHour  Number `json:"price_per_hour"`
}

// JetSummary is the display-friendly shape returned to chat callers.
type JetSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Manufacturer string  `json:"manufacturer"`
	SpeedMPH     float64 `json:"speed_mph"`
	RangeNM      float64 `json:"range_nm"`
	Capacity     int     `json:"capacity"`
	PricePerHour float64 `json:"price_per_hour"`
}

func summarizeJet(j backendJet) JetSummary {
	return JetSummary{
		ID:           string(j.ID),
		Name:         j.Name,
		Manufacturer: j.Manufacturer,
		SpeedMPH:     float64(j.MaxSpeedMPH),
		RangeNM:      float64(j.RangeNM),
		Capacity:     int(j.MaxPassengers),
		PricePerHour: float64(j.PricePerHour),
	}
}

func searchJetsDefinition() Tool {
	return NewFunctionTool(
		SearchJets,
		"Search for available jets by category, hourly price range, location, passenger count, or range.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"category":   {Type: "string", Description: "Jet category, e.g. light, midsize, heavy."},
				"min_price":  {Type: "number", Description: "Minimum price per hour in USD.", Minimum: ptr(0.0)},
				"max_price":  {Type: "number", Description: "Maximum price per hour in USD.", Minimum: ptr(0.0)},
				"location":   {Type: "string", Description: "City or airport where the jet is based."},
				"passengers": {Type: "integer", Description: "Minimum number of passenger seats.", Minimum: ptr(1.0)},
				"range":      {Type: "integer", Description: "Minimum range in nautical miles.", Minimum: ptr(0.0)},
			},
		},
	)
}

func newSearchJets(b *Backend) *Descriptor {
	return MustDescriptor(searchJetsDefinition(), func(ctx context.Context, id identity.Identity, p SearchJetsParams) (Result, error) {
		var jets []backendJet
		if err := b.Get(ctx, id, "/jets/search", p.Query(), &jets); err != nil {
			return Result{}, err
		}
		summaries := make([]JetSummary, 0, len(jets))
		for _, j := range jets {
			summaries = append(summaries, summarizeJet(j))
		}
		if len(summaries) == 0 {
			return Result{Data: summaries, Message: "No jets match your search criteria."}, nil
		}
		return Result{
			Data:    summaries,
			Message: fmt.Sprintf("I found %d jet(s) matching your criteria:", len(summaries)),
		}, nil
	})
}

// --- updateFleetJet ---

type UpdateFleetJetParams struct {
	JetID         string   `json:"jet_id"`
	Status        string   `json:"status,omitempty"`
	Location      string   `json:"location,omitempty"`
	PricePerHour  *float64 `json:"price_per_hour,omitempty"`
	MaxPassengers *int     `json:"max_passengers,omitempty"`
}

func (p UpdateFleetJetParams) Validate() error {
	if strings.TrimSpace(p.JetID) == "" {
		return errors.New("jet_id is required")
	}
	if p.Status == "" && p.Location == "" && p.PricePerHour == nil && p.MaxPassengers == nil {
		return errors.New("at least one of status, location, price_per_hour, max_passengers is required")
	}
	return nil
}

func updateFleetJetDefinition() Tool {
	return NewFunctionTool(
		UpdateFleetJet,
		"Update a fleet jet's status, base location, hourly price, or passenger capacity.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"jet_id":         {Description: "ID of the jet to update."},
				"status":         {Type: "string", Description: "New operational status.", Enum: []string{"available", "maintenance", "booked"}},
				"location":       {Type: "string", Description: "New base location."},
				"price_per_hour": {Type: "number", Description: "New price per hour in USD.", Minimum: ptr(0.0)},
				"max_passengers": {Type: "integer", Description: "New passenger capacity.", Minimum: ptr(1.0)},
			},
			Required: []string{"jet_id"},
			// jet_id plus at least one field to change.
			MinProperties: ptr(2),
		},
	)
}

func newUpdateFleetJet(b *Backend) *Descriptor {
	return MustDescriptor(updateFleetJetDefinition(), func(ctx context.Context, id identity.Identity, p UpdateFleetJetParams) (Result, error) {
		update := struct {
			Status        string   `json:"status,omitempty"`
			Location      string   `json:"location,omitempty"`
			PricePerHour  *float64 `json:"price_per_hour,omitempty"`
			MaxPassengers *int     `json:"max_passengers,omitempty"`
		}{p.Status, p.Location, p.PricePerHour, p.MaxPassengers}

		var jet backendJet
		path := "/admin/jets/" + url.PathEscape(p.JetID)
		if err := b.Put(ctx, id, path, update, &jet); err != nil {
			var execErr *ExecError
			if errors.As(err, &execErr) && execErr.Code == ExecNotFound {
				execErr.Message = "I couldn't find a jet with that ID."
			}
			return Result{}, err
		}
		return Result{Data: summarizeJet(jet), Message: "The jet has been updated."}, nil
	})
}
