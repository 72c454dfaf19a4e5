// In file: internal/tools/bookings_tool.go
package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dileep-u-k/jet-concierge/internal/identity"
)

const (
	CreateBooking    = "createBooking"
	GetBookingStatus = "getBookingStatus"
	ListUserBookings = "listUserBookings"
)

type backendBooking struct {
	ID              ID          `json:"id"`
	JetID           ID          `json:"jet_id"`
	Origin          string      `json:"origin"`
	Destination     string      `json:"destination"`
	StartTime       string      `json:"start_time"`
	EndTime         string      `json:"end_time"`
	Passengers      int         `json:"passengers"`
	Status          string      `json:"status"`
	TotalPrice      *Number     `json:"total_price"`
	SpecialRequests string      `json:"special_requests"`
	Jet             *backendJet `json:"jet"`
}

// BookingSummary is the display-friendly booking shape.
type BookingSummary struct {
	ID              string      `json:"id"`
	JetID           string      `json:"jet_id"`
	Origin          string      `json:"origin"`
	Destination     string      `json:"destination"`
	StartTime       string      `json:"start_time"`
	EndTime         string      `json:"end_time"`
	Passengers      int         `json:"passengers"`
	Status          string      `json:"status"`
	TotalPrice      *float64    `json:"total_price,omitempty"`
	SpecialRequests string      `json:"special_requests,omitempty"`
	Jet             *JetSummary `json:"jet,omitempty"`
}

func summarizeBooking(b backendBooking) BookingSummary {
	out := BookingSummary{
		ID:              string(b.ID),
		JetID:           string(b.JetID),
		Origin:          b.Origin,
		Destination:     b.Destination,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Passengers:      b.Passengers,
		Status:          b.Status,
		SpecialRequests: b.SpecialRequests,
	}
	if b.TotalPrice != nil {
		price := float64(*b.TotalPrice)
		out.TotalPrice = &price
	}
	if b.Jet != nil {
		jet := summarizeJet(*b.Jet)
		out.Jet = &jet
	}
	return out
}

// --- createBooking ---

// CreateBookingParams carries only what the user actually said. Nothing is
// defaulted here; the backend decides which missing fields are fatal.
type CreateBookingParams struct {
	JetID           string `json:"jet_id,omitempty"`
	Origin          string `json:"origin,omitempty"`
	Destination     string `json:"destination,omitempty"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	Passengers      *int   `json:"passengers,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

func createBookingDefinition() Tool {
	return NewFunctionTool(
		CreateBooking,
		"Create a new booking for a jet between an origin and a destination.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"jet_id":           {Description: "ID or name of the jet to book."},
				"origin":           {Type: "string", Description: "Departure city or airport."},
				"destination":      {Type: "string", Description: "Arrival city or airport."},
				"start_time":       {Type: "string", Description: "Departure date and time (ISO 8601)."},
				"end_time":         {Type: "string", Description: "Return or end date and time (ISO 8601)."},
				"passengers":       {Type: "integer", Description: "Number of passengers.", Minimum: ptr(1.0)},
				"special_requests": {Type: "string", Description: "Catering, ground transport, or other requests."},
			},
		},
	)
}

func newCreateBooking(b *Backend) *Descriptor {
	return MustDescriptor(createBookingDefinition(), func(ctx context.Context, id identity.Identity, p CreateBookingParams) (Result, error) {
		var booking backendBooking
		if err := b.Post(ctx, id, "/bookings/", nil, p, &booking); err != nil {
			return Result{}, err
		}
		return Result{Data: summarizeBooking(booking), Message: "Your booking request has been created."}, nil
	})
}

// --- getBookingStatus ---

type GetBookingStatusParams struct {
	BookingID string `json:"booking_id"`
}

func (p GetBookingStatusParams) Validate() error {
	if strings.TrimSpace(p.BookingID) == "" {
		return errors.New("booking_id is required")
	}
	return nil
}

func getBookingStatusDefinition() Tool {
	return NewFunctionTool(
		GetBookingStatus,
		"Get the current status and details of one booking by its ID.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"booking_id": {Description: "ID of the booking."},
			},
			Required: []string{"booking_id"},
		},
	)
}

func newGetBookingStatus(b *Backend) *Descriptor {
	return MustDescriptor(getBookingStatusDefinition(), func(ctx context.Context, id identity.Identity, p GetBookingStatusParams) (Result, error) {
		var booking backendBooking
		path := "/bookings/" + url.PathEscape(strings.TrimSpace(p.BookingID))
		if err := b.Get(ctx, id, path, nil, &booking); err != nil {
			var execErr *ExecError
			if errors.As(err, &execErr) && execErr.Code == ExecNotFound {
				execErr.Message = "I couldn't find a booking with that ID."
			}
			return Result{}, err
		}
		summary := summarizeBooking(booking)
		msg := "Here are the booking details:"
		if summary.Status != "" {
			msg = fmt.Sprintf("Booking %s is %s.", summary.ID, summary.Status)
		}
		return Result{Data: summary, Message: msg}, nil
	})
}

// --- listUserBookings ---

// ListUserBookingsParams is intentionally empty. The user is always resolved from
// the caller's own token, so any id the model supplies is dropped during decoding.
type ListUserBookingsParams struct{}

func listUserBookingsDefinition() Tool {
	return NewFunctionTool(
		ListUserBookings,
		"List the signed-in user's own bookings and trips. Takes no parameters.",
		JSONSchema{Type: "object"},
	)
}

func newListUserBookings(b *Backend) *Descriptor {
	return MustDescriptor(listUserBookingsDefinition(), func(ctx context.Context, id identity.Identity, _ ListUserBookingsParams) (Result, error) {
		var me struct {
			ID ID `json:"id"`
		}
		if err := b.Get(ctx, id, "/users/me", nil, &me); err != nil {
			return Result{}, err
		}
		if me.ID == "" {
			return Result{}, &ExecError{
				Code:    ExecBadBackendResponse,
				Message: userMessageFor(ExecBadBackendResponse),
				Detail:  "current user has no id",
			}
		}

		var bookings []backendBooking
		query := url.Values{"user_id": {string(me.ID)}, "include": {"jet"}}
		if err := b.Get(ctx, id, "/bookings", query, &bookings); err != nil {
			return Result{}, err
		}

		summaries := make([]BookingSummary, 0, len(bookings))
		for _, bk := range bookings {
			summaries = append(summaries, summarizeBooking(bk))
		}
		if len(summaries) == 0 {
			return Result{Data: summaries, Message: "You have no bookings yet."}, nil
		}
		return Result{Data: summaries, Message: "Here are your bookings:"}, nil
	})
}
