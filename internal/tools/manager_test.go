package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/dileep-u-k/jet-concierge/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookupReturnsSameDescriptor(t *testing.T) {
	stub := newStubBackend(t)
	registry, err := NewCatalog(stub.backend(t))
	require.NoError(t, err)
	require.Equal(t, 8, registry.ToolCount())

	for _, def := range registry.Definitions() {
		name := def.Function.Name
		first, ok := registry.Lookup(name)
		require.True(t, ok, name)
		second, ok := registry.Lookup(name)
		require.True(t, ok, name)
		assert.Same(t, first, second, name)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	stub := newStubBackend(t)
	b := stub.backend(t)
	registry := NewRegistry()
	require.NoError(t, registry.Register(newSearchJets(b)))

	err := registry.Register(newSearchJets(b))
	assert.True(t, errors.Is(err, ErrDuplicateTool))
	assert.Equal(t, 1, registry.ToolCount())
}

func TestSubsetSharesDescriptorsAndHidesOthers(t *testing.T) {
	stub := newStubBackend(t)
	registry, err := NewCatalog(stub.backend(t))
	require.NoError(t, err)

	concierge, err := registry.Subset(RoleTools[RoleConcierge]...)
	require.NoError(t, err)
	assert.Equal(t, []string{SearchJets, CreateBooking, GetBookingStatus, ListUserBookings}, concierge.Names())

	fromSubset, ok := concierge.Lookup(SearchJets)
	require.True(t, ok)
	fromRegistry, _ := registry.Lookup(SearchJets)
	assert.Same(t, fromRegistry, fromSubset)

	_, ok = concierge.Lookup(UpdateFleetJet)
	assert.False(t, ok, "admin tools must not resolve through the concierge subset")

	_, err = registry.Subset("bookHelicopter")
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestExecuteWithoutIdentityPanicsBeforeBackendCall(t *testing.T) {
	stub := newStubBackend(t)
	d := newSearchJets(stub.backend(t))

	assert.PanicsWithError(t, "tool invoked without an identity token: searchJets", func() {
		_, _ = d.Execute(context.Background(), identity.Identity{}, map[string]any{})
	})
	assert.Empty(t, stub.Calls())
}

func TestExecuteRejectsInvalidParams(t *testing.T) {
	stub := newStubBackend(t)
	registry, err := NewCatalog(stub.backend(t))
	require.NoError(t, err)
	id := identity.Identity{Token: "T1"}

	tests := []struct {
		name   string
		tool   string
		params map[string]any
	}{
		{name: "wrong type", tool: SearchJets, params: map[string]any{"passengers": "four"}},
		{name: "below minimum", tool: SearchJets, params: map[string]any{"passengers": float64(0)}},
		{name: "inverted price range", tool: SearchJets, params: map[string]any{"min_price": float64(9000), "max_price": float64(1000)}},
		{name: "missing required", tool: GetBookingStatus, params: map[string]any{}},
		{name: "blank required", tool: GetBookingStatus, params: map[string]any{"booking_id": "  "}},
		{name: "enum violation", tool: UpdateFleetJet, params: map[string]any{"jet_id": "j1", "status": "flying"}},
		{name: "nothing to update", tool: UpdateFleetJet, params: map[string]any{"jet_id": "j1"}},
		{name: "object where id expected", tool: GetBookingStatus, params: map[string]any{"booking_id": map[string]any{"x": 1.0}}},
		{name: "bad report date", tool: GenerateReport, params: map[string]any{"type": "revenue", "start_date": "last monday", "end_date": "2025-01-31"}},
		{name: "inverted report range", tool: GenerateReport, params: map[string]any{"type": "revenue", "start_date": "2025-02-01", "end_date": "2025-01-01"}},
		{name: "missing notification content", tool: SendNotification, params: map[string]any{"recipient": "u1", "type": "system", "subject": "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := registry.Lookup(tt.tool)
			require.True(t, ok)
			_, err := d.Execute(context.Background(), id, tt.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParams), err.Error())
		})
	}
	assert.Empty(t, stub.Calls(), "invalid params must never reach the backend")
}

func TestParamNamesOrder(t *testing.T) {
	names := updateFleetJetDefinition().Function.Parameters.ParamNames()
	assert.Equal(t, []string{"jet_id", "location", "max_passengers", "price_per_hour", "status"}, names)
}
