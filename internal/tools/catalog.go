// In file: internal/tools/catalog.go
package tools

import "fmt"

// Role names used to pick an agent's subset of the catalog.
const (
	RoleConcierge = "concierge"
	RoleAdmin     = "admin"
	RoleReporting = "reporting"
)

// RoleTools lists, in prompt order, the tools each role may use.
var RoleTools = map[string][]string{
	RoleConcierge: {SearchJets, CreateBooking, GetBookingStatus, ListUserBookings},
	RoleAdmin:     {UpdateFleetJet, ManageMembership, SendNotification, GenerateReport},
	RoleReporting: {GenerateReport},
}

// NewCatalog registers every backend tool against one shared Backend client.
func NewCatalog(b *Backend) (*Registry, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	registry := NewRegistry()
	for _, d := range []*Descriptor{
		newSearchJets(b),
		newCreateBooking(b),
		newGetBookingStatus(b),
		newListUserBookings(b),
		newUpdateFleetJet(b),
		newManageMembership(b),
		newGenerateReport(b),
		newSendNotification(b),
	} {
		if err := registry.Register(d); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
