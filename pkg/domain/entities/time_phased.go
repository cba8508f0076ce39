package entities

import (
	"fmt"
	"strings"
)

// TimePhasedRecord is one MRP bucket for a (product, location, week).
// Records are produced by the upstream explosion and are read only here.
type TimePhasedRecord struct {
	ProductID            ProductID  `json:"product_id"`
	LocationID           LocationID `json:"location_id"`
	WeekNumber           int        `json:"week_number"`
	BeginningInventory   float64    `json:"beginning_inventory"`
	GrossRequirements    float64    `json:"gross_requirements"`
	ScheduledReceipts    float64    `json:"scheduled_receipts"`
	ProjectedAvailable   float64    `json:"projected_available"` // may be negative
	NetRequirements      float64    `json:"net_requirements"`
	PlannedOrderReceipts float64    `json:"planned_order_receipts"`
	PlannedOrderReleases float64    `json:"planned_order_releases"`
	SafetyStock          float64    `json:"safety_stock"`
	ReorderPoint         float64    `json:"reorder_point"`
}

// Key returns the (product, location) grouping key of the record
func (r TimePhasedRecord) Key() ItemKey {
	return ItemKey{ProductID: r.ProductID, LocationID: r.LocationID}
}

// ViewMode selects which per-week metric a rollup carries
type ViewMode int

const (
	ViewDemand ViewMode = iota
	ViewSupply
	ViewInventory
	ViewOrders
)

// String method for ViewMode enum
func (m ViewMode) String() string {
	switch m {
	case ViewDemand:
		return "demand"
	case ViewSupply:
		return "supply"
	case ViewInventory:
		return "inventory"
	case ViewOrders:
		return "orders"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (m ViewMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *ViewMode) UnmarshalText(text []byte) error {
	parsed, err := ParseViewMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseViewMode parses a view mode name. Unlike ranking tags, an unknown view
// mode is rejected because it selects behavior rather than a weight.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "demand":
		return ViewDemand, nil
	case "supply":
		return ViewSupply, nil
	case "inventory":
		return ViewInventory, nil
	case "orders":
		return ViewOrders, nil
	default:
		return ViewDemand, fmt.Errorf("unknown view mode: %q", s)
	}
}

// Extract returns the value the view mode displays for a record
func (m ViewMode) Extract(r TimePhasedRecord) float64 {
	switch m {
	case ViewDemand:
		return r.GrossRequirements
	case ViewSupply:
		return r.ScheduledReceipts + r.PlannedOrderReceipts
	case ViewInventory:
		return r.ProjectedAvailable
	case ViewOrders:
		return r.PlannedOrderReceipts
	default:
		return 0
	}
}
