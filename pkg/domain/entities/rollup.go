package entities

import (
	"fmt"
	"iter"
	"strings"
)

// InventoryStatus is the worst-case health of an item across its weeks.
// Values are ordered by severity so a larger value is always worse.
type InventoryStatus int

const (
	StatusOptimal InventoryStatus = iota
	StatusWarning
	StatusCritical
	StatusStockout
)

// String method for InventoryStatus enum
func (s InventoryStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	case StatusStockout:
		return "stockout"
	default:
		return "unknown"
	}
}

// Escalate returns the more severe of s and other
func (s InventoryStatus) Escalate(other InventoryStatus) InventoryStatus {
	if other > s {
		return other
	}
	return s
}

// MarshalText implements encoding.TextMarshaler
func (s InventoryStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *InventoryStatus) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "optimal":
		*s = StatusOptimal
	case "warning":
		*s = StatusWarning
	case "critical":
		*s = StatusCritical
	case "stockout":
		*s = StatusStockout
	default:
		return fmt.Errorf("unknown inventory status: %q", string(text))
	}
	return nil
}

// WeekValue is one point of a rollup's weekly series
type WeekValue struct {
	Week  int     `json:"week"`
	Value float64 `json:"value"`
}

// ItemRollup is the per (product, location) summary derived from time-phased records.
// Rollups are rebuilt from scratch on every recompute and never mutated in place.
type ItemRollup struct {
	ProductID       ProductID       `json:"product_id"`
	LocationID      LocationID      `json:"location_id"`
	CurrentStock    float64         `json:"current_stock"`
	SafetyStock     float64         `json:"safety_stock"`
	ReorderPoint    float64         `json:"reorder_point"`
	LeadTimeDays    int             `json:"lead_time_days"`
	InventoryStatus InventoryStatus `json:"inventory_status"`
	ViewMode        ViewMode        `json:"view_mode"`
	Weeks           []WeekValue     `json:"weeks"` // ascending by week
}

// Key returns the (product, location) key of the rollup
func (r *ItemRollup) Key() ItemKey {
	return ItemKey{ProductID: r.ProductID, LocationID: r.LocationID}
}

// Values yields (week, value) pairs in ascending week order
func (r *ItemRollup) Values() iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for _, wv := range r.Weeks {
			if !yield(wv.Week, wv.Value) {
				return
			}
		}
	}
}

// Value returns the value for a week, or 0 when the week has no data
func (r *ItemRollup) Value(week int) float64 {
	for _, wv := range r.Weeks {
		if wv.Week == week {
			return wv.Value
		}
	}
	return 0
}
