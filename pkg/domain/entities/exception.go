package entities

import (
	"fmt"
	"strings"
	"time"
)

// ExceptionType classifies a planning exception
type ExceptionType int

// Declared lowest weight first so the zero value is the fallback bucket.
const (
	ExcessInventory ExceptionType = iota
	ForecastDeviation
	BelowSafetyStock
	OrderUrgency
	Stockout
)

// String method for ExceptionType enum
func (t ExceptionType) String() string {
	switch t {
	case Stockout:
		return "stockout"
	case BelowSafetyStock:
		return "below_safety_stock"
	case OrderUrgency:
		return "order_urgency"
	case ForecastDeviation:
		return "forecast_deviation"
	case ExcessInventory:
		return "excess_inventory"
	default:
		return "unknown"
	}
}

// ParseExceptionType never fails: unrecognized tags fall into excess_inventory,
// the lowest-weight bucket, so one bad row cannot break the ranking.
func ParseExceptionType(s string) ExceptionType {
	switch normalizeTag(s) {
	case "stockout":
		return Stockout
	case "below_safety_stock":
		return BelowSafetyStock
	case "order_urgency":
		return OrderUrgency
	case "forecast_deviation":
		return ForecastDeviation
	default:
		return ExcessInventory
	}
}

// MarshalText implements encoding.TextMarshaler
func (t ExceptionType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *ExceptionType) UnmarshalText(text []byte) error {
	*t = ParseExceptionType(string(text))
	return nil
}

// Severity of a planning exception
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String method for Severity enum
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "unknown"
	}
}

// ParseSeverity never fails: unrecognized tags are treated as low
func ParseSeverity(s string) Severity {
	switch normalizeTag(s) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}

// ResolutionStatus tracks the externally driven lifecycle of an exception
type ResolutionStatus int

const (
	ResolutionOpen ResolutionStatus = iota
	ResolutionInProgress
	ResolutionResolved
	ResolutionIgnored
)

// String method for ResolutionStatus enum
func (r ResolutionStatus) String() string {
	switch r {
	case ResolutionOpen:
		return "open"
	case ResolutionInProgress:
		return "in_progress"
	case ResolutionResolved:
		return "resolved"
	case ResolutionIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// IsClosed reports whether the exception no longer needs planner attention
func (r ResolutionStatus) IsClosed() bool {
	return r == ResolutionResolved || r == ResolutionIgnored
}

// ParseResolutionStatus maps unknown tags to open
func ParseResolutionStatus(s string) ResolutionStatus {
	switch normalizeTag(s) {
	case "in_progress":
		return ResolutionInProgress
	case "resolved":
		return ResolutionResolved
	case "ignored":
		return ResolutionIgnored
	default:
		return ResolutionOpen
	}
}

// ParseResolutionStatusStrict parses a status a planner is writing and
// rejects unknown tags instead of reopening the exception
func ParseResolutionStatusStrict(s string) (ResolutionStatus, error) {
	switch normalizeTag(s) {
	case "open":
		return ResolutionOpen, nil
	case "in_progress":
		return ResolutionInProgress, nil
	case "resolved":
		return ResolutionResolved, nil
	case "ignored":
		return ResolutionIgnored, nil
	default:
		return ResolutionOpen, fmt.Errorf("unknown resolution status: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (r ResolutionStatus) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *ResolutionStatus) UnmarshalText(text []byte) error {
	*r = ParseResolutionStatus(string(text))
	return nil
}

// PlanningException is one detected planning anomaly.
// AgeDays and PriorityScore are derived at read time and never persisted.
type PlanningException struct {
	ID                 string           `json:"id"`
	ProductID          ProductID        `json:"product_id"`
	LocationID         LocationID       `json:"location_id"`
	ExceptionType      ExceptionType    `json:"exception_type"`
	Severity           Severity         `json:"severity"`
	ExceptionDate      time.Time        `json:"exception_date"`
	CurrentInventory   float64          `json:"current_inventory"`
	ProjectedInventory float64          `json:"projected_inventory"`
	SafetyStock        float64          `json:"safety_stock"`
	ShortageQuantity   float64          `json:"shortage_quantity"`
	ExcessQuantity     float64          `json:"excess_quantity"`
	ResolutionStatus   ResolutionStatus `json:"resolution_status"`

	AgeDays       int `json:"age_days"`
	PriorityScore int `json:"priority_score"`
}

func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
