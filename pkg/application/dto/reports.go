package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/services"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
)

// RollupReport contains the per-item rollups of one view
type RollupReport struct {
	Mode         entities.ViewMode                `json:"mode"`
	Horizon      int                              `json:"horizon"`
	Rollups      []entities.ItemRollup            `json:"rollups"`
	StatusCounts map[entities.InventoryStatus]int `json:"status_counts"`
}

// NewRollupReport tallies inventory health across rollups
func NewRollupReport(mode entities.ViewMode, horizon int, rollups []entities.ItemRollup) *RollupReport {
	report := &RollupReport{
		Mode:         mode,
		Horizon:      horizon,
		Rollups:      rollups,
		StatusCounts: make(map[entities.InventoryStatus]int),
	}
	for _, r := range rollups {
		report.StatusCounts[r.InventoryStatus]++
	}
	return report
}

// ExceptionReport contains exceptions ranked by priority score
type ExceptionReport struct {
	AsOf             time.Time                    `json:"as_of"`
	Exceptions       []entities.PlanningException `json:"exceptions"`
	SeverityCounts   map[entities.Severity]int    `json:"severity_counts"`
	IncludesResolved bool                         `json:"includes_resolved"`
}

// NewExceptionReport tallies severities across ranked exceptions
func NewExceptionReport(asOf time.Time, ranked []entities.PlanningException, includesResolved bool) *ExceptionReport {
	report := &ExceptionReport{
		AsOf:             asOf,
		Exceptions:       ranked,
		SeverityCounts:   make(map[entities.Severity]int),
		IncludesResolved: includesResolved,
	}
	for _, e := range ranked {
		report.SeverityCounts[e.Severity]++
	}
	return report
}

// PurchaseOrderReport contains classified recommendations with totals
type PurchaseOrderReport struct {
	AsOf           time.Time                                 `json:"as_of"`
	Policy         string                                    `json:"policy"`
	Orders         []services.ClassifiedPurchaseOrder        `json:"orders"`
	UrgencyCounts  map[entities.UrgencyLevel]int             `json:"urgency_counts"`
	CostCounts     map[entities.CostCategory]int             `json:"cost_counts"`
	ValueByUrgency map[entities.UrgencyLevel]decimal.Decimal `json:"value_by_urgency"`
	TotalValue     decimal.Decimal                           `json:"total_value"`
}

// NewPurchaseOrderReport tallies counts and values per bucket
func NewPurchaseOrderReport(
	asOf time.Time,
	policy services.UrgencyPolicy,
	orders []services.ClassifiedPurchaseOrder,
) *PurchaseOrderReport {
	report := &PurchaseOrderReport{
		AsOf:           asOf,
		Policy:         policy.String(),
		Orders:         orders,
		UrgencyCounts:  make(map[entities.UrgencyLevel]int),
		CostCounts:     make(map[entities.CostCategory]int),
		ValueByUrgency: make(map[entities.UrgencyLevel]decimal.Decimal),
		TotalValue:     decimal.Zero,
	}
	for _, o := range orders {
		report.UrgencyCounts[o.UrgencyLevel]++
		report.CostCounts[o.CostCategory]++
		report.ValueByUrgency[o.UrgencyLevel] = report.ValueByUrgency[o.UrgencyLevel].Add(o.TotalValue)
		report.TotalValue = report.TotalValue.Add(o.TotalValue)
	}
	return report
}

// ForecastGrid is the collaborative forecast of one product at one location
type ForecastGrid struct {
	ProductID  entities.ProductID                   `json:"product_id"`
	LocationID entities.LocationID                  `json:"location_id"`
	Cells      []entities.CollaborativeForecastCell `json:"cells"`
	Aggregates []entities.CollaborativeForecastCell `json:"aggregates"`
}

// RedistributionResult describes a completed fair-share write-back
type RedistributionResult struct {
	ProductID  entities.ProductID       `json:"product_id"`
	LocationID entities.LocationID      `json:"location_id"`
	Allocation services.FairShareResult `json:"allocation"`
	Applied    []entities.CustomerID    `json:"applied"`
}

// EventLog is a page of the planning event log. Next is the position to
// resume reading from.
type EventLog struct {
	From   int            `json:"from"`
	Next   int            `json:"next"`
	Events []events.Event `json:"events"`
}
