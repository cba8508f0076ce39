package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
)

// ReferenceNow is the clock every fixture in this package is dated against
var ReferenceNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

// ReferenceMonth is the forecast month used by the fixtures
var ReferenceMonth = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

// Scenario bundles populated in-memory repositories
type Scenario struct {
	TimePhased     *memory.TimePhasedRepository
	Exceptions     *memory.ExceptionRepository
	PurchaseOrders *memory.PurchaseOrderRepository
	Forecasts      *memory.ForecastRepository
}

// BuildReferenceScenario builds a small two-location scenario:
// WIDGET at DC1 runs out in week 2 and recovers in week 3, GADGET at DC1
// dips under its reorder point, and WIDGET at DC2 stays healthy.
func BuildReferenceScenario() *Scenario {
	s := &Scenario{
		TimePhased:     memory.NewTimePhasedRepository(9),
		Exceptions:     memory.NewExceptionRepository(),
		PurchaseOrders: memory.NewPurchaseOrderRepository(),
		Forecasts:      memory.NewForecastRepository(),
	}

	s.TimePhased.LoadRecords(TimePhasedRecords())
	s.TimePhased.SetLeadTime("WIDGET", 14)
	s.TimePhased.SetLeadTime("GADGET", 21)
	s.Exceptions.LoadExceptions(Exceptions())
	s.PurchaseOrders.LoadRecommendations(PurchaseOrders())
	s.Forecasts.LoadCells(ForecastCells())

	return s
}

// TimePhasedRecords returns three weeks for each of three items
func TimePhasedRecords() []entities.TimePhasedRecord {
	rows := []struct {
		product   entities.ProductID
		location  entities.LocationID
		projected [3]float64
		demand    float64
		safety    float64
		reorder   float64
	}{
		{"WIDGET", "DC1", [3]float64{50, -10, 5}, 60, 20, 30},
		{"GADGET", "DC1", [3]float64{120, 70, 45}, 40, 20, 60},
		{"WIDGET", "DC2", [3]float64{300, 280, 260}, 20, 50, 100},
	}

	var records []entities.TimePhasedRecord
	for _, row := range rows {
		beginning := row.projected[0] + row.demand
		for i, projected := range row.projected {
			records = append(records, entities.TimePhasedRecord{
				ProductID:            row.product,
				LocationID:           row.location,
				WeekNumber:           i + 1,
				BeginningInventory:   beginning,
				GrossRequirements:    row.demand,
				ScheduledReceipts:    10,
				ProjectedAvailable:   projected,
				PlannedOrderReceipts: 5,
				SafetyStock:          row.safety,
				ReorderPoint:         row.reorder,
			})
			beginning = projected
		}
	}
	return records
}

// Exceptions returns two open exceptions and one resolved one
func Exceptions() []entities.PlanningException {
	return []entities.PlanningException{
		{
			ID:               "EX-LOW",
			ProductID:        "WIDGET",
			LocationID:       "DC2",
			ExceptionType:    entities.ExcessInventory,
			Severity:         entities.SeverityLow,
			ExceptionDate:    ReferenceNow.AddDate(0, 0, -30),
			ExcessQuantity:   160,
			ResolutionStatus: entities.ResolutionOpen,
		},
		{
			ID:               "EX-CRIT",
			ProductID:        "WIDGET",
			LocationID:       "DC1",
			ExceptionType:    entities.Stockout,
			Severity:         entities.SeverityCritical,
			ExceptionDate:    ReferenceNow,
			ShortageQuantity: 10,
			ResolutionStatus: entities.ResolutionOpen,
		},
		{
			ID:               "EX-DONE",
			ProductID:        "GADGET",
			LocationID:       "DC1",
			ExceptionType:    entities.BelowSafetyStock,
			Severity:         entities.SeverityHigh,
			ExceptionDate:    ReferenceNow.AddDate(0, 0, -3),
			ResolutionStatus: entities.ResolutionResolved,
		},
	}
}

// PurchaseOrders returns recommendations spread over the urgency and cost tiers
func PurchaseOrders() []entities.PurchaseOrderRecommendation {
	po := func(id string, days int, qty int64, unitCost string) entities.PurchaseOrderRecommendation {
		cost := decimal.RequireFromString(unitCost)
		return entities.PurchaseOrderRecommendation{
			ID:                   id,
			ProductID:            "WIDGET",
			LocationID:           "DC1",
			RecommendedOrderDate: ReferenceNow.AddDate(0, 0, days),
			ExpectedDeliveryDate: ReferenceNow.AddDate(0, 0, days+14),
			RecommendedQuantity:  float64(qty),
			UnitCost:             cost,
			TotalValue:           cost.Mul(decimal.NewFromInt(qty)),
			ApprovalStatus:       entities.ApprovalPending,
		}
	}

	return []entities.PurchaseOrderRecommendation{
		po("PO-OVERDUE", -2, 1000, "120.50"),
		po("PO-SOON", 1, 100, "12.00"),
		po("PO-WEEK", 5, 500, "100.00"),
		po("PO-LATER", 30, 10, "9.99"),
	}
}

// ForecastCells returns July and August cells for three customers of WIDGET at DC1
func ForecastCells() []entities.CollaborativeForecastCell {
	august := ReferenceMonth.AddDate(0, 1, 0)
	cell := func(customer entities.CustomerID, month time.Time, effective float64) entities.CollaborativeForecastCell {
		return entities.CollaborativeForecastCell{
			ProductID:          "WIDGET",
			CustomerID:         customer,
			LocationID:         "DC1",
			Month:              month,
			LastYear:           effective * 0.9,
			CalculatedForecast: effective,
			Xamview:            effective,
			EffectiveForecast:  effective,
		}
	}

	return []entities.CollaborativeForecastCell{
		cell("ACME", ReferenceMonth, 300),
		cell("BOLT", ReferenceMonth, 100),
		cell("CORE", ReferenceMonth, 600),
		cell("ACME", august, 50),
		cell("BOLT", august, 50),
		cell("CORE", august, 0),
	}
}
