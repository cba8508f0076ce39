package services

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// FairShareResult is the outcome of spreading an aggregate override across customers
type FairShareResult struct {
	Month  time.Time `json:"month"`
	Target float64   `json:"target"`
	Total  float64   `json:"total"`
	// Shares are the exact proportional shares before rounding
	Shares map[entities.CustomerID]float64 `json:"shares"`
	// Values are the ceiled shares to be written back per customer
	Values map[entities.CustomerID]int64 `json:"values"`
}

// CustomerOrder returns the customers of the result sorted by ID
func (r FairShareResult) CustomerOrder() []entities.CustomerID {
	customers := make([]entities.CustomerID, 0, len(r.Values))
	for customer := range r.Values {
		customers = append(customers, customer)
	}
	slices.SortFunc(customers, func(a, b entities.CustomerID) int {
		return cmp.Compare(a, b)
	})
	return customers
}

// AllocatedTotal returns the sum of the rounded per-customer values
func (r FairShareResult) AllocatedTotal() int64 {
	var sum int64
	for _, v := range r.Values {
		sum += v
	}
	return sum
}

// RedistributeFairShare spreads newValue across customers in proportion to their
// current effective forecast for the month. Each share is rounded up, so the
// allocated total is never below newValue. When the current total is not
// positive every customer receives 0; there is no equal-split fallback.
// NaN and infinite inputs read as 0.
func RedistributeFairShare(
	month time.Time,
	newValue float64,
	forecasts map[entities.CustomerID]float64,
) FairShareResult {
	newValue = finiteOrZero(newValue)
	result := FairShareResult{
		Month:  month,
		Target: newValue,
		Shares: make(map[entities.CustomerID]float64, len(forecasts)),
		Values: make(map[entities.CustomerID]int64, len(forecasts)),
	}

	total := decimal.Zero
	for _, forecast := range forecasts {
		total = total.Add(decimal.NewFromFloat(finiteOrZero(forecast)))
	}
	result.Total = total.InexactFloat64()

	target := decimal.NewFromFloat(newValue)
	for customer, forecast := range forecasts {
		share := decimal.Zero
		if total.IsPositive() {
			// multiply before dividing so whole-number proportions stay exact
			share = decimal.NewFromFloat(finiteOrZero(forecast)).Mul(target).Div(total)
		}
		result.Shares[customer] = share.InexactFloat64()
		result.Values[customer] = share.Ceil().IntPart()
	}

	return result
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrZero(v float64) float64 {
	if !IsFinite(v) {
		return 0
	}
	return v
}

// AggregateForecastCells builds the "all customers" pseudo row for every
// (product, location, month) present in cells by summing the real customers.
// Existing pseudo rows in the input are ignored. Output is sorted by
// product, location, then month.
func AggregateForecastCells(cells []entities.CollaborativeForecastCell) []entities.CollaborativeForecastCell {
	type aggKey struct {
		product  entities.ProductID
		location entities.LocationID
		month    int64
	}

	sums := make(map[aggKey]*entities.CollaborativeForecastCell)
	for _, cell := range cells {
		if cell.CustomerID == entities.AllCustomers {
			continue
		}
		month := entities.MonthStart(cell.Month)
		key := aggKey{cell.ProductID, cell.LocationID, month.Unix()}
		agg, exists := sums[key]
		if !exists {
			agg = &entities.CollaborativeForecastCell{
				ProductID:  cell.ProductID,
				CustomerID: entities.AllCustomers,
				LocationID: cell.LocationID,
				Month:      month,
			}
			sums[key] = agg
		}
		agg.LastYear += cell.LastYear
		agg.ForecastSalesGap += cell.ForecastSalesGap
		agg.CalculatedForecast += cell.CalculatedForecast
		agg.Xamview += cell.Xamview
		agg.KAMForecastCorrection += cell.KAMForecastCorrection
		agg.SalesManagerView += cell.SalesManagerView
		agg.EffectiveForecast += cell.EffectiveForecast
	}

	aggregated := make([]entities.CollaborativeForecastCell, 0, len(sums))
	for _, agg := range sums {
		aggregated = append(aggregated, *agg)
	}
	slices.SortFunc(aggregated, func(a, b entities.CollaborativeForecastCell) int {
		return cmp.Or(
			cmp.Compare(a.ProductID, b.ProductID),
			cmp.Compare(a.LocationID, b.LocationID),
			a.Month.Compare(b.Month),
		)
	})
	return aggregated
}
