package entities

import (
	"fmt"
	"time"
)

// ForecastKey is the upsert key of a collaborative forecast cell
type ForecastKey struct {
	ProductID  ProductID  `json:"product_id"`
	CustomerID CustomerID `json:"customer_id"`
	LocationID LocationID `json:"location_id"`
	Month      time.Time  `json:"month"` // postdate, first day of month UTC
}

// String returns a stable textual form of the key
func (k ForecastKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.ProductID, k.CustomerID, k.LocationID, k.Month.Format("2006-01"))
}

// CollaborativeForecastCell holds one customer's forecast numbers for a month.
// KAMForecastCorrection is the only planner-editable field.
type CollaborativeForecastCell struct {
	ProductID             ProductID  `json:"product_id"`
	CustomerID            CustomerID `json:"customer_id"`
	LocationID            LocationID `json:"location_id"`
	Month                 time.Time  `json:"month"`
	LastYear              float64    `json:"last_year"`
	ForecastSalesGap      float64    `json:"forecast_sales_gap"`
	CalculatedForecast    float64    `json:"calculated_forecast"`
	Xamview               float64    `json:"xamview"`
	KAMForecastCorrection float64    `json:"kam_forecast_correction"`
	SalesManagerView      float64    `json:"sales_manager_view"`
	EffectiveForecast     float64    `json:"effective_forecast"`
}

// Key returns the upsert key of the cell
func (c CollaborativeForecastCell) Key() ForecastKey {
	return ForecastKey{
		ProductID:  c.ProductID,
		CustomerID: c.CustomerID,
		LocationID: c.LocationID,
		Month:      c.Month,
	}
}

// MonthStart normalizes any time to the first day of its month in UTC
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseMonth accepts "2006-01" or "2006-01-02" and returns the month start
func ParseMonth(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
}
