package repositories

import (
	"context"
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// ForecastRepository provides access to collaborative forecast cells
type ForecastRepository interface {
	// GetCells returns every real customer's cells for a product at a location
	GetCells(ctx context.Context, productID entities.ProductID, locationID entities.LocationID) ([]entities.CollaborativeForecastCell, error)

	// GetMonthForecasts returns effective forecasts per customer for one month
	GetMonthForecasts(
		ctx context.Context,
		productID entities.ProductID,
		locationID entities.LocationID,
		month time.Time,
	) (map[entities.CustomerID]float64, error)

	// UpsertCorrection writes the KAM forecast correction of a single cell
	UpsertCorrection(ctx context.Context, key entities.ForecastKey, value float64) error
}
