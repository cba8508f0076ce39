package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// ForecastRepository provides in-memory collaborative forecast storage
type ForecastRepository struct {
	mu    sync.RWMutex
	cells []entities.CollaborativeForecastCell
	index map[string]int
}

// NewForecastRepository creates a new in-memory forecast repository
func NewForecastRepository() *ForecastRepository {
	return &ForecastRepository{
		cells: []entities.CollaborativeForecastCell{},
		index: make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.ForecastRepository = (*ForecastRepository)(nil)

// LoadCells stores cells, replacing any cell with the same key.
// Aggregate pseudo rows are derived, so they are never stored.
func (r *ForecastRepository) LoadCells(cells []entities.CollaborativeForecastCell) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cell := range cells {
		if cell.CustomerID == entities.AllCustomers {
			continue
		}
		cell.Month = entities.MonthStart(cell.Month)
		key := cell.Key().String()
		if i, exists := r.index[key]; exists {
			r.cells[i] = cell
			continue
		}
		r.index[key] = len(r.cells)
		r.cells = append(r.cells, cell)
	}
}

// GetCells returns the cells of a product at a location ordered by customer then month
func (r *ForecastRepository) GetCells(
	ctx context.Context,
	productID entities.ProductID,
	locationID entities.LocationID,
) ([]entities.CollaborativeForecastCell, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cells []entities.CollaborativeForecastCell
	for _, cell := range r.cells {
		if cell.ProductID == productID && cell.LocationID == locationID {
			cells = append(cells, cell)
		}
	}
	slices.SortFunc(cells, func(a, b entities.CollaborativeForecastCell) int {
		return cmp.Or(cmp.Compare(a.CustomerID, b.CustomerID), a.Month.Compare(b.Month))
	})
	return cells, nil
}

// GetMonthForecasts returns effective forecasts per customer for one month
func (r *ForecastRepository) GetMonthForecasts(
	ctx context.Context,
	productID entities.ProductID,
	locationID entities.LocationID,
	month time.Time,
) (map[entities.CustomerID]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	month = entities.MonthStart(month)
	forecasts := make(map[entities.CustomerID]float64)
	for _, cell := range r.cells {
		if cell.ProductID == productID && cell.LocationID == locationID && cell.Month.Equal(month) {
			forecasts[cell.CustomerID] += cell.EffectiveForecast
		}
	}
	return forecasts, nil
}

// UpsertCorrection sets the KAM correction of a cell, creating the cell if needed
func (r *ForecastRepository) UpsertCorrection(ctx context.Context, key entities.ForecastKey, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key.Month = entities.MonthStart(key.Month)
	k := key.String()
	if i, exists := r.index[k]; exists {
		r.cells[i].KAMForecastCorrection = value
		return nil
	}

	r.index[k] = len(r.cells)
	r.cells = append(r.cells, entities.CollaborativeForecastCell{
		ProductID:             key.ProductID,
		CustomerID:            key.CustomerID,
		LocationID:            key.LocationID,
		Month:                 key.Month,
		KAMForecastCorrection: value,
	})
	return nil
}

// GetCell returns a single cell by key
func (r *ForecastRepository) GetCell(key entities.ForecastKey) (entities.CollaborativeForecastCell, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key.Month = entities.MonthStart(key.Month)
	i, exists := r.index[key.String()]
	if !exists {
		return entities.CollaborativeForecastCell{}, repositories.ErrNotFound
	}
	return r.cells[i], nil
}
