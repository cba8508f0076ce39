package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// TimePhasedRepository provides in-memory storage of time-phased MRP records
type TimePhasedRepository struct {
	mu        sync.RWMutex
	records   []entities.TimePhasedRecord
	leadTimes map[entities.ProductID]int
}

// NewTimePhasedRepository creates a new in-memory time-phased repository
func NewTimePhasedRepository(expectedRecords int) *TimePhasedRepository {
	return &TimePhasedRepository{
		records:   make([]entities.TimePhasedRecord, 0, expectedRecords),
		leadTimes: make(map[entities.ProductID]int),
	}
}

// Verify interface compliance
var _ repositories.TimePhasedRepository = (*TimePhasedRepository)(nil)

// LoadRecords replaces the stored records with a fresh snapshot
func (r *TimePhasedRepository) LoadRecords(records []entities.TimePhasedRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = slices.Clone(records)
}

// SetLeadTime records the item master lead time of a product
func (r *TimePhasedRepository) SetLeadTime(productID entities.ProductID, days int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leadTimes[productID] = days
}

// GetTimePhasedRecords returns a copy of all stored records
func (r *TimePhasedRepository) GetTimePhasedRecords(ctx context.Context) ([]entities.TimePhasedRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records), nil
}

// GetLeadTimes returns a copy of the lead time table
func (r *TimePhasedRepository) GetLeadTimes(ctx context.Context) (map[entities.ProductID]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.leadTimes), nil
}
