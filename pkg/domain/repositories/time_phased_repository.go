package repositories

import (
	"context"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// TimePhasedRepository provides access to exploded MRP records
type TimePhasedRepository interface {
	GetTimePhasedRecords(ctx context.Context) ([]entities.TimePhasedRecord, error)
	// GetLeadTimes returns item master lead times in days keyed by product
	GetLeadTimes(ctx context.Context) (map[entities.ProductID]int, error)
}
