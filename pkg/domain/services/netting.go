package services

import (
	"cmp"
	"slices"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// RollupOptions controls how time-phased records are rolled up
type RollupOptions struct {
	Mode entities.ViewMode
	// Horizon limits the weekly series to weeks 1..Horizon (0 = no limit).
	// Inventory status is always evaluated over the whole group.
	Horizon int
	// LeadTimes supplies item master lead times; missing products get 0
	LeadTimes map[entities.ProductID]int
}

// BuildRollups groups time-phased records into one rollup per (product, location).
// Output order follows the first appearance of each pair in records.
func BuildRollups(records []entities.TimePhasedRecord, opts RollupOptions) []entities.ItemRollup {
	groups := make(map[entities.ItemKey][]entities.TimePhasedRecord)
	var order []entities.ItemKey

	for _, record := range records {
		key := record.Key()
		if _, exists := groups[key]; !exists {
			order = append(order, key)
		}
		groups[key] = append(groups[key], record)
	}

	rollups := make([]entities.ItemRollup, 0, len(order))
	for _, key := range order {
		rollups = append(rollups, buildRollup(key, groups[key], opts))
	}
	return rollups
}

// buildRollup derives a single rollup from one group's records
func buildRollup(key entities.ItemKey, group []entities.TimePhasedRecord, opts RollupOptions) entities.ItemRollup {
	rollup := entities.ItemRollup{
		ProductID:       key.ProductID,
		LocationID:      key.LocationID,
		LeadTimeDays:    opts.LeadTimes[key.ProductID],
		InventoryStatus: entities.StatusOptimal,
		ViewMode:        opts.Mode,
		Weeks:           []entities.WeekValue{},
	}
	if len(group) == 0 {
		return rollup
	}

	weeks := sortByWeek(group)

	first := weeks[0]
	rollup.SafetyStock = first.SafetyStock
	rollup.ReorderPoint = first.ReorderPoint
	for _, week := range weeks {
		if week.WeekNumber == 1 {
			rollup.CurrentStock = week.BeginningInventory
			break
		}
	}

	rollup.InventoryStatus = classifySorted(weeks)

	// Duplicate week rows: the last one in input order wins.
	values := make(map[int]float64, len(weeks))
	for _, record := range group {
		if opts.Horizon > 0 && (record.WeekNumber < 1 || record.WeekNumber > opts.Horizon) {
			continue
		}
		values[record.WeekNumber] = opts.Mode.Extract(record)
	}
	for week, value := range values {
		rollup.Weeks = append(rollup.Weeks, entities.WeekValue{Week: week, Value: value})
	}
	slices.SortFunc(rollup.Weeks, func(a, b entities.WeekValue) int {
		return cmp.Compare(a.Week, b.Week)
	})

	return rollup
}

// ClassifyInventoryStatus returns the worst-case inventory health of a group.
// Weeks are scanned in ascending order regardless of input order.
func ClassifyInventoryStatus(group []entities.TimePhasedRecord) entities.InventoryStatus {
	return classifySorted(sortByWeek(group))
}

// classifySorted scans weeks in order; severity only ever escalates
func classifySorted(weeks []entities.TimePhasedRecord) entities.InventoryStatus {
	status := entities.StatusOptimal
	for _, week := range weeks {
		status = status.Escalate(weekStatus(week))
	}
	return status
}

// weekStatus classifies a single week in isolation
func weekStatus(r entities.TimePhasedRecord) entities.InventoryStatus {
	switch {
	case r.ProjectedAvailable <= 0:
		return entities.StatusStockout
	case r.ProjectedAvailable < r.SafetyStock:
		return entities.StatusCritical
	case r.ProjectedAvailable < r.ReorderPoint:
		return entities.StatusWarning
	default:
		return entities.StatusOptimal
	}
}

// sortByWeek returns a stable, week-ascending copy of the group
func sortByWeek(group []entities.TimePhasedRecord) []entities.TimePhasedRecord {
	weeks := slices.Clone(group)
	slices.SortStableFunc(weeks, func(a, b entities.TimePhasedRecord) int {
		return cmp.Compare(a.WeekNumber, b.WeekNumber)
	})
	return weeks
}
