package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// TimePhasedRepository reads MRP buckets and lead times from the database
type TimePhasedRepository struct {
	db *gorm.DB
}

func NewTimePhasedRepository(db *gorm.DB) *TimePhasedRepository {
	return &TimePhasedRepository{db: db}
}

var _ repositories.TimePhasedRepository = (*TimePhasedRepository)(nil)

// GetTimePhasedRecords returns records in insertion order
func (r *TimePhasedRepository) GetTimePhasedRecords(ctx context.Context) ([]entities.TimePhasedRecord, error) {
	var models []TimePhasedModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]entities.TimePhasedRecord, len(models))
	for i, m := range models {
		records[i] = m.toEntity()
	}
	return records, nil
}

func (r *TimePhasedRepository) GetLeadTimes(ctx context.Context) (map[entities.ProductID]int, error) {
	var models []LeadTimeModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}

	leadTimes := make(map[entities.ProductID]int, len(models))
	for _, m := range models {
		leadTimes[entities.ProductID(m.ProductID)] = m.LeadTimeDays
	}
	return leadTimes, nil
}

// ReplaceRecords swaps the whole time-phased plan in one transaction
func (r *TimePhasedRepository) ReplaceRecords(ctx context.Context, records []entities.TimePhasedRecord) error {
	models := make([]TimePhasedModel, len(records))
	for i, rec := range records {
		models[i] = timePhasedFromEntity(rec)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TimePhasedModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear time-phased records: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		return tx.CreateInBatches(models, 500).Error
	})
}

// SaveLeadTimes upserts lead times by product
func (r *TimePhasedRepository) SaveLeadTimes(ctx context.Context, leadTimes map[entities.ProductID]int) error {
	if len(leadTimes) == 0 {
		return nil
	}
	models := make([]LeadTimeModel, 0, len(leadTimes))
	for product, days := range leadTimes {
		models = append(models, LeadTimeModel{ProductID: string(product), LeadTimeDays: days})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"lead_time_days"}),
	}).Create(&models).Error
}

// ExceptionRepository stores planning exceptions
type ExceptionRepository struct {
	db *gorm.DB
}

func NewExceptionRepository(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

var _ repositories.ExceptionRepository = (*ExceptionRepository)(nil)

func (r *ExceptionRepository) GetExceptions(ctx context.Context) ([]entities.PlanningException, error) {
	var models []ExceptionModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	exceptions := make([]entities.PlanningException, len(models))
	for i, m := range models {
		exceptions[i] = m.toEntity()
	}
	return exceptions, nil
}

func (r *ExceptionRepository) UpdateResolutionStatus(
	ctx context.Context,
	id string,
	status entities.ResolutionStatus,
) error {
	result := r.db.WithContext(ctx).
		Model(&ExceptionModel{}).
		Where("id = ?", id).
		Update("resolution_status", status.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("exception %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// SaveExceptions upserts exceptions by id. Existing rows keep their
// resolution status.
func (r *ExceptionRepository) SaveExceptions(ctx context.Context, exceptions []entities.PlanningException) error {
	if len(exceptions) == 0 {
		return nil
	}
	models := make([]ExceptionModel, len(exceptions))
	now := time.Now().UTC()
	for i, e := range exceptions {
		models[i] = exceptionFromEntity(e)
		// preserve input order for GetExceptions
		models[i].CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(exceptionImportColumns),
	}).Create(&models).Error
}

// exceptionImportColumns are refreshed on re-import; resolution_status is
// owned by planners and is only written by UpdateResolutionStatus.
var exceptionImportColumns = []string{
	"product_id", "location_id", "exception_type", "severity", "exception_date",
	"current_inventory", "projected_inventory", "safety_stock", "shortage_quantity",
	"excess_quantity", "updated_at",
}

// PurchaseOrderRepository stores purchase-order recommendations
type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

func (r *PurchaseOrderRepository) GetRecommendations(ctx context.Context) ([]entities.PurchaseOrderRecommendation, error) {
	var models []PurchaseOrderModel
	if err := r.db.WithContext(ctx).Order("recommended_order_date ASC, id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	recs := make([]entities.PurchaseOrderRecommendation, len(models))
	for i, m := range models {
		recs[i] = m.toEntity()
	}
	return recs, nil
}

// SaveRecommendations upserts recommendations by id
func (r *PurchaseOrderRepository) SaveRecommendations(ctx context.Context, recs []entities.PurchaseOrderRecommendation) error {
	if len(recs) == 0 {
		return nil
	}
	models := make([]PurchaseOrderModel, len(recs))
	for i, rec := range recs {
		models[i] = purchaseOrderFromEntity(rec)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&models).Error
}

// ForecastRepository stores collaborative forecast cells keyed by
// (product, customer, location, month)
type ForecastRepository struct {
	db *gorm.DB
}

func NewForecastRepository(db *gorm.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

var _ repositories.ForecastRepository = (*ForecastRepository)(nil)

var forecastKeyColumns = []clause.Column{
	{Name: "product_id"}, {Name: "customer_id"}, {Name: "location_id"}, {Name: "month"},
}

func (r *ForecastRepository) GetCells(
	ctx context.Context,
	productID entities.ProductID,
	locationID entities.LocationID,
) ([]entities.CollaborativeForecastCell, error) {
	var models []ForecastCellModel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ? AND customer_id <> ?", productID, locationID, entities.AllCustomers).
		Order("customer_id ASC, month ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	cells := make([]entities.CollaborativeForecastCell, len(models))
	for i, m := range models {
		cells[i] = m.toEntity()
	}
	return cells, nil
}

func (r *ForecastRepository) GetMonthForecasts(
	ctx context.Context,
	productID entities.ProductID,
	locationID entities.LocationID,
	month time.Time,
) (map[entities.CustomerID]float64, error) {
	var rows []struct {
		CustomerID string
		Total      float64
	}
	err := r.db.WithContext(ctx).
		Model(&ForecastCellModel{}).
		Select("customer_id, SUM(effective_forecast) AS total").
		Where("product_id = ? AND location_id = ? AND month = ? AND customer_id <> ?",
			productID, locationID, monthKey(month), entities.AllCustomers).
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	forecasts := make(map[entities.CustomerID]float64, len(rows))
	for _, row := range rows {
		forecasts[entities.CustomerID(row.CustomerID)] = row.Total
	}
	return forecasts, nil
}

// UpsertCorrection writes the KAM correction of one cell, inserting the cell
// when it does not exist yet
func (r *ForecastRepository) UpsertCorrection(ctx context.Context, key entities.ForecastKey, value float64) error {
	model := ForecastCellModel{
		ProductID:             string(key.ProductID),
		CustomerID:            string(key.CustomerID),
		LocationID:            string(key.LocationID),
		Month:                 monthKey(key.Month),
		KAMForecastCorrection: value,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   forecastKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"kam_forecast_correction", "updated_at"}),
	}).Create(&model).Error
}

// forecastImportColumns are refreshed on re-import; kam_forecast_correction
// is owned by planners and is only written by UpsertCorrection.
var forecastImportColumns = []string{
	"last_year", "forecast_sales_gap", "calculated_forecast", "xamview",
	"sales_manager_view", "effective_forecast", "updated_at",
}

// SaveCells upserts cells, skipping aggregate pseudo rows. Existing rows keep
// their KAM correction.
func (r *ForecastRepository) SaveCells(ctx context.Context, cells []entities.CollaborativeForecastCell) error {
	models := make([]ForecastCellModel, 0, len(cells))
	for _, c := range cells {
		if c.CustomerID == entities.AllCustomers {
			continue
		}
		models = append(models, forecastCellFromEntity(c))
	}
	if len(models) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   forecastKeyColumns,
		DoUpdates: clause.AssignmentColumns(forecastImportColumns),
	}).Create(&models).Error
}
