package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const monthLayout = "2006-01"

// TimePhasedModel is one row of the time_phased_records table
type TimePhasedModel struct {
	ID                   uint    `gorm:"primaryKey"`
	ProductID            string  `gorm:"size:64;not null;index:idx_time_phased_item"`
	LocationID           string  `gorm:"size:64;not null;index:idx_time_phased_item"`
	WeekNumber           int     `gorm:"not null"`
	BeginningInventory   float64 `gorm:"not null;default:0"`
	GrossRequirements    float64 `gorm:"not null;default:0"`
	ScheduledReceipts    float64 `gorm:"not null;default:0"`
	ProjectedAvailable   float64 `gorm:"not null;default:0"`
	NetRequirements      float64 `gorm:"not null;default:0"`
	PlannedOrderReceipts float64 `gorm:"not null;default:0"`
	PlannedOrderReleases float64 `gorm:"not null;default:0"`
	SafetyStock          float64 `gorm:"not null;default:0"`
	ReorderPoint         float64 `gorm:"not null;default:0"`
}

func (TimePhasedModel) TableName() string { return "time_phased_records" }

func (m TimePhasedModel) toEntity() entities.TimePhasedRecord {
	return entities.TimePhasedRecord{
		ProductID:            entities.ProductID(m.ProductID),
		LocationID:           entities.LocationID(m.LocationID),
		WeekNumber:           m.WeekNumber,
		BeginningInventory:   m.BeginningInventory,
		GrossRequirements:    m.GrossRequirements,
		ScheduledReceipts:    m.ScheduledReceipts,
		ProjectedAvailable:   m.ProjectedAvailable,
		NetRequirements:      m.NetRequirements,
		PlannedOrderReceipts: m.PlannedOrderReceipts,
		PlannedOrderReleases: m.PlannedOrderReleases,
		SafetyStock:          m.SafetyStock,
		ReorderPoint:         m.ReorderPoint,
	}
}

func timePhasedFromEntity(r entities.TimePhasedRecord) TimePhasedModel {
	return TimePhasedModel{
		ProductID:            string(r.ProductID),
		LocationID:           string(r.LocationID),
		WeekNumber:           r.WeekNumber,
		BeginningInventory:   r.BeginningInventory,
		GrossRequirements:    r.GrossRequirements,
		ScheduledReceipts:    r.ScheduledReceipts,
		ProjectedAvailable:   r.ProjectedAvailable,
		NetRequirements:      r.NetRequirements,
		PlannedOrderReceipts: r.PlannedOrderReceipts,
		PlannedOrderReleases: r.PlannedOrderReleases,
		SafetyStock:          r.SafetyStock,
		ReorderPoint:         r.ReorderPoint,
	}
}

// LeadTimeModel holds the purchasing lead time of a product
type LeadTimeModel struct {
	ProductID    string `gorm:"primaryKey;size:64"`
	LeadTimeDays int    `gorm:"not null;default:0"`
}

func (LeadTimeModel) TableName() string { return "product_lead_times" }

// ExceptionModel is one row of the planning_exceptions table
type ExceptionModel struct {
	ID                 string    `gorm:"primaryKey;size:64"`
	ProductID          string    `gorm:"size:64;not null;index"`
	LocationID         string    `gorm:"size:64;not null"`
	ExceptionType      string    `gorm:"size:32;not null"`
	Severity           string    `gorm:"size:16;not null"`
	ExceptionDate      time.Time `gorm:"not null"`
	CurrentInventory   float64
	ProjectedInventory float64
	SafetyStock        float64
	ShortageQuantity   float64
	ExcessQuantity     float64
	ResolutionStatus   string `gorm:"size:16;not null;default:open;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (ExceptionModel) TableName() string { return "planning_exceptions" }

func (m ExceptionModel) toEntity() entities.PlanningException {
	return entities.PlanningException{
		ID:                 m.ID,
		ProductID:          entities.ProductID(m.ProductID),
		LocationID:         entities.LocationID(m.LocationID),
		ExceptionType:      entities.ParseExceptionType(m.ExceptionType),
		Severity:           entities.ParseSeverity(m.Severity),
		ExceptionDate:      m.ExceptionDate.UTC(),
		CurrentInventory:   m.CurrentInventory,
		ProjectedInventory: m.ProjectedInventory,
		SafetyStock:        m.SafetyStock,
		ShortageQuantity:   m.ShortageQuantity,
		ExcessQuantity:     m.ExcessQuantity,
		ResolutionStatus:   entities.ParseResolutionStatus(m.ResolutionStatus),
	}
}

func exceptionFromEntity(e entities.PlanningException) ExceptionModel {
	return ExceptionModel{
		ID:                 e.ID,
		ProductID:          string(e.ProductID),
		LocationID:         string(e.LocationID),
		ExceptionType:      e.ExceptionType.String(),
		Severity:           e.Severity.String(),
		ExceptionDate:      e.ExceptionDate,
		CurrentInventory:   e.CurrentInventory,
		ProjectedInventory: e.ProjectedInventory,
		SafetyStock:        e.SafetyStock,
		ShortageQuantity:   e.ShortageQuantity,
		ExcessQuantity:     e.ExcessQuantity,
		ResolutionStatus:   e.ResolutionStatus.String(),
	}
}

// PurchaseOrderModel is one row of the purchase_order_recommendations table
type PurchaseOrderModel struct {
	ID                   string    `gorm:"primaryKey;size:64"`
	ProductID            string    `gorm:"size:64;not null;index"`
	LocationID           string    `gorm:"size:64;not null"`
	RecommendedOrderDate time.Time `gorm:"not null"`
	ExpectedDeliveryDate *time.Time
	RecommendedQuantity  float64         `gorm:"not null;default:0"`
	UnitCost             decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	TotalValue           decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	ApprovalStatus       string          `gorm:"size:16;not null;default:pending"`
	CreatedAt            time.Time
}

func (PurchaseOrderModel) TableName() string { return "purchase_order_recommendations" }

func (m PurchaseOrderModel) toEntity() entities.PurchaseOrderRecommendation {
	rec := entities.PurchaseOrderRecommendation{
		ID:                   m.ID,
		ProductID:            entities.ProductID(m.ProductID),
		LocationID:           entities.LocationID(m.LocationID),
		RecommendedOrderDate: m.RecommendedOrderDate.UTC(),
		RecommendedQuantity:  m.RecommendedQuantity,
		UnitCost:             m.UnitCost,
		TotalValue:           m.TotalValue,
		ApprovalStatus:       entities.ParseApprovalStatus(m.ApprovalStatus),
	}
	if m.ExpectedDeliveryDate != nil {
		rec.ExpectedDeliveryDate = m.ExpectedDeliveryDate.UTC()
	}
	return rec
}

func purchaseOrderFromEntity(r entities.PurchaseOrderRecommendation) PurchaseOrderModel {
	m := PurchaseOrderModel{
		ID:                   r.ID,
		ProductID:            string(r.ProductID),
		LocationID:           string(r.LocationID),
		RecommendedOrderDate: r.RecommendedOrderDate,
		RecommendedQuantity:  r.RecommendedQuantity,
		UnitCost:             r.UnitCost,
		TotalValue:           r.TotalValue,
		ApprovalStatus:       r.ApprovalStatus.String(),
	}
	if !r.ExpectedDeliveryDate.IsZero() {
		delivery := r.ExpectedDeliveryDate
		m.ExpectedDeliveryDate = &delivery
	}
	return m
}

// ForecastCellModel is one row of the collaborative_forecasts table.
// Month is stored as YYYY-MM so the upsert key compares as text.
type ForecastCellModel struct {
	ID                    uint    `gorm:"primaryKey"`
	ProductID             string  `gorm:"size:64;not null;uniqueIndex:idx_forecast_key"`
	CustomerID            string  `gorm:"size:64;not null;uniqueIndex:idx_forecast_key"`
	LocationID            string  `gorm:"size:64;not null;uniqueIndex:idx_forecast_key"`
	Month                 string  `gorm:"size:7;not null;uniqueIndex:idx_forecast_key"`
	LastYear              float64 `gorm:"not null;default:0"`
	ForecastSalesGap      float64 `gorm:"not null;default:0"`
	CalculatedForecast    float64 `gorm:"not null;default:0"`
	Xamview               float64 `gorm:"not null;default:0"`
	KAMForecastCorrection float64 `gorm:"column:kam_forecast_correction;not null;default:0"`
	SalesManagerView      float64 `gorm:"not null;default:0"`
	EffectiveForecast     float64 `gorm:"not null;default:0"`
	UpdatedAt             time.Time
}

func (ForecastCellModel) TableName() string { return "collaborative_forecasts" }

func (m ForecastCellModel) toEntity() entities.CollaborativeForecastCell {
	month, _ := time.Parse(monthLayout, m.Month)
	return entities.CollaborativeForecastCell{
		ProductID:             entities.ProductID(m.ProductID),
		CustomerID:            entities.CustomerID(m.CustomerID),
		LocationID:            entities.LocationID(m.LocationID),
		Month:                 month,
		LastYear:              m.LastYear,
		ForecastSalesGap:      m.ForecastSalesGap,
		CalculatedForecast:    m.CalculatedForecast,
		Xamview:               m.Xamview,
		KAMForecastCorrection: m.KAMForecastCorrection,
		SalesManagerView:      m.SalesManagerView,
		EffectiveForecast:     m.EffectiveForecast,
	}
}

func forecastCellFromEntity(c entities.CollaborativeForecastCell) ForecastCellModel {
	return ForecastCellModel{
		ProductID:             string(c.ProductID),
		CustomerID:            string(c.CustomerID),
		LocationID:            string(c.LocationID),
		Month:                 monthKey(c.Month),
		LastYear:              c.LastYear,
		ForecastSalesGap:      c.ForecastSalesGap,
		CalculatedForecast:    c.CalculatedForecast,
		Xamview:               c.Xamview,
		KAMForecastCorrection: c.KAMForecastCorrection,
		SalesManagerView:      c.SalesManagerView,
		EffectiveForecast:     c.EffectiveForecast,
	}
}

func monthKey(t time.Time) string {
	return entities.MonthStart(t).Format(monthLayout)
}

// AllModels lists every table managed by this package
func AllModels() []any {
	return []any{
		&TimePhasedModel{},
		&LeadTimeModel{},
		&ExceptionModel{},
		&PurchaseOrderModel{},
		&ForecastCellModel{},
	}
}
