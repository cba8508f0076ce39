package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
	testhelpers "github.com/vsinha/supplyplan/pkg/infrastructure/testing"
)

// newTestDB opens a private in-memory SQLite database with the planning schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestTimePhasedRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTimePhasedRepository(newTestDB(t))

	records := testhelpers.TimePhasedRecords()
	require.NoError(t, repo.ReplaceRecords(ctx, records[:2]))
	require.NoError(t, repo.ReplaceRecords(ctx, records))
	require.NoError(t, repo.SaveLeadTimes(ctx, map[entities.ProductID]int{"WIDGET": 14}))
	require.NoError(t, repo.SaveLeadTimes(ctx, map[entities.ProductID]int{"WIDGET": 21, "GADGET": 7}))

	loaded, err := repo.GetTimePhasedRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	leadTimes, err := repo.GetLeadTimes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[entities.ProductID]int{"WIDGET": 21, "GADGET": 7}, leadTimes)
}

func TestExceptionRepository_StatusUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewExceptionRepository(newTestDB(t))
	require.NoError(t, repo.SaveExceptions(ctx, testhelpers.Exceptions()))

	loaded, err := repo.GetExceptions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "EX-LOW", loaded[0].ID)
	assert.Equal(t, entities.ExcessInventory, loaded[0].ExceptionType)
	assert.True(t, testhelpers.ReferenceNow.AddDate(0, 0, -30).Equal(loaded[0].ExceptionDate))

	require.NoError(t, repo.UpdateResolutionStatus(ctx, "EX-CRIT", entities.ResolutionInProgress))
	loaded, err = repo.GetExceptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.ResolutionInProgress, loaded[1].ResolutionStatus)

	err = repo.UpdateResolutionStatus(ctx, "EX-404", entities.ResolutionResolved)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPurchaseOrderRepository_PreservesMoney(t *testing.T) {
	ctx := context.Background()
	repo := NewPurchaseOrderRepository(newTestDB(t))
	require.NoError(t, repo.SaveRecommendations(ctx, testhelpers.PurchaseOrders()))

	recs, err := repo.GetRecommendations(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, "PO-OVERDUE", recs[0].ID)
	assert.True(t, decimal.RequireFromString("120500").Equal(recs[0].TotalValue), recs[0].TotalValue.String())
	assert.True(t, decimal.RequireFromString("50000").Equal(recs[2].TotalValue), recs[2].TotalValue.String())
	assert.Equal(t, entities.ApprovalPending, recs[0].ApprovalStatus)
	assert.False(t, recs[0].ExpectedDeliveryDate.IsZero())
}

func TestForecastRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewForecastRepository(newTestDB(t))
	require.NoError(t, repo.SaveCells(ctx, testhelpers.ForecastCells()))

	july := testhelpers.ReferenceMonth
	forecasts, err := repo.GetMonthForecasts(ctx, "WIDGET", "DC1", july.AddDate(0, 0, 20))
	require.NoError(t, err)
	assert.Equal(t, map[entities.CustomerID]float64{"ACME": 300, "BOLT": 100, "CORE": 600}, forecasts)

	key := entities.ForecastKey{ProductID: "WIDGET", CustomerID: "BOLT", LocationID: "DC1", Month: july}
	require.NoError(t, repo.UpsertCorrection(ctx, key, 200))
	require.NoError(t, repo.UpsertCorrection(ctx, key, 250))

	newKey := entities.ForecastKey{ProductID: "WIDGET", CustomerID: "DELTA", LocationID: "DC1", Month: july}
	require.NoError(t, repo.UpsertCorrection(ctx, newKey, 5))

	cells, err := repo.GetCells(ctx, "WIDGET", "DC1")
	require.NoError(t, err)
	require.Len(t, cells, 7)

	byKey := make(map[string]entities.CollaborativeForecastCell)
	for _, c := range cells {
		byKey[c.Key().String()] = c
	}
	bolt := byKey[key.String()]
	assert.Equal(t, 250.0, bolt.KAMForecastCorrection)
	assert.Equal(t, 100.0, bolt.EffectiveForecast, "upsert leaves other columns alone")
	assert.True(t, july.Equal(bolt.Month))
	assert.Equal(t, 5.0, byKey[newKey.String()].KAMForecastCorrection)

	assert.Equal(t, entities.CustomerID("ACME"), cells[0].CustomerID)
}

func TestForecastRepository_SkipsAggregateRows(t *testing.T) {
	ctx := context.Background()
	repo := NewForecastRepository(newTestDB(t))

	err := repo.SaveCells(ctx, []entities.CollaborativeForecastCell{
		{ProductID: "P", CustomerID: entities.AllCustomers, LocationID: "L", Month: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), EffectiveForecast: 10},
	})
	require.NoError(t, err)

	cells, err := repo.GetCells(ctx, "P", "L")
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestForecastRepository_ReimportKeepsCorrections(t *testing.T) {
	ctx := context.Background()
	repo := NewForecastRepository(newTestDB(t))
	require.NoError(t, repo.SaveCells(ctx, testhelpers.ForecastCells()))

	key := entities.ForecastKey{ProductID: "WIDGET", CustomerID: "ACME", LocationID: "DC1", Month: testhelpers.ReferenceMonth}
	require.NoError(t, repo.UpsertCorrection(ctx, key, 777))

	reseeded := testhelpers.ForecastCells()
	reseeded[0].EffectiveForecast = 320
	require.NoError(t, repo.SaveCells(ctx, reseeded))

	cells, err := repo.GetCells(ctx, "WIDGET", "DC1")
	require.NoError(t, err)
	require.Len(t, cells, 6)
	for _, c := range cells {
		if c.Key().String() == key.String() {
			assert.Equal(t, 777.0, c.KAMForecastCorrection)
			assert.Equal(t, 320.0, c.EffectiveForecast, "import columns are refreshed")
		}
	}
}

func TestExceptionRepository_ReimportKeepsResolution(t *testing.T) {
	ctx := context.Background()
	repo := NewExceptionRepository(newTestDB(t))
	require.NoError(t, repo.SaveExceptions(ctx, testhelpers.Exceptions()))
	require.NoError(t, repo.UpdateResolutionStatus(ctx, "EX-CRIT", entities.ResolutionResolved))

	reseeded := testhelpers.Exceptions()
	for i := range reseeded {
		reseeded[i].ShortageQuantity = 42
	}
	require.NoError(t, repo.SaveExceptions(ctx, reseeded))

	loaded, err := repo.GetExceptions(ctx)
	require.NoError(t, err)
	for _, e := range loaded {
		assert.Equal(t, 42.0, e.ShortageQuantity)
		if e.ID == "EX-CRIT" {
			assert.Equal(t, entities.ResolutionResolved, e.ResolutionStatus)
		}
	}
}
