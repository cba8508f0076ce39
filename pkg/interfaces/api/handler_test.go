package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/planning"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
	testhelpers "github.com/vsinha/supplyplan/pkg/infrastructure/testing"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type failingForecasts struct {
	repositories.ForecastRepository
	failFor entities.CustomerID
}

func (r *failingForecasts) UpsertCorrection(ctx context.Context, key entities.ForecastKey, value float64) error {
	if key.CustomerID == r.failFor {
		return errors.New("disk full")
	}
	return r.ForecastRepository.UpsertCorrection(ctx, key, value)
}

func newTestRouter(t *testing.T, forecasts repositories.ForecastRepository) (*gin.Engine, *testhelpers.Scenario) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	scenario := testhelpers.BuildReferenceScenario()
	if forecasts == nil {
		forecasts = scenario.Forecasts
	}

	service := planning.NewPlanningService(planning.Repositories{
		TimePhased:     scenario.TimePhased,
		Exceptions:     scenario.Exceptions,
		PurchaseOrders: scenario.PurchaseOrders,
		Forecasts:      forecasts,
	}, planning.WithLogger(logger))

	clock := func() time.Time { return testhelpers.ReferenceNow }
	return NewRouter(NewPlanningHandler(service, logger, clock), logger, gin.TestMode), scenario
}

func do(t *testing.T, r http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)
}

func TestRouter_Rollups(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodGet, "/api/v1/rollups?mode=inventory&horizon=2", nil)
	require.Equal(t, http.StatusOK, status)

	var report dto.RollupReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	require.Len(t, report.Rollups, 3)
	assert.Equal(t, entities.ViewInventory, report.Mode)
	assert.Equal(t, entities.StatusStockout, report.Rollups[0].InventoryStatus)
	assert.Len(t, report.Rollups[0].Weeks, 2)
	assert.Equal(t, 1, report.StatusCounts[entities.StatusStockout])
}

func TestRouter_RollupsBadParams(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodGet, "/api/v1/rollups?mode=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeBadRequest, resp.Code)

	status, _ = do(t, r, http.MethodGet, "/api/v1/rollups?horizon=-1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_Exceptions(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodGet, "/api/v1/exceptions", nil)
	require.Equal(t, http.StatusOK, status)

	var report dto.ExceptionReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	require.Len(t, report.Exceptions, 2)
	assert.Equal(t, "EX-CRIT", report.Exceptions[0].ID)
	assert.Equal(t, 150, report.Exceptions[0].PriorityScore)
	assert.Equal(t, 85, report.Exceptions[1].PriorityScore)

	status, resp = do(t, r, http.MethodGet, "/api/v1/exceptions?include_resolved=true", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	assert.Len(t, report.Exceptions, 3)

	status, _ = do(t, r, http.MethodGet, "/api/v1/exceptions?now=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_ResolveException(t *testing.T) {
	r, scenario := newTestRouter(t, nil)

	status, _ := do(t, r, http.MethodPatch, "/api/v1/exceptions/EX-CRIT", gin.H{"status": "resolved"})
	require.Equal(t, http.StatusOK, status)

	stored, err := scenario.Exceptions.GetExceptions(context.Background())
	require.NoError(t, err)
	for _, e := range stored {
		if e.ID == "EX-CRIT" {
			assert.Equal(t, entities.ResolutionResolved, e.ResolutionStatus)
		}
	}

	status, resp := do(t, r, http.MethodPatch, "/api/v1/exceptions/EX-NOPE", gin.H{"status": "resolved"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, resp.Code)

	status, _ = do(t, r, http.MethodPatch, "/api/v1/exceptions/EX-CRIT", gin.H{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_ResolveExceptionRejectsUnknownStatus(t *testing.T) {
	r, scenario := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodPatch, "/api/v1/exceptions/EX-DONE", gin.H{"status": "resolvd"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeBadRequest, resp.Code)
	assert.Contains(t, resp.Message, "resolvd")

	stored, err := scenario.Exceptions.GetExceptions(context.Background())
	require.NoError(t, err)
	for _, e := range stored {
		if e.ID == "EX-DONE" {
			assert.Equal(t, entities.ResolutionResolved, e.ResolutionStatus)
		}
	}
}

func TestRouter_PurchaseOrders(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodGet, "/api/v1/purchase-orders", nil)
	require.Equal(t, http.StatusOK, status)

	var report dto.PurchaseOrderReport
	require.NoError(t, json.Unmarshal(resp.Data, &report))
	require.Len(t, report.Orders, 4)
	assert.Equal(t, "threshold", report.Policy)
	assert.True(t, decimal.RequireFromString("171799.90").Equal(report.TotalValue))
	assert.Equal(t, entities.UrgencyCritical, report.Orders[0].UrgencyLevel)
}

func TestRouter_ForecastGrid(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodGet, "/api/v1/forecasts/WIDGET/DC1", nil)
	require.Equal(t, http.StatusOK, status)

	var grid dto.ForecastGrid
	require.NoError(t, json.Unmarshal(resp.Data, &grid))
	assert.Len(t, grid.Cells, 6)
	require.Len(t, grid.Aggregates, 2)
	assert.Equal(t, 1000.0, grid.Aggregates[0].EffectiveForecast)
}

func TestRouter_UpdateForecastRedistributes(t *testing.T) {
	r, scenario := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodPut, "/api/v1/forecasts/WIDGET/DC1/2025-07/customers/ALL", gin.H{"value": 2000})
	require.Equal(t, http.StatusOK, status)

	var result dto.RedistributionResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, int64(600), result.Allocation.Values["ACME"])
	assert.Equal(t, int64(200), result.Allocation.Values["BOLT"])
	assert.Equal(t, int64(1200), result.Allocation.Values["CORE"])

	cell, err := scenario.Forecasts.GetCell(entities.ForecastKey{
		ProductID: "WIDGET", CustomerID: "CORE", LocationID: "DC1", Month: testhelpers.ReferenceMonth,
	})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, cell.KAMForecastCorrection)
}

func TestRouter_UpdateForecastSingleCustomer(t *testing.T) {
	r, scenario := newTestRouter(t, nil)

	status, _ := do(t, r, http.MethodPut, "/api/v1/forecasts/WIDGET/DC1/2025-07/customers/BOLT", gin.H{"value": 75})
	require.Equal(t, http.StatusOK, status)

	cell, err := scenario.Forecasts.GetCell(entities.ForecastKey{
		ProductID: "WIDGET", CustomerID: "BOLT", LocationID: "DC1", Month: testhelpers.ReferenceMonth,
	})
	require.NoError(t, err)
	assert.Equal(t, 75.0, cell.KAMForecastCorrection)
}

func TestRouter_UpdateForecastValidation(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, _ := do(t, r, http.MethodPut, "/api/v1/forecasts/WIDGET/DC1/July/customers/ALL", gin.H{"value": 10})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, r, http.MethodPut, "/api/v1/forecasts/WIDGET/DC1/2025-07/customers/ALL", gin.H{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_UpdateForecastRejectsOutOfRangeValue(t *testing.T) {
	r, scenario := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/forecasts/WIDGET/DC1/2025-07/customers/ALL",
		bytes.NewReader([]byte(`{"value": 1e999}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	cell, err := scenario.Forecasts.GetCell(entities.ForecastKey{
		ProductID: "WIDGET", CustomerID: "CORE", LocationID: "DC1", Month: testhelpers.ReferenceMonth,
	})
	require.NoError(t, err)
	assert.Zero(t, cell.KAMForecastCorrection)
}

func TestRouter_EventsFollowWrites(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, status)
	var empty struct {
		Next   int               `json:"next"`
		Events []json.RawMessage `json:"events"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &empty))
	assert.Zero(t, empty.Next)
	assert.Empty(t, empty.Events)

	status, _ = do(t, r, http.MethodPut, "/api/v1/forecasts/WIDGET/DC1/2025-07/customers/BOLT", gin.H{"value": 75})
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, r, http.MethodPatch, "/api/v1/exceptions/EX-CRIT", gin.H{"status": "in progress"})
	require.Equal(t, http.StatusOK, status)

	status, resp = do(t, r, http.MethodGet, "/api/v1/events?from=0", nil)
	require.Equal(t, http.StatusOK, status)
	var log struct {
		Next   int `json:"next"`
		Events []struct {
			Type    string `json:"type"`
			Stream  string `json:"stream"`
			Version int    `json:"version"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &log))
	require.Len(t, log.Events, 2)
	assert.Equal(t, 2, log.Next)
	assert.Equal(t, "forecast.correction.updated", log.Events[0].Type)
	assert.Equal(t, 1, log.Events[0].Version)
	assert.Equal(t, "exception.status.changed", log.Events[1].Type)
	assert.Equal(t, "exception:EX-CRIT", log.Events[1].Stream)

	status, resp = do(t, r, http.MethodGet, "/api/v1/events?from=1", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &log))
	assert.Len(t, log.Events, 1)

	status, _ = do(t, r, http.MethodGet, "/api/v1/events?from=-1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, r, http.MethodGet, "/api/v1/events?from=first", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_UpdateForecastPartialFailure(t *testing.T) {
	scenario := testhelpers.BuildReferenceScenario()
	r, _ := newTestRouter(t, &failingForecasts{ForecastRepository: scenario.Forecasts, failFor: "BOLT"})

	status, resp := do(t, r, http.MethodPut, "/api/v1/forecasts/WIDGET/DC1/2025-07/customers/ALL", gin.H{"value": 2000})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, CodePartialWrite, resp.Code)
	assert.Contains(t, resp.Message, "2025-07")

	var result dto.RedistributionResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, []entities.CustomerID{"ACME", "CORE"}, result.Applied)
}

func TestRouter_NoRoute(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	status, resp := do(t, r, http.MethodGet, "/api/v2/anything", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, CodeNotFound, resp.Code)
}
