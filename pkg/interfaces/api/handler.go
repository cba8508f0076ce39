package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/supplyplan/pkg/application/services/planning"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// PlanningHandler serves the planning service over HTTP
type PlanningHandler struct {
	service *planning.PlanningService
	logger  logrus.FieldLogger
	clock   func() time.Time
}

func NewPlanningHandler(service *planning.PlanningService, logger logrus.FieldLogger, clock func() time.Time) *PlanningHandler {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &PlanningHandler{service: service, logger: logger, clock: clock}
}

// now honours an optional ?now=RFC3339 query parameter
func (h *PlanningHandler) now(c *gin.Context) (time.Time, bool) {
	s := c.Query("now")
	if s == "" {
		return h.clock(), true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		BadRequest(c, "invalid now: expected RFC3339")
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Rollups GET /rollups?mode=&horizon=
func (h *PlanningHandler) Rollups(c *gin.Context) {
	mode, err := entities.ParseViewMode(c.DefaultQuery("mode", "inventory"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	horizon := 0
	if s := c.Query("horizon"); s != "" {
		if horizon, err = strconv.Atoi(s); err != nil || horizon < 0 {
			BadRequest(c, "horizon must be a non-negative integer")
			return
		}
	}

	report, err := h.service.Rollups(c.Request.Context(), planning.RollupRequest{Mode: mode, Horizon: horizon})
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, report)
}

// Exceptions GET /exceptions?include_resolved=
func (h *PlanningHandler) Exceptions(c *gin.Context) {
	now, ok := h.now(c)
	if !ok {
		return
	}
	includeResolved, _ := strconv.ParseBool(c.DefaultQuery("include_resolved", "false"))

	report, err := h.service.PrioritizedExceptions(c.Request.Context(), now, includeResolved)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, report)
}

type resolveExceptionRequest struct {
	Status string `json:"status" binding:"required"`
}

// ResolveException PATCH /exceptions/:id
func (h *PlanningHandler) ResolveException(c *gin.Context) {
	var req resolveExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	status, err := entities.ParseResolutionStatusStrict(req.Status)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.service.ResolveException(c.Request.Context(), c.Param("id"), status); err != nil {
		h.fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id"), "resolution_status": status})
}

// PurchaseOrders GET /purchase-orders
func (h *PlanningHandler) PurchaseOrders(c *gin.Context) {
	now, ok := h.now(c)
	if !ok {
		return
	}

	report, err := h.service.ClassifiedPurchaseOrders(c.Request.Context(), now)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, report)
}

// ForecastGrid GET /forecasts/:product/:location
func (h *PlanningHandler) ForecastGrid(c *gin.Context) {
	grid, err := h.service.ForecastGrid(
		c.Request.Context(),
		entities.ProductID(c.Param("product")),
		entities.LocationID(c.Param("location")),
	)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, grid)
}

type updateForecastRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

// UpdateForecast PUT /forecasts/:product/:location/:month/customers/:customer
func (h *PlanningHandler) UpdateForecast(c *gin.Context) {
	var req updateForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	month, err := entities.ParseMonth(c.Param("month"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	key := entities.ForecastKey{
		ProductID:  entities.ProductID(c.Param("product")),
		CustomerID: entities.CustomerID(c.Param("customer")),
		LocationID: entities.LocationID(c.Param("location")),
		Month:      month,
	}
	result, err := h.service.UpdateCustomerForecast(c.Request.Context(), key, *req.Value)
	if err != nil {
		var partial *planning.PartialRedistributionError
		if errors.As(err, &partial) {
			h.logger.WithError(err).Warn("forecast redistribution partially applied")
			ErrorWithData(c, CodePartialWrite, err.Error(), result)
			return
		}
		h.fail(c, err)
		return
	}
	Success(c, result)
}

// Events GET /events?from=
func (h *PlanningHandler) Events(c *gin.Context) {
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil {
		BadRequest(c, "from must be an integer")
		return
	}

	log, err := h.service.EventLog(from)
	if err != nil {
		h.fail(c, err)
		return
	}
	Success(c, log)
}

func (h *PlanningHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		NotFound(c, err.Error())
		return
	case errors.Is(err, planning.ErrInvalidValue), errors.Is(err, planning.ErrInvalidPosition):
		BadRequest(c, err.Error())
		return
	}
	h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	InternalError(c, "internal error")
}
