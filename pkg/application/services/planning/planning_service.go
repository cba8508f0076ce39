package planning

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
	"github.com/vsinha/supplyplan/pkg/domain/services"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
)

// Repositories groups the storage seams the planning service reads and writes
type Repositories struct {
	TimePhased     repositories.TimePhasedRepository
	Exceptions     repositories.ExceptionRepository
	PurchaseOrders repositories.PurchaseOrderRepository
	Forecasts      repositories.ForecastRepository
}

// Option configures a PlanningService
type Option func(*PlanningService)

// WithUrgencyPolicy selects the PO urgency thresholds
func WithUrgencyPolicy(policy services.UrgencyPolicy) Option {
	return func(s *PlanningService) { s.classifier = services.NewClassifier(policy) }
}

// WithDefaultHorizon sets the horizon used when a request leaves it at 0
func WithDefaultHorizon(weeks int) Option {
	return func(s *PlanningService) { s.defaultHorizon = weeks }
}

// WithEventStore records forecast writes to store
func WithEventStore(store events.EventStore) Option {
	return func(s *PlanningService) { s.eventStore = store }
}

// WithLogger sets the logger operations report through
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *PlanningService) { s.logger = logger }
}

// PlanningService fetches records through the repositories, runs the domain
// transforms over them and persists forecast corrections
type PlanningService struct {
	repos          Repositories
	classifier     *services.Classifier
	defaultHorizon int
	eventStore     events.EventStore
	logger         logrus.FieldLogger
}

// NewPlanningService creates a planning service over repos
func NewPlanningService(repos Repositories, opts ...Option) *PlanningService {
	s := &PlanningService{
		repos:      repos,
		classifier: services.NewClassifier(services.UrgencyPolicyThreshold),
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.eventStore == nil {
		s.eventStore = events.NewInMemoryEventStore(s.logger)
	}
	if err := s.eventStore.Subscribe(events.PlanningEventTypes, events.NewAuditLogger(s.logger)); err != nil {
		s.logger.WithError(err).Warn("failed to subscribe audit logger")
	}
	return s
}

// Events exposes the store forecast events are appended to
func (s *PlanningService) Events() events.EventStore {
	return s.eventStore
}

// EventLog returns the recorded planning events starting at position from
func (s *PlanningService) EventLog(from int) (*dto.EventLog, error) {
	if from < 0 {
		return nil, fmt.Errorf("event position %d: %w", from, ErrInvalidPosition)
	}
	recorded, err := s.eventStore.ReadAllEvents(from)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return &dto.EventLog{From: from, Next: from + len(recorded), Events: recorded}, nil
}

// RollupRequest selects the view and horizon of a rollup
type RollupRequest struct {
	Mode    entities.ViewMode
	Horizon int
}

// Rollups builds per-item rollups over every time-phased record
func (s *PlanningService) Rollups(ctx context.Context, req RollupRequest) (*dto.RollupReport, error) {
	records, err := s.repos.TimePhased.GetTimePhasedRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load time-phased records: %w", err)
	}
	leadTimes, err := s.repos.TimePhased.GetLeadTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lead times: %w", err)
	}

	horizon := cmp.Or(req.Horizon, s.defaultHorizon)
	rollups := services.BuildRollups(records, services.RollupOptions{
		Mode:      req.Mode,
		Horizon:   horizon,
		LeadTimes: leadTimes,
	})

	s.logger.WithFields(logrus.Fields{
		"mode":    req.Mode.String(),
		"horizon": horizon,
		"records": len(records),
		"items":   len(rollups),
	}).Debug("rollups built")

	return dto.NewRollupReport(req.Mode, horizon, rollups), nil
}

// PrioritizedExceptions ranks exceptions by priority score as of now.
// Resolved and ignored exceptions are dropped unless includeResolved is set.
func (s *PlanningService) PrioritizedExceptions(
	ctx context.Context,
	now time.Time,
	includeResolved bool,
) (*dto.ExceptionReport, error) {
	all, err := s.repos.Exceptions.GetExceptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load exceptions: %w", err)
	}

	selected := all
	if !includeResolved {
		selected = slices.DeleteFunc(slices.Clone(all), func(e entities.PlanningException) bool {
			return e.ResolutionStatus.IsClosed()
		})
	}

	ranked := services.PrioritizeExceptions(selected, now)
	s.logger.WithFields(logrus.Fields{
		"total":    len(all),
		"selected": len(ranked),
	}).Debug("exceptions prioritized")

	return dto.NewExceptionReport(now, ranked, includeResolved), nil
}

// ResolveException changes the resolution status of one exception
func (s *PlanningService) ResolveException(ctx context.Context, id string, status entities.ResolutionStatus) error {
	if err := s.repos.Exceptions.UpdateResolutionStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update exception %s: %w", id, err)
	}
	s.appendEvent(events.NewExceptionStatusChangedEvent(id, status))
	return nil
}

// ClassifiedPurchaseOrders classifies every recommendation as of now
func (s *PlanningService) ClassifiedPurchaseOrders(ctx context.Context, now time.Time) (*dto.PurchaseOrderReport, error) {
	recs, err := s.repos.PurchaseOrders.GetRecommendations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase order recommendations: %w", err)
	}

	classified := s.classifier.ClassifyAll(recs, now)
	s.logger.WithFields(logrus.Fields{
		"policy": s.classifier.Policy.String(),
		"orders": len(classified),
	}).Debug("purchase orders classified")

	return dto.NewPurchaseOrderReport(now, s.classifier.Policy, classified), nil
}

// ForecastGrid returns the customer cells of an item with their aggregate rows
func (s *PlanningService) ForecastGrid(
	ctx context.Context,
	productID entities.ProductID,
	locationID entities.LocationID,
) (*dto.ForecastGrid, error) {
	cells, err := s.repos.Forecasts.GetCells(ctx, productID, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecast cells for %s/%s: %w", productID, locationID, err)
	}

	return &dto.ForecastGrid{
		ProductID:  productID,
		LocationID: locationID,
		Cells:      cells,
		Aggregates: services.AggregateForecastCells(cells),
	}, nil
}

// ForecastOverride is a planner edit of the all-customers row for one month
type ForecastOverride struct {
	ProductID  entities.ProductID
	LocationID entities.LocationID
	Month      time.Time
	Value      float64
}

// RedistributeForecast spreads an all-customers override across the customers
// of the month and writes each customer's correction one at a time, in
// customer order. Customers without forecast weight keep their correction.
// A failed write does not stop the remaining ones; the result is then a
// *PartialRedistributionError.
func (s *PlanningService) RedistributeForecast(
	ctx context.Context,
	override ForecastOverride,
) (*dto.RedistributionResult, error) {
	if !services.IsFinite(override.Value) {
		return nil, fmt.Errorf("redistribute %v: %w", override.Value, ErrInvalidValue)
	}

	month := entities.MonthStart(override.Month)
	log := s.logger.WithFields(logrus.Fields{
		"product_id":  override.ProductID,
		"location_id": override.LocationID,
		"month":       month.Format("2006-01"),
	})

	forecasts, err := s.repos.Forecasts.GetMonthForecasts(ctx, override.ProductID, override.LocationID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecasts for %s: %w", month.Format("2006-01"), err)
	}

	allocation := services.RedistributeFairShare(month, override.Value, forecasts)
	if allocation.Total <= 0 && len(forecasts) > 0 {
		log.WithField("target", override.Value).Warn("no existing forecast to weight by, every customer gets 0")
	}

	result := &dto.RedistributionResult{
		ProductID:  override.ProductID,
		LocationID: override.LocationID,
		Allocation: allocation,
	}
	failed := make(map[entities.CustomerID]error)

	for _, customer := range allocation.CustomerOrder() {
		if err := ctx.Err(); err != nil {
			failed[customer] = err
			continue
		}
		if weight := forecasts[customer]; allocation.Total > 0 && (weight == 0 || !services.IsFinite(weight)) {
			log.WithField("customer_id", customer).Debug("skipping customer without forecast")
			continue
		}

		key := entities.ForecastKey{
			ProductID:  override.ProductID,
			CustomerID: customer,
			LocationID: override.LocationID,
			Month:      month,
		}
		value := float64(allocation.Values[customer])
		if err := s.repos.Forecasts.UpsertCorrection(ctx, key, value); err != nil {
			log.WithError(err).WithField("customer_id", customer).Error("failed to write forecast correction")
			failed[customer] = err
			continue
		}

		result.Applied = append(result.Applied, customer)
		s.appendEvent(events.NewForecastCorrectionUpdatedEvent(key, value))
	}

	if len(failed) > 0 {
		return result, &PartialRedistributionError{
			Month:   month.Format("2006-01"),
			Applied: result.Applied,
			Failed:  failed,
		}
	}

	s.appendEvent(events.NewForecastRedistributedEvent(events.ForecastRedistributed{
		ProductID:  override.ProductID,
		LocationID: override.LocationID,
		Month:      month,
		Target:     override.Value,
		Allocated:  allocation.AllocatedTotal(),
		Values:     allocation.Values,
	}))
	log.WithFields(logrus.Fields{
		"target":    override.Value,
		"allocated": allocation.AllocatedTotal(),
		"customers": len(result.Applied),
	}).Info("forecast redistributed")

	return result, nil
}

// UpdateCustomerForecast writes one customer's correction directly. Edits of
// the all-customers row are redistributed instead.
func (s *PlanningService) UpdateCustomerForecast(
	ctx context.Context,
	key entities.ForecastKey,
	value float64,
) (*dto.RedistributionResult, error) {
	if key.CustomerID == entities.AllCustomers {
		return s.RedistributeForecast(ctx, ForecastOverride{
			ProductID:  key.ProductID,
			LocationID: key.LocationID,
			Month:      key.Month,
			Value:      value,
		})
	}

	if !services.IsFinite(value) {
		return nil, fmt.Errorf("update %s to %v: %w", key, value, ErrInvalidValue)
	}

	key.Month = entities.MonthStart(key.Month)
	if err := s.repos.Forecasts.UpsertCorrection(ctx, key, value); err != nil {
		return nil, fmt.Errorf("failed to write forecast correction for %s: %w", key, err)
	}
	s.appendEvent(events.NewForecastCorrectionUpdatedEvent(key, value))

	return &dto.RedistributionResult{
		ProductID:  key.ProductID,
		LocationID: key.LocationID,
		Applied:    []entities.CustomerID{key.CustomerID},
	}, nil
}

func (s *PlanningService) appendEvent(event events.Event) {
	if err := s.eventStore.AppendEvent(event.StreamID(), event); err != nil {
		s.logger.WithError(err).WithField("type", event.Type()).Warn("failed to publish event")
	}
}
