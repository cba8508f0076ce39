package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Scenario file names inside a scenario directory
const (
	TimePhasedFile     = "time_phased.csv"
	ExceptionsFile     = "exceptions.csv"
	PurchaseOrdersFile = "purchase_orders.csv"
	ForecastsFile      = "forecasts.csv"
	LeadTimesFile      = "lead_times.csv"
)

var (
	timePhasedHeader = []string{
		"product_id", "location_id", "week_number", "beginning_inventory", "gross_requirements",
		"scheduled_receipts", "projected_available", "net_requirements", "planned_order_receipts",
		"planned_order_releases", "safety_stock", "reorder_point",
	}
	exceptionsHeader = []string{
		"id", "product_id", "location_id", "exception_type", "severity", "exception_date",
		"current_inventory", "projected_inventory", "safety_stock", "shortage_quantity",
		"excess_quantity", "resolution_status",
	}
	purchaseOrdersHeader = []string{
		"id", "product_id", "location_id", "recommended_order_date", "expected_delivery_date",
		"recommended_quantity", "unit_cost", "total_value", "approval_status",
	}
	forecastsHeader = []string{
		"product_id", "customer_id", "location_id", "month", "last_year", "forecast_sales_gap",
		"calculated_forecast", "xamview", "kam_forecast_correction", "sales_manager_view",
		"effective_forecast",
	}
	leadTimesHeader = []string{"product_id", "lead_time_days"}
)

// Scenario is the full content of a scenario directory
type Scenario struct {
	TimePhased     []entities.TimePhasedRecord
	LeadTimes      map[entities.ProductID]int
	Exceptions     []entities.PlanningException
	PurchaseOrders []entities.PurchaseOrderRecommendation
	Forecasts      []entities.CollaborativeForecastCell
}

// Loader handles loading planning data from CSV files.
// Malformed numeric cells are read as 0 and logged; malformed dates and
// missing columns fail the load.
type Loader struct {
	logger logrus.FieldLogger
}

// NewLoader creates a new CSV loader
func NewLoader(logger logrus.FieldLogger) *Loader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Loader{logger: logger}
}

// LoadScenario loads every scenario file found in dir. Only time_phased.csv
// is required.
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	scenario := &Scenario{LeadTimes: map[entities.ProductID]int{}}

	var err error
	if scenario.TimePhased, err = l.LoadTimePhased(filepath.Join(dir, TimePhasedFile)); err != nil {
		return nil, err
	}

	optional := []struct {
		name string
		load func(string) error
	}{
		{LeadTimesFile, func(path string) (err error) { scenario.LeadTimes, err = l.LoadLeadTimes(path); return }},
		{ExceptionsFile, func(path string) (err error) { scenario.Exceptions, err = l.LoadExceptions(path); return }},
		{PurchaseOrdersFile, func(path string) (err error) { scenario.PurchaseOrders, err = l.LoadPurchaseOrders(path); return }},
		{ForecastsFile, func(path string) (err error) { scenario.Forecasts, err = l.LoadForecasts(path); return }},
	}
	for _, file := range optional {
		path := filepath.Join(dir, file.name)
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			l.logger.WithField("file", path).Debug("optional scenario file not found")
			continue
		}
		if err := file.load(path); err != nil {
			return nil, err
		}
	}

	l.logger.WithFields(logrus.Fields{
		"dir":             dir,
		"records":         len(scenario.TimePhased),
		"exceptions":      len(scenario.Exceptions),
		"purchase_orders": len(scenario.PurchaseOrders),
		"forecast_cells":  len(scenario.Forecasts),
	}).Info("scenario loaded")

	return scenario, nil
}

// LoadTimePhased loads time-phased MRP records from a CSV file
func (l *Loader) LoadTimePhased(filename string) ([]entities.TimePhasedRecord, error) {
	var records []entities.TimePhasedRecord
	err := l.readFile(filename, "time-phased", timePhasedHeader, func(row row) error {
		records = append(records, entities.TimePhasedRecord{
			ProductID:            entities.ProductID(row.str("product_id")),
			LocationID:           entities.LocationID(row.str("location_id")),
			WeekNumber:           int(row.num("week_number")),
			BeginningInventory:   row.num("beginning_inventory"),
			GrossRequirements:    row.num("gross_requirements"),
			ScheduledReceipts:    row.num("scheduled_receipts"),
			ProjectedAvailable:   row.num("projected_available"),
			NetRequirements:      row.num("net_requirements"),
			PlannedOrderReceipts: row.num("planned_order_receipts"),
			PlannedOrderReleases: row.num("planned_order_releases"),
			SafetyStock:          row.num("safety_stock"),
			ReorderPoint:         row.num("reorder_point"),
		})
		return nil
	})
	return records, err
}

// LoadLeadTimes loads per-product lead times from a CSV file
func (l *Loader) LoadLeadTimes(filename string) (map[entities.ProductID]int, error) {
	leadTimes := make(map[entities.ProductID]int)
	err := l.readFile(filename, "lead times", leadTimesHeader, func(row row) error {
		leadTimes[entities.ProductID(row.str("product_id"))] = int(row.num("lead_time_days"))
		return nil
	})
	return leadTimes, err
}

// LoadExceptions loads planning exceptions from a CSV file
func (l *Loader) LoadExceptions(filename string) ([]entities.PlanningException, error) {
	var exceptions []entities.PlanningException
	err := l.readFile(filename, "exceptions", exceptionsHeader, func(row row) error {
		date, err := parseDate(row.str("exception_date"))
		if err != nil {
			return fmt.Errorf("invalid exception_date: %w", err)
		}
		exceptions = append(exceptions, entities.PlanningException{
			ID:                 row.id(),
			ProductID:          entities.ProductID(row.str("product_id")),
			LocationID:         entities.LocationID(row.str("location_id")),
			ExceptionType:      entities.ParseExceptionType(row.str("exception_type")),
			Severity:           entities.ParseSeverity(row.str("severity")),
			ExceptionDate:      date,
			CurrentInventory:   row.num("current_inventory"),
			ProjectedInventory: row.num("projected_inventory"),
			SafetyStock:        row.num("safety_stock"),
			ShortageQuantity:   row.num("shortage_quantity"),
			ExcessQuantity:     row.num("excess_quantity"),
			ResolutionStatus:   entities.ParseResolutionStatus(row.str("resolution_status")),
		})
		return nil
	})
	return exceptions, err
}

// LoadPurchaseOrders loads purchase-order recommendations from a CSV file.
// An empty total_value is derived from quantity and unit cost.
func (l *Loader) LoadPurchaseOrders(filename string) ([]entities.PurchaseOrderRecommendation, error) {
	var recs []entities.PurchaseOrderRecommendation
	err := l.readFile(filename, "purchase orders", purchaseOrdersHeader, func(row row) error {
		orderDate, err := parseDate(row.str("recommended_order_date"))
		if err != nil {
			return fmt.Errorf("invalid recommended_order_date: %w", err)
		}
		var deliveryDate time.Time
		if s := row.str("expected_delivery_date"); s != "" {
			if deliveryDate, err = parseDate(s); err != nil {
				return fmt.Errorf("invalid expected_delivery_date: %w", err)
			}
		}

		quantity := row.num("recommended_quantity")
		unitCost := row.money("unit_cost")
		totalValue := unitCost.Mul(decimal.NewFromFloat(quantity))
		if row.str("total_value") != "" {
			totalValue = row.money("total_value")
		}

		rec, err := entities.NewPurchaseOrderRecommendation(
			row.id(),
			entities.ProductID(row.str("product_id")),
			entities.LocationID(row.str("location_id")),
			orderDate,
			deliveryDate,
			quantity,
			unitCost,
			totalValue,
			entities.ParseApprovalStatus(row.str("approval_status")),
		)
		if err != nil {
			return err
		}
		recs = append(recs, *rec)
		return nil
	})
	return recs, err
}

// LoadForecasts loads collaborative forecast cells from a CSV file
func (l *Loader) LoadForecasts(filename string) ([]entities.CollaborativeForecastCell, error) {
	var cells []entities.CollaborativeForecastCell
	err := l.readFile(filename, "forecasts", forecastsHeader, func(row row) error {
		month, err := entities.ParseMonth(row.str("month"))
		if err != nil {
			return err
		}
		cells = append(cells, entities.CollaborativeForecastCell{
			ProductID:             entities.ProductID(row.str("product_id")),
			CustomerID:            entities.CustomerID(row.str("customer_id")),
			LocationID:            entities.LocationID(row.str("location_id")),
			Month:                 month,
			LastYear:              row.num("last_year"),
			ForecastSalesGap:      row.num("forecast_sales_gap"),
			CalculatedForecast:    row.num("calculated_forecast"),
			Xamview:               row.num("xamview"),
			KAMForecastCorrection: row.num("kam_forecast_correction"),
			SalesManagerView:      row.num("sales_manager_view"),
			EffectiveForecast:     row.num("effective_forecast"),
		})
		return nil
	})
	return cells, err
}

// readFile opens filename and feeds every data row to fn
func (l *Loader) readFile(filename, kind string, expectedHeader []string, fn func(row) error) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	if err := l.read(file, kind, expectedHeader, fn); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}

func (l *Loader) read(r io.Reader, kind string, expectedHeader []string, fn func(row) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("%s CSV must have a header row", kind)
	}

	columns, err := indexHeader(records[0], expectedHeader)
	if err != nil {
		return fmt.Errorf("%s CSV header mismatch: %w", kind, err)
	}

	for i, record := range records[1:] {
		line := i + 2
		r := row{
			fields:  record,
			columns: columns,
			logger:  l.logger.WithFields(logrus.Fields{"kind": kind, "line": line}),
		}
		if err := fn(r); err != nil {
			return fmt.Errorf("%s CSV row %d: %w", kind, line, err)
		}
	}
	return nil
}

// indexHeader maps column names to positions; extra columns are ignored
func indexHeader(header, expected []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range expected {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %v", missing)
	}
	return columns, nil
}

type row struct {
	fields  []string
	columns map[string]int
	logger  logrus.FieldLogger
}

func (r row) str(column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// num reads a numeric cell; empty, malformed or non-finite cells read as 0
func (r row) num(column string) float64 {
	s := r.str(column)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		r.logger.WithField("column", column).WithField("value", s).Warn("malformed number read as 0")
		return 0
	}
	return v
}

func (r row) money(column string) decimal.Decimal {
	s := r.str(column)
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		r.logger.WithField("column", column).WithField("value", s).Warn("malformed amount read as 0")
		return decimal.Zero
	}
	return v
}

// id returns the id column, generating one when it is blank
func (r row) id() string {
	if id := r.str("id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
