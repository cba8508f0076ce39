package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Format of rendered reports
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Printer renders planning reports in one format
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Rollups renders a rollup report
func (p *Printer) Rollups(report *dto.RollupReport) error {
	switch p.format {
	case FormatJSON:
		return p.json(report)
	case FormatCSV:
		return p.csv(rollupRows(report))
	default:
		return p.rollupText(report)
	}
}

// Exceptions renders a ranked exception report
func (p *Printer) Exceptions(report *dto.ExceptionReport) error {
	switch p.format {
	case FormatJSON:
		return p.json(report)
	case FormatCSV:
		return p.csv(exceptionRows(report))
	default:
		return p.exceptionText(report)
	}
}

// PurchaseOrders renders a classified purchase order report
func (p *Printer) PurchaseOrders(report *dto.PurchaseOrderReport) error {
	switch p.format {
	case FormatJSON:
		return p.json(report)
	case FormatCSV:
		return p.csv(purchaseOrderRows(report))
	default:
		return p.purchaseOrderText(report)
	}
}

// ForecastGrid renders the forecast cells of one item with their aggregates
func (p *Printer) ForecastGrid(grid *dto.ForecastGrid) error {
	switch p.format {
	case FormatJSON:
		return p.json(grid)
	case FormatCSV:
		return p.csv(forecastRows(grid))
	default:
		return p.forecastText(grid)
	}
}

// Redistribution renders the outcome of a forecast write
func (p *Printer) Redistribution(result *dto.RedistributionResult) error {
	switch p.format {
	case FormatJSON:
		return p.json(result)
	case FormatCSV:
		rows := [][]string{{"product_id", "location_id", "customer_id", "value"}}
		for _, customer := range result.Applied {
			rows = append(rows, []string{
				string(result.ProductID), string(result.LocationID), string(customer),
				strconv.FormatInt(result.Allocation.Values[customer], 10),
			})
		}
		return p.csv(rows)
	default:
		return p.redistributionText(result)
	}
}

func (p *Printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func (p *Printer) csv(rows [][]string) error {
	w := csv.NewWriter(p.w)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func (p *Printer) rollupText(report *dto.RollupReport) error {
	fmt.Fprintf(p.w, "Inventory Rollup (%s view", report.Mode)
	if report.Horizon > 0 {
		fmt.Fprintf(p.w, ", %d weeks", report.Horizon)
	}
	fmt.Fprintf(p.w, ")\n==========================\n\n")

	fmt.Fprintf(p.w, "%-15s %-10s %-10s %10s %10s %10s %6s  %s\n",
		"Product", "Location", "Status", "Stock", "Safety", "Reorder", "LT", "Weeks")
	fmt.Fprintf(p.w, "%-15s %-10s %-10s %10s %10s %10s %6s  %s\n",
		"---------------", "----------", "----------", "----------", "----------", "----------", "------", "-----")

	for _, r := range report.Rollups {
		var weeks []string
		for week, value := range r.Values() {
			weeks = append(weeks, fmt.Sprintf("%d:%s", week, formatQty(value)))
		}
		fmt.Fprintf(p.w, "%-15s %-10s %-10s %10s %10s %10s %6d  %s\n",
			r.ProductID, r.LocationID, r.InventoryStatus,
			formatQty(r.CurrentStock), formatQty(r.SafetyStock), formatQty(r.ReorderPoint),
			r.LeadTimeDays, strings.Join(weeks, " "))
	}

	fmt.Fprintf(p.w, "\n%d items: %d stockout, %d critical, %d warning, %d optimal\n",
		len(report.Rollups),
		report.StatusCounts[entities.StatusStockout],
		report.StatusCounts[entities.StatusCritical],
		report.StatusCounts[entities.StatusWarning],
		report.StatusCounts[entities.StatusOptimal])
	return nil
}

func rollupRows(report *dto.RollupReport) [][]string {
	rows := [][]string{{
		"product_id", "location_id", "inventory_status", "current_stock", "safety_stock",
		"reorder_point", "lead_time_days", "view_mode", "week", "value",
	}}
	for _, r := range report.Rollups {
		for week, value := range r.Values() {
			rows = append(rows, []string{
				string(r.ProductID), string(r.LocationID), r.InventoryStatus.String(),
				formatQty(r.CurrentStock), formatQty(r.SafetyStock), formatQty(r.ReorderPoint),
				strconv.Itoa(r.LeadTimeDays), r.ViewMode.String(), strconv.Itoa(week), formatQty(value),
			})
		}
	}
	return rows
}

func (p *Printer) exceptionText(report *dto.ExceptionReport) error {
	fmt.Fprintf(p.w, "Planning Exceptions as of %s\n", report.AsOf.Format("2006-01-02 15:04"))
	fmt.Fprintf(p.w, "===================================\n\n")

	fmt.Fprintf(p.w, "%5s %-12s %-15s %-10s %-20s %-9s %5s %-12s\n",
		"Score", "ID", "Product", "Location", "Type", "Severity", "Age", "Status")
	fmt.Fprintf(p.w, "%5s %-12s %-15s %-10s %-20s %-9s %5s %-12s\n",
		"-----", "------------", "---------------", "----------", "--------------------", "---------", "-----", "------------")

	for _, e := range report.Exceptions {
		fmt.Fprintf(p.w, "%5d %-12s %-15s %-10s %-20s %-9s %5d %-12s\n",
			e.PriorityScore, e.ID, e.ProductID, e.LocationID,
			e.ExceptionType, e.Severity, e.AgeDays, e.ResolutionStatus)
	}

	fmt.Fprintf(p.w, "\n%d exceptions: %d critical, %d high, %d medium, %d low\n",
		len(report.Exceptions),
		report.SeverityCounts[entities.SeverityCritical],
		report.SeverityCounts[entities.SeverityHigh],
		report.SeverityCounts[entities.SeverityMedium],
		report.SeverityCounts[entities.SeverityLow])
	return nil
}

func exceptionRows(report *dto.ExceptionReport) [][]string {
	rows := [][]string{{
		"priority_score", "id", "product_id", "location_id", "exception_type", "severity",
		"exception_date", "age_days", "shortage_quantity", "excess_quantity", "resolution_status",
	}}
	for _, e := range report.Exceptions {
		rows = append(rows, []string{
			strconv.Itoa(e.PriorityScore), e.ID, string(e.ProductID), string(e.LocationID),
			e.ExceptionType.String(), e.Severity.String(), e.ExceptionDate.Format("2006-01-02"),
			strconv.Itoa(e.AgeDays), formatQty(e.ShortageQuantity), formatQty(e.ExcessQuantity),
			e.ResolutionStatus.String(),
		})
	}
	return rows
}

func (p *Printer) purchaseOrderText(report *dto.PurchaseOrderReport) error {
	fmt.Fprintf(p.w, "Purchase Order Recommendations as of %s (%s policy)\n",
		report.AsOf.Format("2006-01-02 15:04"), report.Policy)
	fmt.Fprintf(p.w, "====================================================\n\n")

	fmt.Fprintf(p.w, "%-12s %-15s %-10s %-12s %5s %-10s %14s %-10s\n",
		"ID", "Product", "Location", "Order Date", "Days", "Urgency", "Total Value", "Cost")
	fmt.Fprintf(p.w, "%-12s %-15s %-10s %-12s %5s %-10s %14s %-10s\n",
		"------------", "---------------", "----------", "------------", "-----", "----------", "--------------", "----------")

	for _, o := range report.Orders {
		fmt.Fprintf(p.w, "%-12s %-15s %-10s %-12s %5d %-10s %14s %-10s\n",
			o.ID, o.ProductID, o.LocationID, o.RecommendedOrderDate.Format("2006-01-02"),
			o.DaysUntilOrder, o.UrgencyLevel, o.TotalValue.StringFixed(2), o.CostCategory)
	}

	fmt.Fprintf(p.w, "\n%d orders, total value %s\n", len(report.Orders), report.TotalValue.StringFixed(2))
	return nil
}

func purchaseOrderRows(report *dto.PurchaseOrderReport) [][]string {
	rows := [][]string{{
		"id", "product_id", "location_id", "recommended_order_date", "days_until_order",
		"urgency_level", "recommended_quantity", "unit_cost", "total_value", "cost_category",
		"approval_status",
	}}
	for _, o := range report.Orders {
		rows = append(rows, []string{
			o.ID, string(o.ProductID), string(o.LocationID), o.RecommendedOrderDate.Format("2006-01-02"),
			strconv.Itoa(o.DaysUntilOrder), o.UrgencyLevel.String(), formatQty(o.RecommendedQuantity),
			o.UnitCost.String(), o.TotalValue.StringFixed(2), o.CostCategory.String(),
			o.ApprovalStatus.String(),
		})
	}
	return rows
}

func (p *Printer) forecastText(grid *dto.ForecastGrid) error {
	fmt.Fprintf(p.w, "Collaborative Forecast for %s at %s\n", grid.ProductID, grid.LocationID)
	fmt.Fprintf(p.w, "========================================\n\n")

	fmt.Fprintf(p.w, "%-8s %-12s %10s %10s %10s %10s %10s\n",
		"Month", "Customer", "Last Year", "Calc", "KAM Corr", "Mgr View", "Effective")
	fmt.Fprintf(p.w, "%-8s %-12s %10s %10s %10s %10s %10s\n",
		"--------", "------------", "----------", "----------", "----------", "----------", "----------")

	for _, c := range mergeForecastRows(grid) {
		fmt.Fprintf(p.w, "%-8s %-12s %10s %10s %10s %10s %10s\n",
			c.Month.Format("2006-01"), c.CustomerID,
			formatQty(c.LastYear), formatQty(c.CalculatedForecast), formatQty(c.KAMForecastCorrection),
			formatQty(c.SalesManagerView), formatQty(c.EffectiveForecast))
	}
	return nil
}

func forecastRows(grid *dto.ForecastGrid) [][]string {
	rows := [][]string{{
		"product_id", "customer_id", "location_id", "month", "last_year", "forecast_sales_gap",
		"calculated_forecast", "xamview", "kam_forecast_correction", "sales_manager_view",
		"effective_forecast",
	}}
	for _, c := range mergeForecastRows(grid) {
		rows = append(rows, []string{
			string(c.ProductID), string(c.CustomerID), string(c.LocationID), c.Month.Format("2006-01"),
			formatQty(c.LastYear), formatQty(c.ForecastSalesGap), formatQty(c.CalculatedForecast),
			formatQty(c.Xamview), formatQty(c.KAMForecastCorrection), formatQty(c.SalesManagerView),
			formatQty(c.EffectiveForecast),
		})
	}
	return rows
}

// mergeForecastRows lists each month's aggregate row ahead of its customers
func mergeForecastRows(grid *dto.ForecastGrid) []entities.CollaborativeForecastCell {
	byMonth := make(map[string][]entities.CollaborativeForecastCell)
	for _, c := range grid.Cells {
		month := c.Month.Format("2006-01")
		byMonth[month] = append(byMonth[month], c)
	}

	rows := make([]entities.CollaborativeForecastCell, 0, len(grid.Cells)+len(grid.Aggregates))
	for _, agg := range grid.Aggregates {
		rows = append(rows, agg)
		rows = append(rows, byMonth[agg.Month.Format("2006-01")]...)
	}
	return rows
}

func (p *Printer) redistributionText(result *dto.RedistributionResult) error {
	if result.Allocation.Values == nil {
		for _, customer := range result.Applied {
			fmt.Fprintf(p.w, "Updated %s for %s at %s\n", customer, result.ProductID, result.LocationID)
		}
		return nil
	}

	fmt.Fprintf(p.w, "Redistributed %s across %d customers for %s at %s (%s)\n",
		formatQty(result.Allocation.Target), len(result.Applied),
		result.ProductID, result.LocationID, result.Allocation.Month.Format("2006-01"))
	for _, customer := range result.Allocation.CustomerOrder() {
		fmt.Fprintf(p.w, "  %-12s %10d\n", customer, result.Allocation.Values[customer])
	}
	fmt.Fprintf(p.w, "Allocated total %d\n", result.Allocation.AllocatedTotal())
	return nil
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
