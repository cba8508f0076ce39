package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestViewMode_Extract(t *testing.T) {
	record := TimePhasedRecord{
		GrossRequirements:    40,
		ScheduledReceipts:    15,
		PlannedOrderReceipts: 25,
		ProjectedAvailable:   -5,
	}

	testCases := []struct {
		mode     ViewMode
		expected float64
	}{
		{ViewDemand, 40},
		{ViewSupply, 40},
		{ViewInventory, -5},
		{ViewOrders, 25},
	}

	for _, tc := range testCases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			if got := tc.mode.Extract(record); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestParseViewMode(t *testing.T) {
	mode, err := ParseViewMode(" Inventory ")
	if err != nil {
		t.Fatalf("Expected valid view mode to parse: %v", err)
	}
	if mode != ViewInventory {
		t.Errorf("Expected inventory, got %s", mode)
	}

	_, err = ParseViewMode("forecast")
	if err == nil {
		t.Fatal("Expected error for unknown view mode")
	}
	if err.Error() != `unknown view mode: "forecast"` {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}

func TestParse_UnknownTagsFallBackToLowestBucket(t *testing.T) {
	if got := ParseSeverity("catastrophic"); got != SeverityLow {
		t.Errorf("Expected unknown severity to map to low, got %s", got)
	}
	if got := ParseExceptionType("supplier_delay"); got != ExcessInventory {
		t.Errorf("Expected unknown type to map to excess_inventory, got %s", got)
	}
	if got := ParseResolutionStatus(""); got != ResolutionOpen {
		t.Errorf("Expected empty status to map to open, got %s", got)
	}
	if got := ParseApprovalStatus("??"); got != ApprovalPending {
		t.Errorf("Expected unknown approval to map to pending, got %s", got)
	}
	if got := ParseExceptionType("Below-Safety-Stock"); got != BelowSafetyStock {
		t.Errorf("Expected dashed tag to parse, got %s", got)
	}
}

func TestParseResolutionStatusStrict(t *testing.T) {
	tests := []struct {
		input    string
		expected ResolutionStatus
	}{
		{"open", ResolutionOpen},
		{"In Progress", ResolutionInProgress},
		{"in-progress", ResolutionInProgress},
		{" RESOLVED ", ResolutionResolved},
		{"ignored", ResolutionIgnored},
	}
	for _, tt := range tests {
		got, err := ParseResolutionStatusStrict(tt.input)
		if err != nil {
			t.Errorf("ParseResolutionStatusStrict(%q) returned error: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseResolutionStatusStrict(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}

	for _, bad := range []string{"", "resolvd", "closed"} {
		if _, err := ParseResolutionStatusStrict(bad); err == nil {
			t.Errorf("Expected error for status %q", bad)
		}
	}
}

func TestInventoryStatus_Escalate(t *testing.T) {
	if got := StatusCritical.Escalate(StatusWarning); got != StatusCritical {
		t.Errorf("Expected critical, got %s", got)
	}
	if got := StatusWarning.Escalate(StatusStockout); got != StatusStockout {
		t.Errorf("Expected stockout, got %s", got)
	}
}

func TestPlanningException_JSONUsesTags(t *testing.T) {
	exc := PlanningException{
		ID:            "EX1",
		ExceptionType: BelowSafetyStock,
		Severity:      SeverityHigh,
	}

	data, err := json.Marshal(exc)
	if err != nil {
		t.Fatalf("Failed to marshal exception: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal exception: %v", err)
	}
	if decoded["exception_type"] != "below_safety_stock" {
		t.Errorf("Expected exception_type tag, got %v", decoded["exception_type"])
	}
	if decoded["severity"] != "high" {
		t.Errorf("Expected severity tag, got %v", decoded["severity"])
	}
}

func TestItemRollup_Values(t *testing.T) {
	rollup := ItemRollup{
		Weeks: []WeekValue{{Week: 1, Value: 10}, {Week: 2, Value: 20}, {Week: 4, Value: 40}},
	}

	var weeks []int
	for week := range rollup.Values() {
		weeks = append(weeks, week)
		if week == 2 {
			break
		}
	}
	if len(weeks) != 2 || weeks[0] != 1 || weeks[1] != 2 {
		t.Errorf("Expected early stop after week 2, got %v", weeks)
	}

	if got := rollup.Value(3); got != 0 {
		t.Errorf("Expected missing week to read 0, got %v", got)
	}
	if got := rollup.Value(4); got != 40 {
		t.Errorf("Expected week 4 value 40, got %v", got)
	}
}

func TestPurchaseOrderRecommendation_Validation(t *testing.T) {
	orderDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	deliveryDate := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	po, err := NewPurchaseOrderRecommendation(
		"PO1", "WIDGET", "DC1", orderDate, deliveryDate, 100,
		decimal.NewFromInt(12), decimal.NewFromInt(1200), ApprovalPending,
	)
	if err != nil {
		t.Fatalf("Expected valid recommendation creation to succeed: %v", err)
	}
	if !po.TotalValue.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("Expected total value 1200, got %s", po.TotalValue)
	}

	testCases := []struct {
		name        string
		productID   ProductID
		orderDate   time.Time
		delivery    time.Time
		expectError string
	}{
		{"empty product", "", orderDate, deliveryDate, "product id cannot be empty"},
		{"missing order date", "WIDGET", time.Time{}, deliveryDate, "recommended order date cannot be empty"},
		{
			"delivery before order",
			"WIDGET",
			deliveryDate,
			orderDate,
			"expected delivery date 2025-03-01 cannot be before order date 2025-03-15",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPurchaseOrderRecommendation(
				"PO1", tc.productID, "DC1", tc.orderDate, tc.delivery, 1,
				decimal.Zero, decimal.Zero, ApprovalPending,
			)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Time
	}{
		{"2025-07", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-07-19", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range testCases {
		got, err := ParseMonth(tc.input)
		if err != nil {
			t.Fatalf("Expected %s to parse: %v", tc.input, err)
		}
		if !got.Equal(tc.expected) {
			t.Errorf("ParseMonth(%s) = %v, want %v", tc.input, got, tc.expected)
		}
	}

	if _, err := ParseMonth("July"); err == nil {
		t.Error("Expected error for invalid month")
	}
}
