package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

func TestCostCategoryFor_Boundaries(t *testing.T) {
	tests := []struct {
		total    string
		expected entities.CostCategory
	}{
		{"0", entities.CostLow},
		{"10000", entities.CostLow},
		{"10000.01", entities.CostMedium},
		{"50000", entities.CostMedium},
		{"50000.01", entities.CostHigh},
		{"100000", entities.CostHigh},
		{"100000.01", entities.CostVeryHigh},
		{"-250", entities.CostLow},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			if got := CostCategoryFor(total); got != tt.expected {
				t.Errorf("CostCategoryFor(%s) = %s, want %s", tt.total, got, tt.expected)
			}
		})
	}
}

func TestDaysUntil_Ceiling(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		target   time.Time
		expected int
	}{
		{"same_instant", now, 0},
		{"one_hour_ahead", now.Add(time.Hour), 1},
		{"two_days_and_a_bit", now.Add(49 * time.Hour), 3},
		{"exactly_seven_days", now.AddDate(0, 0, 7), 7},
		{"half_day_overdue", now.Add(-12 * time.Hour), 0},
		{"thirty_hours_overdue", now.Add(-30 * time.Hour), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(tt.target, now); got != tt.expected {
				t.Errorf("DaysUntil() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestClassifier_ThresholdPolicy(t *testing.T) {
	classifier := NewClassifier(UrgencyPolicyThreshold)

	tests := []struct {
		days     int
		expected entities.UrgencyLevel
	}{
		{-1, entities.UrgencyCritical},
		{0, entities.UrgencyHigh},
		{2, entities.UrgencyHigh},
		{3, entities.UrgencyMedium},
		{7, entities.UrgencyMedium},
		{8, entities.UrgencyLow},
		{60, entities.UrgencyLow},
	}

	for _, tt := range tests {
		if got := classifier.UrgencyFor(tt.days); got != tt.expected {
			t.Errorf("UrgencyFor(%d) = %s, want %s", tt.days, got, tt.expected)
		}
	}
}

func TestClassifier_HorizonPolicy(t *testing.T) {
	classifier := NewClassifier(UrgencyPolicyHorizon)

	tests := []struct {
		days     int
		expected entities.UrgencyLevel
	}{
		{-4, entities.UrgencyImmediate},
		{0, entities.UrgencyImmediate},
		{1, entities.UrgencyUrgent},
		{3, entities.UrgencyUrgent},
		{4, entities.UrgencyNormal},
		{14, entities.UrgencyNormal},
		{15, entities.UrgencyFuture},
	}

	for _, tt := range tests {
		if got := classifier.UrgencyFor(tt.days); got != tt.expected {
			t.Errorf("UrgencyFor(%d) = %s, want %s", tt.days, got, tt.expected)
		}
	}
}

func TestClassifier_Classify(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	po := entities.PurchaseOrderRecommendation{
		ID:                   "PO-1",
		ProductID:            "WIDGET",
		RecommendedOrderDate: now.Add(36 * time.Hour),
		TotalValue:           decimal.RequireFromString("62500.50"),
	}

	result := NewClassifier(UrgencyPolicyThreshold).Classify(po, now)
	if result.DaysUntilOrder != 2 {
		t.Errorf("Expected 2 days until order, got %d", result.DaysUntilOrder)
	}
	if result.UrgencyLevel != entities.UrgencyHigh {
		t.Errorf("Expected high urgency, got %s", result.UrgencyLevel)
	}
	if result.CostCategory != entities.CostHigh {
		t.Errorf("Expected high cost, got %s", result.CostCategory)
	}

	all := NewClassifier(UrgencyPolicyHorizon).ClassifyAll([]entities.PurchaseOrderRecommendation{po, po}, now)
	if len(all) != 2 || all[0].UrgencyLevel != entities.UrgencyUrgent {
		t.Errorf("Expected two urgent classifications, got %+v", all)
	}
	if all[1].ID != "PO-1" {
		t.Errorf("Expected recommendation fields to be carried, got %q", all[1].ID)
	}
}

func TestParseUrgencyPolicy(t *testing.T) {
	if p, err := ParseUrgencyPolicy(""); err != nil || p != UrgencyPolicyThreshold {
		t.Errorf("Expected empty policy to default to threshold, got %s (%v)", p, err)
	}
	if p, err := ParseUrgencyPolicy("Horizon"); err != nil || p != UrgencyPolicyHorizon {
		t.Errorf("Expected horizon policy, got %s (%v)", p, err)
	}
	if _, err := ParseUrgencyPolicy("blend"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
