package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// UrgencyPolicy selects which urgency rule classifies purchase orders.
// The two rules use different thresholds and labels and are never mixed.
type UrgencyPolicy int

const (
	// UrgencyPolicyThreshold: critical < 0 days, high <= 2, medium <= 7, else low
	UrgencyPolicyThreshold UrgencyPolicy = iota
	// UrgencyPolicyHorizon: immediate <= 0 days, urgent <= 3, future > 14, else normal
	UrgencyPolicyHorizon
)

// String method for UrgencyPolicy enum
func (p UrgencyPolicy) String() string {
	switch p {
	case UrgencyPolicyThreshold:
		return "threshold"
	case UrgencyPolicyHorizon:
		return "horizon"
	default:
		return "unknown"
	}
}

// ParseUrgencyPolicy parses a configured policy name
func ParseUrgencyPolicy(s string) (UrgencyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "threshold":
		return UrgencyPolicyThreshold, nil
	case "horizon":
		return UrgencyPolicyHorizon, nil
	default:
		return UrgencyPolicyThreshold, fmt.Errorf("unknown urgency policy: %q", s)
	}
}

var (
	veryHighCostThreshold = decimal.NewFromInt(100000)
	highCostThreshold     = decimal.NewFromInt(50000)
	mediumCostThreshold   = decimal.NewFromInt(10000)
)

// POClassification is the derived urgency and cost tier of a recommendation
type POClassification struct {
	UrgencyLevel   entities.UrgencyLevel `json:"urgency_level"`
	CostCategory   entities.CostCategory `json:"cost_category"`
	DaysUntilOrder int                   `json:"days_until_order"`
}

// ClassifiedPurchaseOrder pairs a recommendation with its classification
type ClassifiedPurchaseOrder struct {
	entities.PurchaseOrderRecommendation
	POClassification
}

// Classifier classifies purchase-order recommendations under one urgency policy
type Classifier struct {
	Policy UrgencyPolicy
}

// NewClassifier creates a classifier for the given policy
func NewClassifier(policy UrgencyPolicy) *Classifier {
	return &Classifier{Policy: policy}
}

// Classify derives urgency and cost category for a single recommendation
func (c *Classifier) Classify(po entities.PurchaseOrderRecommendation, now time.Time) POClassification {
	days := DaysUntil(po.RecommendedOrderDate, now)
	return POClassification{
		UrgencyLevel:   c.UrgencyFor(days),
		CostCategory:   CostCategoryFor(po.TotalValue),
		DaysUntilOrder: days,
	}
}

// ClassifyAll classifies every recommendation, preserving input order
func (c *Classifier) ClassifyAll(pos []entities.PurchaseOrderRecommendation, now time.Time) []ClassifiedPurchaseOrder {
	classified := make([]ClassifiedPurchaseOrder, len(pos))
	for i, po := range pos {
		classified[i] = ClassifiedPurchaseOrder{
			PurchaseOrderRecommendation: po,
			POClassification:            c.Classify(po, now),
		}
	}
	return classified
}

// UrgencyFor maps days until the order date to an urgency level under the policy
func (c *Classifier) UrgencyFor(days int) entities.UrgencyLevel {
	switch c.Policy {
	case UrgencyPolicyHorizon:
		switch {
		case days <= 0:
			return entities.UrgencyImmediate
		case days <= 3:
			return entities.UrgencyUrgent
		case days > 14:
			return entities.UrgencyFuture
		default:
			return entities.UrgencyNormal
		}
	default:
		switch {
		case days < 0:
			return entities.UrgencyCritical
		case days <= 2:
			return entities.UrgencyHigh
		case days <= 7:
			return entities.UrgencyMedium
		default:
			return entities.UrgencyLow
		}
	}
}

// DaysUntil returns whole days from now until target; a partial day counts as a full day
func DaysUntil(target, now time.Time) int {
	return ceilDays(target.Sub(now))
}

// CostCategoryFor buckets a total order value. Comparisons are strict and exact.
func CostCategoryFor(total decimal.Decimal) entities.CostCategory {
	switch {
	case total.GreaterThan(veryHighCostThreshold):
		return entities.CostVeryHigh
	case total.GreaterThan(highCostThreshold):
		return entities.CostHigh
	case total.GreaterThan(mediumCostThreshold):
		return entities.CostMedium
	default:
		return entities.CostLow
	}
}
