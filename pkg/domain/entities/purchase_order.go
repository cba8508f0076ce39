package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus of a purchase-order recommendation
type ApprovalStatus int

const (
	ApprovalPending ApprovalStatus = iota
	ApprovalApproved
	ApprovalRejected
	ApprovalModified
	ApprovalConverted
)

// String method for ApprovalStatus enum
func (a ApprovalStatus) String() string {
	switch a {
	case ApprovalPending:
		return "pending"
	case ApprovalApproved:
		return "approved"
	case ApprovalRejected:
		return "rejected"
	case ApprovalModified:
		return "modified"
	case ApprovalConverted:
		return "converted"
	default:
		return "unknown"
	}
}

// ParseApprovalStatus maps unknown tags to pending
func ParseApprovalStatus(s string) ApprovalStatus {
	switch normalizeTag(s) {
	case "approved":
		return ApprovalApproved
	case "rejected":
		return ApprovalRejected
	case "modified":
		return ApprovalModified
	case "converted":
		return ApprovalConverted
	default:
		return ApprovalPending
	}
}

// MarshalText implements encoding.TextMarshaler
func (a ApprovalStatus) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *ApprovalStatus) UnmarshalText(text []byte) error {
	*a = ParseApprovalStatus(string(text))
	return nil
}

// UrgencyLevel of a purchase-order recommendation. Two label sets exist, one
// per urgency policy; a classifier only ever emits the labels of its policy.
type UrgencyLevel int

const (
	// Threshold policy labels
	UrgencyLow UrgencyLevel = iota
	UrgencyMedium
	UrgencyHigh
	UrgencyCritical

	// Horizon policy labels
	UrgencyFuture
	UrgencyNormal
	UrgencyUrgent
	UrgencyImmediate
)

// String method for UrgencyLevel enum
func (u UrgencyLevel) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyMedium:
		return "medium"
	case UrgencyHigh:
		return "high"
	case UrgencyCritical:
		return "critical"
	case UrgencyFuture:
		return "future"
	case UrgencyNormal:
		return "normal"
	case UrgencyUrgent:
		return "urgent"
	case UrgencyImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// ParseUrgencyLevel maps unknown tags to low
func ParseUrgencyLevel(s string) UrgencyLevel {
	switch normalizeTag(s) {
	case "medium":
		return UrgencyMedium
	case "high":
		return UrgencyHigh
	case "critical":
		return UrgencyCritical
	case "future":
		return UrgencyFuture
	case "normal":
		return UrgencyNormal
	case "urgent":
		return UrgencyUrgent
	case "immediate":
		return UrgencyImmediate
	default:
		return UrgencyLow
	}
}

// MarshalText implements encoding.TextMarshaler
func (u UrgencyLevel) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *UrgencyLevel) UnmarshalText(text []byte) error {
	*u = ParseUrgencyLevel(string(text))
	return nil
}

// CostCategory buckets a recommendation by total order value
type CostCategory int

const (
	CostLow CostCategory = iota
	CostMedium
	CostHigh
	CostVeryHigh
)

// String method for CostCategory enum
func (c CostCategory) String() string {
	switch c {
	case CostLow:
		return "low"
	case CostMedium:
		return "medium"
	case CostHigh:
		return "high"
	case CostVeryHigh:
		return "very_high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (c CostCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *CostCategory) UnmarshalText(text []byte) error {
	switch normalizeTag(string(text)) {
	case "very_high":
		*c = CostVeryHigh
	case "high":
		*c = CostHigh
	case "medium":
		*c = CostMedium
	default:
		*c = CostLow
	}
	return nil
}

// PurchaseOrderRecommendation is a buy recommendation produced by planning
type PurchaseOrderRecommendation struct {
	ID                   string          `json:"id"`
	ProductID            ProductID       `json:"product_id"`
	LocationID           LocationID      `json:"location_id"`
	RecommendedOrderDate time.Time       `json:"recommended_order_date"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date"`
	RecommendedQuantity  float64         `json:"recommended_quantity"`
	UnitCost             decimal.Decimal `json:"unit_cost"`
	TotalValue           decimal.Decimal `json:"total_value"`
	ApprovalStatus       ApprovalStatus  `json:"approval_status"`
}

// NewPurchaseOrderRecommendation creates a validated PurchaseOrderRecommendation
func NewPurchaseOrderRecommendation(
	id string,
	productID ProductID,
	locationID LocationID,
	orderDate, deliveryDate time.Time,
	quantity float64,
	unitCost, totalValue decimal.Decimal,
	status ApprovalStatus,
) (*PurchaseOrderRecommendation, error) {
	if string(productID) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if orderDate.IsZero() {
		return nil, fmt.Errorf("recommended order date cannot be empty")
	}
	if !deliveryDate.IsZero() && deliveryDate.Before(orderDate) {
		return nil, fmt.Errorf(
			"expected delivery date %s cannot be before order date %s",
			deliveryDate.Format("2006-01-02"),
			orderDate.Format("2006-01-02"),
		)
	}

	return &PurchaseOrderRecommendation{
		ID:                   id,
		ProductID:            productID,
		LocationID:           locationID,
		RecommendedOrderDate: orderDate,
		ExpectedDeliveryDate: deliveryDate,
		RecommendedQuantity:  quantity,
		UnitCost:             unitCost,
		TotalValue:           totalValue,
		ApprovalStatus:       status,
	}, nil
}
