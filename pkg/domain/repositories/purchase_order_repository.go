package repositories

import (
	"context"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// PurchaseOrderRepository provides access to purchase-order recommendations
type PurchaseOrderRepository interface {
	GetRecommendations(ctx context.Context) ([]entities.PurchaseOrderRecommendation, error)
}
