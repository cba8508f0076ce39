package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// PurchaseOrderRepository provides in-memory purchase-order recommendation storage
type PurchaseOrderRepository struct {
	mu              sync.RWMutex
	recommendations []entities.PurchaseOrderRecommendation
}

// NewPurchaseOrderRepository creates a new in-memory purchase-order repository
func NewPurchaseOrderRepository() *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		recommendations: []entities.PurchaseOrderRecommendation{},
	}
}

// Verify interface compliance
var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

// LoadRecommendations appends recommendations to the repository
func (r *PurchaseOrderRepository) LoadRecommendations(recs []entities.PurchaseOrderRecommendation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recommendations = append(r.recommendations, recs...)
}

// GetRecommendations returns all recommendations in load order
func (r *PurchaseOrderRepository) GetRecommendations(ctx context.Context) ([]entities.PurchaseOrderRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.recommendations), nil
}
