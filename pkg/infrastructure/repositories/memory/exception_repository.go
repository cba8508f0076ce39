package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// ExceptionRepository provides in-memory planning exception storage
type ExceptionRepository struct {
	mu         sync.RWMutex
	exceptions []entities.PlanningException
	index      map[string]int
}

// NewExceptionRepository creates a new in-memory exception repository
func NewExceptionRepository() *ExceptionRepository {
	return &ExceptionRepository{
		exceptions: []entities.PlanningException{},
		index:      make(map[string]int),
	}
}

// Verify interface compliance
var _ repositories.ExceptionRepository = (*ExceptionRepository)(nil)

// LoadExceptions appends exceptions to the repository
func (r *ExceptionRepository) LoadExceptions(exceptions []entities.PlanningException) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, exc := range exceptions {
		r.index[exc.ID] = len(r.exceptions)
		r.exceptions = append(r.exceptions, exc)
	}
}

// GetExceptions returns all exceptions in load order
func (r *ExceptionRepository) GetExceptions(ctx context.Context) ([]entities.PlanningException, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.exceptions), nil
}

// UpdateResolutionStatus changes the resolution status of an exception
func (r *ExceptionRepository) UpdateResolutionStatus(ctx context.Context, id string, status entities.ResolutionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, exists := r.index[id]
	if !exists {
		return fmt.Errorf("exception %s: %w", id, repositories.ErrNotFound)
	}
	r.exceptions[i].ResolutionStatus = status
	return nil
}
