package repositories

import (
	"context"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// ExceptionRepository provides access to detected planning exceptions
type ExceptionRepository interface {
	GetExceptions(ctx context.Context) ([]entities.PlanningException, error)
	UpdateResolutionStatus(ctx context.Context, id string, status entities.ResolutionStatus) error
}
