package planning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// ErrInvalidValue is returned for forecast values that are NaN or infinite
var ErrInvalidValue = errors.New("forecast value must be a finite number")

// ErrInvalidPosition is returned for an event log read before position 0
var ErrInvalidPosition = errors.New("event position must not be negative")

// PartialRedistributionError reports a fair-share write-back that stopped
// part way. Writes are not transactional: customers in Applied keep their new
// correction and the caller retries the whole redistribution.
type PartialRedistributionError struct {
	Month   string
	Applied []entities.CustomerID
	Failed  map[entities.CustomerID]error
}

func (e *PartialRedistributionError) Error() string {
	failed := make([]string, 0, len(e.Failed))
	for customer, err := range e.Failed {
		failed = append(failed, fmt.Sprintf("%s: %v", customer, err))
	}
	return fmt.Sprintf(
		"redistribution for %s partially applied (%d applied, %d failed): %s",
		e.Month, len(e.Applied), len(e.Failed), strings.Join(failed, "; "),
	)
}
