package services

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const (
	// ageWeightPerDay is the score added per day of exception age
	ageWeightPerDay = 2
	// maxAgeContribution caps the age term (reached at 25 days)
	maxAgeContribution = 50
)

var severityWeights = map[entities.Severity]int{
	entities.SeverityCritical: 100,
	entities.SeverityHigh:     75,
	entities.SeverityMedium:   50,
	entities.SeverityLow:      25,
}

var exceptionTypeWeights = map[entities.ExceptionType]int{
	entities.Stockout:          50,
	entities.OrderUrgency:      40,
	entities.BelowSafetyStock:  30,
	entities.ForecastDeviation: 20,
	entities.ExcessInventory:   10,
}

// SeverityWeight returns the ranking weight of a severity; unknown values weigh as low
func SeverityWeight(s entities.Severity) int {
	if w, ok := severityWeights[s]; ok {
		return w
	}
	return severityWeights[entities.SeverityLow]
}

// ExceptionTypeWeight returns the ranking weight of an exception type;
// unknown values weigh as excess_inventory
func ExceptionTypeWeight(t entities.ExceptionType) int {
	if w, ok := exceptionTypeWeights[t]; ok {
		return w
	}
	return exceptionTypeWeights[entities.ExcessInventory]
}

// AgeDays returns the whole days elapsed since the exception date, rounded up.
// Future-dated exceptions yield a negative age.
func AgeDays(exceptionDate, now time.Time) int {
	return ceilDays(now.Sub(exceptionDate))
}

// PriorityScore is the additive ranking score for an exception. The age term
// is capped at 50 and the total never drops below zero.
func PriorityScore(severity entities.Severity, exceptionType entities.ExceptionType, ageDays int) int {
	score := SeverityWeight(severity) + ExceptionTypeWeight(exceptionType) + min(ageDays*ageWeightPerDay, maxAgeContribution)
	return max(score, 0)
}

// PrioritizeExceptions returns a copy of exceptions with AgeDays and PriorityScore
// populated, sorted by descending score. Equal scores keep their input order.
func PrioritizeExceptions(exceptions []entities.PlanningException, now time.Time) []entities.PlanningException {
	ranked := make([]entities.PlanningException, len(exceptions))
	for i, exc := range exceptions {
		exc.AgeDays = AgeDays(exc.ExceptionDate, now)
		exc.PriorityScore = PriorityScore(exc.Severity, exc.ExceptionType, exc.AgeDays)
		ranked[i] = exc
	}

	slices.SortStableFunc(ranked, func(a, b entities.PlanningException) int {
		return cmp.Compare(b.PriorityScore, a.PriorityScore)
	})
	return ranked
}

// ceilDays converts a duration to whole days, counting any partial day as a full one
func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
