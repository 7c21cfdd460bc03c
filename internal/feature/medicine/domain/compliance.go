package domain

import (
	"math"
	"slices"

	"medicine_backend/internal/feature/medicine/domain/entity"
)

// Compliance summarises an intake log.
type Compliance struct {
	Total   int
	Taken   int
	Missed  int
	Percent int
}

// ComputeCompliance counts taken and missed events. Percent is
// round(100 * taken / total), or 0 for an empty log.
func ComputeCompliance(log []entity.IntakeEvent) Compliance {
	c := Compliance{Total: len(log)}
	for _, ev := range log {
		if ev.Taken {
			c.Taken++
		}
	}
	c.Missed = c.Total - c.Taken
	if c.Total > 0 {
		c.Percent = int(math.Round(100 * float64(c.Taken) / float64(c.Total)))
	}
	return c
}

// NewestFirst returns a copy of log sorted by descending date.
// Events with equal timestamps keep their reverse insertion order.
func NewestFirst(log []entity.IntakeEvent) []entity.IntakeEvent {
	out := slices.Clone(log)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b entity.IntakeEvent) int {
		return b.Date.Compare(a.Date)
	})
	if out == nil {
		out = []entity.IntakeEvent{}
	}
	return out
}
