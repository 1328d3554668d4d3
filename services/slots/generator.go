// Package slots expands availability ranges into fixed-length appointment slots.
package slots

import (
	"iter"
	"time"

	"slotbook/models"
)

type options struct {
	withinRange bool
}

// Option tunes Generate.
type Option func(*options)

// WithinRange drops a final slot that would end after the range does.
func WithinRange() Option {
	return func(o *options) { o.withinRange = true }
}

// Generate yields the slots of r in order, stepping by length from r.Start.
// A slot is emitted for every start before r.End, so by default the last one
// may run past the end of the range. Each iteration starts over from r.Start.
func Generate(providerID string, r models.TimeRange, length time.Duration, opts ...Option) iter.Seq[models.Slot] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(models.Slot) bool) {
		if length <= 0 {
			return
		}
		for current := r.Start; current.Before(r.End); current = current.Add(length) {
			end := current.Add(length)
			if o.withinRange && end.After(r.End) {
				return
			}
			if !yield(models.Slot{ProviderID: providerID, Start: current, End: end}) {
				return
			}
		}
	}
}

// ForSchedule chains Generate over every range of a provider's schedule.
func ForSchedule(p *models.Provider, length time.Duration, opts ...Option) iter.Seq[models.Slot] {
	return func(yield func(models.Slot) bool) {
		for _, r := range p.Schedule {
			for slot := range Generate(p.ID, r, length, opts...) {
				if !yield(slot) {
					return
				}
			}
		}
	}
}
