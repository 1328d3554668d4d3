package models

import (
	"time"
)

// TimeRange is a block of time a provider is available for appointments.
// Both bounds keep the UTC offset they were submitted with.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps uses the open-interval test: touching ranges do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t falls in [Start, End).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// TimeRangeInput is the wire form of a TimeRange before validation.
type TimeRangeInput struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// Provider owns an append-only schedule of non-overlapping time ranges.
type Provider struct {
	ID        string      `json:"provider_id"`
	Schedule  []TimeRange `json:"schedule"`
	CreatedAt time.Time   `json:"created_at,omitzero"`
	UpdatedAt time.Time   `json:"updated_at,omitzero"`
}

// Clone returns a deep copy so callers never share the schedule slice.
func (p *Provider) Clone() *Provider {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Schedule = append([]TimeRange(nil), p.Schedule...)
	if clone.Schedule == nil {
		clone.Schedule = []TimeRange{}
	}
	return &clone
}

// SubmitAvailabilityRequest defines the payload for publishing availability.
type SubmitAvailabilityRequest struct {
	ProviderID string           `json:"provider_id" binding:"required"`
	Schedule   []TimeRangeInput `json:"schedule" binding:"required,dive"`
}
