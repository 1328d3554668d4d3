package models

import "time"

// Slot is a fixed-length bookable unit derived from a provider's schedule.
// Slots are never stored.
type Slot struct {
	ProviderID string    `json:"provider_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// SlotKey identifies a provider slot by instant, so the same moment written
// with different UTC offsets maps to one key.
type SlotKey struct {
	ProviderID string
	Start      int64
}

func KeyFor(providerID string, start time.Time) SlotKey {
	return SlotKey{ProviderID: providerID, Start: start.UnixNano()}
}

func (s Slot) Key() SlotKey {
	return KeyFor(s.ProviderID, s.Start)
}
