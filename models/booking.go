package models

import (
	"encoding/json"
	"time"
)

type ReservationStatus string

const (
	StatusHeld      ReservationStatus = "held"
	StatusConfirmed ReservationStatus = "confirmed"
)

// ReservationState is either Held or Confirmed. The set is closed.
type ReservationState interface {
	Status() ReservationStatus
	isReservationState()
}

// Held is a soft hold that stops counting once ExpiresAt has passed.
type Held struct {
	ExpiresAt time.Time
}

func (Held) Status() ReservationStatus { return StatusHeld }
func (Held) isReservationState()       {}

// Confirmed is terminal.
type Confirmed struct {
	ConfirmedAt time.Time
}

func (Confirmed) Status() ReservationStatus { return StatusConfirmed }
func (Confirmed) isReservationState()       {}

// Reservation is a client's claim on a single provider slot.
type Reservation struct {
	ID         int64
	ClientID   string
	ProviderID string
	SlotStart  time.Time
	SlotEnd    time.Time
	State      ReservationState
	CreatedAt  time.Time
}

// Blocks reports whether the reservation keeps its slot off the market at now.
// A hold blocks up to and including its expiry instant.
func (r *Reservation) Blocks(now time.Time) bool {
	switch s := r.State.(type) {
	case Confirmed:
		return true
	case Held:
		return !now.After(s.ExpiresAt)
	}
	return false
}

// Expired reports whether a hold can no longer be confirmed at now.
// Confirmed reservations never expire.
func (r *Reservation) Expired(now time.Time) bool {
	s, ok := r.State.(Held)
	return ok && !now.Before(s.ExpiresAt)
}

// ExpiresAt returns the hold expiry, if the reservation is still held.
func (r *Reservation) ExpiresAt() (time.Time, bool) {
	if s, ok := r.State.(Held); ok {
		return s.ExpiresAt, true
	}
	return time.Time{}, false
}

func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

type reservationJSON struct {
	ID          int64             `json:"reservation_id"`
	ClientID    string            `json:"client_id"`
	ProviderID  string            `json:"provider_id"`
	SlotStart   time.Time         `json:"slot_start_time"`
	SlotEnd     time.Time         `json:"slot_end_time"`
	Status      ReservationStatus `json:"status"`
	ExpiryTime  *time.Time        `json:"expiry_time,omitempty"`
	ConfirmedAt *time.Time        `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (r Reservation) MarshalJSON() ([]byte, error) {
	out := reservationJSON{
		ID:         r.ID,
		ClientID:   r.ClientID,
		ProviderID: r.ProviderID,
		SlotStart:  r.SlotStart,
		SlotEnd:    r.SlotEnd,
		CreatedAt:  r.CreatedAt,
	}
	switch s := r.State.(type) {
	case Held:
		out.Status = StatusHeld
		expiry := s.ExpiresAt
		out.ExpiryTime = &expiry
	case Confirmed:
		out.Status = StatusConfirmed
		confirmedAt := s.ConfirmedAt
		out.ConfirmedAt = &confirmedAt
	}
	return json.Marshal(out)
}

// ReserveSlotRequest is the payload a client sends to hold a slot.
type ReserveSlotRequest struct {
	ClientID      string `json:"client_id" binding:"required"`
	ProviderID    string `json:"provider_id" binding:"required"`
	SlotStartTime string `json:"slot_start_time" binding:"required"`
}

// ConfirmReservationRequest is the payload a client sends to confirm a hold.
type ConfirmReservationRequest struct {
	ClientID      string `json:"client_id" binding:"required"`
	ReservationID int64  `json:"reservation_id" binding:"required"`
}
