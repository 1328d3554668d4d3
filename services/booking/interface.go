package booking

import (
	"context"
	"time"

	"slotbook/models"
)

// ReservationService defines the reservation lifecycle.
type ReservationService interface {
	Reserve(ctx context.Context, clientID, providerID, slotStart string, now time.Time) (*models.Reservation, error)
	Confirm(ctx context.Context, clientID string, reservationID int64, now time.Time) (*models.Reservation, error)
	Get(ctx context.Context, clientID string, reservationID int64) (*models.Reservation, error)
}

// SlotLocker serializes reserve attempts on one slot across processes.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// ReminderScheduler arranges a nudge before a hold lapses.
type ReminderScheduler interface {
	ScheduleHoldReminder(ctx context.Context, res *models.Reservation) error
}

// Rules are the booking constants the ledger enforces.
type Rules struct {
	AppointmentLength time.Duration
	MinLeadTime       time.Duration
	HoldExpiry        time.Duration
}

// DefaultRules are 15 minute appointments, 24 hours lead time and a 30 minute hold.
var DefaultRules = Rules{
	AppointmentLength: 15 * time.Minute,
	MinLeadTime:       24 * time.Hour,
	HoldExpiry:        30 * time.Minute,
}
