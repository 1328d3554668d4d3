package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	providerRepo "slotbook/database/repository/provider"
	reservationRepo "slotbook/database/repository/reservation"
	"slotbook/models"
	"slotbook/services/schedule"
	"slotbook/utils"

	"go.uber.org/zap"
)

// Ledger is the authoritative record of reservations. Reserve and Confirm run
// their check-then-write under one mutex; Locker extends that across processes.
type Ledger struct {
	Providers    providerRepo.ProviderRepository
	Reservations reservationRepo.ReservationRepository
	Rules        Rules

	Locker    SlotLocker        // optional
	Reminders ReminderScheduler // optional
	Metrics   *utils.Metrics    // optional
	Logger    *zap.Logger

	mu sync.Mutex
}

var _ ReservationService = (*Ledger)(nil)

// Reserve places a hold on the slot starting at slotStart.
func (l *Ledger) Reserve(ctx context.Context, clientID, providerID, slotStart string, now time.Time) (res *models.Reservation, err error) {
	defer func() {
		if l.Metrics != nil {
			l.Metrics.ReservationsTotal.WithLabelValues(utils.Outcome(err)).Inc()
		}
	}()
	logger := utils.OrNop(l.Logger).With(
		zap.String("clientID", clientID),
		zap.String("providerID", providerID),
		zap.String("slotStart", slotStart),
	)

	provider, err := l.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	start, err := schedule.ParseTimestamp(slotStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlotStart, err)
	}

	if start.Before(now.Add(l.Rules.MinLeadTime)) {
		return nil, ErrLeadTimeViolation
	}

	if !inSchedule(provider.Schedule, start) {
		return nil, ErrInvalidSlot
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Locker != nil {
		release, err := l.Locker.Lock(ctx, utils.SlotLockKey(providerID, start))
		if errors.Is(err, utils.ErrLockNotAcquired) {
			return nil, ErrSlotUnavailable
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock slot: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release slot lock", zap.Error(err))
			}
		}()
	}

	existing, err := l.Reservations.FindBySlot(ctx, providerID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot reservations: %w", err)
	}
	for i := range existing {
		if existing[i].Blocks(now) {
			return nil, ErrSlotUnavailable
		}
	}

	res, err = l.Reservations.Create(ctx, &models.Reservation{
		ClientID:   clientID,
		ProviderID: providerID,
		SlotStart:  start,
		SlotEnd:    start.Add(l.Rules.AppointmentLength),
		State:      models.Held{ExpiresAt: now.Add(l.Rules.HoldExpiry)},
		CreatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store reservation: %w", err)
	}
	logger.Info("Slot held", zap.Int64("reservationID", res.ID))

	if l.Reminders != nil {
		if err := l.Reminders.ScheduleHoldReminder(ctx, res); err != nil {
			logger.Warn("Failed to schedule hold reminder", zap.Int64("reservationID", res.ID), zap.Error(err))
		}
	}
	return res, nil
}

// Confirm turns the client's unexpired hold into a confirmed booking.
func (l *Ledger) Confirm(ctx context.Context, clientID string, reservationID int64, now time.Time) (res *models.Reservation, err error) {
	defer func() {
		if l.Metrics != nil {
			l.Metrics.ConfirmationsTotal.WithLabelValues(utils.Outcome(err)).Inc()
		}
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.Get(ctx, clientID, reservationID)
	if err != nil {
		return nil, err
	}
	if _, ok := current.State.(models.Confirmed); ok {
		return nil, ErrAlreadyConfirmed
	}
	if current.Expired(now) {
		return nil, ErrHoldExpired
	}

	res, err = l.Reservations.MarkConfirmed(ctx, reservationID, now)
	if errors.Is(err, reservationRepo.ErrNotHeld) {
		return nil, ErrAlreadyConfirmed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to confirm reservation %d: %w", reservationID, err)
	}
	utils.OrNop(l.Logger).Info("Reservation confirmed",
		zap.Int64("reservationID", reservationID),
		zap.String("clientID", clientID),
	)
	return res, nil
}

// Get returns the reservation if clientID owns it.
func (l *Ledger) Get(ctx context.Context, clientID string, reservationID int64) (*models.Reservation, error) {
	res, err := l.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.ClientID != clientID {
		return nil, ErrClientMismatch
	}
	return res, nil
}

// inSchedule tests raw ranges, so starts that are not on a slot boundary pass.
func inSchedule(ranges []models.TimeRange, start time.Time) bool {
	for _, r := range ranges {
		if r.Contains(start) {
			return true
		}
	}
	return false
}
