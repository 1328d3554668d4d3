package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"slotbook/models"
	"slotbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeHoldReminder = "reservation:hold_reminder"

func NewHoldReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeHoldReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("hold-reminder-%d", payload.ReservationID)),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// HoldReminderScheduler enqueues a reminder Lead before each hold expires.
type HoldReminderScheduler struct {
	Client Enqueuer
	Lead   time.Duration
	Logger *zap.Logger
}

func (s *HoldReminderScheduler) ScheduleHoldReminder(ctx context.Context, res *models.Reservation) error {
	expiry, held := res.ExpiresAt()
	if !held {
		return nil
	}
	// A lead longer than the hold fires right away.
	fireAt := expiry.Add(-s.Lead)

	task, opts, err := NewHoldReminderTask(models.ReminderPayload{
		ReservationID: res.ID,
		ClientID:      res.ClientID,
		ProviderID:    res.ProviderID,
		FireDate:      fireAt.UTC().Format(time.RFC3339),
	}, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build hold reminder: %w", err)
	}

	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue hold reminder for reservation %d: %w", res.ID, err)
	}
	utils.OrNop(s.Logger).Debug("Hold reminder scheduled",
		zap.Int64("reservationID", res.ID),
		zap.String("taskID", info.ID),
		zap.Time("fireAt", fireAt),
	)
	return nil
}
