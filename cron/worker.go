package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotbook/config"
	reservationRepo "slotbook/database/repository/reservation"
	"slotbook/models"
	"slotbook/services/notification"
	"slotbook/services/tasks"
	"slotbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewReminderHandler builds the asynq handler for hold reminders. Reservations
// that were confirmed or have already lapsed are skipped without error.
func NewReminderHandler(reservations reservationRepo.ReservationRepository, notifier notification.NotificationService, clock func() time.Time, logger *zap.Logger) asynq.HandlerFunc {
	logger = utils.OrNop(logger)
	if clock == nil {
		clock = time.Now
	}
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		res, err := reservations.GetByID(ctx, p.ReservationID)
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			logger.Warn("Reminder for unknown reservation", zap.Int64("reservationID", p.ReservationID))
			return fmt.Errorf("reservation %d: %w", p.ReservationID, asynq.SkipRetry)
		}
		if err != nil {
			return err
		}

		now := clock()
		expiry, held := res.ExpiresAt()
		if !held || res.Expired(now) {
			logger.Debug("Skipping reminder",
				zap.Int64("reservationID", res.ID),
				zap.String("status", string(res.State.Status())),
			)
			return nil
		}

		if err := notifier.SendHoldReminder(ctx, res, expiry.Sub(now)); err != nil {
			logger.Error("Failed to send hold reminder", zap.Int64("reservationID", res.ID), zap.Error(err))
			return err
		}
		return nil
	}
}

// InitReminderWorker starts the asynq server on the queue database in the
// background and returns it so the caller can shut it down.
func InitReminderWorker(cfg config.Config, handler asynq.Handler, logger *zap.Logger) *asynq.Server {
	logger = utils.OrNop(logger)
	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeHoldReminder, handler)

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil || errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Warn("Reminder worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Error("Reminder worker gave up; hold reminders are disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return srv
}

// NewReminderClient returns the enqueue side of the reminder queue.
func NewReminderClient(cfg config.Config) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
}
