package notification

import (
	"context"
	"fmt"
	"time"

	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// NotificationService delivers client-facing messages about reservations.
type NotificationService interface {
	SendHoldReminder(ctx context.Context, res *models.Reservation, remaining time.Duration) error
}

// LogNotificationService writes reminders to the structured log in place of
// a push or email channel.
type LogNotificationService struct {
	Logger  *zap.Logger
	Metrics *utils.Metrics
}

func NewLogNotificationService(logger *zap.Logger, metrics *utils.Metrics) *LogNotificationService {
	return &LogNotificationService{Logger: utils.OrNop(logger), Metrics: metrics}
}

func (s *LogNotificationService) SendHoldReminder(_ context.Context, res *models.Reservation, remaining time.Duration) error {
	if res == nil {
		return fmt.Errorf("SendHoldReminder: reservation is nil")
	}
	utils.OrNop(s.Logger).Info("Hold reminder",
		zap.String("clientID", res.ClientID),
		zap.String("providerID", res.ProviderID),
		zap.Int64("reservationID", res.ID),
		zap.Time("slotStart", res.SlotStart),
		zap.Duration("remaining", remaining),
	)
	if s.Metrics != nil {
		s.Metrics.RemindersSent.Inc()
	}
	return nil
}
