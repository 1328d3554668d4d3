package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	providerRepo "slotbook/database/repository/provider"
	"slotbook/models"
	"slotbook/services/schedule"
	"slotbook/utils"

	"go.uber.org/zap"
)

const maxAppendAttempts = 3

var ErrProviderNotFound = providerRepo.ErrProviderNotFound

// DefaultProviderService is the production implementation.
type DefaultProviderService struct {
	Repo              providerRepo.ProviderRepository
	AppointmentLength time.Duration
	Metrics           *utils.Metrics
	Logger            *zap.Logger

	mu sync.Mutex
}

var _ ProviderService = (*DefaultProviderService)(nil)

// SubmitAvailability appends proposed to the provider's schedule, creating the
// provider on first use. A rejected batch leaves the schedule untouched.
func (s *DefaultProviderService) SubmitAvailability(ctx context.Context, providerID string, proposed []models.TimeRangeInput, now time.Time) (p *models.Provider, err error) {
	defer func() {
		if s.Metrics != nil {
			s.Metrics.SchedulesSubmitted.WithLabelValues(utils.Outcome(err)).Inc()
		}
	}()
	logger := utils.OrNop(s.Logger).With(zap.String("providerID", providerID))

	s.mu.Lock()
	defer s.mu.Unlock()

	// The schedule may grow under us when several instances share a store;
	// re-validate against the fresh schedule and try again.
	for attempt := 1; ; attempt++ {
		current, err := s.Repo.Upsert(ctx, providerID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to load provider %s: %w", providerID, err)
		}
		if len(proposed) == 0 {
			return current, nil
		}

		parsed, err := schedule.Validate(current.Schedule, proposed, s.AppointmentLength)
		if err != nil {
			logger.Info("Schedule rejected", zap.Error(err))
			return nil, err
		}

		updated, err := s.Repo.AppendSchedule(ctx, providerID, len(current.Schedule), parsed, now)
		if errors.Is(err, providerRepo.ErrScheduleChanged) && attempt < maxAppendAttempts {
			logger.Debug("Schedule changed during submission, retrying", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Info("Schedule extended",
			zap.Int("added", len(parsed)),
			zap.Int("total", len(updated.Schedule)),
		)
		return updated, nil
	}
}

// GetProvider returns the provider or ErrProviderNotFound.
func (s *DefaultProviderService) GetProvider(ctx context.Context, providerID string) (*models.Provider, error) {
	return s.Repo.GetByID(ctx, providerID)
}
