package provider

import (
	"context"
	"fmt"
	"time"

	providerRepo "slotbook/database/repository/provider"
	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// ProviderService publishes and reads provider availability.
type ProviderService interface {
	SubmitAvailability(ctx context.Context, providerID string, proposed []models.TimeRangeInput, now time.Time) (*models.Provider, error)
	GetProvider(ctx context.Context, providerID string) (*models.Provider, error)
}

// NewDefaultProviderService wires the production implementation.
func NewDefaultProviderService(
	repo providerRepo.ProviderRepository,
	appointmentLength time.Duration,
	metrics *utils.Metrics,
	logger *zap.Logger,
) (*DefaultProviderService, error) {
	if repo == nil {
		return nil, fmt.Errorf("provider service initialization error: repository is nil")
	}
	if appointmentLength <= 0 {
		return nil, fmt.Errorf("provider service initialization error: appointment length must be positive")
	}
	return &DefaultProviderService{
		Repo:              repo,
		AppointmentLength: appointmentLength,
		Metrics:           metrics,
		Logger:            utils.OrNop(logger),
	}, nil
}
