package providerRepo

import (
	"context"
	"time"

	"slotbook/models"
	"slotbook/utils"
)

var (
	ErrProviderNotFound = utils.NewAppError("provider_not_found", utils.KindNotFound, "provider not found")
	// ErrScheduleChanged means the schedule grew between the read and the append.
	ErrScheduleChanged = utils.NewAppError("schedule_changed", utils.KindStateConflict, "provider schedule was modified concurrently")
)

// ProviderRepository defines methods for provider data access.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Provider, error)
	// GetAll retrieves all providers ordered by ID.
	GetAll(ctx context.Context) ([]models.Provider, error)
	// Upsert returns the provider, creating it with an empty schedule if missing.
	Upsert(ctx context.Context, id string, now time.Time) (*models.Provider, error)
	// AppendSchedule adds ranges to the end of the schedule, provided it still
	// holds exactly expectedLen ranges.
	AppendSchedule(ctx context.Context, id string, expectedLen int, ranges []models.TimeRange, now time.Time) (*models.Provider, error)
}
