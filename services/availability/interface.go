package availability

import (
	"context"
	"time"

	"slotbook/models"
	"slotbook/utils"
)

// AvailabilityService lists the slots a client may reserve at a given instant.
type AvailabilityService interface {
	ListAvailable(ctx context.Context, now time.Time, filter Filter) (utils.Page[models.Slot], error)
}

var _ AvailabilityService = (*Engine)(nil)
