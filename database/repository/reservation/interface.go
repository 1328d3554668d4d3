package reservationRepo

import (
	"context"
	"time"

	"slotbook/models"
	"slotbook/utils"
)

var (
	ErrReservationNotFound = utils.NewAppError("reservation_not_found", utils.KindNotFound, "reservation not found")
	// ErrNotHeld is returned by MarkConfirmed when the reservation already left the Held state.
	ErrNotHeld = utils.NewAppError("reservation_not_held", utils.KindStateConflict, "reservation is no longer held")
)

// ReservationRepository is the reservation ledger's persistence.
type ReservationRepository interface {
	// Create assigns the next sequence id to res and stores it.
	Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error)
	// GetByID retrieves a reservation by id.
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	// FindBySlot returns every reservation, in any state, for the slot starting at start.
	FindBySlot(ctx context.Context, providerID string, start time.Time) ([]models.Reservation, error)
	// ListBlocking returns reservations that are confirmed or held with an expiry at or after now.
	ListBlocking(ctx context.Context, now time.Time) ([]models.Reservation, error)
	// MarkConfirmed moves a Held reservation to Confirmed.
	MarkConfirmed(ctx context.Context, id int64, confirmedAt time.Time) (*models.Reservation, error)
}
