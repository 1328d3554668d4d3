package reservationRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"slotbook/models"
)

// MemoryReservationRepo keeps the ledger in process memory with a slot index.
type MemoryReservationRepo struct {
	mu           sync.RWMutex
	seq          int64
	reservations map[int64]*models.Reservation
	bySlot       map[models.SlotKey][]int64
}

func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{
		reservations: make(map[int64]*models.Reservation),
		bySlot:       make(map[models.SlotKey][]int64),
	}
}

func (r *MemoryReservationRepo) Create(_ context.Context, res *models.Reservation) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := res.Clone()
	stored.ID = r.seq
	r.reservations[stored.ID] = stored
	key := models.KeyFor(stored.ProviderID, stored.SlotStart)
	r.bySlot[key] = append(r.bySlot[key], stored.ID)
	return stored.Clone(), nil
}

func (r *MemoryReservationRepo) GetByID(_ context.Context, id int64) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return res.Clone(), nil
}

func (r *MemoryReservationRepo) FindBySlot(_ context.Context, providerID string, start time.Time) ([]models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.bySlot[models.KeyFor(providerID, start)]
	out := make([]models.Reservation, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.reservations[id])
	}
	return out, nil
}

func (r *MemoryReservationRepo) ListBlocking(_ context.Context, now time.Time) ([]models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Reservation
	for _, res := range r.reservations {
		if res.Blocks(now) {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryReservationRepo) MarkConfirmed(_ context.Context, id int64, confirmedAt time.Time) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	if _, held := res.State.(models.Held); !held {
		return nil, ErrNotHeld
	}
	res.State = models.Confirmed{ConfirmedAt: confirmedAt}
	return res.Clone(), nil
}
