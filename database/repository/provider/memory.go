package providerRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"slotbook/models"
)

// MemoryProviderRepo keeps providers in process memory.
type MemoryProviderRepo struct {
	mu        sync.RWMutex
	providers map[string]*models.Provider
}

func NewMemoryProviderRepo() *MemoryProviderRepo {
	return &MemoryProviderRepo{providers: make(map[string]*models.Provider)}
}

func (r *MemoryProviderRepo) GetByID(_ context.Context, id string) (*models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryProviderRepo) GetAll(_ context.Context) ([]models.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	providers := make([]models.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, *p.Clone())
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].ID < providers[j].ID })
	return providers, nil
}

func (r *MemoryProviderRepo) Upsert(_ context.Context, id string, now time.Time) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		p = &models.Provider{ID: id, Schedule: []models.TimeRange{}, CreatedAt: now, UpdatedAt: now}
		r.providers[id] = p
	}
	return p.Clone(), nil
}

func (r *MemoryProviderRepo) AppendSchedule(_ context.Context, id string, expectedLen int, ranges []models.TimeRange, now time.Time) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	if len(p.Schedule) != expectedLen {
		return nil, ErrScheduleChanged
	}
	p.Schedule = append(p.Schedule, ranges...)
	p.UpdatedAt = now
	return p.Clone(), nil
}
