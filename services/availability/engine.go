// Package availability answers which slots a client may still reserve.
package availability

import (
	"context"
	"fmt"
	"time"

	providerRepo "slotbook/database/repository/provider"
	reservationRepo "slotbook/database/repository/reservation"
	"slotbook/models"
	"slotbook/services/slots"
	"slotbook/utils"

	"go.uber.org/zap"
)

// Filter narrows a query. Zero values mean "no restriction"; From and To
// bound slot starts as [From, To).
type Filter struct {
	ProviderID string
	From       time.Time
	To         time.Time
	Page       int
	PageSize   int
}

func (f Filter) matches(slot models.Slot) bool {
	if !f.From.IsZero() && slot.Start.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !slot.Start.Before(f.To) {
		return false
	}
	return true
}

// Engine lists bookable slots across providers.
type Engine struct {
	Providers         providerRepo.ProviderRepository
	Reservations      reservationRepo.ReservationRepository
	AppointmentLength time.Duration
	MinLeadTime       time.Duration
	SlotOptions       []slots.Option
	Metrics           *utils.Metrics // optional
	Logger            *zap.Logger
}

// ListAvailable returns slots that start strictly after now plus the lead
// time and are not taken by a confirmed reservation or a live hold. Slots are
// ordered by provider id, then schedule order.
func (e *Engine) ListAvailable(ctx context.Context, now time.Time, filter Filter) (utils.Page[models.Slot], error) {
	providers, err := e.providers(ctx, filter.ProviderID)
	if err != nil {
		return utils.Page[models.Slot]{}, err
	}

	blocking, err := e.Reservations.ListBlocking(ctx, now)
	if err != nil {
		return utils.Page[models.Slot]{}, fmt.Errorf("failed to load reservations: %w", err)
	}
	taken := make(map[models.SlotKey]struct{}, len(blocking))
	for i := range blocking {
		if blocking[i].Blocks(now) {
			taken[models.KeyFor(blocking[i].ProviderID, blocking[i].SlotStart)] = struct{}{}
		}
	}

	earliest := now.Add(e.MinLeadTime)
	available := []models.Slot{}
	for i := range providers {
		for slot := range slots.ForSchedule(&providers[i], e.AppointmentLength, e.SlotOptions...) {
			if !slot.Start.After(earliest) {
				continue
			}
			if _, ok := taken[slot.Key()]; ok {
				continue
			}
			if !filter.matches(slot) {
				continue
			}
			available = append(available, slot)
		}
	}

	if e.Metrics != nil {
		e.Metrics.SlotsListed.Observe(float64(len(available)))
	}
	utils.OrNop(e.Logger).Debug("Listed available slots",
		zap.Int("providers", len(providers)),
		zap.Int("blocking", len(taken)),
		zap.Int("available", len(available)),
	)
	return utils.Paginate(available, filter.Page, filter.PageSize), nil
}

func (e *Engine) providers(ctx context.Context, providerID string) ([]models.Provider, error) {
	if providerID == "" {
		all, err := e.Providers.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load providers: %w", err)
		}
		return all, nil
	}
	p, err := e.Providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return []models.Provider{*p}, nil
}
