package providerRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"slotbook/models"
)

func TestMemoryProviderRepoUpsertCreatesOnce(t *testing.T) {
	repo := NewMemoryProviderRepo()
	ctx := context.Background()
	first := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := repo.Upsert(ctx, "p1", first)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(created.Schedule) != 0 || !created.CreatedAt.Equal(first) {
		t.Fatalf("unexpected new provider: %+v", created)
	}

	again, err := repo.Upsert(ctx, "p1", first.Add(time.Hour))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !again.CreatedAt.Equal(first) {
		t.Fatalf("second upsert replaced the provider: %+v", again)
	}
}

func TestMemoryProviderRepoGetByIDNotFound(t *testing.T) {
	repo := NewMemoryProviderRepo()
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestMemoryProviderRepoAppendSchedule(t *testing.T) {
	repo := NewMemoryProviderRepo()
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	r := models.TimeRange{Start: now.Add(24 * time.Hour), End: now.Add(25 * time.Hour)}

	if _, err := repo.Upsert(ctx, "p1", now); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	updated, err := repo.AppendSchedule(ctx, "p1", 0, []models.TimeRange{r}, now)
	if err != nil {
		t.Fatalf("AppendSchedule: %v", err)
	}
	if len(updated.Schedule) != 1 {
		t.Fatalf("expected 1 range, got %d", len(updated.Schedule))
	}

	if _, err := repo.AppendSchedule(ctx, "p1", 0, []models.TimeRange{r}, now); !errors.Is(err, ErrScheduleChanged) {
		t.Fatalf("expected ErrScheduleChanged for a stale length, got %v", err)
	}
	if _, err := repo.AppendSchedule(ctx, "nope", 0, nil, now); !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestMemoryProviderRepoGetAllSortedAndIsolated(t *testing.T) {
	repo := NewMemoryProviderRepo()
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if _, err := repo.Upsert(ctx, id, now); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}

	all[0].Schedule = append(all[0].Schedule, models.TimeRange{Start: now, End: now.Add(time.Hour)})
	stored, _ := repo.GetByID(ctx, "alpha")
	if len(stored.Schedule) != 0 {
		t.Fatalf("store was mutated through returned slice")
	}
}
