package repository

import (
	"context"

	providerRepo "slotbook/database/repository/provider"
	reservationRepo "slotbook/database/repository/reservation"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the ProviderRepository interface and constructors.
type ProviderRepository = providerRepo.ProviderRepository

var (
	NewMemoryProviderRepo = providerRepo.NewMemoryProviderRepo
	NewMongoProviderRepo  = providerRepo.NewMongoProviderRepo
)

// Re-export the ReservationRepository interface and constructors.
type ReservationRepository = reservationRepo.ReservationRepository

var (
	NewMemoryReservationRepo = reservationRepo.NewMemoryReservationRepo
	NewMongoReservationRepo  = reservationRepo.NewMongoReservationRepo
)

// Stores bundles the repositories a running service needs.
type Stores struct {
	Providers    ProviderRepository
	Reservations ReservationRepository
}

// NewMemoryStores returns empty in-process stores.
func NewMemoryStores() Stores {
	return Stores{
		Providers:    NewMemoryProviderRepo(),
		Reservations: NewMemoryReservationRepo(),
	}
}

// NewMongoStores builds MongoDB-backed stores on db and ensures their indexes.
func NewMongoStores(ctx context.Context, db *mongo.Database) (Stores, error) {
	providers := NewMongoProviderRepo(db)
	if err := providers.EnsureIndexes(ctx); err != nil {
		return Stores{}, err
	}
	reservations := NewMongoReservationRepo(db)
	if err := reservations.EnsureIndexes(ctx); err != nil {
		return Stores{}, err
	}
	return Stores{Providers: providers, Reservations: reservations}, nil
}
