package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the reservations collection.
func (r *MongoReservationRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reservation_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_reservation_id"),
		},
		// Slot conflict lookups during reserve.
		{
			Keys:    bson.D{{Key: "provider_id", Value: 1}, {Key: "slot_start_unix", Value: 1}},
			Options: options.Index().SetName("provider_slot_start_idx"),
		},
		// Availability reads only blocking reservations.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expiry_time", Value: 1}},
			Options: options.Index().SetName("status_expiry_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}
