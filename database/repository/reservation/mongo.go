package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Slot bounds keep their submitted offset as strings; slot_start_unix carries
// the instant used for matching and indexing.
type reservationDocument struct {
	ID            int64                    `bson:"reservation_id"`
	ClientID      string                   `bson:"client_id"`
	ProviderID    string                   `bson:"provider_id"`
	SlotStart     string                   `bson:"slot_start"`
	SlotEnd       string                   `bson:"slot_end"`
	SlotStartUnix int64                    `bson:"slot_start_unix"`
	Status        models.ReservationStatus `bson:"status"`
	ExpiryTime    *time.Time               `bson:"expiry_time,omitempty"`
	ConfirmedAt   *time.Time               `bson:"confirmed_at,omitempty"`
	CreatedAt     time.Time                `bson:"created_at"`
}

func toDocument(res *models.Reservation) reservationDocument {
	doc := reservationDocument{
		ID:            res.ID,
		ClientID:      res.ClientID,
		ProviderID:    res.ProviderID,
		SlotStart:     res.SlotStart.Format(time.RFC3339Nano),
		SlotEnd:       res.SlotEnd.Format(time.RFC3339Nano),
		SlotStartUnix: res.SlotStart.UnixNano(),
		CreatedAt:     res.CreatedAt,
	}
	switch s := res.State.(type) {
	case models.Held:
		expiry := s.ExpiresAt
		doc.Status = models.StatusHeld
		doc.ExpiryTime = &expiry
	case models.Confirmed:
		confirmedAt := s.ConfirmedAt
		doc.Status = models.StatusConfirmed
		doc.ConfirmedAt = &confirmedAt
	}
	return doc
}

func (d *reservationDocument) toModel() (*models.Reservation, error) {
	start, err := time.Parse(time.RFC3339Nano, d.SlotStart)
	if err != nil {
		return nil, fmt.Errorf("reservation %d has corrupt slot start %q: %w", d.ID, d.SlotStart, err)
	}
	end, err := time.Parse(time.RFC3339Nano, d.SlotEnd)
	if err != nil {
		return nil, fmt.Errorf("reservation %d has corrupt slot end %q: %w", d.ID, d.SlotEnd, err)
	}
	res := &models.Reservation{
		ID:         d.ID,
		ClientID:   d.ClientID,
		ProviderID: d.ProviderID,
		SlotStart:  start,
		SlotEnd:    end,
		CreatedAt:  d.CreatedAt,
	}
	switch {
	case d.Status == models.StatusConfirmed && d.ConfirmedAt != nil:
		res.State = models.Confirmed{ConfirmedAt: *d.ConfirmedAt}
	case d.Status == models.StatusHeld && d.ExpiryTime != nil:
		res.State = models.Held{ExpiresAt: *d.ExpiryTime}
	default:
		return nil, fmt.Errorf("reservation %d has inconsistent state %q", d.ID, d.Status)
	}
	return res, nil
}

// MongoReservationRepo implements ReservationRepository using MongoDB.
type MongoReservationRepo struct {
	coll *mongo.Collection
	seq  *mongoSequence
}

func NewMongoReservationRepo(db *mongo.Database) *MongoReservationRepo {
	return &MongoReservationRepo{
		coll: db.Collection("reservations"),
		seq:  &mongoSequence{coll: db.Collection("counters"), name: reservationSequence},
	}
}

// Create assigns the next sequence value before inserting. A failed insert
// leaves a gap in the ids; a value is never handed out twice.
func (r *MongoReservationRepo) Create(ctx context.Context, res *models.Reservation) (*models.Reservation, error) {
	id, err := r.seq.Next(ctx)
	if err != nil {
		return nil, err
	}
	stored := res.Clone()
	stored.ID = id

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, toDocument(stored)); err != nil {
		return nil, fmt.Errorf("failed to create reservation %d: %w", id, err)
	}
	return stored, nil
}

func (r *MongoReservationRepo) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var doc reservationDocument
	if err := r.coll.FindOne(ctx, bson.M{"reservation_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to fetch reservation %d: %w", id, err)
	}
	return doc.toModel()
}

func (r *MongoReservationRepo) FindBySlot(ctx context.Context, providerID string, start time.Time) ([]models.Reservation, error) {
	filter := bson.M{"provider_id": providerID, "slot_start_unix": start.UnixNano()}
	return r.find(ctx, filter)
}

func (r *MongoReservationRepo) ListBlocking(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"status": models.StatusConfirmed},
		bson.M{"status": models.StatusHeld, "expiry_time": bson.M{"$gte": now}},
	}}
	return r.find(ctx, filter)
}

func (r *MongoReservationRepo) MarkConfirmed(ctx context.Context, id int64, confirmedAt time.Time) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"reservation_id": id, "status": models.StatusHeld}
	update := bson.M{
		"$set":   bson.M{"status": models.StatusConfirmed, "confirmed_at": confirmedAt},
		"$unset": bson.M{"expiry_time": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc reservationDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotHeld
	}
	if err != nil {
		return nil, fmt.Errorf("failed to confirm reservation %d: %w", id, err)
	}
	return doc.toModel()
}

func (r *MongoReservationRepo) find(ctx context.Context, filter bson.M) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "reservation_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reservationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	out := make([]models.Reservation, 0, len(docs))
	for i := range docs {
		res, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}
