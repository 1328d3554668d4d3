package providerRepo

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

// Range bounds are stored as RFC 3339 strings so the submitted offset survives a round trip.
type timeRangeDocument struct {
	Start string `bson:"start"`
	End   string `bson:"end"`
}

type providerDocument struct {
	ID        string              `bson:"provider_id"`
	Schedule  []timeRangeDocument `bson:"schedule"`
	CreatedAt time.Time           `bson:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at"`
}

func toRangeDocuments(ranges []models.TimeRange) []timeRangeDocument {
	docs := make([]timeRangeDocument, len(ranges))
	for i, r := range ranges {
		docs[i] = timeRangeDocument{
			Start: r.Start.Format(time.RFC3339Nano),
			End:   r.End.Format(time.RFC3339Nano),
		}
	}
	return docs
}

func (d *providerDocument) toModel() (*models.Provider, error) {
	p := &models.Provider{
		ID:        d.ID,
		Schedule:  make([]models.TimeRange, 0, len(d.Schedule)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, doc := range d.Schedule {
		start, err := time.Parse(time.RFC3339Nano, doc.Start)
		if err != nil {
			return nil, fmt.Errorf("provider %s has corrupt range start %q: %w", d.ID, doc.Start, err)
		}
		end, err := time.Parse(time.RFC3339Nano, doc.End)
		if err != nil {
			return nil, fmt.Errorf("provider %s has corrupt range end %q: %w", d.ID, doc.End, err)
		}
		p.Schedule = append(p.Schedule, models.TimeRange{Start: start, End: end})
	}
	return p, nil
}

// MongoProviderRepo implements ProviderRepository using MongoDB.
type MongoProviderRepo struct {
	coll *mongo.Collection
}

// NewMongoProviderRepo creates a new instance of ProviderRepository using MongoDB.
func NewMongoProviderRepo(db *mongo.Database) *MongoProviderRepo {
	return &MongoProviderRepo{coll: db.Collection("providers")}
}

func (r *MongoProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var doc providerDocument
	if err := r.coll.FindOne(ctx, bson.M{"provider_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to fetch provider with id %s: %w", id, err)
	}
	return doc.toModel()
}

func (r *MongoProviderRepo) GetAll(ctx context.Context) ([]models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "provider_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve providers: %w", err)
	}
	defer cursor.Close(ctx)
	var providers []models.Provider
	for cursor.Next(ctx) {
		var doc providerDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode provider: %w", err)
		}
		p, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		providers = append(providers, *p)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate providers: %w", err)
	}
	return providers, nil
}

func (r *MongoProviderRepo) Upsert(ctx context.Context, id string, now time.Time) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	update := bson.M{
		"$setOnInsert": bson.M{
			"provider_id": id,
			"schedule":    bson.A{},
			"created_at":  now,
			"updated_at":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc providerDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"provider_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to upsert provider %s: %w", id, err)
	}
	return doc.toModel()
}

func (r *MongoProviderRepo) AppendSchedule(ctx context.Context, id string, expectedLen int, ranges []models.TimeRange, now time.Time) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"provider_id": id, "schedule": bson.M{"$size": expectedLen}}
	update := bson.M{
		"$push": bson.M{"schedule": bson.M{"$each": toRangeDocuments(ranges)}},
		"$set":  bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc providerDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrScheduleChanged
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append schedule for provider %s: %w", id, err)
	}
	return doc.toModel()
}
