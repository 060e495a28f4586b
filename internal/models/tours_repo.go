package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TourRepo interface {
	CreateTour(ctx context.Context, tour *Tour) error
	GetTourByID(ctx context.Context, id primitive.ObjectID) (*Tour, error)
	GetTourBySlug(ctx context.Context, slug string) (*Tour, error)
	ListTours(ctx context.Context, filter TourFilter, offset, limit int64) ([]*Tour, int64, error)
	UpdateTour(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Tour, error)
	SoftDeleteTour(ctx context.Context, id primitive.ObjectID) error
	RecalcAverageRatings(ctx context.Context, tourID primitive.ObjectID) error
}

type TourFilter struct {
	Category     string
	Difficulty   string
	FeaturedOnly bool
	// IncludeInactive is admin-only; public listings see active tours.
	IncludeInactive bool
}

func (f TourFilter) query() bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["is_active"] = true
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Difficulty != "" {
		q["difficulty"] = f.Difficulty
	}
	if f.FeaturedOnly {
		q["is_featured"] = true
	}
	return q
}

func (mdb *MongodbRepo) CreateTour(ctx context.Context, tour *Tour) error {
	if tour.ID.IsZero() {
		tour.ID = primitive.NewObjectID()
	}
	_, err := mdb.Collection(ToursCollection).InsertOne(ctx, tour)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: a tour with slug %q already exists", ErrConflict, tour.Slug)
		}
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetTourByID(ctx context.Context, id primitive.ObjectID) (*Tour, error) {
	var tour Tour
	err := mdb.Collection(ToursCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tour: %w", err)
	}
	return &tour, nil
}

func (mdb *MongodbRepo) GetTourBySlug(ctx context.Context, slug string) (*Tour, error) {
	var tour Tour
	err := mdb.Collection(ToursCollection).FindOne(ctx, bson.M{"slug": slug}).Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find tour by slug: %w", err)
	}
	return &tour, nil
}

func (mdb *MongodbRepo) ListTours(ctx context.Context, filter TourFilter, offset, limit int64) ([]*Tour, int64, error) {
	query := filter.query()
	col := mdb.Collection(ToursCollection)

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tours: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "is_featured", Value: -1}, {Key: "ratings_average", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tours: %w", err)
	}
	defer cursor.Close(ctx)

	var tours []*Tour
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, 0, fmt.Errorf("failed to decode tours: %w", err)
	}
	return tours, total, nil
}

func (mdb *MongodbRepo) UpdateTour(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*Tour, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	// ratings fields belong to the aggregator alone
	delete(fields, "ratings_average")
	delete(fields, "ratings_quantity")
	fields["updated_at"] = time.Now().UTC()

	var tour Tour
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := mdb.Collection(ToursCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).
		Decode(&tour)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: tour slug already in use", ErrConflict)
		}
		return nil, fmt.Errorf("failed to update tour: %w", err)
	}
	return &tour, nil
}

func (mdb *MongodbRepo) SoftDeleteTour(ctx context.Context, id primitive.ObjectID) error {
	res, err := mdb.Collection(ToursCollection).UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to deactivate tour: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecalcAverageRatings recomputes a tour's rating count and one-decimal mean
// from its reviews and writes both in a single update, so the pair can never
// be observed half-applied.
func (mdb *MongodbRepo) RecalcAverageRatings(ctx context.Context, tourID primitive.ObjectID) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tour_id": tourID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$tour_id",
			"count":  bson.M{"$sum": 1},
			"rating": bson.M{"$avg": "$rating"},
		}}},
	}
	cursor, err := mdb.Collection(ReviewsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []struct {
		Count  int     `bson:"count"`
		Rating float64 `bson:"rating"`
	}
	if err := cursor.All(ctx, &stats); err != nil {
		return fmt.Errorf("failed to decode review stats: %w", err)
	}

	quantity := 0
	average := 0.0
	if len(stats) > 0 {
		quantity = stats[0].Count
		average = RoundRating(stats[0].Rating)
	}

	res, err := mdb.Collection(ToursCollection).UpdateByID(ctx, tourID, bson.M{
		"$set": bson.M{
			"ratings_average":  average,
			"ratings_quantity": quantity,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to store ratings: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
