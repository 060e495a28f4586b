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

type ReviewRepo interface {
	CreateReview(ctx context.Context, review *Review) error
	GetReviewByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	ListReviewsByTour(ctx context.Context, tourID primitive.ObjectID, offset, limit int64) ([]*Review, error)
	UpdateReview(ctx context.Context, id, userID primitive.ObjectID, rating int, comment string) (*Review, error)
	DeleteReview(ctx context.Context, id, userID primitive.ObjectID) (*Review, error)
}

func (mdb *MongodbRepo) CreateReview(ctx context.Context, review *Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	_, err := mdb.Collection(ReviewsCollection).InsertOne(ctx, review)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetReviewByID(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	var review Review
	err := mdb.Collection(ReviewsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

func (mdb *MongodbRepo) ListReviewsByTour(ctx context.Context, tourID primitive.ObjectID, offset, limit int64) ([]*Review, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	cursor, err := mdb.Collection(ReviewsCollection).Find(ctx, bson.M{"tour_id": tourID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []*Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

// UpdateReview only matches reviews owned by userID so a caller can never
// edit someone else's review.
func (mdb *MongodbRepo) UpdateReview(ctx context.Context, id, userID primitive.ObjectID, rating int, comment string) (*Review, error) {
	var review Review
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := mdb.Collection(ReviewsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{
			"rating":     rating,
			"comment":    comment,
			"updated_at": time.Now().UTC(),
		}},
		opts,
	).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return &review, nil
}

func (mdb *MongodbRepo) DeleteReview(ctx context.Context, id, userID primitive.ObjectID) (*Review, error) {
	var review Review
	err := mdb.Collection(ReviewsCollection).
		FindOneAndDelete(ctx, bson.M{"_id": id, "user_id": userID}).
		Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete review: %w", err)
	}
	return &review, nil
}
