package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/models"
)

func newTestReviewService(t *testing.T) (*ReviewService, *fakeTourRepo, primitive.ObjectID) {
	t.Helper()
	tours := newFakeTourRepo()
	reviews := newFakeReviewRepo()
	tours.reviews = reviews

	tourID := seedTour(t, tours)
	return NewReviewService(reviews, tours), tours, tourID
}

func TestCreateReviewRecalculatesRating(t *testing.T) {
	svc, tours, tourID := newTestReviewService(t)
	ctx := context.Background()

	for _, rating := range []int{5, 4, 3} {
		_, err := svc.CreateReview(ctx, &models.Review{
			TourID: tourID,
			UserID: primitive.NewObjectID(),
			Rating: rating,
		})
		if err != nil {
			t.Fatalf("CreateReview(%d): %v", rating, err)
		}
	}

	tour, err := tours.GetTourByID(ctx, tourID)
	if err != nil {
		t.Fatalf("GetTourByID: %v", err)
	}
	if tour.RatingsQuantity != 3 {
		t.Errorf("quantity = %d, want 3", tour.RatingsQuantity)
	}
	if tour.RatingsAverage != 4.0 {
		t.Errorf("average = %v, want 4.0", tour.RatingsAverage)
	}
}

func TestCreateReviewValidation(t *testing.T) {
	svc, _, tourID := newTestReviewService(t)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, &models.Review{TourID: tourID, UserID: primitive.NewObjectID(), Rating: 6})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("rating 6: expected ErrValidation, got %v", err)
	}

	_, err = svc.CreateReview(ctx, &models.Review{TourID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Rating: 4})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown tour: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateReviewOwnership(t *testing.T) {
	svc, tours, tourID := newTestReviewService(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	created, err := svc.CreateReview(ctx, &models.Review{TourID: tourID, UserID: owner, Rating: 2})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	if _, err := svc.UpdateReview(ctx, created.ID, primitive.NewObjectID(), 5, "great"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("foreign update: expected ErrNotFound, got %v", err)
	}

	updated, err := svc.UpdateReview(ctx, created.ID, owner, 5, "great after all")
	if err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	if updated.Rating != 5 {
		t.Errorf("rating = %d, want 5", updated.Rating)
	}

	tour, err := tours.GetTourByID(ctx, tourID)
	if err != nil {
		t.Fatalf("GetTourByID: %v", err)
	}
	if tour.RatingsAverage != 5.0 {
		t.Errorf("average = %v, want 5.0 after update", tour.RatingsAverage)
	}
}

// Removing the last review resets the aggregate to zero, it never keeps a
// stale average around.
func TestDeleteLastReviewResetsAggregate(t *testing.T) {
	svc, tours, tourID := newTestReviewService(t)
	ctx := context.Background()
	owner := primitive.NewObjectID()

	created, err := svc.CreateReview(ctx, &models.Review{TourID: tourID, UserID: owner, Rating: 4})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	if err := svc.DeleteReview(ctx, created.ID, owner); err != nil {
		t.Fatalf("DeleteReview: %v", err)
	}

	tour, err := tours.GetTourByID(ctx, tourID)
	if err != nil {
		t.Fatalf("GetTourByID: %v", err)
	}
	if tour.RatingsAverage != 0 || tour.RatingsQuantity != 0 {
		t.Errorf("aggregate = %v/%d, want 0/0", tour.RatingsAverage, tour.RatingsQuantity)
	}
}
