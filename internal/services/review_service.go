package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/models"
)

type ReviewService struct {
	reviewRepo models.ReviewRepo
	tourRepo   models.TourRepo
}

func NewReviewService(reviewRepo models.ReviewRepo, tourRepo models.TourRepo) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		tourRepo:   tourRepo,
	}
}

// CreateReview stores a review and recomputes the tour's aggregate rating.
// The aggregate is derived state, so a recalculation failure is returned to
// the caller rather than leaving it stale silently.
func (rs *ReviewService) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := review.ValidateNew(); err != nil {
		return nil, err
	}
	if _, err := rs.tourRepo.GetTourByID(ctx, review.TourID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	if err := rs.reviewRepo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	if err := rs.tourRepo.RecalcAverageRatings(ctx, review.TourID); err != nil {
		return nil, fmt.Errorf("review saved but rating recalculation failed: %w", err)
	}
	return review, nil
}

func (rs *ReviewService) UpdateReview(ctx context.Context, id, userID primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrValidation)
	}
	review, err := rs.reviewRepo.UpdateReview(ctx, id, userID, rating, comment)
	if err != nil {
		return nil, err
	}
	if err := rs.tourRepo.RecalcAverageRatings(ctx, review.TourID); err != nil {
		return nil, fmt.Errorf("review updated but rating recalculation failed: %w", err)
	}
	return review, nil
}

func (rs *ReviewService) DeleteReview(ctx context.Context, id, userID primitive.ObjectID) error {
	review, err := rs.reviewRepo.DeleteReview(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := rs.tourRepo.RecalcAverageRatings(ctx, review.TourID); err != nil {
		return fmt.Errorf("review deleted but rating recalculation failed: %w", err)
	}
	return nil
}

func (rs *ReviewService) ListReviewsByTour(ctx context.Context, tourID primitive.ObjectID, offset, limit int64) ([]*models.Review, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: invalid offset or limit", models.ErrValidation)
	}
	return rs.reviewRepo.ListReviewsByTour(ctx, tourID, offset, limit)
}
