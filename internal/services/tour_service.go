package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/helpers"
	"github.com/marhabatours/api/internal/models"
)

type TourService struct {
	tourRepo models.TourRepo
	cld      *cloudinary.Cloudinary
}

// NewTourService builds the catalog service. cld may be nil, in which case
// image URLs are stored exactly as submitted.
func NewTourService(tourRepo models.TourRepo, cld *cloudinary.Cloudinary) *TourService {
	return &TourService{
		tourRepo: tourRepo,
		cld:      cld,
	}
}

func (ts *TourService) CreateTour(ctx context.Context, tour *models.Tour, createdBy primitive.ObjectID) (*models.Tour, error) {
	tour.CreatedBy = createdBy
	tour.Slug = helpers.GenerateSlug(tour.Title)
	tour.RatingsAverage = 0
	tour.RatingsQuantity = 0
	tour.IsActive = true
	now := time.Now().UTC()
	tour.CreatedAt = now
	tour.UpdatedAt = now

	if err := tour.ValidateNew(); err != nil {
		return nil, err
	}

	if ts.cld != nil && len(tour.Images) > 0 {
		sources := make([]string, len(tour.Images))
		for i, img := range tour.Images {
			sources[i] = img.URL
		}
		urls, err := helpers.UploadImages(ctx, ts.cld, sources, helpers.TourFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload tour images: %w", err)
		}
		for i := range urls {
			tour.Images[i].URL = urls[i]
		}
	}

	if err := ts.tourRepo.CreateTour(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// UpdateTour applies an admin edit. A title change regenerates the slug in
// the same update, keeping the two consistent.
func (ts *TourService) UpdateTour(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Tour, error) {
	if title, ok := fields["title"].(string); ok {
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", models.ErrValidation)
		}
		fields["slug"] = helpers.GenerateSlug(title)
	}
	return ts.tourRepo.UpdateTour(ctx, id, fields)
}

func (ts *TourService) GetTourByID(ctx context.Context, id primitive.ObjectID) (*models.Tour, error) {
	return ts.tourRepo.GetTourByID(ctx, id)
}

func (ts *TourService) GetTourBySlug(ctx context.Context, slug string) (*models.Tour, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", models.ErrValidation)
	}
	return ts.tourRepo.GetTourBySlug(ctx, slug)
}

func (ts *TourService) ListTours(ctx context.Context, filter models.TourFilter, offset, limit int64) ([]*models.Tour, int64, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: invalid offset or limit", models.ErrValidation)
	}
	return ts.tourRepo.ListTours(ctx, filter, offset, limit)
}

func (ts *TourService) DeleteTour(ctx context.Context, id primitive.ObjectID) error {
	return ts.tourRepo.SoftDeleteTour(ctx, id)
}
