package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/models"
)

// In-memory repositories mirroring the storage semantics the services rely
// on: sentinel errors, status-guarded transitions, and the derived rating
// aggregate.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return models.ErrEmailTaken
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name, _ = v.(string)
		case "phone":
			u.Phone, _ = v.(string)
		case "avatar":
			u.Avatar, _ = v.(string)
		case "password":
			u.Password, _ = v.(string)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	return nil
}

func (f *fakeUserRepo) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context, _, _ int64) ([]*models.User, error) {
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type fakeTourRepo struct {
	tours   map[primitive.ObjectID]*models.Tour
	reviews *fakeReviewRepo
}

func newFakeTourRepo() *fakeTourRepo {
	return &fakeTourRepo{tours: make(map[primitive.ObjectID]*models.Tour)}
}

func (f *fakeTourRepo) CreateTour(_ context.Context, tour *models.Tour) error {
	if tour.ID.IsZero() {
		tour.ID = primitive.NewObjectID()
	}
	for _, t := range f.tours {
		if t.Slug == tour.Slug {
			return fmt.Errorf("%w: a tour with slug %q already exists", models.ErrConflict, tour.Slug)
		}
	}
	cp := *tour
	f.tours[tour.ID] = &cp
	return nil
}

func (f *fakeTourRepo) GetTourByID(_ context.Context, id primitive.ObjectID) (*models.Tour, error) {
	t, ok := f.tours[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTourRepo) GetTourBySlug(_ context.Context, slug string) (*models.Tour, error) {
	for _, t := range f.tours {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeTourRepo) ListTours(_ context.Context, filter models.TourFilter, _, _ int64) ([]*models.Tour, int64, error) {
	var out []*models.Tour
	for _, t := range f.tours {
		if !filter.IncludeInactive && !t.IsActive {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTourRepo) UpdateTour(_ context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Tour, error) {
	t, ok := f.tours[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if title, ok := fields["title"].(string); ok {
		t.Title = title
	}
	if slug, ok := fields["slug"].(string); ok {
		t.Slug = slug
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func (f *fakeTourRepo) SoftDeleteTour(_ context.Context, id primitive.ObjectID) error {
	t, ok := f.tours[id]
	if !ok {
		return models.ErrNotFound
	}
	t.IsActive = false
	return nil
}

func (f *fakeTourRepo) RecalcAverageRatings(_ context.Context, tourID primitive.ObjectID) error {
	t, ok := f.tours[tourID]
	if !ok {
		return models.ErrNotFound
	}
	count := 0
	sum := 0
	if f.reviews != nil {
		for _, r := range f.reviews.reviews {
			if r.TourID == tourID {
				count++
				sum += r.Rating
			}
		}
	}
	if count == 0 {
		t.RatingsAverage = 0
		t.RatingsQuantity = 0
		return nil
	}
	t.RatingsAverage = models.RoundRating(float64(sum) / float64(count))
	t.RatingsQuantity = count
	return nil
}

type fakeReviewRepo struct {
	reviews map[primitive.ObjectID]*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[primitive.ObjectID]*models.Review)}
}

func (f *fakeReviewRepo) CreateReview(_ context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	cp := *review
	f.reviews[review.ID] = &cp
	return nil
}

func (f *fakeReviewRepo) GetReviewByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewRepo) ListReviewsByTour(_ context.Context, tourID primitive.ObjectID, _, _ int64) ([]*models.Review, error) {
	var out []*models.Review
	for _, r := range f.reviews {
		if r.TourID == tourID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) UpdateReview(_ context.Context, id, userID primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	r, ok := f.reviews[id]
	if !ok || r.UserID != userID {
		return nil, models.ErrNotFound
	}
	r.Rating = rating
	r.Comment = comment
	r.UpdatedAt = time.Now().UTC()
	cp := *r
	return &cp, nil
}

func (f *fakeReviewRepo) DeleteReview(_ context.Context, id, userID primitive.ObjectID) (*models.Review, error) {
	r, ok := f.reviews[id]
	if !ok || r.UserID != userID {
		return nil, models.ErrNotFound
	}
	delete(f.reviews, id)
	return r, nil
}

type fakeBookingRepo struct {
	bookings map[primitive.ObjectID]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (f *fakeBookingRepo) CreateBooking(_ context.Context, booking *models.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	if booking.Confirmation.ConfirmationNumber == "" {
		booking.Confirmation.ConfirmationNumber = fmt.Sprintf("MRM%d", len(f.bookings)+1)
	}
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) GetBookingByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ListBookingsByUser(_ context.Context, userID primitive.ObjectID, _, _ int64) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListBookings(_ context.Context, _, _ int64) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range f.bookings {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeBookingRepo) transition(id primitive.ObjectID, from []string, apply func(*models.Booking)) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	allowed := false
	for _, s := range from {
		if b.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: booking is %s", models.ErrInvalidTransition, b.Status)
	}
	apply(b)
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ConfirmBooking(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return f.transition(id, []string{models.BookingPending}, func(b *models.Booking) {
		now := time.Now().UTC()
		b.Status = models.BookingConfirmed
		b.Confirmation.ConfirmedAt = &now
	})
}

func (f *fakeBookingRepo) CancelBooking(_ context.Context, id primitive.ObjectID, reason string, cancelledBy primitive.ObjectID) (*models.Booking, error) {
	return f.transition(id, []string{models.BookingPending, models.BookingConfirmed}, func(b *models.Booking) {
		now := time.Now().UTC()
		b.Status = models.BookingCancelled
		b.Cancellation.CancelledAt = &now
		b.Cancellation.CancelledBy = cancelledBy
		b.Cancellation.Reason = reason
	})
}

func (f *fakeBookingRepo) CloseBooking(_ context.Context, id primitive.ObjectID, status string) (*models.Booking, error) {
	if status != models.BookingCompleted && status != models.BookingNoShow {
		return nil, fmt.Errorf("%w: %q is not a closing status", models.ErrValidation, status)
	}
	return f.transition(id, []string{models.BookingConfirmed}, func(b *models.Booking) {
		b.Status = status
	})
}

func (f *fakeBookingRepo) AppendCommunication(_ context.Context, id primitive.ObjectID, entry models.CommunicationEntry) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	b.Communication = append(b.Communication, entry)
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) GetStats(_ context.Context) ([]models.BookingStat, error) {
	byStatus := make(map[string]*models.BookingStat)
	for _, b := range f.bookings {
		s, ok := byStatus[b.Status]
		if !ok {
			s = &models.BookingStat{Status: b.Status}
			byStatus[b.Status] = s
		}
		s.Count++
		s.TotalRevenue += b.Pricing.TotalAmount
	}
	out := make([]models.BookingStat, 0, len(byStatus))
	for _, s := range byStatus {
		out = append(out, *s)
	}
	return out, nil
}
