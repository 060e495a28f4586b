package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/models"
	"github.com/marhabatours/api/internal/queue"
)

type BookingService struct {
	bookingRepo models.BookingRepo
	tourRepo    models.TourRepo
	publisher   *queue.Publisher
	logger      *slog.Logger
}

func NewBookingService(bookingRepo models.BookingRepo, tourRepo models.TourRepo, publisher *queue.Publisher, logger *slog.Logger) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		tourRepo:    tourRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateBooking opens a ledger entry in pending status. The tour reference is
// checked but never embedded; pricing is snapshot into the booking so later
// tour edits do not rewrite history.
func (bs *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if _, err := bs.tourRepo.GetTourByID(ctx, booking.TourID); err != nil {
		return nil, err
	}

	booking.Status = models.BookingPending
	booking.Payment.Status = models.PaymentPending
	if booking.Pricing.Currency == "" {
		booking.Pricing.Currency = "USD"
	}
	booking.CalculateTotal()
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := booking.ValidateNew(); err != nil {
		return nil, err
	}
	if err := bs.bookingRepo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	bs.publishEvent(ctx, booking, bs.publisher.PublishBookingCreated)
	return booking, nil
}

// ConfirmBooking moves a pending entry to confirmed. Terminal entries and
// concurrent double-confirms are rejected by the repository's status-guarded
// update.
func (bs *BookingService) ConfirmBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookingRepo.ConfirmBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	bs.publishEvent(ctx, booking, bs.publisher.PublishBookingConfirmed)
	return booking, nil
}

func (bs *BookingService) CancelBooking(ctx context.Context, id primitive.ObjectID, reason string, cancelledBy primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookingRepo.CancelBooking(ctx, id, reason, cancelledBy)
	if err != nil {
		return nil, err
	}
	bs.publishEvent(ctx, booking, bs.publisher.PublishBookingCancelled)
	return booking, nil
}

// CloseBooking records the out-of-band administrative endings (completed,
// no_show).
func (bs *BookingService) CloseBooking(ctx context.Context, id primitive.ObjectID, status string) (*models.Booking, error) {
	return bs.bookingRepo.CloseBooking(ctx, id, status)
}

func (bs *BookingService) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return bs.bookingRepo.GetBookingByID(ctx, id)
}

func (bs *BookingService) ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int64) ([]*models.Booking, error) {
	return bs.bookingRepo.ListBookingsByUser(ctx, userID, offset, limit)
}

func (bs *BookingService) ListBookings(ctx context.Context, offset, limit int64) ([]*models.Booking, error) {
	return bs.bookingRepo.ListBookings(ctx, offset, limit)
}

func (bs *BookingService) AppendCommunication(ctx context.Context, id primitive.ObjectID, entry models.CommunicationEntry) (*models.Booking, error) {
	return bs.bookingRepo.AppendCommunication(ctx, id, entry)
}

func (bs *BookingService) GetStats(ctx context.Context) ([]models.BookingStat, error) {
	return bs.bookingRepo.GetStats(ctx)
}

// publishEvent notifies the broker after a successful write. Delivery is
// best-effort: a broker outage must not fail the booking operation.
func (bs *BookingService) publishEvent(ctx context.Context, booking *models.Booking, publish func(context.Context, queue.BookingEvent) error) {
	if !bs.publisher.Enabled() {
		return
	}
	event := queue.BookingEvent{
		BookingID:          booking.ID.Hex(),
		TourID:             booking.TourID.Hex(),
		UserID:             booking.UserID.Hex(),
		Status:             booking.Status,
		ConfirmationNumber: booking.Confirmation.ConfirmationNumber,
		StartDate:          booking.StartDate,
		EndDate:            booking.EndDate,
		TotalAmount:        booking.Pricing.TotalAmount,
		Currency:           booking.Pricing.Currency,
		OccurredAt:         time.Now().UTC(),
	}
	if err := publish(ctx, event); err != nil {
		bs.logger.Error("failed to publish booking event",
			"booking_id", event.BookingID,
			"status", event.Status,
			"error", err,
		)
	}
}
