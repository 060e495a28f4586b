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

	"github.com/marhabatours/api/internal/helpers"
)

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int64) ([]*Booking, error)
	ListBookings(ctx context.Context, offset, limit int64) ([]*Booking, error)
	ConfirmBooking(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	CancelBooking(ctx context.Context, id primitive.ObjectID, reason string, cancelledBy primitive.ObjectID) (*Booking, error)
	CloseBooking(ctx context.Context, id primitive.ObjectID, status string) (*Booking, error)
	AppendCommunication(ctx context.Context, id primitive.ObjectID, entry CommunicationEntry) (*Booking, error)
	GetStats(ctx context.Context) ([]BookingStat, error)
}

// BookingStat is one row of the per-status report.
type BookingStat struct {
	Status       string  `bson:"_id" json:"status"`
	Count        int64   `bson:"count" json:"count"`
	TotalRevenue float64 `bson:"total_revenue" json:"total_revenue"`
}

// CreateBooking inserts a new ledger entry. The confirmation number is
// assigned at first persistence.
func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	col := mdb.Collection(BookingsCollection)
	return insertBookingWithRetry(booking, func(b *Booking) error {
		_, err := col.InsertOne(ctx, b)
		return err
	})
}

// insertBookingWithRetry assigns a confirmation number if the booking has
// none. The unique index on it is the real uniqueness guarantee: a
// duplicate-key failure regenerates the number and retries exactly once
// before surfacing a conflict.
func insertBookingWithRetry(booking *Booking, insert func(*Booking) error) error {
	if booking.Confirmation.ConfirmationNumber == "" {
		booking.Confirmation.ConfirmationNumber = helpers.ConfirmationNumber()
	}
	err := insert(booking)
	if mongo.IsDuplicateKeyError(err) {
		booking.Confirmation.ConfirmationNumber = helpers.ConfirmationNumber()
		err = insert(booking)
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: could not allocate a unique confirmation number", ErrConflict)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	var booking Booking
	err := mdb.Collection(BookingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) ListBookingsByUser(ctx context.Context, userID primitive.ObjectID, offset, limit int64) ([]*Booking, error) {
	return mdb.listBookings(ctx, bson.M{"user_id": userID}, offset, limit)
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context, offset, limit int64) ([]*Booking, error) {
	return mdb.listBookings(ctx, bson.M{}, offset, limit)
}

func (mdb *MongodbRepo) listBookings(ctx context.Context, filter bson.M, offset, limit int64) ([]*Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	cursor, err := mdb.Collection(BookingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// ConfirmBooking moves pending -> confirmed. The status is part of the update
// filter, so of two concurrent confirms only one can match; the loser (and any
// call against a terminal entry) gets ErrInvalidTransition.
func (mdb *MongodbRepo) ConfirmBooking(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	now := time.Now().UTC()
	return mdb.transitionBooking(ctx,
		bson.M{"_id": id, "status": BookingPending},
		bson.M{"$set": bson.M{
			"status":                    BookingConfirmed,
			"confirmation.confirmed_at": now,
			"updated_at":                now,
		}},
		id,
	)
}

// CancelBooking moves pending or confirmed -> cancelled, recording reason,
// actor and timestamp in the same single-document update.
func (mdb *MongodbRepo) CancelBooking(ctx context.Context, id primitive.ObjectID, reason string, cancelledBy primitive.ObjectID) (*Booking, error) {
	now := time.Now().UTC()
	return mdb.transitionBooking(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{BookingPending, BookingConfirmed}}},
		bson.M{"$set": bson.M{
			"status":                    BookingCancelled,
			"cancellation.cancelled_at": now,
			"cancellation.cancelled_by": cancelledBy,
			"cancellation.reason":       reason,
			"updated_at":                now,
		}},
		id,
	)
}

// CloseBooking records the terminal administrative statuses (completed,
// no_show); only confirmed bookings can be closed.
func (mdb *MongodbRepo) CloseBooking(ctx context.Context, id primitive.ObjectID, status string) (*Booking, error) {
	if status != BookingCompleted && status != BookingNoShow {
		return nil, fmt.Errorf("%w: %q is not a closing status", ErrValidation, status)
	}
	return mdb.transitionBooking(ctx,
		bson.M{"_id": id, "status": BookingConfirmed},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}},
		id,
	)
}

func (mdb *MongodbRepo) transitionBooking(ctx context.Context, filter, update bson.M, id primitive.ObjectID) (*Booking, error) {
	var booking Booking
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := mdb.Collection(BookingsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	// No match: either the entry is gone or it is not in an allowed source
	// status. Look it up to report which.
	current, lookupErr := mdb.GetBookingByID(ctx, id)
	if lookupErr != nil {
		return nil, lookupErr
	}
	return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, current.Status)
}

func (mdb *MongodbRepo) AppendCommunication(ctx context.Context, id primitive.ObjectID, entry CommunicationEntry) (*Booking, error) {
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}
	var booking Booking
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := mdb.Collection(BookingsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"communication": entry}},
		opts,
	).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to append communication entry: %w", err)
	}
	return &booking, nil
}

// GetStats groups all bookings by status with a count and summed revenue.
func (mdb *MongodbRepo) GetStats(ctx context.Context) ([]BookingStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           "$status",
			"count":         bson.M{"$sum": 1},
			"total_revenue": bson.M{"$sum": "$pricing.total_amount"},
		}}},
	}
	cursor, err := mdb.Collection(BookingsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []BookingStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode booking stats: %w", err)
	}
	return stats, nil
}
