// Package queue defines the booking lifecycle events published to the
// message broker and the publisher that delivers them.
package queue

import "time"

const (
	BookingCreatedQueue   = "booking.created"
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingEvent carries enough context for downstream consumers (notification
// mailers, analytics) to act without querying the primary database.
type BookingEvent struct {
	BookingID          string    `json:"booking_id"`
	TourID             string    `json:"tour_id"`
	UserID             string    `json:"user_id"`
	Status             string    `json:"status"`
	ConfirmationNumber string    `json:"confirmation_number"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	TotalAmount        float64   `json:"total_amount"`
	Currency           string    `json:"currency"`
	OccurredAt         time.Time `json:"occurred_at"`
}
