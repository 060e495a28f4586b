package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status state machine:
//
//	pending --confirm--> confirmed --(admin)--> completed | no_show
//	pending --cancel---> cancelled
//	confirmed --cancel-> cancelled
//
// cancelled, completed and no_show are terminal.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
	BookingNoShow    = "no_show"
)

const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentRefunded   = "refunded"
)

func IsTerminalStatus(status string) bool {
	switch status {
	case BookingCancelled, BookingCompleted, BookingNoShow:
		return true
	}
	return false
}

type Participants struct {
	Adults   int `bson:"adults" json:"adults"`
	Children int `bson:"children" json:"children"`
	Infants  int `bson:"infants" json:"infants"`
}

type EmergencyContact struct {
	Name         string `bson:"name,omitempty" json:"name,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`
	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty"`
}

type ParticipantDetail struct {
	FirstName           string           `bson:"first_name" json:"first_name"`
	LastName            string           `bson:"last_name" json:"last_name"`
	DateOfBirth         *time.Time       `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	PassportNumber      string           `bson:"passport_number,omitempty" json:"passport_number,omitempty"`
	Nationality         string           `bson:"nationality,omitempty" json:"nationality,omitempty"`
	DietaryRequirements string           `bson:"dietary_requirements,omitempty" json:"dietary_requirements,omitempty"`
	MedicalConditions   string           `bson:"medical_conditions,omitempty" json:"medical_conditions,omitempty"`
	EmergencyContact    EmergencyContact `bson:"emergency_contact,omitempty" json:"emergency_contact,omitempty"`
}

type Pricing struct {
	BasePrice      float64 `bson:"base_price" json:"base_price"`
	DiscountAmount float64 `bson:"discount_amount" json:"discount_amount"`
	TaxAmount      float64 `bson:"tax_amount" json:"tax_amount"`
	TotalAmount    float64 `bson:"total_amount" json:"total_amount"`
	Currency       string  `bson:"currency" json:"currency"`
}

type Payment struct {
	Status        string     `bson:"status" json:"status"`
	Method        string     `bson:"method,omitempty" json:"method,omitempty" validate:"omitempty,oneof=credit_card debit_card paypal bank_transfer cash"`
	TransactionID string     `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	RefundedAt    *time.Time `bson:"refunded_at,omitempty" json:"refunded_at,omitempty"`
	RefundAmount  float64    `bson:"refund_amount,omitempty" json:"refund_amount,omitempty"`
}

type Cancellation struct {
	CancelledAt  *time.Time         `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancelledBy  primitive.ObjectID `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	Reason       string             `bson:"reason,omitempty" json:"reason,omitempty"`
	RefundAmount float64            `bson:"refund_amount,omitempty" json:"refund_amount,omitempty"`
}

type Confirmation struct {
	ConfirmedAt        *time.Time `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"`
	ConfirmationNumber string     `bson:"confirmation_number,omitempty" json:"confirmation_number,omitempty"`
}

// CommunicationEntry is an append-only log line of outbound contact about a
// booking (confirmation emails, reminder calls, internal notes).
type CommunicationEntry struct {
	Type    string             `bson:"type" json:"type" validate:"required,oneof=email sms call note"`
	Subject string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Message string             `bson:"message,omitempty" json:"message,omitempty"`
	SentAt  time.Time          `bson:"sent_at" json:"sent_at"`
	SentBy  primitive.ObjectID `bson:"sent_by,omitempty" json:"sent_by,omitempty"`
}

type Booking struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TourID             primitive.ObjectID   `bson:"tour_id" json:"tour_id"`
	UserID             primitive.ObjectID   `bson:"user_id" json:"user_id"`
	StartDate          time.Time            `bson:"start_date" json:"start_date"`
	EndDate            time.Time            `bson:"end_date" json:"end_date"`
	Participants       Participants         `bson:"participants" json:"participants"`
	ParticipantDetails []ParticipantDetail  `bson:"participant_details,omitempty" json:"participant_details,omitempty"`
	Pricing            Pricing              `bson:"pricing" json:"pricing"`
	Payment            Payment              `bson:"payment" json:"payment"`
	Status             string               `bson:"status" json:"status"`
	SpecialRequests    string               `bson:"special_requests,omitempty" json:"special_requests,omitempty"`
	Notes              string               `bson:"notes,omitempty" json:"notes,omitempty"`
	Cancellation       Cancellation         `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Confirmation       Confirmation         `bson:"confirmation,omitempty" json:"confirmation"`
	Communication      []CommunicationEntry `bson:"communication,omitempty" json:"communication,omitempty"`
	CreatedAt          time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updated_at"`
}

// TotalParticipants is derived on read and never stored.
func (b *Booking) TotalParticipants() int {
	return b.Participants.Adults + b.Participants.Children + b.Participants.Infants
}

// DurationDays is the booking length in whole days, rounded up. Zero when
// either date is missing.
func (b *Booking) DurationDays() int {
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return 0
	}
	return int(math.Ceil(b.EndDate.Sub(b.StartDate).Hours() / 24))
}

// MarshalJSON includes the derived read-only values in API responses without
// ever persisting them.
func (b *Booking) MarshalJSON() ([]byte, error) {
	type alias Booking
	return json.Marshal(struct {
		*alias
		TotalParticipants int `json:"total_participants"`
		DurationDays      int `json:"duration_days"`
	}{(*alias)(b), b.TotalParticipants(), b.DurationDays()})
}

// CalculateTotal recomputes the stored total from its parts and returns it.
// It does not persist; the caller decides when to save.
func (b *Booking) CalculateTotal() float64 {
	subtotal := b.Pricing.BasePrice - b.Pricing.DiscountAmount
	b.Pricing.TotalAmount = subtotal + b.Pricing.TaxAmount
	return b.Pricing.TotalAmount
}

func (b *Booking) ValidateNew() error {
	if b.TourID.IsZero() {
		return fmt.Errorf("%w: booking must belong to a tour", ErrValidation)
	}
	if b.UserID.IsZero() {
		return fmt.Errorf("%w: booking must belong to a user", ErrValidation)
	}
	if b.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	if b.EndDate.IsZero() {
		return fmt.Errorf("%w: end date is required", ErrValidation)
	}
	if b.Participants.Adults < 1 {
		return fmt.Errorf("%w: at least one adult is required", ErrValidation)
	}
	if b.Participants.Children < 0 {
		return fmt.Errorf("%w: children count cannot be negative", ErrValidation)
	}
	if b.Participants.Infants < 0 {
		return fmt.Errorf("%w: infants count cannot be negative", ErrValidation)
	}
	for i, p := range b.ParticipantDetails {
		if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
			return fmt.Errorf("%w: participant %d is missing a first or last name", ErrValidation, i+1)
		}
	}
	if err := Validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
