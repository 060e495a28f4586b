package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/middleware"
	"github.com/marhabatours/api/internal/models"
	"github.com/marhabatours/api/internal/services"
)

type createBookingRequest struct {
	TourID             string                     `json:"tour_id" binding:"required"`
	StartDate          time.Time                  `json:"start_date" binding:"required"`
	EndDate            time.Time                  `json:"end_date" binding:"required"`
	Participants       models.Participants        `json:"participants" binding:"required"`
	ParticipantDetails []models.ParticipantDetail `json:"participant_details"`
	BasePrice          float64                    `json:"base_price" binding:"required"`
	DiscountAmount     float64                    `json:"discount_amount"`
	TaxAmount          float64                    `json:"tax_amount"`
	Currency           string                     `json:"currency"`
	PaymentMethod      string                     `json:"payment_method"`
	SpecialRequests    string                     `json:"special_requests"`
}

func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var req createBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		tourID, err := primitive.ObjectIDFromHex(req.TourID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid tour ID format"))
			return
		}

		booking := &models.Booking{
			TourID:             tourID,
			UserID:             actor.ID,
			StartDate:          req.StartDate,
			EndDate:            req.EndDate,
			Participants:       req.Participants,
			ParticipantDetails: req.ParticipantDetails,
			Pricing: models.Pricing{
				BasePrice:      req.BasePrice,
				DiscountAmount: req.DiscountAmount,
				TaxAmount:      req.TaxAmount,
				Currency:       req.Currency,
			},
			Payment: models.Payment{
				Method: req.PaymentMethod,
			},
			SpecialRequests: req.SpecialRequests,
		}

		created, err := b.CreateBooking(c.Request.Context(), booking)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "booking created"))
	}
}

// loadBookingForActor fetches a booking and enforces that travelers only see
// their own ledger entries.
func loadBookingForActor(c *gin.Context, b *services.BookingService) (*models.Booking, *models.User, bool) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return nil, nil, false
	}
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
		return nil, nil, false
	}
	booking, err := b.GetBookingByID(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	if booking.UserID != actor.ID && actor.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, models.ErrorResponse("access denied"))
		return nil, nil, false
	}
	return booking, actor, true
}

func GetBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, _, ok := loadBookingForActor(c, b)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, ""))
	}
}

func ListMyBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		page, limit := pagination(c)
		bookings, err := b.ListBookingsByUser(c.Request.Context(), actor.ID, (page-1)*limit, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, int(page), int(limit), len(bookings)))
	}
}

func ListBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pagination(c)
		bookings, err := b.ListBookings(c.Request.Context(), (page-1)*limit, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(bookings, int(page), int(limit), len(bookings)))
	}
}

func ConfirmBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, _, ok := loadBookingForActor(c, b)
		if !ok {
			return
		}
		confirmed, err := b.ConfirmBooking(c.Request.Context(), booking.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(confirmed, "booking confirmed"))
	}
}

type cancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, actor, ok := loadBookingForActor(c, b)
		if !ok {
			return
		}
		var req cancelBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		cancelled, err := b.CancelBooking(c.Request.Context(), booking.ID, req.Reason, actor.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(cancelled, "booking cancelled"))
	}
}

type closeBookingRequest struct {
	Status string `json:"status" binding:"required,oneof=completed no_show"`
}

// CloseBooking is the admin-only path for the out-of-band terminal statuses.
func CloseBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}
		var req closeBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		booking, err := b.CloseBooking(c.Request.Context(), bookingID, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "booking "+req.Status))
	}
}

type communicationRequest struct {
	Type    string `json:"type" binding:"required,oneof=email sms call note"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func AppendCommunication(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}
		bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid booking ID format"))
			return
		}
		var req communicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		entry := models.CommunicationEntry{
			Type:    req.Type,
			Subject: req.Subject,
			Message: req.Message,
			SentAt:  time.Now().UTC(),
			SentBy:  actor.ID,
		}
		booking, err := b.AppendCommunication(c.Request.Context(), bookingID, entry)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "communication logged"))
	}
}

func BookingStats(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := b.GetStats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(stats, ""))
	}
}
