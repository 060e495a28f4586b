package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/middleware"
	"github.com/marhabatours/api/internal/models"
	"github.com/marhabatours/api/internal/services"
)

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func CreateReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		tourID, err := primitive.ObjectIDFromHex(c.Param("ref"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid tour ID format"))
			return
		}

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		review := &models.Review{
			TourID:  tourID,
			UserID:  actor.ID,
			Rating:  req.Rating,
			Comment: req.Comment,
		}
		created, err := r.CreateReview(c.Request.Context(), review)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "review created"))
	}
}

func ListTourReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tourID, err := primitive.ObjectIDFromHex(c.Param("ref"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid tour ID format"))
			return
		}

		page, limit := pagination(c)
		reviews, err := r.ListReviewsByTour(c.Request.Context(), tourID, (page-1)*limit, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(reviews, int(page), int(limit), len(reviews)))
	}
}

func UpdateReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid review ID format"))
			return
		}

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		review, err := r.UpdateReview(c.Request.Context(), reviewID, actor.ID, req.Rating, req.Comment)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(review, "review updated"))
	}
}

func DeleteReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid review ID format"))
			return
		}

		if err := r.DeleteReview(c.Request.Context(), reviewID, actor.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "review deleted"))
	}
}
