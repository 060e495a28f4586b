package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/middleware"
	"github.com/marhabatours/api/internal/models"
	"github.com/marhabatours/api/internal/services"
)

func pagination(c *gin.Context) (page, limit int64) {
	page, _ = strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func ListTours(t *services.TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pagination(c)
		filter := models.TourFilter{
			Category:     c.Query("category"),
			Difficulty:   c.Query("difficulty"),
			FeaturedOnly: c.Query("featured") == "true",
		}
		// Admins may inspect deactivated tours.
		if actor := middleware.CurrentUser(c); actor != nil && actor.Role == models.RoleAdmin {
			filter.IncludeInactive = c.Query("include_inactive") == "true"
		}

		tours, total, err := t.ListTours(c.Request.Context(), filter, (page-1)*limit, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(tours, int(page), int(limit), int(total)))
	}
}

// GetTour resolves a tour by slug, falling back to a raw object id so older
// links keep working. Deactivated tours are indistinguishable from missing
// ones unless the caller is an admin, matching the listing's visibility rule.
func GetTour(t *services.TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := c.Param("ref")

		tour, err := t.GetTourBySlug(c.Request.Context(), ref)
		if err != nil {
			if id, idErr := primitive.ObjectIDFromHex(ref); idErr == nil {
				tour, err = t.GetTourByID(c.Request.Context(), id)
			}
		}
		if err != nil {
			respondError(c, err)
			return
		}
		if !tour.IsActive {
			if actor := middleware.CurrentUser(c); actor == nil || actor.Role != models.RoleAdmin {
				respondError(c, models.ErrNotFound)
				return
			}
		}
		c.JSON(http.StatusOK, models.SuccessResponse(tour, ""))
	}
}

func CreateTour(t *services.TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		var tour models.Tour
		if err := c.ShouldBindJSON(&tour); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := t.CreateTour(c.Request.Context(), &tour, actor.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "tour created"))
	}
}

func UpdateTour(t *services.TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tourID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid tour ID format"))
			return
		}

		var fields map[string]interface{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		tour, err := t.UpdateTour(c.Request.Context(), tourID, fields)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(tour, "tour updated"))
	}
}

func DeleteTour(t *services.TourService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tourID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid tour ID format"))
			return
		}
		if err := t.DeleteTour(c.Request.Context(), tourID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "tour deactivated"))
	}
}
