package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/marhabatours/api/internal/container"
	"github.com/marhabatours/api/internal/handlers"
	"github.com/marhabatours/api/internal/middleware"
	"github.com/marhabatours/api/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	secret := container.Config.JWTSecret
	identity := container.UserService

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "marhaba-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.Signup(container.UserService))
		v1.POST("/login", handlers.Login(container.UserService, container.Config))
	}

	// Catalog reads are public. OptionalAuthenticate lets an admin token widen
	// the listing filter without gating anonymous traffic; it runs before
	// CacheReads so authenticated responses stay out of the shared cache.
	catalog := v1.Group("/tours")
	catalog.Use(middleware.OptionalAuthenticate(secret, identity))
	catalog.Use(middleware.CacheReads(container.RedisClient, container.Config.CacheTTL))
	{
		catalog.GET("/", handlers.ListTours(container.TourService))
		catalog.GET("/:ref", handlers.GetTour(container.TourService))
	}
	v1.GET("/tours/:ref/reviews", handlers.ListTourReviews(container.ReviewService))

	protected := v1.Group("/")
	protected.Use(middleware.Authenticate(secret, identity))

	protected.POST("/logout", handlers.Logout(container.Config))

	userRoutes := protected.Group("/users")
	{
		protected.GET("/profile", handlers.GetProfile())
		protected.PATCH("/profile", handlers.UpdateProfile(container.UserService))
		protected.PATCH("/profile/password", handlers.ChangePassword(container.UserService))
		protected.DELETE("/profile", handlers.DeactivateAccount(container.UserService))

		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("/", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("/", handlers.ListMyBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.POST("/:id/confirm", handlers.ConfirmBooking(container.BookingService))
		bookingRoutes.POST("/:id/cancel", handlers.CancelBooking(container.BookingService))
	}

	reviewRoutes := protected.Group("/reviews")
	{
		protected.POST("/tours/:ref/reviews", handlers.CreateReview(container.ReviewService))
		reviewRoutes.PATCH("/:id", handlers.UpdateReview(container.ReviewService))
		reviewRoutes.DELETE("/:id", handlers.DeleteReview(container.ReviewService))
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/tours", handlers.CreateTour(container.TourService))
		admin.PATCH("/tours/:id", handlers.UpdateTour(container.TourService))
		admin.DELETE("/tours/:id", handlers.DeleteTour(container.TourService))

		admin.GET("/users", handlers.ListUsers(container.UserService))

		admin.GET("/bookings", handlers.ListBookings(container.BookingService))
		admin.GET("/bookings/stats", handlers.BookingStats(container.BookingService))
		admin.POST("/bookings/:id/close", handlers.CloseBooking(container.BookingService))
		admin.POST("/bookings/:id/communications", handlers.AppendCommunication(container.BookingService))
	}

	return r
}
