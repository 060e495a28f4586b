package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marhabatours/api/internal/config"
	"github.com/marhabatours/api/internal/models"
	"github.com/marhabatours/api/internal/queue"
	"github.com/marhabatours/api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	MongoDBClient *mongo.Client
	RedisClient   *redis.Client

	UserService    *services.UserService
	TourService    *services.TourService
	ReviewService  *services.ReviewService
	BookingService *services.BookingService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	cld *cloudinary.Cloudinary,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBName)
	publisher := queue.NewPublisher(cfg.RabbitURL, logger)

	userService := services.NewUserService(repo, cfg.JWTSecret, cfg.JWTTTL)
	tourService := services.NewTourService(repo, cld)
	reviewService := services.NewReviewService(repo, repo)
	bookingService := services.NewBookingService(repo, repo, publisher, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		MongoDBClient:  mongoDBClient,
		RedisClient:    redisClient,
		UserService:    userService,
		TourService:    tourService,
		ReviewService:  reviewService,
		BookingService: bookingService,
	}
}
