package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lostandfound/backend/internal/config"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/handler"
	"github.com/lostandfound/backend/internal/middleware"
	"github.com/lostandfound/backend/internal/repository"
	"github.com/lostandfound/backend/internal/service"
	"github.com/lostandfound/backend/internal/telemetry"
	"github.com/lostandfound/backend/internal/validation"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	FileStorage domain.FileStorage
	Clock       domain.Clock
	Logger      *zap.Logger
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	cfg := deps.Config

	// Initialize repositories
	cache := repository.NewRedisCacheRepository(deps.RedisClient)
	categoryRepo := repository.NewCachedCategoryRepository(repository.NewMongoCategoryRepository(deps.MongoDB), cache)
	publicationRepo := repository.NewMongoPublicationRepository(deps.MongoDB)
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	refreshTokenRepo := repository.NewMongoRefreshTokenRepository(deps.MongoDB)
	profileRepo := repository.NewMongoProfileRepository(deps.MongoDB)
	chatRepo := repository.NewMongoChatRepository(deps.MongoDB)
	messageRepo := repository.NewMongoMessageRepository(deps.MongoDB)
	chatNotifier := repository.NewRedisChatNotifier(deps.RedisClient)

	// Initialize services
	profileService := service.NewProfileService(profileRepo, deps.FileStorage, deps.Clock, deps.Logger)
	tokenService := service.NewTokenService(cfg.JWT, refreshTokenRepo, userRepo, deps.Clock)
	authService := service.NewAuthService(userRepo, profileService, tokenService, deps.Clock, deps.Logger)
	categoryService := service.NewCategoryService(categoryRepo)
	publicationService := service.NewPublicationService(publicationRepo, categoryRepo, deps.FileStorage, deps.Clock, deps.Logger)
	chatService := service.NewChatService(chatRepo, messageRepo, profileRepo, chatNotifier, deps.Clock, deps.Logger)

	validator := validation.New(deps.Clock, categoryRepo, cfg.Pagination.MaxPageSize)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, validator, cfg.JWT.RefreshTokenExpiry)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	publicationHandler := handler.NewPublicationHandler(publicationService, validator, cfg.Server.MaxUploadSizeMB, cfg.Pagination.DefaultPageSize)
	profileHandler := handler.NewProfileHandler(profileService, validator, cfg.Server.MaxUploadSizeMB, cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)
	chatHandler := handler.NewChatHandler(chatService, validator, cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName: "LostAndFound API",
		// Multipart bodies carry the JSON part next to the photo
		BodyLimit:    int(cfg.Server.MaxUploadSizeMB*1024*1024) + 64*1024,
		ErrorHandler: customErrorHandler(deps.Logger),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "X-Pagination, Location",
	}))
	app.Use(telemetry.FiberMiddleware())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "lostandfound-api",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Auth endpoints (public, rate limited)
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimiter(cfg.RateLimit))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	requireAuth := middleware.VerifyToken(cfg.JWT)
	idempotency := middleware.IdempotencyMiddleware(deps.RedisClient, cfg.Server.IdempotencyTTL, deps.Logger)

	v1.Get("/categories", requireAuth, categoryHandler.ListCategories)

	// Publications
	publications := v1.Group("/publications", requireAuth, idempotency)
	publications.Get("/", publicationHandler.GetPublications)
	publications.Post("/", publicationHandler.CreatePublication)
	publications.Get("/:id", publicationHandler.GetPublication)
	publications.Put("/:id", publicationHandler.UpdatePublication)
	publications.Delete("/:id", publicationHandler.DeletePublication)
	publications.Put("/:id/photo", publicationHandler.UpdatePhoto)
	publications.Delete("/:id/photo", publicationHandler.DeletePhoto)
	publications.Patch("/:id/state", publicationHandler.UpdateState)
	publications.Patch("/:id/rating", publicationHandler.UpdateRating)

	// Profiles
	profiles := v1.Group("/profiles", requireAuth, idempotency)
	profiles.Get("/me", profileHandler.GetMyProfile)
	profiles.Put("/me", profileHandler.UpdateMyProfile)
	profiles.Put("/me/picture", profileHandler.UpdatePicture)
	profiles.Delete("/me/picture", profileHandler.DeletePicture)
	profiles.Get("/:userId", profileHandler.GetProfile)
	profiles.Get("/:userId/comments", profileHandler.GetComments)
	profiles.Post("/:userId/comments", profileHandler.AddComment)
	profiles.Put("/:userId/comments", profileHandler.UpdateComment)
	profiles.Delete("/:userId/comments", profileHandler.DeleteComment)

	// Chats
	chats := v1.Group("/chats", requireAuth, idempotency)
	chats.Get("/", chatHandler.GetChats)
	chats.Get("/unread", chatHandler.GetUnreadCount)
	chats.Get("/:userId/messages", chatHandler.GetMessages)
	chats.Post("/:userId/messages", chatHandler.SendMessage)

	return app
}

func customErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}

		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
