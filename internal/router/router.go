package router

import (
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/placenote/backend/internal/handlers"
	"github.com/anonto42/placenote/backend/internal/middleware"
	"github.com/anonto42/placenote/backend/internal/repositories"
	"github.com/anonto42/placenote/backend/pkg/config"
	"github.com/anonto42/placenote/backend/pkg/geocoder"
	"github.com/anonto42/placenote/backend/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the connections and adapters the routes are built from
type Dependencies struct {
	Postgres     *gorm.DB
	Reviews      repositories.ReviewRepository
	FirebaseAuth *auth.Client // optional
	Images       storage.Store
	Geocoder     geocoder.Geocoder
	Config       *config.Config
	Logger       *zap.Logger
}

// SetupRoutes migrates the relational schema, builds the repositories and
// handlers and registers every route.
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	log := deps.Logger

	if err := repositories.AutoMigrate(deps.Postgres); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	postRepo := repositories.NewPostgresPostRepository(deps.Postgres)
	tagRepo := repositories.NewPostgresTagRepository(deps.Postgres)
	engagementRepo := repositories.NewPostgresEngagementRepository(deps.Postgres)
	emoteRepo := repositories.NewPostgresEmoteRepository(deps.Postgres)

	requireAuth := middleware.JWTAuthMiddleware(deps.Config.JWTSecret)
	optionalAuth := middleware.OptionalJWTAuth(deps.Config.JWTSecret)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth, deps.Config.JWTSecret, log)
	authHandler.RegisterAuthRoutes(authGroup)

	// Reads are public, writes carry requireAuth per route
	api := e.Group("/api/v1")

	userHandler := handlers.NewUserHandler(userRepo, engagementRepo, log)
	userHandler.RegisterProfileRoutes(api, requireAuth)

	postHandler := handlers.NewPostHandler(handlers.PostRepositories{
		Posts:       postRepo,
		Tags:        tagRepo,
		Engagements: engagementRepo,
		Reviews:     deps.Reviews,
		Emotes:      emoteRepo,
		Users:       userRepo,
	}, deps.Images, deps.Geocoder, log, handlers.PageOptions{
		KakaoScriptKey: deps.Config.KakaoScriptKey,
		MaxUploadBytes: deps.Config.MaxUploadBytes,
	})
	postHandler.RegisterPostRoutes(api, requireAuth, optionalAuth)

	engagementHandler := handlers.NewEngagementHandler(postRepo, engagementRepo, log)
	engagementHandler.RegisterEngagementRoutes(api, requireAuth)

	reviewHandler := handlers.NewReviewHandler(postRepo, deps.Reviews, emoteRepo, userRepo, log)
	reviewHandler.RegisterReviewRoutes(api, requireAuth)

	// Serve blobs of the in-memory store so local runs have working image URLs
	if mem, ok := deps.Images.(*storage.Memory); ok {
		e.GET(deps.Config.MediaBaseURL+"/*", mediaHandler(mem))
	}

	log.Info("all routes configured", zap.Int("routes", len(e.Routes())))
	return nil
}

func mediaHandler(mem *storage.Memory) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, ok := mem.Get(c.Param("*"))
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "Image not found")
		}
		return c.Blob(http.StatusOK, mimetype.Detect(data).String(), data)
	}
}
