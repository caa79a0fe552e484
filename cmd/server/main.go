package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/placenote/backend/internal/repositories"
	"github.com/anonto42/placenote/backend/internal/router"
	"github.com/anonto42/placenote/backend/pkg/config"
	"github.com/anonto42/placenote/backend/pkg/firebase"
	"github.com/anonto42/placenote/backend/pkg/geocoder"
	"github.com/anonto42/placenote/backend/pkg/logger"
	"github.com/anonto42/placenote/backend/pkg/storage"
	"github.com/anonto42/placenote/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	reviews := repositories.NewMongoReviewRepository(db.Mongo.Database(cfg.MongoDatabase))
	if err := reviews.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to create review indexes", zap.Error(err))
	}

	// Firebase login is optional
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
	if err != nil {
		log.Warn("firebase login disabled", zap.Error(err))
	}

	images, err := newImageStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize image storage", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg, log)

	err = router.SetupRoutes(e, router.Dependencies{
		Postgres:     db.Postgres,
		Reviews:      reviews,
		FirebaseAuth: firebaseApp.Client(),
		Images:       images,
		Geocoder:     geocoder.NewKakao(cfg.GeocoderURL, cfg.KakaoRESTKey, cfg.GeocoderTimeout),
		Config:       cfg,
		Logger:       log,
	})
	if err != nil {
		log.Fatal("failed to set up routes", zap.Error(err))
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("metrics server listening", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", zap.Error(err))
	}
}

// newImageStore uses MinIO when an endpoint is configured and memory otherwise
func newImageStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	if cfg.MinioEndpoint == "" {
		log.Warn("MINIO_ENDPOINT not set, keeping images in memory")
		return storage.NewMemory(cfg.MediaBaseURL), nil
	}
	return storage.NewMinio(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
		BaseURL:   cfg.MinioPublicURL,
	})
}
