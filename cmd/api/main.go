package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	authDelivery "github.com/martinmanurung/account-service/internal/domain/auth/delivery"
	authUsecase "github.com/martinmanurung/account-service/internal/domain/auth/usecase"
	userDelivery "github.com/martinmanurung/account-service/internal/domain/users/delivery"
	"github.com/martinmanurung/account-service/internal/domain/users/repository"
	userUsecase "github.com/martinmanurung/account-service/internal/domain/users/usecase"
	"github.com/martinmanurung/account-service/internal/platform/config"
	"github.com/martinmanurung/account-service/internal/platform/database"
	"github.com/martinmanurung/account-service/internal/platform/queue"
	"github.com/martinmanurung/account-service/internal/platform/storage"
	"github.com/martinmanurung/account-service/internal/platform/tokenstore"
	"github.com/martinmanurung/account-service/pkg/jwt"
	"github.com/martinmanurung/account-service/pkg/password"
	customValidator "github.com/martinmanurung/account-service/pkg/validator"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// tokenStore is satisfied by both the Redis and the in-memory store.
type tokenStore interface {
	authUsecase.TokenStore
	userUsecase.SessionStore
}

func main() {
	// Setup zerolog
	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	zlog.Info().Msg("Starting account service...")

	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := run(cfg); err != nil {
		zlog.Fatal().Err(err).Msg("Server stopped with error")
	}
	zlog.Info().Msg("Server exited successfully")
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	// Initialize MinIO
	minioClient, err := storage.InitMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}
	zlog.Info().Msg("MinIO initialized successfully")

	// Initialize token store
	var tokens tokenStore
	switch cfg.TokenStore.Driver {
	case config.TokenStoreMemory:
		zlog.Warn().Msg("Using in-memory token store, sessions are lost on restart")
		tokens = tokenstore.NewMemoryStore()
	default:
		redisClient, err := tokenstore.InitRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer func(client *redis.Client) { _ = client.Close() }(redisClient)
		tokens = tokenstore.NewRedisStore(redisClient, cfg.JWT.RefreshTokenExpiry)
		zlog.Info().Msg("Redis initialized successfully")
	}

	// Initialize publisher
	publisher, err := queue.NewPublisher(ctx, cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zlog.Warn().Err(err).Msg("Failed to close RabbitMQ publisher")
		}
	}()

	hasher, err := password.NewHasher(cfg.Security.BcryptCost)
	if err != nil {
		return err
	}

	// Initialize services
	jwtService := jwt.NewJWTService(cfg.JWT.SecretKey, jwt.Expiry{
		Access:  cfg.JWT.AccessTokenExpiry,
		Refresh: cfg.JWT.RefreshTokenExpiry,
		Link:    cfg.JWT.LinkTokenExpiry,
	})
	imageStore := storage.NewImageStore(minioClient, cfg.MinIO.BucketImages, cfg.MinIO.MaxFileSize, cfg.MinIO.MaxImagesPerUser)

	// Initialize repositories
	userRepo := repository.NewUser(db)

	// Initialize use cases
	authUC := authUsecase.NewUsecase(userRepo, tokens, hasher, jwtService, publisher, imageStore, cfg.ResetPassword.LinkBaseURL)
	userUC := userUsecase.NewUsecase(userRepo, imageStore, tokens)

	// Initialize handlers
	authHandler := authDelivery.NewHandler(authUC, cfg.MinIO.MaxFileSize)
	userHandler := userDelivery.NewHandler(userUC, cfg.MinIO.MaxFileSize)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = customValidator.NewValidator()
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	setupRoutes(e, cfg, authHandler, userHandler, authUC)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		port := cfg.Server.Port
		if port == "" {
			port = "8080"
		}

		zlog.Info().Str("port", port).Msg("Starting HTTP server")
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}

	zlog.Info().Msg("Shutting down server...")

	// Gracefully shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
