package main

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	authDelivery "github.com/martinmanurung/account-service/internal/domain/auth/delivery"
	"github.com/martinmanurung/account-service/internal/domain/users"
	userDelivery "github.com/martinmanurung/account-service/internal/domain/users/delivery"
	"github.com/martinmanurung/account-service/internal/platform/config"
	appMiddleware "github.com/martinmanurung/account-service/pkg/middleware"
	"github.com/martinmanurung/account-service/pkg/response"
)

func setupRoutes(e *echo.Echo, cfg *config.Config, authHandler *authDelivery.Handler, userHandler *userDelivery.Handler, resolver appMiddleware.Resolver) {
	// Middleware
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(appMiddleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.MinIO.MaxFileSize)))
	if cfg.Server.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.Server.RequestTimeout))
	}

	// Custom error handler
	e.HTTPErrorHandler = response.CustomErrorHandler

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "running",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.POST("/reset-password", authHandler.ResetPassword)
	}

	// User routes (require access token)
	userRoutes := v1.Group("/users", appMiddleware.Authenticate(resolver))
	{
		userRoutes.GET("/me", userHandler.GetMe)
		userRoutes.PATCH("/me", userHandler.PatchMe)
		userRoutes.DELETE("/me", userHandler.DeleteMe)
		userRoutes.POST("/me/upload-image", userHandler.UploadImage)

		userRoutes.GET("", userHandler.List, appMiddleware.RequireRole(users.RoleModerator, users.RoleAdmin))
		userRoutes.GET("/:id", userHandler.GetByID)
		userRoutes.PATCH("/:id", userHandler.PatchByID)
		userRoutes.DELETE("/:id", userHandler.DeleteByID)
	}
}

// bodyLimit leaves room for multipart framing around the largest image.
func bodyLimit(maxFileSize int64) string {
	return fmt.Sprintf("%dK", maxFileSize/1024+1024)
}
