package delivery

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/account-service/internal/domain/auth"
	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/martinmanurung/account-service/pkg/constant"
	"github.com/martinmanurung/account-service/pkg/middleware"
	"github.com/martinmanurung/account-service/pkg/response"
	"github.com/martinmanurung/account-service/pkg/upload"
	"github.com/martinmanurung/account-service/pkg/validator"
)

type AuthUsecase interface {
	Signup(ctx context.Context, payload auth.SignupRequest, image []byte) (*users.User, error)
	Login(ctx context.Context, payload auth.LoginRequest) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	InitiateReset(ctx context.Context, email string) (*auth.ResetPasswordResponse, error)
}

type Handler struct {
	usecase     AuthUsecase
	maxFileSize int64
}

func NewHandler(usecase AuthUsecase, maxFileSize int64) *Handler {
	return &Handler{
		usecase:     usecase,
		maxFileSize: maxFileSize,
	}
}

func (h *Handler) Signup(c echo.Context) error {
	logger := middleware.GetLogger(c)

	logger.Info().Msg("Starting user registration")

	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to bind request")
		return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		logger.Warn().Err(err).Msg("Validation failed")
		return response.Error(c, http.StatusBadRequest, "validation_failed", validator.Details(err))
	}

	var image []byte
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		content, err := upload.ReadFormFile(c, "image", h.maxFileSize)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read signup image")
			return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
		}
		image = content
	}

	result, err := h.usecase.Signup(c.Request().Context(), req, image)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to register user")
		return response.FromError(c, err)
	}

	logger.Info().Str("user_id", result.ID).Msg("User registered successfully")
	return response.Success(c, http.StatusCreated, "user_registered_successfully", result)
}

func (h *Handler) Login(c echo.Context) error {
	logger := middleware.GetLogger(c)

	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to bind login request")
		return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		logger.Warn().Err(err).Msg("Login validation failed")
		return response.Error(c, http.StatusBadRequest, "validation_failed", validator.Details(err))
	}

	result, err := h.usecase.Login(c.Request().Context(), req)
	if err != nil {
		logger.Warn().Str("kind", apperror.KindOf(err).String()).Msg("Login failed")
		return response.FromError(c, err)
	}

	return response.Success(c, http.StatusOK, "login_successful", result)
}

// RefreshToken reads the token from the Refresh-Tkn header, falling back to
// the JSON body.
func (h *Handler) RefreshToken(c echo.Context) error {
	token := strings.TrimSpace(c.Request().Header.Get(constant.HeaderRefreshToken))
	if token == "" {
		var req auth.RefreshRequest
		if err := c.Bind(&req); err != nil {
			return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
		}
		token = req.RefreshToken
	}
	if token == "" {
		return response.FromError(c, apperror.InvalidToken("missing refresh token", nil))
	}

	result, err := h.usecase.Refresh(c.Request().Context(), token)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "token_refreshed_successfully", result)
}

func (h *Handler) Logout(c echo.Context) error {
	var req auth.LogoutRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "validation_failed", validator.Details(err))
	}

	if err := h.usecase.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return response.FromError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req auth.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "validation_failed", validator.Details(err))
	}

	result, err := h.usecase.InitiateReset(c.Request().Context(), req.Email)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "reset_link_sent", result)
}
