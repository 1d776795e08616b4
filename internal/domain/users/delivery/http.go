package delivery

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/martinmanurung/account-service/pkg/middleware"
	"github.com/martinmanurung/account-service/pkg/response"
	"github.com/martinmanurung/account-service/pkg/upload"
	"github.com/martinmanurung/account-service/pkg/validator"
)

type UserUsecase interface {
	PatchSelf(ctx context.Context, caller users.User, patch users.UserPatch) (*users.User, error)
	DeleteSelf(ctx context.Context, caller users.User) error
	GetByID(ctx context.Context, caller users.User, targetID string) (*users.User, error)
	PatchByID(ctx context.Context, caller users.User, targetID string, patch users.AdminPatch) (*users.User, error)
	DeleteByID(ctx context.Context, caller users.User, targetID string) error
	List(ctx context.Context, caller users.User, filter users.ListFilter) ([]users.User, error)
	UploadAvatar(ctx context.Context, caller users.User, content []byte) (*users.UploadImageResponse, error)
}

type Handler struct {
	usecase     UserUsecase
	maxFileSize int64
}

func NewHandler(usecase UserUsecase, maxFileSize int64) *Handler {
	return &Handler{
		usecase:     usecase,
		maxFileSize: maxFileSize,
	}
}

func caller(c echo.Context) (users.User, error) {
	user, ok := middleware.GetUser(c)
	if !ok {
		return users.User{}, apperror.InvalidToken("missing caller", nil)
	}
	return *user, nil
}

func (h *Handler) GetMe(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "success", me)
}

func (h *Handler) PatchMe(c echo.Context) error {
	logger := middleware.GetLogger(c)
	me, err := caller(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var patch users.UserPatch
	if err := c.Bind(&patch); err != nil {
		logger.Error().Err(err).Msg("Failed to bind patch request")
		return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
	}
	if err := c.Validate(&patch); err != nil {
		logger.Warn().Err(err).Msg("Patch validation failed")
		return response.Error(c, http.StatusBadRequest, "validation_failed", validator.Details(err))
	}

	result, err := h.usecase.PatchSelf(c.Request().Context(), me, patch)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "user_updated", result)
}

func (h *Handler) DeleteMe(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.usecase.DeleteSelf(c.Request().Context(), me); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "user_deleted", users.DeleteUserResponse{Message: "User deleted"})
}

func (h *Handler) UploadImage(c echo.Context) error {
	logger := middleware.GetLogger(c)
	me, err := caller(c)
	if err != nil {
		return response.FromError(c, err)
	}

	content, err := upload.ReadFormFile(c, "file", h.maxFileSize)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read uploaded image")
		return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
	}

	result, err := h.usecase.UploadAvatar(c.Request().Context(), me, content)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "image_uploaded", result)
}

func (h *Handler) List(c echo.Context) error {
	logger := middleware.GetLogger(c)
	me, err := caller(c)
	if err != nil {
		return response.FromError(c, err)
	}

	filter := users.DefaultListFilter()
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid_query", err.Error())
	}
	if err := c.Validate(&filter); err != nil {
		logger.Warn().Err(err).Msg("List filter validation failed")
		return response.Error(c, http.StatusBadRequest, "validation_failed", validator.Details(err))
	}

	result, err := h.usecase.List(c.Request().Context(), me, filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "success", result)
}

func (h *Handler) GetByID(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return response.FromError(c, err)
	}

	result, err := h.usecase.GetByID(c.Request().Context(), me, c.Param("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "success", result)
}

func (h *Handler) PatchByID(c echo.Context) error {
	logger := middleware.GetLogger(c)
	me, err := caller(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var patch users.AdminPatch
	if err := c.Bind(&patch); err != nil {
		logger.Error().Err(err).Msg("Failed to bind patch request")
		return response.Error(c, http.StatusBadRequest, "invalid_request_body", err.Error())
	}
	if err := c.Validate(&patch); err != nil {
		logger.Warn().Err(err).Msg("Patch validation failed")
		return response.Error(c, http.StatusBadRequest, "validation_failed", validator.Details(err))
	}

	result, err := h.usecase.PatchByID(c.Request().Context(), me, c.Param("id"), patch)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "user_updated", result)
}

func (h *Handler) DeleteByID(c echo.Context) error {
	me, err := caller(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.usecase.DeleteByID(c.Request().Context(), me, c.Param("id")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, http.StatusOK, "user_deleted", users.DeleteUserResponse{Message: "User deleted"})
}
