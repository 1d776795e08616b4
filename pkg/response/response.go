package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/rs/zerolog/log"
)

type SuccessResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

func Success(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, SuccessResponse{
		Status:  "success",
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func Error(c echo.Context, code int, message string, errDetails interface{}) error {
	return c.JSON(code, ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Errors:  errDetails,
	})
}

// statusByKind translates domain error kinds to HTTP status codes.
var statusByKind = map[apperror.Kind]int{
	apperror.KindUserNotFound:         http.StatusNotFound,
	apperror.KindInvalidID:            http.StatusNotFound,
	apperror.KindUserIsBlocked:        http.StatusUnauthorized,
	apperror.KindPasswordDoesNotMatch: http.StatusUnauthorized,
	apperror.KindInvalidToken:         http.StatusUnauthorized,
	apperror.KindNotARefreshToken:     http.StatusUnauthorized,
	apperror.KindTokenIsBlacklisted:   http.StatusBadRequest,
	apperror.KindMethodNotAllowed:     http.StatusMethodNotAllowed,
	apperror.KindEmptyUpdateData:      http.StatusBadRequest,
	apperror.KindNonExistSortKey:      http.StatusBadRequest,
	apperror.KindNoFileContent:        http.StatusBadRequest,
	apperror.KindFileSize:             http.StatusBadRequest,
	apperror.KindInvalidFileType:      http.StatusBadRequest,
	apperror.KindImagesBucket:         http.StatusBadGateway,
	apperror.KindConflict:             http.StatusConflict,
	apperror.KindDatabase:             http.StatusInternalServerError,
}

// StatusOf returns the HTTP status for err, 500 for anything unrecognised.
func StatusOf(err error) int {
	if status, ok := statusByKind[apperror.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError renders err as an error envelope. Server-side failures and
// password mismatches carry no details.
func FromError(c echo.Context, err error) error {
	kind := apperror.KindOf(err)
	status := StatusOf(err)

	switch {
	case kind == apperror.KindPasswordDoesNotMatch:
		return Error(c, status, "invalid_credentials", nil)
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Str("kind", kind.String()).Msg("Request failed")
		if kind == apperror.KindUnknown {
			return Error(c, status, "internal_server_error", nil)
		}
		return Error(c, status, kind.String(), nil)
	default:
		return Error(c, status, kind.String(), err.Error())
	}
}

func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		_ = FromError(c, err)
		return
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		var msg string
		if s, ok := echoErr.Message.(string); ok {
			msg = s
		} else {
			msg = "An error occurred" // Fallback
		}
		_ = Error(c, echoErr.Code, msg, nil)
		return
	}
	log.Error().Err(err).Msg("Unhandled error")
	_ = Error(c, http.StatusInternalServerError, "Internal Server Error", nil)
}
