package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ict-ticketing/internal/domain/apperr"
	"ict-ticketing/internal/domain/request"
)

type ErrorResponse struct {
	Error   string       `json:"error"`
	Kind    string       `json:"kind,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// StatusOf maps an error kind to its HTTP status. Conflicts stay 400 for
// client compatibility, except the retryable request code collision.
func StatusOf(err error) int {
	if errors.Is(err, request.ErrCodeCollision) {
		return http.StatusConflict
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err; internal causes are logged and replaced by a generic message.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err),
		)
	}
	if kind == apperr.KindAuthentication {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}
	return c.JSON(StatusOf(err), ErrorResponse{Error: apperr.MessageOf(err), Kind: string(kind)})
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Kind: string(apperr.KindValidation)})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Kind:    string(apperr.KindValidation),
		Details: ToFieldErrors(err),
	})
}

type messageResponse struct {
	Message string `json:"message"`
}
