package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"provender/internal/apperrors"
)

// httpError maps the service error taxonomy onto HTTP statuses. Anything
// unclassified is a 500 and keeps its message out of the response.
func httpError(err error) error {
	var validation *apperrors.ValidationError
	if errors.As(err, &validation) {
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error())
	}

	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		return echo.NewHTTPError(http.StatusNotFound, notFound.Error())
	}

	var conflict *apperrors.StateConflictError
	if errors.As(err, &conflict) {
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	}

	var authz *apperrors.AuthorizationError
	if errors.As(err, &authz) {
		return echo.NewHTTPError(http.StatusForbidden, authz.Error())
	}

	var rateLimit *apperrors.RateLimitError
	if errors.As(err, &rateLimit) {
		return echo.NewHTTPError(http.StatusTooManyRequests, rateLimit.Error())
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
