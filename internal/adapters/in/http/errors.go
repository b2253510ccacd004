package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrActionInvalid),
		errors.Is(err, errs.ErrAssignmentRace),
		errors.Is(err, errs.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrAlreadyCanceled),
		errors.Is(err, errs.ErrRefundInProgress),
		errors.Is(err, ports.ErrStaleWrite):
		return http.StatusConflict
	case errors.Is(err, errs.ErrRefundWindowExceeded),
		errors.Is(err, services.ErrNoQuoteAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrFunctionNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, errs.ErrGatewayTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an Error body. Server side failures are logged and
// their details kept out of the response.
func (s *Server) fail(ctx echo.Context, err error) error {
	code := statusOf(err)
	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		s.logger.ErrorContext(ctx.Request().Context(), "Request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
		return ctx.JSON(code, Error{Code: code, Message: http.StatusText(code)})
	}
	return ctx.JSON(code, Error{Code: code, Message: err.Error()})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
