package http

import (
	"errors"
	"net/http"

	"deliveryhub/internal/core/application/usecases/commands"
	"deliveryhub/internal/core/domain/model/delivery"
	"deliveryhub/internal/pkg/errs"
	"deliveryhub/internal/pkg/validation"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	ReasonNoPartnerAvailable      = "NO_PARTNER_AVAILABLE"
	ReasonDeliveryExists          = "DELIVERY_EXISTS"
	ReasonInvalidStatus           = "INVALID_STATUS"
	ReasonInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ReasonStorageFailure          = "STORAGE_FAILURE"
	ReasonNotFound                = "NOT_FOUND"
	ReasonValidationFailed        = "VALIDATION_FAILED"
	ReasonInternal                = "INTERNAL"
)

// validationError is returned by the echo validator and carries per-field details.
type validationError struct {
	err error
}

func (e *validationError) Error() string { return e.err.Error() }
func (e *validationError) Unwrap() error { return e.err }

// toErrorResponse maps application errors to a status code and a stable reason.
// Order matters: an unknown status is also an invalid value.
func toErrorResponse(err error) ErrorResponse {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		return ErrorResponse{
			Code:    http.StatusBadRequest,
			Reason:  ReasonValidationFailed,
			Message: "validation failed",
			Details: validation.Details(verr.err),
		}
	case errors.Is(err, commands.ErrNoPartnerAvailable):
		return newErrorResponse(http.StatusConflict, ReasonNoPartnerAvailable, err)
	case errors.Is(err, commands.ErrDeliveryAlreadyExists):
		return newErrorResponse(http.StatusConflict, ReasonDeliveryExists, err)
	case errors.Is(err, commands.ErrInvalidStatusValue):
		return newErrorResponse(http.StatusBadRequest, ReasonInvalidStatus, err)
	case errors.Is(err, commands.ErrInvalidStatusTransition), errors.Is(err, delivery.ErrDeliveryIsClosed):
		return newErrorResponse(http.StatusUnprocessableEntity, ReasonInvalidStatusTransition, err)
	case errors.Is(err, errs.ErrObjectNotFound):
		return newErrorResponse(http.StatusNotFound, ReasonNotFound, err)
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return newErrorResponse(http.StatusBadRequest, ReasonValidationFailed, err)
	case errors.Is(err, commands.ErrStorageFailure):
		return ErrorResponse{Code: http.StatusServiceUnavailable, Reason: ReasonStorageFailure, Message: "storage unavailable, retry later"}
	default:
		return ErrorResponse{Code: http.StatusInternalServerError, Reason: ReasonInternal, Message: "internal error"}
	}
}

func newErrorResponse(code int, reason string, err error) ErrorResponse {
	return ErrorResponse{Code: code, Reason: reason, Message: err.Error()}
}

// NewErrorHandler renders every error returned by a handler as an ErrorResponse.
// Echo's own errors (404 route, 405, bind failures) keep their status code.
func NewErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var resp ErrorResponse
		var he *echo.HTTPError
		if errors.As(err, &he) {
			resp = ErrorResponse{Code: he.Code, Reason: reasonForStatus(he.Code), Message: http.StatusText(he.Code)}
			if msg, ok := he.Message.(string); ok {
				resp.Message = msg
			}
		} else {
			resp = toErrorResponse(err)
		}

		if resp.Code >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", resp.Code).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(resp.Code)
		} else {
			writeErr = c.JSON(resp.Code, resp)
		}
		if writeErr != nil {
			logger.Warn().Err(writeErr).Msg("error response not written")
		}
	}
}

func reasonForStatus(code int) string {
	switch code {
	case http.StatusNotFound:
		return ReasonNotFound
	case http.StatusBadRequest:
		return ReasonValidationFailed
	case http.StatusServiceUnavailable:
		return ReasonStorageFailure
	}
	if code >= http.StatusInternalServerError {
		return ReasonInternal
	}
	return http.StatusText(code)
}
