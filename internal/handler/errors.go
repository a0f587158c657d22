package handler

import (
	"errors"
	"net/http"

	apperrors "carpool/internal/errors"
	"carpool/internal/logger"
	"carpool/internal/models"
	"carpool/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a rule violation to its HTTP status. Zero means the error
// is not a rule violation.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrDuplicateEmployeeID),
		errors.Is(err, apperrors.ErrDuplicateEmail),
		errors.Is(err, apperrors.ErrDuplicateEmployeeOffer),
		errors.Is(err, apperrors.ErrAlreadyBooked),
		errors.Is(err, apperrors.ErrNoVacantSeats):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrRideNotFound),
		errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrSelfBookingForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrPasswordMismatch),
		errors.Is(err, apperrors.ErrInvalidRide),
		errors.Is(err, apperrors.ErrInvalidTime),
		errors.Is(err, apperrors.ErrTimeInPast):
		return http.StatusBadRequest
	}
	return 0
}

// fail writes err as an error response. Anything that is not a rule
// violation is logged and hidden behind a 500.
func fail(c *gin.Context, err error) {
	msg := models.ResultFrom(err, "").Message
	switch statusFor(err) {
	case http.StatusConflict:
		response.Conflict(c, msg)
	case http.StatusNotFound:
		response.NotFound(c, msg)
	case http.StatusForbidden:
		response.Forbidden(c, msg)
	case http.StatusUnauthorized:
		response.Unauthorized(c, msg)
	case http.StatusBadRequest:
		response.BadRequest(c, msg)
	default:
		logger.FromContext(c.Request.Context(), nil).Error("request failed", zap.Error(err))
		_ = c.Error(err)
		response.InternalError(c)
	}
}
