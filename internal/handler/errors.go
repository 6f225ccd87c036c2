package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/pkg/logger"
	"github.com/seatsurge/ticketd/pkg/response"
	"go.uber.org/zap"
)

// handleError maps domain errors onto HTTP status codes. Anything
// unmapped is a 500 with the detail kept out of the response body.
func handleError(c *gin.Context, err error) {
	var conflict *domain.SeatConflictError
	if errors.As(err, &conflict) {
		response.Error(c, http.StatusConflict, "SEAT_CONFLICT",
			"some of the requested seats are no longer available",
			strings.Join(conflict.Seats, ", "))
		return
	}

	switch {
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, domain.ErrBookingExpired):
		response.Error(c, http.StatusGone, "HOLD_EXPIRED",
			"the seat hold has expired", "")

	case errors.Is(err, domain.ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION",
			"the booking cannot make this transition from its current status", "")

	case errors.Is(err, domain.ErrRefundNotEligible):
		response.Error(c, http.StatusConflict, "REFUND_NOT_ELIGIBLE",
			"the refund window for this booking has closed", "")

	case errors.Is(err, domain.ErrCapacityExceeded):
		response.Error(c, http.StatusConflict, "CAPACITY_EXCEEDED",
			"the event does not have enough seats left", "")

	case errors.Is(err, domain.ErrEventNotPublished):
		response.Error(c, http.StatusConflict, "EVENT_NOT_PUBLISHED",
			"the event is not open for booking", "")

	case errors.Is(err, domain.ErrUserAlreadyExists):
		response.Error(c, http.StatusConflict, "USER_EXISTS",
			"a user with this email already exists", "")

	case errors.Is(err, domain.ErrInvalidSeats),
		errors.Is(err, domain.ErrInvalidEventID),
		errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidEvent),
		errors.Is(err, domain.ErrInvalidImageFormat):
		response.BadRequest(c, err.Error())

	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		response.Unauthorized(c, err.Error())

	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(c, "you do not have access to this booking")

	case errors.Is(err, domain.ErrDependencyUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE",
			"a backing service is unavailable, try again shortly", "")

	default:
		logger.Get().Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c, err)
	}
}
