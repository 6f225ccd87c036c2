package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/dto"
	"github.com/seatsurge/ticketd/internal/service"
	"github.com/seatsurge/ticketd/pkg/response"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateHold handles POST /bookings
func (h *BookingHandler) CreateHold(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create_hold")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")

	var req dto.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
		attribute.Int("seat_count", len(req.Seats)),
	)

	result, err := h.bookingService.CreateHold(ctx, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.BookingID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// ConfirmBooking handles POST /bookings/:id/confirm
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.confirm")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	bookingID := c.Param("id")

	span.SetAttributes(attribute.String("booking_id", bookingID))

	// Body is optional; an empty confirm carries no payment reference.
	var req dto.ConfirmBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			span.SetStatus(codes.Error, "invalid request")
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.bookingService.ConfirmBooking(ctx, bookingID, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CancelBooking handles DELETE /bookings/:id
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	bookingID := c.Param("id")

	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.CancelBooking(ctx, bookingID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// RefundBooking handles POST /bookings/:id/refund
func (h *BookingHandler) RefundBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.refund")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	bookingID := c.Param("id")

	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.RefundBooking(ctx, bookingID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// UpdateContact handles PUT /bookings/:id/customer-info
func (h *BookingHandler) UpdateContact(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.update_contact")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	bookingID := c.Param("id")

	span.SetAttributes(attribute.String("booking_id", bookingID))

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookingService.UpdateContact(ctx, bookingID, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	// Operators can read any booking; everyone else only their own.
	userID := c.GetString("user_id")
	if domain.Role(c.GetString("role")) == domain.RoleOperator {
		userID = ""
	}

	result, err := h.bookingService.GetBooking(ctx, bookingID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetUserBookings handles GET /my-bookings
func (h *BookingHandler) GetUserBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("page", page),
	)

	result, err := h.bookingService.GetUserBookings(ctx, userID, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetSeatMap handles GET /events/:id/seats
func (h *BookingHandler) GetSeatMap(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.seat_map")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.bookingService.GetSeatMap(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SweepNow handles POST /bookings/cleanup, an operator-triggered expiry pass
func (h *BookingHandler) SweepNow(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.sweep_now")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	expired, err := h.bookingService.ExpireHolds(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	reconciled, err := h.bookingService.ReconcileConfirmedSeats(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("expired", expired))
	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"expired": expired, "reconciled": reconciled})
}
