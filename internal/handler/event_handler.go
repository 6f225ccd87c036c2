package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/dto"
	"github.com/seatsurge/ticketd/internal/repository"
	"github.com/seatsurge/ticketd/internal/service"
	"github.com/seatsurge/ticketd/pkg/response"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := &repository.EventFilter{
		Status:   c.DefaultQuery("status", "published"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	events, total, err := h.eventService.ListEvents(ctx, filter, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	response.SuccessWithMeta(c, events, gin.H{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, event)
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, event)
}

// UpdateEvent handles PUT /events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.UpdateEvent(ctx, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, event)
}

// DeleteEvent handles DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	if err := h.eventService.DeleteEvent(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"deleted": true})
}

// PublishEvent handles POST /events/:id/publish
func (h *EventHandler) PublishEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.publish")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := h.eventService.PublishEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, event)
}

// UploadImage handles POST /events/:id/image
func (h *EventHandler) UploadImage(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.upload_image")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		span.SetStatus(codes.Error, "missing image file")
		response.BadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	event, err := h.eventService.UploadImage(ctx, eventID, header.Filename, file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, event)
}
