package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/dto"
	"github.com/seatsurge/ticketd/internal/repository"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventService defines the interface for event management
type EventService interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, eventID string) error
	PublishEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)
	ListEvents(ctx context.Context, filter *repository.EventFilter, page, pageSize int) ([]*dto.EventResponse, int, error)
	UploadImage(ctx context.Context, eventID, filename string, data io.Reader) (*dto.EventResponse, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo repository.EventRepository
	images    ImageStore
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository, images ImageStore) EventService {
	return &eventService{eventRepo: eventRepo, images: images}
}

// CreateEvent creates a new event in draft status
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	now := time.Now()
	event := &domain.Event{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Description:   req.Description,
		StartTime:     req.StartTime,
		Location:      req.Location,
		Categories:    req.Categories,
		PricePerSeat:  req.PricePerSeat,
		TotalSeats:    req.TotalSeats,
		TakenSeats:    []string{},
		Status:        domain.EventStatusDraft,
		OrganizerName: req.OrganizerName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// UpdateEvent rewrites the descriptive fields of an event. Capacity can
// never shrink below the committed seat count.
func (s *eventService) UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if req.TotalSeats < len(event.TakenSeats) {
		span.SetStatus(codes.Error, "capacity below committed seats")
		return nil, domain.ErrCapacityExceeded
	}

	event.Title = req.Title
	event.Description = req.Description
	event.StartTime = req.StartTime
	event.Location = req.Location
	event.Categories = req.Categories
	event.PricePerSeat = req.PricePerSeat
	event.TotalSeats = req.TotalSeats
	event.OrganizerName = req.OrganizerName

	if err := event.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// DeleteEvent deletes a draft event. Published events keep their booking
// history and cannot be removed.
func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.IsPublished() {
		span.SetStatus(codes.Error, "published event")
		return domain.ErrInvalidTransition
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// PublishEvent transitions a draft event to published
func (s *eventService) PublishEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.publish")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsPublished() {
		span.SetStatus(codes.Ok, "already published")
		return dto.EventFromDomain(event), nil
	}

	event.Status = domain.EventStatusPublished
	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// ListEvents lists events matching the filter
func (s *eventService) ListEvents(ctx context.Context, filter *repository.EventFilter, page, pageSize int) ([]*dto.EventResponse, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	events, total, err := s.eventRepo.List(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return dto.EventsFromDomain(events), total, nil
}

// UploadImage stores an event image and records its URL on the event
func (s *eventService) UploadImage(ctx context.Context, eventID, filename string, data io.Reader) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.upload_image")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Save(ctx, eventID, filename, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	event.ImageURL = url
	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}
