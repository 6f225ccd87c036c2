package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/dto"
	"github.com/seatsurge/ticketd/internal/repository"
)

// mockEventService implements service.EventService over in-memory state
type mockEventService struct {
	events map[string]*domain.Event
	nextID int
}

func newMockEventService() *mockEventService {
	return &mockEventService{events: make(map[string]*domain.Event)}
}

func (m *mockEventService) addEvent(event *domain.Event) {
	m.events[event.ID] = event
}

func (m *mockEventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	m.nextID++
	event := &domain.Event{
		ID:           fmt.Sprintf("event-%d", m.nextID),
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    req.StartTime,
		Location:     req.Location,
		Categories:   req.Categories,
		PricePerSeat: req.PricePerSeat,
		TotalSeats:   req.TotalSeats,
		TakenSeats:   []string{},
		Status:       domain.EventStatusDraft,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	m.events[event.ID] = event
	return dto.EventFromDomain(event), nil
}

func (m *mockEventService) UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if req.TotalSeats < len(event.TakenSeats) {
		return nil, domain.ErrCapacityExceeded
	}
	event.Title = req.Title
	event.TotalSeats = req.TotalSeats
	return dto.EventFromDomain(event), nil
}

func (m *mockEventService) DeleteEvent(ctx context.Context, eventID string) error {
	event, ok := m.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	if event.IsPublished() {
		return domain.ErrInvalidTransition
	}
	delete(m.events, eventID)
	return nil
}

func (m *mockEventService) PublishEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	event, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	event.Status = domain.EventStatusPublished
	return dto.EventFromDomain(event), nil
}

func (m *mockEventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	event, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return dto.EventFromDomain(event), nil
}

func (m *mockEventService) ListEvents(ctx context.Context, filter *repository.EventFilter, page, pageSize int) ([]*dto.EventResponse, int, error) {
	var out []*dto.EventResponse
	for _, e := range m.events {
		if filter.Status != "" && e.Status.String() != filter.Status {
			continue
		}
		out = append(out, dto.EventFromDomain(e))
	}
	return out, len(out), nil
}

func (m *mockEventService) UploadImage(ctx context.Context, eventID, filename string, data io.Reader) (*dto.EventResponse, error) {
	event, ok := m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	event.ImageURL = "/static/images/" + eventID + ".png"
	return dto.EventFromDomain(event), nil
}

func setupEventRouter(h *EventHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	events := router.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/:id", h.GetEvent)
		events.POST("", h.CreateEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.DELETE("/:id", h.DeleteEvent)
		events.POST("/:id/publish", h.PublishEvent)
	}

	return router
}

func TestEventHandler_CreateEvent(t *testing.T) {
	mockSvc := newMockEventService()
	router := setupEventRouter(NewEventHandler(mockSvc))

	t.Run("creates draft event", func(t *testing.T) {
		body := gin.H{
			"title":          "Test Concert",
			"start_time":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
			"location":       "Main Hall",
			"price_per_seat": 50,
			"total_seats":    100,
		}
		resp := doJSON(router, http.MethodPost, "/events", "org-1", "organizer", body)
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, resp.Code, resp.Body.String())
		}

		var decoded struct {
			Data dto.EventResponse `json:"data"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if decoded.Data.Status != "draft" {
			t.Errorf("expected draft status, got %s", decoded.Data.Status)
		}
	})

	t.Run("missing fields fail binding", func(t *testing.T) {
		resp := doJSON(router, http.MethodPost, "/events", "org-1", "organizer", gin.H{"title": "No seats"})
		if resp.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, resp.Code)
		}
	})
}

func TestEventHandler_GetEvent(t *testing.T) {
	mockSvc := newMockEventService()
	mockSvc.addEvent(testEvent())
	router := setupEventRouter(NewEventHandler(mockSvc))

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{
			name:       "existing event",
			id:         "event-1",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown event",
			id:         "nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/events/"+tt.id, nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Code)
			}
		})
	}
}

func TestEventHandler_ListEvents(t *testing.T) {
	mockSvc := newMockEventService()
	published := testEvent()
	mockSvc.addEvent(published)
	draft := testEvent()
	draft.ID = "event-2"
	draft.Status = domain.EventStatusDraft
	mockSvc.addEvent(draft)
	router := setupEventRouter(NewEventHandler(mockSvc))

	resp := doJSON(router, http.MethodGet, "/events", "", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}

	var decoded struct {
		Data []dto.EventResponse `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// Drafts are filtered out of the default listing.
	if len(decoded.Data) != 1 || decoded.Meta.Total != 1 {
		t.Errorf("expected 1 published event, got %d (total %d)", len(decoded.Data), decoded.Meta.Total)
	}
}

func TestEventHandler_DeleteEvent(t *testing.T) {
	mockSvc := newMockEventService()
	published := testEvent()
	mockSvc.addEvent(published)
	draft := testEvent()
	draft.ID = "event-2"
	draft.Status = domain.EventStatusDraft
	mockSvc.addEvent(draft)
	router := setupEventRouter(NewEventHandler(mockSvc))

	t.Run("draft deletes", func(t *testing.T) {
		resp := doJSON(router, http.MethodDelete, "/events/event-2", "org-1", "organizer", nil)
		if resp.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, resp.Code)
		}
	})

	t.Run("published cannot delete", func(t *testing.T) {
		resp := doJSON(router, http.MethodDelete, "/events/event-1", "org-1", "organizer", nil)
		if resp.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, resp.Code)
		}
	})
}

func TestEventHandler_PublishEvent(t *testing.T) {
	mockSvc := newMockEventService()
	draft := testEvent()
	draft.Status = domain.EventStatusDraft
	mockSvc.addEvent(draft)
	router := setupEventRouter(NewEventHandler(mockSvc))

	resp := doJSON(router, http.MethodPost, "/events/event-1/publish", "org-1", "organizer", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}

	var decoded struct {
		Data dto.EventResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Data.Status != "published" {
		t.Errorf("expected published status, got %s", decoded.Data.Status)
	}
}
