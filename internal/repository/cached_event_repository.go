package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/pkg/redis"
)

const (
	// Cache key prefixes
	eventDetailKeyPrefix = "event:detail:"
	eventListKeyPrefix   = "event:list:"
)

// CachedEventRepository wraps EventRepository with Redis read-through
// caching. Cache failures degrade to the inner repository; a broken cache
// never turns a read into an error.
type CachedEventRepository struct {
	repo      EventRepository
	cache     *redis.Client
	detailTTL time.Duration
	listTTL   time.Duration
}

// NewCachedEventRepository creates a new CachedEventRepository
func NewCachedEventRepository(repo EventRepository, cache *redis.Client, detailTTL, listTTL time.Duration) *CachedEventRepository {
	return &CachedEventRepository{
		repo:      repo,
		cache:     cache,
		detailTTL: detailTTL,
		listTTL:   listTTL,
	}
}

// Create creates a new event and invalidates list caches
func (r *CachedEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Create(ctx, event); err != nil {
		return err
	}
	r.invalidateListCaches(ctx)
	return nil
}

// GetByID retrieves an event by ID with caching
func (r *CachedEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	cacheKey := eventDetailKeyPrefix + id
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var event domain.Event
		if err := json.Unmarshal([]byte(cached), &event); err == nil {
			return &event, nil
		}
	}

	event, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheEvent(ctx, cacheKey, event)
	return event, nil
}

// Update updates an event and invalidates its caches
func (r *CachedEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if err := r.repo.Update(ctx, event); err != nil {
		return err
	}
	r.invalidateEventCaches(ctx, event.ID)
	return nil
}

// Delete deletes an event and invalidates its caches
func (r *CachedEventRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidateEventCaches(ctx, id)
	return nil
}

// List lists events with caching for unfiltered and status-only queries.
// Search and category queries bypass the cache; their key space is
// unbounded and the hit rate does not pay for it.
func (r *CachedEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	if filter != nil && (filter.Category != "" || filter.Search != "") {
		return r.repo.List(ctx, filter, limit, offset)
	}

	status := ""
	if filter != nil {
		status = filter.Status
	}
	cacheKey := fmt.Sprintf("%s%s:%d:%d", eventListKeyPrefix, status, limit, offset)

	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var result cachedEventList
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return result.Events, result.Total, nil
		}
	}

	events, total, err := r.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	r.cacheEventList(ctx, cacheKey, events, total)
	return events, total, nil
}

// CommitSeats commits seats on the inner repository and drops the stale
// detail cache so the next read sees the new taken set
func (r *CachedEventRepository) CommitSeats(ctx context.Context, eventID string, seats []string) error {
	if err := r.repo.CommitSeats(ctx, eventID, seats); err != nil {
		return err
	}
	r.cache.Del(ctx, eventDetailKeyPrefix+eventID)
	return nil
}

// ReleaseSeats releases seats on the inner repository and drops the stale
// detail cache
func (r *CachedEventRepository) ReleaseSeats(ctx context.Context, eventID string, seats []string) error {
	if err := r.repo.ReleaseSeats(ctx, eventID, seats); err != nil {
		return err
	}
	r.cache.Del(ctx, eventDetailKeyPrefix+eventID)
	return nil
}

// --- Helper functions ---

type cachedEventList struct {
	Events []*domain.Event `json:"events"`
	Total  int             `json:"total"`
}

func (r *CachedEventRepository) cacheEvent(ctx context.Context, key string, event *domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), r.detailTTL)
}

func (r *CachedEventRepository) cacheEventList(ctx context.Context, key string, events []*domain.Event, total int) {
	data, err := json.Marshal(cachedEventList{Events: events, Total: total})
	if err != nil {
		return
	}
	r.cache.Set(ctx, key, string(data), r.listTTL)
}

func (r *CachedEventRepository) invalidateEventCaches(ctx context.Context, id string) {
	r.cache.Del(ctx, eventDetailKeyPrefix+id)
	r.invalidateListCaches(ctx)
}

func (r *CachedEventRepository) invalidateListCaches(ctx context.Context) {
	// KEYS is off the table in production, so walk the pattern with SCAN
	iter := r.cache.Client().Scan(ctx, 0, eventListKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		r.cache.Del(ctx, iter.Val())
	}
}

// Ensure CachedEventRepository implements EventRepository
var _ EventRepository = (*CachedEventRepository)(nil)
