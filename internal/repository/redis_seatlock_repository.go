package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/seatsurge/ticketd/pkg/redis"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// holdSeatsScript acquires a lock per seat, all or nothing. A seat lock is
// a plain key holding the owning booking ID. The first pass collects
// conflicts without writing anything; only a clean pass writes locks. A
// seat already locked by the same booking counts as held, so retries of
// the same acquisition are idempotent.
//
// KEYS: one lock key per seat
// ARGV[1]: booking ID, ARGV[2]: TTL in milliseconds, ARGV[3..]: seat labels
// Returns {1} on success, or {0, seat, seat, ...} naming every conflict.
const holdSeatsScript = `
local owner = ARGV[1]
local conflicts = {}

for i, key in ipairs(KEYS) do
	local holder = redis.call('GET', key)
	if holder and holder ~= owner then
		table.insert(conflicts, ARGV[i + 2])
	end
end

if #conflicts > 0 then
	local result = {0}
	for _, seat in ipairs(conflicts) do
		table.insert(result, seat)
	end
	return result
end

for _, key in ipairs(KEYS) do
	redis.call('SET', key, owner, 'PX', tonumber(ARGV[2]))
end

return {1}
`

// releaseSeatsScript deletes seat locks only when still owned by the given
// booking. Locks taken over by another booking after expiry are left alone.
//
// KEYS: one lock key per seat
// ARGV[1]: booking ID
// Returns the number of locks released.
const releaseSeatsScript = `
local owner = ARGV[1]
local released = 0

for _, key in ipairs(KEYS) do
	if redis.call('GET', key) == owner then
		redis.call('DEL', key)
		released = released + 1
	end
end

return released
`

// RedisSeatLockRepository implements SeatLockRepository on Redis Lua scripts
type RedisSeatLockRepository struct {
	client *redis.Client
}

// NewRedisSeatLockRepository creates a new RedisSeatLockRepository and
// preloads its scripts. Preload failure is not fatal; EvalWithFallback
// reloads on NOSCRIPT.
func NewRedisSeatLockRepository(ctx context.Context, client *redis.Client) *RedisSeatLockRepository {
	_, _ = client.LoadScript(ctx, "hold_seats", holdSeatsScript)
	_, _ = client.LoadScript(ctx, "release_seats", releaseSeatsScript)
	return &RedisSeatLockRepository{client: client}
}

// AcquireSeats attempts to lock every requested seat for a booking. Either
// all seats are locked or none are; on conflict the result names the
// contested seats.
func (r *RedisSeatLockRepository) AcquireSeats(ctx context.Context, eventID, bookingID string, seats []string, ttl time.Duration) (*SeatLockResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.seatlock.acquire")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("booking_id", bookingID),
		attribute.Int("seat_count", len(seats)),
	)

	keys := seatLockKeys(eventID, seats)
	args := make([]interface{}, 0, len(seats)+2)
	args = append(args, bookingID, strconv.FormatInt(ttl.Milliseconds(), 10))
	for _, seat := range seats {
		args = append(args, seat)
	}

	raw, err := r.client.EvalWithFallback(ctx, "hold_seats", holdSeatsScript, keys, args...).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to acquire seat locks: %w", err)
	}

	reply, ok := raw.([]interface{})
	if !ok || len(reply) == 0 {
		span.SetStatus(codes.Error, "unexpected script reply")
		return nil, fmt.Errorf("unexpected seat lock reply: %v", raw)
	}

	if acquired, _ := reply[0].(int64); acquired == 1 {
		span.SetStatus(codes.Ok, "")
		return &SeatLockResult{Acquired: true}, nil
	}

	conflicts := make([]string, 0, len(reply)-1)
	for _, v := range reply[1:] {
		if seat, ok := v.(string); ok {
			conflicts = append(conflicts, seat)
		}
	}

	span.SetAttributes(attribute.Int("conflict_count", len(conflicts)))
	span.SetStatus(codes.Ok, "conflict")
	return &SeatLockResult{Acquired: false, Conflicts: conflicts}, nil
}

// ReleaseSeats drops the booking's seat locks. Safe to call for locks that
// already expired or were never taken.
func (r *RedisSeatLockRepository) ReleaseSeats(ctx context.Context, eventID, bookingID string, seats []string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.seatlock.release")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("booking_id", bookingID),
		attribute.Int("seat_count", len(seats)),
	)

	keys := seatLockKeys(eventID, seats)
	released, err := r.client.EvalWithFallback(ctx, "release_seats", releaseSeatsScript, keys, bookingID).Int64()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release seat locks: %w", err)
	}

	span.SetAttributes(attribute.Int64("released", released))
	span.SetStatus(codes.Ok, "")
	return nil
}

func seatLockKeys(eventID string, seats []string) []string {
	keys := make([]string, len(seats))
	for i, seat := range seats {
		keys[i] = fmt.Sprintf("seat:hold:%s:%s", eventID, seat)
	}
	return keys
}

// Ensure RedisSeatLockRepository implements SeatLockRepository
var _ SeatLockRepository = (*RedisSeatLockRepository)(nil)
