package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `
	id, title, description, start_time, location, categories,
	price_per_seat, total_seats, taken_seats, status,
	image_url, organizer_name, created_at, updated_at
`

// Create inserts a new event record
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	query := `
		INSERT INTO events (
			id, title, description, start_time, location, categories,
			price_per_seat, total_seats, taken_seats, status,
			image_url, organizer_name, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14
		)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.StartTime,
		event.Location,
		event.Categories,
		event.PricePerSeat,
		event.TotalSeats,
		event.TakenSeats,
		event.Status.String(),
		event.ImageURL,
		event.OrganizerName,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEventRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// Update rewrites the descriptive fields of an event. The taken-seat set is
// deliberately not part of this statement; it only moves through
// CommitSeats and ReleaseSeats.
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	query := `
		UPDATE events SET
			title = $2,
			description = $3,
			start_time = $4,
			location = $5,
			categories = $6,
			price_per_seat = $7,
			total_seats = $8,
			status = $9,
			image_url = $10,
			organizer_name = $11,
			updated_at = $12
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.StartTime,
		event.Location,
		event.Categories,
		event.PricePerSeat,
		event.TotalSeats,
		event.Status.String(),
		event.ImageURL,
		event.OrganizerName,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete deletes an event by its ID
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List retrieves events matching the filter plus the total match count
func (r *PostgresEventRepository) List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	span.SetAttributes(
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	where, args := buildEventFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM events` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM events%s ORDER BY start_time ASC LIMIT $%d OFFSET $%d`,
		eventColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("error iterating events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, total, nil
}

// CommitSeats adds seats to the event's taken set. The update is a set
// union computed inside the statement, so concurrent commits for different
// bookings merge instead of overwriting each other, and replaying the same
// commit is a no-op.
func (r *PostgresEventRepository) CommitSeats(ctx context.Context, eventID string, seats []string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.commit_seats")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("seat_count", len(seats)),
	)

	query := `
		UPDATE events SET
			taken_seats = (
				SELECT COALESCE(array_agg(DISTINCT s ORDER BY s), '{}')
				FROM unnest(taken_seats || $2::text[]) AS s
			),
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, eventID, seats, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit seats: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ReleaseSeats removes seats from the event's taken set. Set difference in
// a single statement, idempotent like CommitSeats.
func (r *PostgresEventRepository) ReleaseSeats(ctx context.Context, eventID string, seats []string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.release_seats")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("seat_count", len(seats)),
	)

	query := `
		UPDATE events SET
			taken_seats = (
				SELECT COALESCE(array_agg(s ORDER BY s), '{}')
				FROM unnest(taken_seats) AS s
				WHERE s <> ALL($2::text[])
			),
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, eventID, seats, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release seats: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func buildEventFilter(filter *EventFilter) (string, []any) {
	if filter == nil {
		return "", nil
	}

	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("$%d = ANY(categories)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR location ILIKE $%d)", len(args), len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEventRow(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var status string

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.StartTime,
		&event.Location,
		&event.Categories,
		&event.PricePerSeat,
		&event.TotalSeats,
		&event.TakenSeats,
		&status,
		&event.ImageURL,
		&event.OrganizerName,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Status = domain.EventStatus(status)
	return event, nil
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
