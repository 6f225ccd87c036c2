package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `
	id, event_id, user_id, seats, price_per_seat, status,
	customer_name, customer_email, customer_phone, payment_ref,
	expires_at, confirmed_at, cancelled_at, refunded_at,
	created_at, updated_at
`

// Create inserts a new booking record
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("event_id", booking.EventID),
		attribute.String("user_id", booking.UserID),
		attribute.Int("seat_count", len(booking.Seats)),
	)

	query := `
		INSERT INTO bookings (
			id, event_id, user_id, seats, price_per_seat, status,
			customer_name, customer_email, customer_phone, payment_ref,
			expires_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13
		)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.EventID,
		booking.UserID,
		booking.Seats,
		booking.PricePerSeat,
		booking.Status.String(),
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		nullStr(booking.PaymentRef),
		booking.ExpiresAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBookingRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListByUser retrieves a user's bookings, newest first
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_user")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, span, query, userID, limit, offset)
}

// ListActiveHolds retrieves pending bookings on an event whose hold is still live at now
func (r *PostgresBookingRepository) ListActiveHolds(ctx context.Context, eventID string, now time.Time) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_active_holds")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE event_id = $1
			AND status = 'pending'
			AND expires_at > $2
	`

	return r.queryBookings(ctx, span, query, eventID, now)
}

// ListExpiredHolds retrieves pending bookings whose hold deadline passed before now
func (r *PostgresBookingRepository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_expired_holds")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending'
			AND expires_at IS NOT NULL
			AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
	`

	return r.queryBookings(ctx, span, query, now, limit)
}

// ListConfirmedMissingSeats retrieves confirmed bookings whose seats are not
// all committed to their event's taken set. These are confirms that crashed
// between the status write and the seat commit and need a re-commit.
func (r *PostgresBookingRepository) ListConfirmedMissingSeats(ctx context.Context, limit int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_confirmed_missing_seats")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.status = 'confirmed'
			AND NOT b.seats <@ (SELECT e.taken_seats FROM events e WHERE e.id = b.event_id)
		LIMIT $1
	`

	return r.queryBookings(ctx, span, query, limit)
}

// Confirm transitions pending -> confirmed iff the hold is still live at now
func (r *PostgresBookingRepository) Confirm(ctx context.Context, id, paymentRef string, now time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.confirm")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `
		UPDATE bookings SET
			status = 'confirmed',
			payment_ref = $2,
			confirmed_at = $3,
			expires_at = NULL,
			updated_at = $3
		WHERE id = $1 AND status = 'pending' AND expires_at > $3
	`

	result, err := r.pool.Exec(ctx, query, id, paymentRef, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to confirm booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.classifyFailedTransition(ctx, span, id, now, domain.BookingStatusPending)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Cancel transitions expected -> cancelled. Keying the update on the exact
// status the caller read means a confirm that raced in between makes this a
// zero-row update instead of silently cancelling a booking whose seats the
// caller believes were never committed.
func (r *PostgresBookingRepository) Cancel(ctx context.Context, id string, expected domain.BookingStatus, now time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", id),
		attribute.String("expected_status", expected.String()),
	)

	if expected != domain.BookingStatusPending && expected != domain.BookingStatusConfirmed {
		span.SetStatus(codes.Error, "invalid transition from "+expected.String())
		return domain.ErrInvalidTransition
	}

	query := `
		UPDATE bookings SET
			status = 'cancelled',
			cancelled_at = $2,
			expires_at = NULL,
			updated_at = $2
		WHERE id = $1 AND status = $3
	`

	result, err := r.pool.Exec(ctx, query, id, now, expected.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		var status string
		err := r.pool.QueryRow(ctx, "SELECT status FROM bookings WHERE id = $1", id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrBookingNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check booking status: %w", err)
		}
		span.SetStatus(codes.Error, "invalid transition from "+status)
		return domain.ErrInvalidTransition
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// MarkExpired transitions pending -> expired iff the hold deadline passed before now
func (r *PostgresBookingRepository) MarkExpired(ctx context.Context, id string, now time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.mark_expired")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `
		UPDATE bookings SET
			status = 'expired',
			expires_at = NULL,
			updated_at = $2
		WHERE id = $1 AND status = 'pending' AND expires_at < $2
	`

	result, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to mark booking as expired: %w", err)
	}

	if result.RowsAffected() == 0 {
		// The booking was confirmed or cancelled between the sweep scan
		// and this write. That transition won; nothing to do here.
		span.SetStatus(codes.Error, "invalid transition")
		return domain.ErrInvalidTransition
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Refund transitions confirmed -> refunded
func (r *PostgresBookingRepository) Refund(ctx context.Context, id string, now time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.refund")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `
		UPDATE bookings SET
			status = 'refunded',
			refunded_at = $2,
			updated_at = $2
		WHERE id = $1 AND status = 'confirmed'
	`

	result, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to refund booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)", id).Scan(&exists); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check booking existence: %w", err)
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrBookingNotFound
		}
		span.SetStatus(codes.Error, "invalid transition")
		return domain.ErrInvalidTransition
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateCustomerInfo updates the contact fields of a non-terminal booking
func (r *PostgresBookingRepository) UpdateCustomerInfo(ctx context.Context, id, name, email, phone string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.update_customer_info")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `
		UPDATE bookings SET
			customer_name = $2,
			customer_email = $3,
			customer_phone = $4,
			updated_at = $5
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`

	result, err := r.pool.Exec(ctx, query, id, name, email, phone, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update customer info: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)", id).Scan(&exists); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check booking existence: %w", err)
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrBookingNotFound
		}
		span.SetStatus(codes.Error, "invalid transition")
		return domain.ErrInvalidTransition
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// classifyFailedTransition re-reads a booking after a zero-row conditional
// update and maps the actual state to a domain error.
func (r *PostgresBookingRepository) classifyFailedTransition(ctx context.Context, span trace.Span, id string, now time.Time, expected domain.BookingStatus) error {
	var (
		status    string
		expiresAt *time.Time
	)
	err := r.pool.QueryRow(ctx, "SELECT status, expires_at FROM bookings WHERE id = $1", id).Scan(&status, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to check booking status: %w", err)
	}

	if domain.BookingStatus(status) == expected && expiresAt != nil && !expiresAt.After(now) {
		span.SetStatus(codes.Error, "hold expired")
		return domain.ErrBookingExpired
	}

	span.SetStatus(codes.Error, "invalid transition from "+status)
	return domain.ErrInvalidTransition
}

func (r *PostgresBookingRepository) queryBookings(ctx context.Context, span trace.Span, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

func scanBookingRow(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var (
		status     string
		paymentRef *string
	)

	err := row.Scan(
		&booking.ID,
		&booking.EventID,
		&booking.UserID,
		&booking.Seats,
		&booking.PricePerSeat,
		&status,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&paymentRef,
		&booking.ExpiresAt,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
		&booking.RefundedAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}

	booking.Status = domain.BookingStatus(status)
	if paymentRef != nil {
		booking.PaymentRef = *paymentRef
	}

	return booking, nil
}

// Helper to convert empty string to nil pointer
func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresBookingRepository implements BookingRepository
var _ BookingRepository = (*PostgresBookingRepository)(nil)
