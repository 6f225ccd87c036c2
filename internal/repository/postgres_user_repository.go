package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PostgresUserRepository implements UserRepository using PostgreSQL with pgxpool
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create inserts a new user record
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.create")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", user.ID))

	query := `
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create user: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return r.getUser(ctx, span, query, id)
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_email")
	defer span.End()

	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	return r.getUser(ctx, span, query, email)
}

// ExistsByEmail checks whether a user with the given email exists
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.exists_by_email")
	defer span.End()

	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

func (r *PostgresUserRepository) getUser(ctx context.Context, span trace.Span, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	var role string

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrUserNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = domain.Role(role)
	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Ensure PostgresUserRepository implements UserRepository
var _ UserRepository = (*PostgresUserRepository)(nil)
