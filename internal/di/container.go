package di

import (
	"context"

	"github.com/seatsurge/ticketd/internal/handler"
	"github.com/seatsurge/ticketd/internal/repository"
	"github.com/seatsurge/ticketd/internal/service"
	"github.com/seatsurge/ticketd/internal/worker"
	"github.com/seatsurge/ticketd/pkg/config"
	"github.com/seatsurge/ticketd/pkg/database"
	"github.com/seatsurge/ticketd/pkg/redis"
)

// Container holds all dependencies for the service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	BookingRepo repository.BookingRepository
	EventRepo   repository.EventRepository
	UserRepo    repository.UserRepository
	SeatLocks   repository.SeatLockRepository

	// Services
	BookingService service.BookingService
	EventService   service.EventService
	AuthService    service.AuthService
	Notifier       service.Notifier

	// Workers
	Sweeper *worker.Sweeper

	// Handlers
	BookingHandler *handler.BookingHandler
	EventHandler   *handler.EventHandler
	AuthHandler    *handler.AuthHandler
	HealthHandler  *handler.HealthHandler
}

// ContainerConfig contains the pieces the container wires together
type ContainerConfig struct {
	Config   *config.Config
	DB       *database.PostgresDB
	Redis    *redis.Client
	Notifier service.Notifier
	Images   service.ImageStore
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	conf := cfg.Config

	// Repositories
	c.BookingRepo = repository.NewPostgresBookingRepository(c.DB.Pool())
	pgEvents := repository.NewPostgresEventRepository(c.DB.Pool())
	c.EventRepo = repository.NewCachedEventRepository(
		pgEvents,
		c.Redis,
		conf.Cache.EventDetailTTL,
		conf.Cache.EventListTTL,
	)
	c.UserRepo = repository.NewPostgresUserRepository(c.DB.Pool())
	c.SeatLocks = repository.NewRedisSeatLockRepository(ctx, c.Redis)

	// Services
	c.Notifier = cfg.Notifier
	ledger := service.NewSeatLedger(c.BookingRepo)
	// Booking validation reads bypass the cache; writes keep going through
	// it so commits and releases invalidate stale entries.
	c.BookingService = service.NewBookingService(
		c.BookingRepo,
		c.EventRepo,
		pgEvents,
		c.SeatLocks,
		ledger,
		c.Notifier,
		&service.BookingServiceConfig{
			HoldTTL:      conf.Booking.HoldTTL,
			RefundWindow: conf.Booking.RefundWindow,
			LockSlack:    conf.Booking.SweepInterval,
		},
	)
	c.EventService = service.NewEventService(c.EventRepo, cfg.Images)
	c.AuthService = service.NewAuthService(c.UserRepo, &service.AuthServiceConfig{
		JWTSecret:   conf.JWT.Secret,
		TokenExpiry: conf.JWT.AccessTokenTTL,
	})

	// Workers
	c.Sweeper = worker.NewSweeper(c.BookingService, &worker.SweeperConfig{
		SweepInterval: conf.Booking.SweepInterval,
		BatchSize:     conf.Booking.SweepBatch,
	})

	// Handlers
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis, c.Sweeper, conf.App.Version)

	return c
}
