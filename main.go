package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/di"
	"github.com/seatsurge/ticketd/internal/domain"
	"github.com/seatsurge/ticketd/internal/middleware"
	"github.com/seatsurge/ticketd/internal/service"
	"github.com/seatsurge/ticketd/internal/worker"
	"github.com/seatsurge/ticketd/pkg/config"
	"github.com/seatsurge/ticketd/pkg/database"
	"github.com/seatsurge/ticketd/pkg/kafka"
	"github.com/seatsurge/ticketd/pkg/logger"
	pkgredis "github.com/seatsurge/ticketd/pkg/redis"
	"github.com/seatsurge/ticketd/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting ticketd...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Tracing disabled: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	// Initialize database connection
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Redis connection
	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Initialize Kafka notifier; fall back to no-op when the broker is down
	var notifier service.Notifier
	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, notifications disabled: %v", err))
		notifier = service.NewNoopNotifier()
	} else {
		defer producer.Close()
		notifier = service.NewKafkaNotifier(producer, cfg.Kafka.NotificationTopic)
		appLog.Info("Kafka notifier connected")
	}

	// Initialize image store
	images, err := service.NewDiskImageStore(cfg.Images.Dir, cfg.Images.BaseURL)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Image store init failed: %v", err))
	}

	// Build dependency injection container
	container := di.NewContainer(ctx, &di.ContainerConfig{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Notifier: notifier,
		Images:   images,
	})

	// Start the expiry sweeper
	if err := container.Sweeper.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Sweeper start failed: %v", err))
	}
	defer container.Sweeper.Stop()

	// Start the notification email worker when Kafka is available
	if _, ok := notifier.(*service.KafkaNotifier); ok {
		consumer, err := kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
			Brokers:  cfg.Kafka.Brokers,
			ClientID: cfg.Kafka.ClientID,
			Group:    cfg.Kafka.ConsumerGroup,
			Topics:   []string{cfg.Kafka.NotificationTopic},
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka consumer failed, email delivery disabled: %v", err))
		} else {
			defer consumer.Close()
			mailWorker := worker.NewNotificationWorker(consumer, &worker.MailerConfig{
				Addr:     cfg.SMTP.Addr(),
				Host:     cfg.SMTP.Host,
				From:     cfg.SMTP.From,
				Password: cfg.SMTP.Password,
			})
			if err := mailWorker.Start(ctx); err != nil {
				appLog.Warn(fmt.Sprintf("Notification worker start failed: %v", err))
			} else {
				defer mailWorker.Stop()
			}
		}
	}

	// Setup Gin
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))

	// Health endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/health/ready", container.HealthHandler.Ready)

	// Event images
	router.Static(cfg.Images.BaseURL, cfg.Images.Dir)

	auth := middleware.Auth(container.AuthService)
	organizer := middleware.RequireRole(domain.RoleOrganizer, domain.RoleOperator)
	operator := middleware.RequireRole(domain.RoleOperator)

	v1 := router.Group("/api/v1")
	{
		// Auth
		v1.POST("/auth/register", container.AuthHandler.Register)
		v1.POST("/auth/login", container.AuthHandler.Login)

		// Events: public reads, organizer writes
		events := v1.Group("/events")
		{
			events.GET("", container.EventHandler.ListEvents)
			events.GET("/:id", container.EventHandler.GetEvent)
			events.GET("/:id/seats", container.BookingHandler.GetSeatMap)

			events.POST("", auth, organizer, container.EventHandler.CreateEvent)
			events.PUT("/:id", auth, organizer, container.EventHandler.UpdateEvent)
			events.DELETE("/:id", auth, organizer, container.EventHandler.DeleteEvent)
			events.POST("/:id/publish", auth, organizer, container.EventHandler.PublishEvent)
			events.POST("/:id/image", auth, organizer, container.EventHandler.UploadImage)
		}

		// Bookings: authenticated
		bookings := v1.Group("/bookings", auth)
		{
			bookings.POST("", container.BookingHandler.CreateHold)
			bookings.POST("/cleanup", operator, container.BookingHandler.SweepNow)
			bookings.GET("/:id", container.BookingHandler.GetBooking)
			bookings.POST("/:id/confirm", container.BookingHandler.ConfirmBooking)
			bookings.DELETE("/:id", container.BookingHandler.CancelBooking)
			bookings.POST("/:id/refund", container.BookingHandler.RefundBooking)
			bookings.PUT("/:id/customer-info", container.BookingHandler.UpdateContact)
		}
		v1.GET("/my-bookings", auth, container.BookingHandler.GetUserBookings)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLog.Info(fmt.Sprintf("HTTP server listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("HTTP server shutdown error: %v", err))
	}

	appLog.Info("Shutdown complete")
}
