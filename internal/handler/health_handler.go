package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatsurge/ticketd/internal/worker"
	"github.com/seatsurge/ticketd/pkg/database"
	"github.com/seatsurge/ticketd/pkg/redis"
)

// HealthHandler reports service health
type HealthHandler struct {
	db      *database.PostgresDB
	cache   *redis.Client
	sweeper *worker.Sweeper
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.PostgresDB, cache *redis.Client, sweeper *worker.Sweeper, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, sweeper: sweeper, version: version}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready handles GET /health/ready. Postgres must answer; Redis degrades the
// report but does not fail readiness because reads fall through the cache.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{}
	status := http.StatusOK

	if err := h.db.HealthCheck(ctx); err != nil {
		checks["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["postgres"] = "ok"
	}

	if err := h.cache.HealthCheck(ctx); err != nil {
		checks["redis"] = "degraded: " + err.Error()
	} else {
		checks["redis"] = "ok"
	}

	if h.sweeper != nil {
		checks["sweeper"] = h.sweeper.GetStats()
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}

	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
