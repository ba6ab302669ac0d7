package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/eventsphere/eventsphere-api/pkg/response"
)

// HealthHandler reports liveness plus the state of the two hard backing
// services. Redis being down degrades rate limiting but not the API, so it
// is reported without failing the check.
type HealthHandler struct {
	Pool *pgxpool.Pool
	RDB  *redis.Client
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{Pool: pool, RDB: rdb}
}

// Check GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	status := http.StatusOK
	if err := h.Pool.Ping(ctx); err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	redisStatus := "up"
	if h.RDB == nil {
		redisStatus = "disabled"
	} else if err := h.RDB.Ping(ctx).Err(); err != nil {
		redisStatus = "down"
	}

	body := gin.H{
		"status":   "ok",
		"database": dbStatus,
		"redis":    redisStatus,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
		response.Error[any](c, status, "service degraded", body)
		return
	}
	response.Success[any](c, status, body, "healthy", nil)
}
