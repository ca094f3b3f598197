package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is the connection pool snapshot reported by the database health
// endpoint.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

func snapshotPool(pool *pgxpool.Pool, healthy bool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         healthy,
	}
}

// HealthHandler reports database reachability plus pool statistics. The ping
// is bounded so a wedged database cannot hang the health endpoint.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		err := pool.Ping(ctx)
		pingLatency := time.Since(start)

		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status": "unhealthy",
				"error":  err.Error(),
				"pool":   snapshotPool(pool, false),
			})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"status":       "healthy",
			"ping_latency": pingLatency.String(),
			"pool":         snapshotPool(pool, true),
		})
	}
}
