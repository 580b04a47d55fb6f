package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is the connection-pool snapshot reported by the health endpoint.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

func poolStats(pool *pgxpool.Pool) PoolStats {
	stat := pool.Stat()
	return PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// HealthHandler serves the database health check: a bounded ping plus pool
// statistics, for the load balancer and the ops dashboard respectively.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	type response struct {
		Status string    `json:"status"`
		Error  string    `json:"error,omitempty"`
		Pool   PoolStats `json:"pool"`
	}
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, response{
				Status: "unhealthy",
				Error:  err.Error(),
				Pool:   poolStats(pool),
			})
		}
		return c.JSON(http.StatusOK, response{
			Status: "healthy",
			Pool:   poolStats(pool),
		})
	}
}
