package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// Redis is optional: without it the cart lives in memory and the status
// reads "disabled". A nil breaker omits the smtp field.
func Health(db *gorm.DB, rdb *redis.Client, smtp *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}
		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueEmail); err == nil {
				body["dlq_email"] = n
			}
		}
		body["redis"] = redisStatus
		if smtp != nil {
			body["smtp"] = smtp.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
