package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports DB and Redis connectivity. 503 as soon as either dependency
// fails to answer within the probe deadline.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := gin.H{
			"postgres": pingPostgres(ctx, db),
			"redis":    pingRedis(ctx, rdb),
		}

		code := http.StatusOK
		for _, v := range checks {
			if v != "up" {
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": httpStatusWord(code), "checks": checks})
	}
}

func pingPostgres(ctx context.Context, db *gorm.DB) string {
	sqlDB, err := db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return "down"
	}
	return "up"
}

func pingRedis(ctx context.Context, rdb *redis.Client) string {
	if rdb.Ping(ctx).Err() != nil {
		return "down"
	}
	return "up"
}

func httpStatusWord(code int) string {
	if code == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}
