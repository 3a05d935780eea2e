package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/noah-isme/pbl-go-api/internal/config"
	"github.com/noah-isme/pbl-go-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies"`
}

// HealthDependencies lists the backing services probed by the health endpoint. Nil entries are skipped.
type HealthDependencies struct {
	DB    *gorm.DB
	Redis *redis.Client
	NATS  *nats.Conn
}

// HealthCheck returns a handler that reports application and dependency health.
// The database is required; redis and NATS only degrade the status.
func HealthCheck(cfg config.Config, deps HealthDependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		payload := HealthResponse{
			Status:       "ok",
			Timestamp:    time.Now().UTC(),
			Service:      cfg.AppName,
			Environment:  cfg.AppEnv,
			Dependencies: map[string]string{},
		}

		if deps.DB != nil {
			payload.Dependencies["database"] = "ok"
			sqlDB, err := deps.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				payload.Dependencies["database"] = "down"
				payload.Status = "down"
			}
		}
		if deps.Redis != nil {
			payload.Dependencies["redis"] = "ok"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				payload.Dependencies["redis"] = "down"
				degrade(&payload)
			}
		}
		if deps.NATS != nil {
			payload.Dependencies["nats"] = "ok"
			if !deps.NATS.IsConnected() {
				payload.Dependencies["nats"] = "down"
				degrade(&payload)
			}
		}

		if payload.Status == "down" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(utils.APIResponse{
				Success: false,
				Message: "service unhealthy",
				Data:    payload,
			})
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}

func degrade(payload *HealthResponse) {
	if payload.Status == "ok" {
		payload.Status = "degraded"
	}
}
