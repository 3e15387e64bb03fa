package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, RDB: rdb}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	dbState := "ok"
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbState = "down"
		status = fiber.StatusServiceUnavailable
	}

	redisState := "disabled"
	if h.RDB != nil {
		redisState = "ok"
		if err := h.RDB.Ping(ctx).Err(); err != nil {
			redisState = "down"
			status = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"success": status == fiber.StatusOK,
		"db":      dbState,
		"redis":   redisState,
	})
}
