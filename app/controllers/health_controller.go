package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/FormFoxApp/FormFox/internal/pkg/cache"
	"github.com/FormFoxApp/FormFox/internal/pkg/database"
	"github.com/FormFoxApp/FormFox/internal/pkg/metrics/counter"
)

// HandleHealth is the GET /healthz handler.
func HandleHealth(c *fiber.Ctx) error {
	dbStatus := "up"
	if db := database.GetDB(); db == nil {
		dbStatus = "down"
	} else if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	cacheStatus := "disabled"
	if cache.IsConfigured() {
		cacheStatus = "up"
		if err := cache.GetClient().Ping(c.Context()).Err(); err != nil {
			cacheStatus = "down"
		}
	}

	status := fiber.StatusOK
	state := "ok"
	if dbStatus == "down" {
		status = fiber.StatusServiceUnavailable
		state = "degraded"
	}

	counters, _ := counter.Snapshot()

	return c.Status(status).JSON(fiber.Map{
		"status":           state,
		"database":         dbStatus,
		"cache":            cacheStatus,
		"webhook_counters": counters,
	})
}
