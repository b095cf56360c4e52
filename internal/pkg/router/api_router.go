package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/FormFoxApp/FormFox/app/controllers"
	"github.com/FormFoxApp/FormFox/internal/pkg/cache"
	"github.com/FormFoxApp/FormFox/internal/pkg/env"
	"github.com/FormFoxApp/FormFox/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiterConfig()))

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware())
	v1.Post("/capture", controllers.HandleCapture)
	v1.Get("/submissions", controllers.HandleListSubmissions)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// limiterConfig backs the rate limiter with Redis when a cache server is
// configured, so limits hold across instances; otherwise fiber's in-memory
// storage applies per instance.
func limiterConfig() limiter.Config {
	cfg := limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}
	if cache.IsConfigured() {
		port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
		if err != nil {
			port = 6379
		}
		cfg.Storage = redisstorage.New(redisstorage.Config{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     port,
			Password: env.GetEnv("CACHE_PASSWORD", ""),
		})
	}
	return cfg
}
