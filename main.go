package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/FormFoxApp/FormFox/app/repository"
	"github.com/FormFoxApp/FormFox/internal/pkg/cache"
	"github.com/FormFoxApp/FormFox/internal/pkg/database"
	"github.com/FormFoxApp/FormFox/internal/pkg/env"
	"github.com/FormFoxApp/FormFox/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	if cache.IsConfigured() {
		cache.SetupCache()
	}

	app := fiber.New(fiber.Config{
		AppName:   "FormFox",
		BodyLimit: 1 * 1024 * 1024, // 1 MiB, webhook and capture payloads are small
	})
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
