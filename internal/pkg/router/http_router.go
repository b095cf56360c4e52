package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/FormFoxApp/FormFox/app/controllers"
	"github.com/FormFoxApp/FormFox/app/repository"
	"github.com/FormFoxApp/FormFox/internal/pkg/dedup"
	"github.com/FormFoxApp/FormFox/internal/pkg/env"
	"github.com/FormFoxApp/FormFox/internal/pkg/mail"
	"github.com/FormFoxApp/FormFox/internal/pkg/provisioning"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	guard := dedup.NewGuard(
		dedup.NewDefaultStore(),
		dedupTTLFromEnv(),
		env.GetEnv("DEDUP_RETRY_ON_FAILURE", "false") == "true",
	)
	provisioner := provisioning.NewProvisioner(
		repository.GetGlobalFactory().GetTenantRepository(),
		mail.OnboardingMailer{},
		env.GetEnv("APP_BASE_DOMAIN", "formfox.app"),
	)
	wc := controllers.NewWebhookController(guard, provisioner, repository.GetGlobalFactory().GetWebhookEventRepository())

	// Webhooks stay un-throttled: rate limiting provider retries only turns
	// transient backlog into redelivery storms.
	app.Post("/webhooks/stripe", wc.HandleStripeWebhook)
	app.Get("/healthz", controllers.HandleHealth)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func dedupTTLFromEnv() time.Duration {
	ttl, err := time.ParseDuration(env.GetEnv("DEDUP_TTL", "24h"))
	if err != nil {
		return dedup.DefaultTTL
	}
	return ttl
}
