package controllers

import (
	"encoding/json"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/FormFoxApp/FormFox/app/models"
	"github.com/FormFoxApp/FormFox/app/repository"
	"github.com/FormFoxApp/FormFox/internal/pkg/tenantcontext"
)

var validate = validator.New()

type capturePayload struct {
	Form   string                 `json:"form" validate:"required,max=100"`
	Fields map[string]interface{} `json:"fields" validate:"required,min=1"`
}

// HandleCapture is the POST /api/v1/capture handler. The tenant is resolved
// by the API key middleware before this runs.
func HandleCapture(c *fiber.Ctx) error {
	tc := tenantcontext.Get(c)

	var payload capturePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Cannot parse request body"})
	}
	if err := validate.Struct(&payload); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	fieldsJSON, err := json.Marshal(payload.Fields)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Cannot encode fields"})
	}

	sub := &models.FormSubmission{
		PublicID:   uuid.NewString(),
		TenantID:   tc.TenantID,
		FormName:   payload.Form,
		FieldsJSON: string(fieldsJSON),
		SourceIP:   c.IP(),
	}
	if err := repository.GetGlobalFactory().GetSubmissionRepository().Create(sub); err != nil {
		log.Printf("failed to store submission for tenant %s: %v", tc.Handle, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not store submission"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"received": true, "id": sub.PublicID})
}

// HandleListSubmissions is the GET /api/v1/submissions handler.
func HandleListSubmissions(c *fiber.Ctx) error {
	tc := tenantcontext.Get(c)

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	repo := repository.GetGlobalFactory().GetSubmissionRepository()
	subs, err := repo.ListByTenant(tc.TenantID, limit, offset)
	if err != nil {
		log.Printf("failed to list submissions for tenant %s: %v", tc.Handle, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not list submissions"})
	}
	total, err := repo.CountByTenant(tc.TenantID)
	if err != nil {
		log.Printf("failed to count submissions for tenant %s: %v", tc.Handle, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Could not count submissions"})
	}

	items := make([]fiber.Map, 0, len(subs))
	for _, s := range subs {
		items = append(items, fiber.Map{
			"id":         s.PublicID,
			"form":       s.FormName,
			"fields":     json.RawMessage(s.FieldsJSON),
			"created_at": s.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"submissions": items,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}
