package handlers

import (
	"context"
	"log"
	"time"

	"kingscanvas/internal/models"
	"kingscanvas/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// autoGenerateTimeout bounds the background generation kicked off by step
// saves. Generous because it includes one model round-trip.
const autoGenerateTimeout = 90 * time.Second

// StepHandler handles step CRUD and suggestion lifecycle endpoints
type StepHandler struct {
	stepService       *services.StepService
	generationService *services.GenerationService
}

// NewStepHandler creates a new step handler
func NewStepHandler(stepService *services.StepService, generationService *services.GenerationService) *StepHandler {
	return &StepHandler{
		stepService:       stepService,
		generationService: generationService,
	}
}

// List returns the caller's steps
// GET /api/v1/steps
func (h *StepHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	steps, err := h.stepService.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("❌ [STEP-API] Failed to list steps: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve steps",
		})
	}

	return c.JSON(fiber.Map{"steps": steps})
}

// CreateStepRequest is the POST /steps body
type CreateStepRequest struct {
	ClientID    string `json:"client_id"`
	IntentionID string `json:"intention_id"`
	Title       string `json:"title"`
	Bucket      string `json:"bucket"`
	Position    int    `json:"position"`
	Status      string `json:"status"`
}

// Create stores a new step, then kicks off opportunity generation if the step
// has none yet. Generation failures are logged and swallowed: the step save
// must never fail because the simulation model is down.
// POST /api/v1/steps
func (h *StepHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req CreateStepRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	step, err := h.stepService.Create(ctx, &models.Step{
		ClientID:    req.ClientID,
		UserID:      userID,
		IntentionID: req.IntentionID,
		Title:       req.Title,
		Bucket:      req.Bucket,
		Position:    req.Position,
		Status:      req.Status,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.autoGenerate(step.CanonicalID(), services.OriginManual)

	return c.Status(fiber.StatusCreated).JSON(step)
}

// UpdateStepRequest is the PUT /steps/:id body
type UpdateStepRequest struct {
	Title    *string `json:"title"`
	Bucket   *string `json:"bucket"`
	Position *int    `json:"position"`
}

// Update modifies a step's title, bucket, or position
// PUT /api/v1/steps/:id
func (h *StepHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	stepID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid step ID",
		})
	}

	var req UpdateStepRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	fields := bson.M{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Bucket != nil {
		if !models.IsValidBucket(*req.Bucket) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid bucket",
			})
		}
		fields["bucket"] = *req.Bucket
	}
	if req.Position != nil {
		fields["position"] = *req.Position
	}
	if len(fields) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No fields to update",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	step, err := h.stepService.Update(ctx, userID, stepID, fields)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Step not found",
			})
		}
		log.Printf("❌ [STEP-API] Failed to update step: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update step",
		})
	}

	return c.JSON(step)
}

// Accept marks a suggested step as accepted and triggers first-time
// opportunity generation for it.
// POST /api/v1/steps/:id/accept
func (h *StepHandler) Accept(c *fiber.Ctx) error {
	return h.decideSuggestion(c, models.StepStatusAccepted)
}

// Reject marks a suggested step as rejected. Rejected steps are ineligible
// for opportunities, so no generation is triggered.
// POST /api/v1/steps/:id/reject
func (h *StepHandler) Reject(c *fiber.Ctx) error {
	return h.decideSuggestion(c, models.StepStatusRejected)
}

func (h *StepHandler) decideSuggestion(c *fiber.Ctx, status string) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	stepID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid step ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	step, err := h.stepService.UpdateStatus(ctx, userID, stepID, status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Step not found",
			})
		}
		log.Printf("❌ [STEP-API] Failed to update step status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update step",
		})
	}

	if status == models.StepStatusAccepted {
		h.autoGenerate(step.CanonicalID(), services.OriginAIAccepted)
	}

	return c.JSON(step)
}

// Delete removes a step
// DELETE /api/v1/steps/:id
func (h *StepHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	stepID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid step ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.stepService.Delete(ctx, userID, stepID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Step not found",
			})
		}
		log.Printf("❌ [STEP-API] Failed to delete step: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete step",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// autoGenerate runs the idempotent generate-if-needed wrapper in the
// background. Errors are logged, never surfaced to the parent request.
func (h *StepHandler) autoGenerate(stepID, origin string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), autoGenerateTimeout)
		defer cancel()

		_, skipped, err := h.generationService.GenerateIfNeeded(ctx, stepID, origin)
		if err != nil {
			log.Printf("⚠️ [STEP-API] Auto-generation failed for step %s (origin %s): %v", stepID, origin, err)
			return
		}
		if skipped {
			log.Printf("⏭️  [STEP-API] Auto-generation skipped for step %s (origin %s): opportunities already exist", stepID, origin)
		}
	}()
}
