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

// IntentionHandler handles intention CRUD endpoints
type IntentionHandler struct {
	intentionService *services.IntentionService
}

// NewIntentionHandler creates a new intention handler
func NewIntentionHandler(intentionService *services.IntentionService) *IntentionHandler {
	return &IntentionHandler{intentionService: intentionService}
}

// List returns the caller's intentions
// GET /api/v1/intentions
func (h *IntentionHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	intentions, err := h.intentionService.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("❌ [INTENTION-API] Failed to list intentions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve intentions",
		})
	}

	return c.JSON(fiber.Map{"intentions": intentions})
}

// CreateIntentionRequest is the POST /intentions body
type CreateIntentionRequest struct {
	ClientID string `json:"client_id"`
	Title    string `json:"title"`
	Bucket   string `json:"bucket"`
	Position int    `json:"position"`
}

// Create stores a new intention
// POST /api/v1/intentions
func (h *IntentionHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req CreateIntentionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	intention, err := h.intentionService.Create(ctx, &models.Intention{
		ClientID: req.ClientID,
		UserID:   userID,
		Title:    req.Title,
		Bucket:   req.Bucket,
		Position: req.Position,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(intention)
}

// UpdateIntentionRequest is the PUT /intentions/:id body
type UpdateIntentionRequest struct {
	Title    *string `json:"title"`
	Bucket   *string `json:"bucket"`
	Position *int    `json:"position"`
}

// Update modifies an intention's title, bucket, or position
// PUT /api/v1/intentions/:id
func (h *IntentionHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	intentionID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid intention ID",
		})
	}

	var req UpdateIntentionRequest
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

	intention, err := h.intentionService.Update(ctx, userID, intentionID, fields)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Intention not found",
			})
		}
		log.Printf("❌ [INTENTION-API] Failed to update intention: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update intention",
		})
	}

	return c.JSON(intention)
}

// Delete removes an intention
// DELETE /api/v1/intentions/:id
func (h *IntentionHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	intentionID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid intention ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.intentionService.Delete(ctx, userID, intentionID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Intention not found",
			})
		}
		log.Printf("❌ [INTENTION-API] Failed to delete intention: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete intention",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
