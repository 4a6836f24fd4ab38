package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"kingscanvas/internal/middleware"
	"kingscanvas/internal/models"
	"kingscanvas/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// generateTimeout bounds a synchronous generation request, including one
// simulation model round-trip.
const generateTimeout = 90 * time.Second

// OpportunityHandler handles opportunity read, generation, and lifecycle endpoints
type OpportunityHandler struct {
	stepService        *services.StepService
	opportunityService *services.OpportunityService
	generationService  *services.GenerationService
	shuffleLimiter     *middleware.ShuffleLimiter
}

// NewOpportunityHandler creates a new opportunity handler
func NewOpportunityHandler(
	stepService *services.StepService,
	opportunityService *services.OpportunityService,
	generationService *services.GenerationService,
	shuffleLimiter *middleware.ShuffleLimiter,
) *OpportunityHandler {
	return &OpportunityHandler{
		stepService:        stepService,
		opportunityService: opportunityService,
		generationService:  generationService,
		shuffleLimiter:     shuffleLimiter,
	}
}

// resolveOwnedStep loads the step from the URL parameter and enforces
// ownership. Writes the error response itself and returns nil when the
// request should stop.
func (h *OpportunityHandler) resolveOwnedStep(c *fiber.Ctx, ctx context.Context, userID string) *models.Step {
	stepID := c.Params("stepId")

	step, err := h.stepService.FindByAnyID(ctx, stepID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Step not found",
			})
			return nil
		}
		log.Printf("❌ [OPPORTUNITY-API] Failed to resolve step %s: %v", stepID, err)
		c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve step",
		})
		return nil
	}

	if step.UserID != userID {
		c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You do not own this step",
		})
		return nil
	}

	return step
}

// List returns the stored opportunities for a step. Pure read: the generation
// orchestrator is never involved here.
// GET /api/v1/steps/:stepId/opportunities
func (h *OpportunityHandler) List(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	step := h.resolveOwnedStep(c, ctx, userID)
	if step == nil {
		return nil
	}

	opportunities, err := h.opportunityService.ListForStep(ctx, userID, step.CanonicalID())
	if err != nil {
		log.Printf("❌ [OPPORTUNITY-API] Failed to list opportunities: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve opportunities",
		})
	}

	return c.JSON(fiber.Map{
		"stepId":        step.CanonicalID(),
		"opportunities": opportunities,
	})
}

// Shuffle regenerates a step's opportunities, replacing the stored batch.
// POST /api/v1/steps/:stepId/opportunities/shuffle
func (h *OpportunityHandler) Shuffle(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	step := h.resolveOwnedStep(c, ctx, userID)
	if step == nil {
		return nil
	}

	opportunities, err := h.generationService.GenerateForStep(ctx, step.CanonicalID(), services.OriginShuffle)
	if err != nil {
		return h.mapGenerationError(c, err)
	}

	if h.shuffleLimiter != nil {
		h.shuffleLimiter.IncrementCount(userID)
	}

	return c.JSON(fiber.Map{
		"stepId":        step.CanonicalID(),
		"opportunities": opportunities,
	})
}

// Generate is the manual generation trigger.
// POST /api/v1/steps/:stepId/generate-opportunities
func (h *OpportunityHandler) Generate(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	step := h.resolveOwnedStep(c, ctx, userID)
	if step == nil {
		return nil
	}

	opportunities, err := h.generationService.GenerateForStep(ctx, step.CanonicalID(), services.OriginAPIManual)
	if err != nil {
		return h.mapGenerationError(c, err)
	}

	return c.JSON(fiber.Map{
		"stepId":        step.CanonicalID(),
		"opportunities": opportunities,
	})
}

// mapGenerationError translates the orchestrator's error taxonomy onto HTTP
// status codes.
func (h *OpportunityHandler) mapGenerationError(c *fiber.Ctx, err error) error {
	var notFound *services.StepNotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Step not found",
		})
	}

	var ineligible *services.IneligibleStepError
	if errors.As(err, &ineligible) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Step is not eligible for opportunities",
		})
	}

	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Simulation model is unavailable",
		})
	}

	var parseErr *services.ParseError
	if errors.As(err, &parseErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": parseErr.Error(),
		})
	}

	log.Printf("❌ [OPPORTUNITY-API] Generation failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to generate opportunities",
	})
}

// CreateOpportunityRequest is the POST /steps/:stepId/opportunities body
type CreateOpportunityRequest struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Source  string   `json:"source"`
	Form    string   `json:"form"`
	Focus   []string `json:"focus"`
	Status  string   `json:"status"`
}

// Create stores a single user-authored opportunity for a step
// POST /api/v1/steps/:stepId/opportunities
func (h *OpportunityHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var req CreateOpportunityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	step := h.resolveOwnedStep(c, ctx, userID)
	if step == nil {
		return nil
	}

	opp, err := h.opportunityService.Create(ctx, &models.Opportunity{
		StepID:  step.CanonicalID(),
		UserID:  userID,
		Title:   req.Title,
		Summary: req.Summary,
		Source:  req.Source,
		Form:    req.Form,
		Focus:   req.Focus,
		Status:  req.Status,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(opp)
}

// UpdateOpportunityRequest is the PATCH /opportunities/:id body
type UpdateOpportunityRequest struct {
	Status string `json:"status"`
}

// UpdateStatus saves or dismisses an opportunity
// PATCH /api/v1/opportunities/:id
func (h *OpportunityHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	opportunityID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid opportunity ID",
		})
	}

	var req UpdateOpportunityRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opp, err := h.opportunityService.UpdateStatus(ctx, userID, opportunityID, req.Status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Opportunity not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(opp)
}

// Delete removes a single opportunity
// DELETE /api/v1/opportunities/:id
func (h *OpportunityHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	opportunityID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid opportunity ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.opportunityService.Delete(ctx, userID, opportunityID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Opportunity not found",
			})
		}
		log.Printf("❌ [OPPORTUNITY-API] Failed to delete opportunity: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete opportunity",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
