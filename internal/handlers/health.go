package handlers

import (
	"context"
	"time"

	"kingscanvas/internal/database"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	mongodb *database.MongoDB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mongodb *database.MongoDB) *HealthHandler {
	return &HealthHandler{mongodb: mongodb}
}

// Handle responds with service health
// GET /health
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dbStatus := "up"
	status := "healthy"
	if h.mongodb == nil || h.mongodb.Ping(ctx) != nil {
		dbStatus = "down"
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":   status,
		"database": dbStatus,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
