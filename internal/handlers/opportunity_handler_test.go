package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"kingscanvas/internal/services"

	"github.com/gofiber/fiber/v2"
)

func TestMapGenerationError(t *testing.T) {
	handler := NewOpportunityHandler(nil, nil, nil, nil)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			"step not found",
			&services.StepNotFoundError{StepID: "missing"},
			fiber.StatusNotFound,
			"Step not found",
		},
		{
			"ineligible step",
			&services.IneligibleStepError{StepID: "s1", Status: "rejected"},
			fiber.StatusUnprocessableEntity,
			"Step is not eligible for opportunities",
		},
		{
			"upstream failure",
			&services.UpstreamError{StatusCode: 503, Message: "model offline"},
			fiber.StatusServiceUnavailable,
			"Simulation model is unavailable",
		},
		{
			"parse failure",
			&services.ParseError{Cause: errors.New("invalid character")},
			fiber.StatusBadGateway,
			"Failed to parse simulate-opportunities response",
		},
		{
			"unknown error",
			errors.New("boom"),
			fiber.StatusInternalServerError,
			"Failed to generate opportunities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/test", func(c *fiber.Ctx) error {
				return handler.mapGenerationError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}

			body, _ := io.ReadAll(resp.Body)
			var payload map[string]string
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if payload["error"] != tt.expectedError {
				t.Errorf("Expected error %q, got %q", tt.expectedError, payload["error"])
			}
		})
	}
}
