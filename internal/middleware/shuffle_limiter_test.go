package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestShuffleLimiter_DisabledWithoutRedis(t *testing.T) {
	limiter := NewShuffleLimiter(nil, 50)

	app := fiber.New()
	app.Post("/shuffle", limiter.CheckLimit, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/shuffle", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected passthrough without Redis, got %d", resp.StatusCode)
	}
}

func TestShuffleLimiter_IncrementWithoutRedisIsNoop(t *testing.T) {
	limiter := NewShuffleLimiter(nil, 50)
	if err := limiter.IncrementCount("user-1"); err != nil {
		t.Errorf("Expected no-op without Redis, got %v", err)
	}
}
