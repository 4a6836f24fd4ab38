package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ShuffleLimiter enforces a per-user daily quota on opportunity shuffles.
// Shuffles burn a model call each, so a single user must not be able to
// regenerate in a tight loop. Backed by Redis day-bucketed counters.
type ShuffleLimiter struct {
	redis     *redis.Client
	maxPerDay int64
}

// NewShuffleLimiter creates a shuffle limiter. maxPerDay of -1 disables the quota.
func NewShuffleLimiter(redisClient *redis.Client, maxPerDay int64) *ShuffleLimiter {
	return &ShuffleLimiter{
		redis:     redisClient,
		maxPerDay: maxPerDay,
	}
}

// CheckLimit verifies the user still has shuffle quota for today.
func (sl *ShuffleLimiter) CheckLimit(c *fiber.Ctx) error {
	if sl.redis == nil || sl.maxPerDay < 0 {
		return c.Next()
	}

	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	ctx := context.Background()
	key := sl.quotaKey(userID)

	count, err := sl.redis.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		log.Printf("⚠️  Failed to get shuffle count from Redis: %v", err)
		// On Redis error, allow the shuffle but log a warning
		return c.Next()
	}

	if count >= sl.maxPerDay {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":    "Daily shuffle limit exceeded",
			"limit":    sl.maxPerDay,
			"used":     count,
			"reset_at": nextMidnightUTC(),
		})
	}

	return c.Next()
}

// IncrementCount bumps the user's shuffle counter after a successful shuffle.
func (sl *ShuffleLimiter) IncrementCount(userID string) error {
	if sl.redis == nil {
		return nil
	}

	ctx := context.Background()
	key := sl.quotaKey(userID)

	pipe := sl.redis.Pipeline()
	pipe.Incr(ctx, key)
	// Keep the counter one extra day for historical querying
	pipe.Expire(ctx, key, time.Until(nextMidnightUTC())+24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("⚠️  Failed to increment shuffle count: %v", err)
		return err
	}

	return nil
}

func (sl *ShuffleLimiter) quotaKey(userID string) string {
	today := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf("shuffles:%s:%s", userID, today)
}

func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
