package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithGeneration returns a logger with opportunity-generation context fields
// attached, including a fresh run ID so the log lines of one generation run
// can be correlated. Use this for all logging within a generation run.
func WithGeneration(stepID, origin, userID string) *slog.Logger {
	return slog.With(
		"run_id", uuid.NewString(),
		"step_id", stepID,
		"origin", origin,
		"user_id", userID,
	)
}
