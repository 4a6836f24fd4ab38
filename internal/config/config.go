package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Port     string
	MongoURI string
	RedisURL string

	// Local JWT auth
	JWTSecret string

	// Simulation model (OpenAI-compatible chat completions endpoint)
	SimulationBaseURL string
	SimulationAPIKey  string
	SimulationModel   string

	// Shuffle quota (per user per day, -1 disables)
	MaxShufflesPerDay int64

	// Retention: dismissed opportunities older than this many days are purged
	DismissedRetentionDays int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "3001"),
		MongoURI:  getEnv("MONGODB_URI", ""),
		RedisURL:  getEnv("REDIS_URL", ""),
		JWTSecret: getEnv("JWT_SECRET", ""),

		SimulationBaseURL: strings.TrimRight(getEnv("SIMULATION_BASE_URL", "https://api.openai.com/v1"), "/"),
		SimulationAPIKey:  getEnv("SIMULATION_API_KEY", ""),
		SimulationModel:   getEnv("SIMULATION_MODEL", "gpt-4o-mini"),

		MaxShufflesPerDay:      int64(getIntEnv("MAX_SHUFFLES_PER_DAY", 50)),
		DismissedRetentionDays: getIntEnv("DISMISSED_RETENTION_DAYS", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
