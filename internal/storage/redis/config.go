package redis

import "time"

// Config holds Redis connection and slot settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Profile namespaces the slot so several pilots can share one Redis
	Profile string

	// TokenTTL bounds how long an abandoned token lingers. Zero keeps it
	// until cleared; the server remains the authority on expiry either way.
	TokenTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     2,
		MinIdleConns: 0,
		Profile:      "default",
		TokenTTL:     7 * 24 * time.Hour,
	}
}
