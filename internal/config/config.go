package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	AppEnv     string // "development" or "production"
	LogLevel   string
	LogFormat  string
	RedisURL   string

	JWTSecret string
	JWTExpiry time.Duration

	// SealSecret derives the key that seals override credentials at rest.
	SealSecret string
	// OpsSecret guards the credit-reset escape hatch.
	OpsSecret string

	AIProvider  string // "gemini" or "mock"
	GeminiKey   string
	GeminiModel string

	// TextTimeout bounds pure-text generation calls; FileTimeout bounds
	// multimodal (file-bearing) calls, which need materially longer.
	TextTimeout time.Duration
	FileTimeout time.Duration

	InitialCredits   int
	SessionRetention time.Duration
	JanitorInterval  time.Duration

	MaxUploadBytes int64
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// IsProduction reports whether the deployment is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error, .env is optional

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "pretty"),
		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret: getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24*30)) * time.Hour,

		SealSecret: getEnv("SEAL_SECRET", "change-this-sealing-secret"),
		OpsSecret:  getEnv("OPS_SECRET", ""),

		AIProvider:  getEnv("AI_PROVIDER", "gemini"),
		GeminiKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		TextTimeout: time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 30)) * time.Second,
		FileTimeout: time.Duration(getEnvInt("MULTIMODAL_TIMEOUT_SECONDS", 60)) * time.Second,

		InitialCredits:   getEnvInt("INITIAL_CREDITS", 4),
		SessionRetention: time.Duration(getEnvInt("SESSION_RETENTION_DAYS", 30)) * 24 * time.Hour,
		JanitorInterval:  time.Duration(getEnvInt("JANITOR_INTERVAL_MINUTES", 60)) * time.Minute,

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
