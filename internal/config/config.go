package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string
	StaticDir string

	// Booking storage and policy
	BookingStore        string
	RejectDoubleBooking bool
	CoachTimezone       string
	DatabaseURL         string
	RedisAddr           string
	RedisPassword       string
	RedisTLS            bool

	// Email
	EmailProvider    string
	EmailFromAddress string
	EmailFromName    string
	EmailTimeout     time.Duration
	CoachEmail       string
	ResendAPIKey     string
	SendGridAPIKey   string

	// AWS (SES)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// HTTP
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	BookingRateLimit   float64
	BookingRateBurst   int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first without overriding variables that are
// already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "7000"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		StaticDir: getEnv("STATIC_DIR", "src"),

		BookingStore:        strings.ToLower(strings.TrimSpace(getEnv("BOOKING_STORE", "memory"))),
		RejectDoubleBooking: getEnvAsBool("BOOKING_REJECT_DOUBLE", false),
		CoachTimezone:       getEnv("COACH_TIMEZONE", "Europe/Paris"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisTLS:            getEnvAsBool("REDIS_TLS", false),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "onboarding@resend.dev"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Life Coach"),
		EmailTimeout:     getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
		CoachEmail:       getEnv("COACH_EMAIL", ""),
		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),

		AWSRegion:           getEnv("AWS_REGION", "eu-west-3"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		BookingRateLimit:   getEnvAsFloat("BOOKING_RATE_LIMIT", 0.2),
		BookingRateBurst:   getEnvAsInt("BOOKING_RATE_BURST", 5),
	}
}

// IsProduction reports whether the server runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
