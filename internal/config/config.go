package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AI provider names accepted by AI_PROVIDER.
const (
	AIProviderGemini     = "gemini"
	AIProviderOpenRouter = "openrouter"
	AIProviderNone       = "none"
)

// Config contains runtime configuration values.
type Config struct {
	Environment          string
	HTTPPort             string
	DatabaseURL          string
	JWTSecret            string
	JWTIssuer            string
	TokenTTL             time.Duration
	NodeID               int64
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	AI                   AIConfig
	DNSTimeout           time.Duration
	DNSCacheTTL          time.Duration
	PubSubProjectID      string
	PubSubTopic          string
	PubSubCredentials    string
	ServiceName          string
	RateLimitRPM         int
	ReportRateLimitRPM   int
	TelemetryEndpoint    string
	TelemetryInsecure    bool
	TelemetrySampleRatio float64
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
}

// AIConfig selects and configures the credibility completion backend.
type AIConfig struct {
	Provider          string
	GeminiAPIKey      string
	GeminiModel       string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	Timeout           time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:   getEnv("APP_ENV", "development"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:     os.Getenv("JWT_ISSUER"),
		TokenTTL:      getDuration("TOKEN_TTL", time.Hour),
		NodeID:        int64(getInt("NODE_ID", 1)),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		AI: AIConfig{
			Provider:          strings.ToLower(getEnv("AI_PROVIDER", "")),
			GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
			OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
			OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Timeout:           getDuration("AI_TIMEOUT", 5*time.Second),
		},
		DNSTimeout:           getDuration("DNS_TIMEOUT", 3*time.Second),
		DNSCacheTTL:          getDuration("DNS_CACHE_TTL", 10*time.Minute),
		PubSubProjectID:      os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubTopic:          getEnv("PUBSUB_TOPIC", "employer-verification"),
		PubSubCredentials:    os.Getenv("PUBSUB_CREDENTIALS_JSON"),
		ServiceName:          getEnv("SERVICE_NAME", "trustcheck"),
		RateLimitRPM:         getInt("RATE_LIMIT_RPM", 600),
		ReportRateLimitRPM:   getInt("REPORT_RATE_LIMIT_RPM", 10),
		TelemetryEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		TelemetrySampleRatio: getFloat("OTEL_TRACES_SAMPLER_RATIO", 1),
		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CORSAllowedMethods:   getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		CORSAllowedHeaders:   getList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
		CORSAllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = inferProvider(cfg.AI)
	}
	switch cfg.AI.Provider {
	case AIProviderGemini, AIProviderOpenRouter, AIProviderNone:
	default:
		return Config{}, fmt.Errorf("AI_PROVIDER must be one of gemini, openrouter, none")
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 5 * time.Second
	}
	if cfg.DNSTimeout <= 0 {
		cfg.DNSTimeout = 3 * time.Second
	}

	return cfg, nil
}

// inferProvider picks whichever backend has a key, preferring Gemini.
func inferProvider(ai AIConfig) string {
	switch {
	case strings.TrimSpace(ai.GeminiAPIKey) != "":
		return AIProviderGemini
	case strings.TrimSpace(ai.OpenRouterAPIKey) != "":
		return AIProviderOpenRouter
	default:
		return AIProviderNone
	}
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
