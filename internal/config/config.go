package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv            string
	AppName           string
	APIPrefix         string
	AppPort           string
	DBPath            string
	DatabaseURL       string
	JWTSecret         string
	JWTAlgorithm      string
	JWTAudience       string
	JWTIssuer         string
	CORSAllowOrigins  []string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	SiteURL           string
	SiteName          string
	AIMaxTokens       int
	AITimeoutSeconds  int
}

func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		AppEnv:      getEnv("APP_ENV", "local"),
		AppName:     getEnv("APP_NAME", "Aselo Backend API"),
		APIPrefix:   getEnv("API_PREFIX", "/api"),
		AppPort:     getEnv("APP_PORT", "8001"),
		DBPath:      getEnv("DB_PATH", "database/local_db.json"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTAlgorithm: getEnv("JWT_ALGORITHM", "HS256"),
		JWTAudience:  getEnv("JWT_AUDIENCE", ""),
		JWTIssuer:    getEnv("JWT_ISSUER", ""),
		CORSAllowOrigins: getEnvCSV(
			"CORS_ALLOW_ORIGINS",
			[]string{"http://localhost:3000", "http://127.0.0.1:3000"},
		),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-oss-120b:free"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		SiteURL:           getEnv("SITE_URL", "http://localhost:3000"),
		SiteName:          getEnv("SITE_NAME", "Aselo Backend"),
		AIMaxTokens:       getEnvInt("AI_MAX_TOKENS", 1000),
		AITimeoutSeconds:  getEnvInt("AI_TIMEOUT_SECONDS", 30),
	}
}

// AuthEnabled reports whether bearer-token auth should guard the API routes.
// An empty secret keeps the open single-tenant mode.
func (c Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.AppPort) == "" {
		return errors.New("APP_PORT is required")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" && strings.TrimSpace(c.DBPath) == "" {
		return errors.New("either DATABASE_URL or DB_PATH is required")
	}
	if c.AuthEnabled() {
		secret := strings.TrimSpace(c.JWTSecret)
		if secret == "change-me-in-production" {
			return errors.New("JWT_SECRET must not use insecure default value")
		}
		if len(secret) < 16 {
			return errors.New("JWT_SECRET is too short; use at least 16 characters")
		}
		if strings.TrimSpace(c.JWTAlgorithm) == "" {
			return errors.New("JWT_ALGORITHM is required when JWT_SECRET is set")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
