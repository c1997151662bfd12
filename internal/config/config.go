// Package config loads application configuration from the environment.
//
// A .env file is read if present (local development); real deployments set
// environment variables directly. Load is called once in main and the
// resulting struct is passed down explicitly — nothing reads the environment
// after startup.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	Port   string
	AppEnv string
	DBPath string

	// Security
	JWTSecret   string
	TokenExpiry time.Duration

	// GitHub OAuth
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURI  string
	GitHubScopes       string

	// Generation backend
	OpenAIAPIKey string

	// CORS
	AllowedOrigins []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return &Config{
		Port:   envString("PORT", "5000"),
		AppEnv: envString("APP_ENV", "development"),
		DBPath: envString("DB_PATH", "data/skillslate.db"),

		JWTSecret:   envString("SECRET_KEY", ""),
		TokenExpiry: envDuration("TOKEN_EXPIRY", 24*time.Hour),

		GitHubClientID:     envString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: envString("GITHUB_CLIENT_SECRET", ""),
		GitHubRedirectURI:  envString("GITHUB_REDIRECT_URI", "http://localhost:5000/api/github/callback"),
		GitHubScopes:       envString("GITHUB_SCOPES", "repo,workflow,pages:write"),

		OpenAIAPIKey: envString("OPENAI_API_KEY", ""),

		AllowedOrigins: envList("ALLOWED_ORIGINS",
			"http://localhost:3000,http://localhost:5173"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default",
			"key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key, def string) []string {
	v := envString(key, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
