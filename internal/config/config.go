// Package config reads the server settings from the environment.
//
// A .env file in the working directory is loaded first if present. Values
// already set in the real environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sakif/videohub/internal/auth"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port        int
	DBPath      string
	JWTSecret   string
	TokenTTL    time.Duration
	LogLevel    slog.Level
	Environment string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Production reports whether the server runs with production settings
// (JSON logs, Secure cookies).
func (c *Config) Production() bool {
	return c.Environment == EnvProduction
}

// GitHubEnabled reports whether both GitHub OAuth credentials are set.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Load reads .env (optional) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Any invalid value is an error; the
// server refuses to start rather than run with a guessed setting.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		DBPath:             get("DB_PATH", "data/videohub.db"),
		JWTSecret:          getenv("JWT_SECRET"),
		Environment:        strings.ToLower(get("ENVIRONMENT", EnvDevelopment)),
		GitHubClientID:     get("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: get("GITHUB_CLIENT_SECRET", ""),
	}

	port, err := strconv.Atoi(get("PORT", "8080"))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("config: PORT must be a number between 1 and 65535, got %q", getenv("PORT"))
	}
	cfg.Port = port

	if len(cfg.JWTSecret) < auth.MinSecretLength {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least %d characters", auth.MinSecretLength)
	}

	cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "24h"))
	if err != nil || cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be a positive duration such as 24h, got %q", getenv("TOKEN_TTL"))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	switch cfg.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return nil, fmt.Errorf("config: ENVIRONMENT must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Environment)
	}

	cfg.GitHubCallbackURL = get("GITHUB_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port))

	return cfg, nil
}
