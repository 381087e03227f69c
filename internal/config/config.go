package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// App holds the runtime configuration loaded from environment variables
// and, optionally, a config file named by QUIZBUDDY_CONFIG.
type App struct {
	Env      string
	HTTPPort string

	DatabaseDriver string
	DatabaseURL    string
	KVBackend      string
	RedisAddr      string

	JWTIssuer     string
	JWTSigningKey string
	SessionTTL    time.Duration

	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	TranslateBaseURL string
	TranslateAPIKey  string
	TranslateTimeout time.Duration

	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string
	BcryptCost        int

	RateLimitPerMin int
	SnapshotTTL     time.Duration
	CORSOrigins     []string

	LogLevel        string
	LogFile         string
	TracingEndpoint string
}

// Production reports whether the app runs with production defaults.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

var defaults = map[string]any{
	"APP_ENV":            "dev",
	"HTTP_PORT":          "8081",
	"DB_DRIVER":          "sqlite",
	"DATABASE_URL":       "",
	"KV_BACKEND":         "memory",
	"REDIS_ADDR":         "localhost:6379",
	"JWT_ISSUER":         "quizbuddy",
	"JWT_SIGNING_KEY":    "dev-signing-secret-change",
	"SESSION_TTL":        "12h",
	"LLM_BASE_URL":       "https://api.groq.com/openai/v1",
	"LLM_MODEL":          "llama-3.1-8b-instant",
	"LLM_TEMPERATURE":    0.7,
	"LLM_MAX_TOKENS":     2000,
	"LLM_TIMEOUT":        "60s",
	"TRANSLATE_BASE_URL": "https://translation.googleapis.com",
	"TRANSLATE_TIMEOUT":  "10s",
	"BCRYPT_COST":        10,
	"RATE_LIMIT_PER_MIN": 120,
	"SNAPSHOT_TTL":       "30s",
	"CORS_ORIGINS":       "*",
	"LOG_LEVEL":          "info",
	"LOG_FILE":           "",
	"TRACING_ENDPOINT":   "",
}

// Load returns application config. Missing credentials are reported together
// in a single error; callers treat it as fatal.
func Load() (App, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if file := v.GetString("QUIZBUDDY_CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return App{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := App{
		Env:               v.GetString("APP_ENV"),
		HTTPPort:          v.GetString("HTTP_PORT"),
		DatabaseDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		KVBackend:         strings.ToLower(v.GetString("KV_BACKEND")),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		JWTIssuer:         v.GetString("JWT_ISSUER"),
		JWTSigningKey:     v.GetString("JWT_SIGNING_KEY"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		LLMBaseURL:        strings.TrimRight(v.GetString("LLM_BASE_URL"), "/"),
		LLMAPIKey:         v.GetString("LLM_API_KEY"),
		LLMModel:          v.GetString("LLM_MODEL"),
		LLMTemperature:    v.GetFloat64("LLM_TEMPERATURE"),
		LLMMaxTokens:      v.GetInt("LLM_MAX_TOKENS"),
		LLMTimeout:        v.GetDuration("LLM_TIMEOUT"),
		TranslateBaseURL:  strings.TrimRight(v.GetString("TRANSLATE_BASE_URL"), "/"),
		TranslateAPIKey:   v.GetString("TRANSLATE_API_KEY"),
		TranslateTimeout:  v.GetDuration("TRANSLATE_TIMEOUT"),
		AdminEmail:        strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		BcryptCost:        v.GetInt("BCRYPT_COST"),
		RateLimitPerMin:   v.GetInt("RATE_LIMIT_PER_MIN"),
		SnapshotTTL:       v.GetDuration("SNAPSHOT_TTL"),
		CORSOrigins:       splitList(v.GetStringSlice("CORS_ORIGINS")),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFile:           v.GetString("LOG_FILE"),
		TracingEndpoint:   v.GetString("TRACING_ENDPOINT"),
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings the service cannot start without.
func (a App) Validate() error {
	var missing []string
	if a.LLMAPIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if a.TranslateAPIKey == "" {
		missing = append(missing, "TRANSLATE_API_KEY")
	}
	if a.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if a.AdminPassword == "" && a.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD or ADMIN_PASSWORD_HASH")
	}
	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing required settings: %s", strings.Join(missing, ", ")))
	}
	switch a.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", a.DatabaseDriver))
	}
	switch a.KVBackend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unsupported KV_BACKEND %q", a.KVBackend))
	}
	return errors.Join(errs...)
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
