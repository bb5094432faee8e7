package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "PayumServer"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultBodyLimit       = 1 << 20
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	gatewaySecretKeyEnvVar = "GATEWAY_SECRET_KEY"
	gatewaySecretKeySize   = 32
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName          string
	AppEnv           string
	Debug            bool
	Port             string
	LogLevel         string
	AccessLog        bool
	DatabaseURL      string
	RedisURL         string
	ShutdownPeriod   time.Duration
	IdempotencyTTL   time.Duration
	BodyLimit        int
	CORSAllowOrigins []string
	CORSAllowHeaders []string
	CORSMaxAge       int
	GatewaySecretKey []byte
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		AppName:          env("APP_NAME", defaultAppName),
		AppEnv:           env("APP_ENV", defaultAppEnv),
		Port:             env("PORT", defaultPort),
		LogLevel:         strings.ToLower(env("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:      getenv("DATABASE_URL"),
		RedisURL:         getenv("REDIS_URL"),
		ShutdownPeriod:   defaultShutdownDelay,
		IdempotencyTTL:   defaultIdempotencyTTL,
		BodyLimit:        defaultBodyLimit,
		CORSAllowOrigins: splitList(env("CORS_ALLOW_ORIGINS", "*")),
		CORSAllowHeaders: splitList(getenv("CORS_ALLOW_HEADERS")),
	}

	var err error
	if cfg.Debug, err = parseBool(getenv, "APP_DEBUG"); err != nil {
		return Config{}, err
	}
	if cfg.AccessLog, err = parseBool(getenv, "ACCESS_LOG"); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = parseDuration(getenv, shutdownSecondsEnvVar, shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDuration(getenv, idemTTLSecondsEnvVar, idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if v := getenv("CORS_MAX_AGE_SECONDS"); v != "" {
		if cfg.CORSMaxAge, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("invalid CORS_MAX_AGE_SECONDS: %w", err)
		}
	}
	if v := getenv("BODY_LIMIT_BYTES"); v != "" {
		if cfg.BodyLimit, err = strconv.Atoi(v); err != nil || cfg.BodyLimit <= 0 {
			return Config{}, fmt.Errorf("invalid BODY_LIMIT_BYTES: %q", v)
		}
	}

	if v := getenv(gatewaySecretKeyEnvVar); v != "" {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", gatewaySecretKeyEnvVar, err)
		}
		if len(key) != gatewaySecretKeySize {
			return Config{}, fmt.Errorf("invalid %s: want %d bytes, got %d", gatewaySecretKeyEnvVar, gatewaySecretKeySize, len(key))
		}
		cfg.GatewaySecretKey = key
	}

	if !cfg.IsDevelopment() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDevelopment reports whether the app runs in a local environment where
// the in-memory stores may stand in for Postgres and Redis.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func parseBool(getenv func(string) string, key string) (bool, error) {
	v := getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseDuration(getenv func(string) string, secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
