package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"

	EnvGroqAPIKey       = "GROQ_API_KEY"
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvSerperAPIKey     = "SERPER_API_KEY"
	EnvElevenLabsKey1   = "ELEVENLABS_API_KEY_1"
	EnvElevenLabsKey2   = "ELEVENLABS_API_KEY_2"
	EnvVapidPublicKey   = "VAPID_PUBLIC_KEY"
	EnvVapidPrivateKey  = "VAPID_PRIVATE_KEY"
	EnvVapidSubscriber  = "VAPID_SUBSCRIBER"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvRedisPrefix   = "REDIS_PREFIX"
	EnvRateLimit     = "RATE_LIMIT"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// LoadDatabaseDSN reads the database DSN from the environment or YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file with env overrides.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// ProviderConfig holds upstream provider credentials.
type ProviderConfig struct {
	GroqAPIKey       string   `yaml:"groq-api-key"`
	OpenRouterAPIKey string   `yaml:"openrouter-api-key"`
	SerperAPIKey     string   `yaml:"serper-api-key"`
	ElevenLabsKeys   []string `yaml:"elevenlabs-api-keys"`
	VapidPublicKey   string   `yaml:"vapid-public-key"`
	VapidPrivateKey  string   `yaml:"vapid-private-key"`
	VapidSubscriber  string   `yaml:"vapid-subscriber"`
}

// LoadProviderConfig loads provider credentials from the YAML config file with env overrides.
func LoadProviderConfig(configPath string) (ProviderConfig, error) {
	// fileConfig maps the YAML fields needed for provider settings.
	type fileConfig struct {
		Providers ProviderConfig `yaml:"providers"`
	}

	var result ProviderConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Providers
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvGroqAPIKey)); key != "" {
		result.GroqAPIKey = key
	}
	if key := strings.TrimSpace(os.Getenv(EnvOpenRouterAPIKey)); key != "" {
		result.OpenRouterAPIKey = key
	}
	if key := strings.TrimSpace(os.Getenv(EnvSerperAPIKey)); key != "" {
		result.SerperAPIKey = key
	}

	envKeys := make([]string, 0, 2)
	for _, name := range []string{EnvElevenLabsKey1, EnvElevenLabsKey2} {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			envKeys = append(envKeys, key)
		}
	}
	if len(envKeys) > 0 {
		result.ElevenLabsKeys = envKeys
	}

	if key := strings.TrimSpace(os.Getenv(EnvVapidPublicKey)); key != "" {
		result.VapidPublicKey = key
	}
	if key := strings.TrimSpace(os.Getenv(EnvVapidPrivateKey)); key != "" {
		result.VapidPrivateKey = key
	}
	if sub := strings.TrimSpace(os.Getenv(EnvVapidSubscriber)); sub != "" {
		result.VapidSubscriber = sub
	}
	if strings.TrimSpace(result.VapidSubscriber) == "" {
		result.VapidSubscriber = "mailto:support@visora.app"
	}

	return result, nil
}

// RateLimitConfig holds request rate limit settings and the Redis backend.
type RateLimitConfig struct {
	Limit         int    `yaml:"limit"`
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisPrefix   string `yaml:"redis-prefix"`
	RedisDB       int    `yaml:"redis-db"`
}

// RedisEnabled reports whether a Redis backend is configured.
func (c RateLimitConfig) RedisEnabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

// LoadRateLimitConfig loads rate limit settings from the YAML config file with env overrides.
func LoadRateLimitConfig(configPath string) (RateLimitConfig, error) {
	// fileConfig maps the YAML fields needed for rate limit settings.
	type fileConfig struct {
		RateLimit RateLimitConfig `yaml:"rate-limit"`
	}

	var result RateLimitConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.RateLimit
		}
	}

	if raw := strings.TrimSpace(os.Getenv(EnvRateLimit)); raw != "" {
		if limit, errParse := strconv.Atoi(raw); errParse == nil && limit >= 0 {
			result.Limit = limit
		}
	}
	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		result.RedisAddr = addr
	}
	if password := strings.TrimSpace(os.Getenv(EnvRedisPassword)); password != "" {
		result.RedisPassword = password
	}
	if prefix := strings.TrimSpace(os.Getenv(EnvRedisPrefix)); prefix != "" {
		result.RedisPrefix = prefix
	}
	if raw := strings.TrimSpace(os.Getenv(EnvRedisDB)); raw != "" {
		if dbIndex, errParse := strconv.Atoi(raw); errParse == nil && dbIndex >= 0 {
			result.RedisDB = dbIndex
		}
	}

	return result, nil
}
