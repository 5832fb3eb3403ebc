// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment          string        `mapstructure:"GO_ENV"`
	ServerAddress        string        `mapstructure:"SERVER_ADDRESS"`
	DataDir              string        `mapstructure:"DATA_DIR"`
	TokenType            string        `mapstructure:"TOKEN_TYPE"`
	TokenSymmetricKey    string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration  time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	SessionBackend       string        `mapstructure:"SESSION_BACKEND"`
	SessionLockDir       string        `mapstructure:"SESSION_LOCK_DIR"`
	SessionSweepSchedule string        `mapstructure:"SESSION_SWEEP_SCHEDULE"`
	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int           `mapstructure:"REDIS_DB"`
	RedisKeyPrefix       string        `mapstructure:"REDIS_KEY_PREFIX"`
	HistoryLimit         int           `mapstructure:"HISTORY_LIMIT"`
	AdminDefaultPassword string        `mapstructure:"ADMIN_DEFAULT_PASSWORD"`
	MetricsEnabled       bool          `mapstructure:"METRICS_ENABLED"`
}

// Session lock backends.
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// Token types.
const (
	TokenTypePaseto = "paseto"
	TokenTypeJWT    = "jwt"
)

var defaults = map[string]any{
	"GO_ENV":                 "production",
	"SERVER_ADDRESS":         "0.0.0.0:8080",
	"DATA_DIR":               "./data",
	"TOKEN_TYPE":             TokenTypePaseto,
	"TOKEN_SYMMETRIC_KEY":    "",
	"ACCESS_TOKEN_DURATION":  15 * time.Minute,
	"SESSION_BACKEND":        SessionBackendFile,
	"SESSION_LOCK_DIR":       "./data/sessions",
	"SESSION_SWEEP_SCHEDULE": "@every 1m",
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"REDIS_KEY_PREFIX":       "bank:",
	"HISTORY_LIMIT":          10,
	"ADMIN_DEFAULT_PASSWORD": "root123",
	"METRICS_ENABLED":        true,
}

// Load reads configuration from file or environment variables.
//
// A missing app.env is not an error: defaults and the environment are used.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}
