// Package config loads application configuration from defaults, an
// optional YAML file, and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Token    TokenConfig    `koanf:"token"`
	Auth     AuthConfig     `koanf:"auth"`
	CORS     CORSConfig     `koanf:"cors"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig contains the metrics endpoint settings.
type MetricsConfig struct {
	Port int `koanf:"port"`
}

// DatabaseConfig contains PostgreSQL settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectAttempts int           `koanf:"connect_attempts"`
}

// TokenConfig contains token codec settings.
type TokenConfig struct {
	SigningKey       string `koanf:"signing_key"`
	TTLSeconds       int    `koanf:"ttl_seconds"`
	ClockSkewSeconds int    `koanf:"clock_skew_seconds"`
}

// TTL returns the token lifetime.
func (c TokenConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ClockSkew returns the verification leeway.
func (c TokenConfig) ClockSkew() time.Duration {
	return time.Duration(c.ClockSkewSeconds) * time.Second
}

// AuthConfig contains access policy and admin seeding settings.
type AuthConfig struct {
	AdminPaths    []string `koanf:"admin_paths"`
	AdminEmail    string   `koanf:"admin_email"`
	AdminPassword string   `koanf:"admin_password"`
}

// CORSConfig contains CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `koanf:"level"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectAttempts: 5,
		},
		Token: TokenConfig{
			TTLSeconds:       7200,
			ClockSkewSeconds: 30,
		},
		Auth: AuthConfig{
			AdminPaths: []string{"users"},
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// envMap routes environment variables to config keys. Unknown variables
// are ignored rather than flattened into surprise keys.
var envMap = map[string]string{
	"SERVER_PORT":              "server.port",
	"METRICS_PORT":             "metrics.port",
	"DATABASE_URL":             "database.url",
	"TOKEN_SIGNING_KEY":        "token.signing_key",
	"TOKEN_TTL_SECONDS":        "token.ttl_seconds",
	"TOKEN_CLOCK_SKEW_SECONDS": "token.clock_skew_seconds",
	"ADMIN_EMAIL":              "auth.admin_email",
	"ADMIN_PASSWORD":           "auth.admin_password",
	"LOG_LEVEL":                "log.level",
}

// Load reads configuration from defaults, then the YAML file at path if
// it exists, then environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envMap[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (DATABASE_URL)")
	}
	if c.Token.SigningKey == "" {
		return fmt.Errorf("token.signing_key is required (TOKEN_SIGNING_KEY)")
	}
	if c.Token.TTLSeconds <= 0 {
		return fmt.Errorf("token.ttl_seconds must be positive")
	}
	return nil
}
