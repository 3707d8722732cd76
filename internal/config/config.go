// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types and validates
// that required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional settings (pool sizing, timeouts, observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists in the working directory,
	// it is loaded into the process environment before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Two env namespaces are read:

	- DB_* variables map onto the `database` block, so the conventional
	  DB_NAME / DB_USER / DB_PASSWORD / DB_HOST names keep working.
	  e.g. DB_SSL_MODE -> database.ssl_mode -> Config.Database.SSLMode

	- Everything else uses the BRIDGEAPI_ prefix. A double underscore
	  separates nesting levels.
	  e.g. BRIDGEAPI_SERVER__PORT -> server.port -> Config.Server.Port
	       BRIDGEAPI_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level
*/

const (
	// EnvPrefix is the prefix for application settings.
	EnvPrefix = "BRIDGEAPI_"

	// DatabaseEnvPrefix is the prefix for backing store credentials.
	DatabaseEnvPrefix = "DB_"

	// ServiceName tags logs and New Relic telemetry.
	ServiceName = "bridge-api"
)

// Config is the root configuration object for the application.
//
// Redis and Observability are pointers because they are optional.
// Redis stays nil unless an address is supplied; Observability is
// always populated with defaults first.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         *RedisConfig         `koanf:"redis"`
	Observability *ObservabilityConfig `koanf:"observability" validate:"required"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=1"`
	ShutdownTimeout    int      `koanf:"shutdown_timeout" validate:"min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the sustained requests-per-second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
	RateBurst int     `koanf:"rate_burst" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters, pool tuning
// and the location of the bridge survey table.
//
// Durations (ConnMaxLifetime, ConnMaxIdleTime, QueryTimeout) are seconds.
type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required,min=1,max=65535"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	Name     string `koanf:"name" validate:"required"`
	SSLMode  string `koanf:"ssl_mode" validate:"required,oneof=disable allow prefer require verify-ca verify-full"`

	Schema string `koanf:"schema" validate:"required"`
	Table  string `koanf:"table" validate:"required"`

	MaxConns        int `koanf:"max_conns" validate:"min=1"`
	MinConns        int `koanf:"min_conns" validate:"min=0,ltefield=MaxConns"`
	ConnMaxLifetime int `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int `koanf:"conn_max_idle_time" validate:"min=0"`
	QueryTimeout    int `koanf:"query_timeout" validate:"min=1"`

	// VerifySchema makes startup fail when the table no longer carries
	// every column the schema registry expects.
	VerifySchema bool `koanf:"verify_schema"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// DefaultConfig returns a Config with every optional value filled in.
// Required credentials are left empty on purpose so validation catches them.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8000",
			ReadTimeout:        30,
			WriteTimeout:       60,
			IdleTimeout:        120,
			ShutdownTimeout:    30,
			CORSAllowedOrigins: []string{"*"},
			RateLimit:          0,
			RateBurst:          0,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "prefer",
			Schema:          "public",
			Table:           "B2P_oct_2018",
			MaxConns:        10,
			MinConns:        0,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
			QueryTimeout:    30,
			VerifySchema:    true,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it
// on top of DefaultConfig, validates it and returns the result.
//
// Unlike a log-and-exit loader, every failure is returned to the caller so
// the CLI decides how to terminate (and tests can assert on it).
func LoadConfig() (*Config, error) {
	// "." is the key-path delimiter koanf uses to represent nesting.
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load %s env variables: %w", EnvPrefix, err)
	}

	err = k.Load(env.Provider(DatabaseEnvPrefix, ".", func(s string) string {
		return "database." + strings.ToLower(strings.TrimPrefix(s, DatabaseEnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load %s env variables: %w", DatabaseEnvPrefix, err)
	}

	// Unmarshal on top of the defaults: keys that are not present in the
	// environment leave the default value in place.
	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name is fixed; environment always follows primary.env so
	// logs and traces agree on where they came from.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// IsLocal reports whether the service runs on a developer machine.
// SQL statement tracing is only enabled there.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
