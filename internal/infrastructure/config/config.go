package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionSecret signs every session token. It is required: the process
	// must not serve traffic without it.
	SessionSecret string        `env:"SESSION_SECRET, required"`
	SessionTTL    time.Duration `env:"SESSION_TTL,    default=168h"`
	CookieName    string        `env:"SESSION_COOKIE, default=cho_session"`
	CookieSecure  bool          `env:"COOKIE_SECURE,  default=true"`

	// FacilityTimezone is the local calendar used for the one-visit-per-day
	// rule (one city health office, one timezone).
	FacilityTimezone string `env:"FACILITY_TZ, default=UTC"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clinic_workflow"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
// It panics when a required value is missing so startup fails fast.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// FacilityLocation resolves the configured facility timezone.
func (c *Config) FacilityLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.FacilityTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid FACILITY_TZ %q: %w", c.FacilityTimezone, err)
	}
	return loc, nil
}
