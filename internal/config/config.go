package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"

	// PolicyPublic leaves goals and settings open to anonymous callers.
	PolicyPublic = "public"
	// PolicyBearer puts goals and settings behind the bearer middleware.
	PolicyBearer = "bearer"
)

var ErrMissingEnv = errors.New("missing required env")

type Config struct {
	ServerPort string
	LogLevel   string

	JWTSecret []byte

	StoreDriver string
	DatabaseURL string
	MongoURI    string
	MongoDBName string

	StaticDir       string
	PreferencesAuth string

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("notice: .env file not found, using system environment variables", "error", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		ServerPort:      EnvDefault("SERVER_PORT", "8000"),
		LogLevel:        EnvDefault("LOG_LEVEL", "info"),
		JWTSecret:       []byte(os.Getenv("JWT_SECRET")),
		StoreDriver:     strings.ToLower(EnvDefault("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDBName:     os.Getenv("MONGO_DB_NAME"),
		StaticDir:       EnvDefault("STATIC_DIR", "static"),
		PreferencesAuth: strings.ToLower(EnvDefault("PREFERENCES_AUTH", PolicyPublic)),
		KafkaBrokers:    CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      EnvDefault("KAFKA_TOPIC", "tracker_events"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("%w JWT_SECRET", ErrMissingEnv)
	}

	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w DATABASE_URL", ErrMissingEnv)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%w MONGO_URI", ErrMissingEnv)
		}
		if c.MongoDBName == "" {
			return fmt.Errorf("%w MONGO_DB_NAME", ErrMissingEnv)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.PreferencesAuth {
	case PolicyPublic, PolicyBearer:
	default:
		return fmt.Errorf("unsupported PREFERENCES_AUTH %q", c.PreferencesAuth)
	}

	return nil
}

func (c *Config) ProtectPreferences() bool {
	return c.PreferencesAuth == PolicyBearer
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
