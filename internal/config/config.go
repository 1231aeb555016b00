package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Binder"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host         string        `envconfig:"DB_HOST" default:"localhost"`
		Port         int           `envconfig:"DB_PORT" default:"5432"`
		User         string        `envconfig:"DB_USER" default:"postgres"`
		Password     string        `envconfig:"DB_PASSWORD" default:""`
		Name         string        `envconfig:"DB_NAME" default:"binder"`
		MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnLifetime time.Duration `envconfig:"DB_CONN_LIFETIME" default:"5m"`
		Migrate      bool          `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"SERVER_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Auth struct {
		Secret string `envconfig:"AUTH_SECRET" default:""`
		Issuer string `envconfig:"AUTH_ISSUER" default:"binder"`
	}

	Redis struct {
		Addr       string        `envconfig:"REDIS_ADDR" default:""`
		Password   string        `envconfig:"REDIS_PASSWORD" default:""`
		DB         int           `envconfig:"REDIS_DB" default:"0"`
		ProfileTTL time.Duration `envconfig:"REDIS_PROFILE_TTL" default:"10m"`
	}

	Events struct {
		Brokers []string `envconfig:"KAFKA_BROKERS" default:""`
		Topic   string   `envconfig:"KAFKA_TOPIC" default:"binder.transactions"`
	}

	Import struct {
		Workers       int   `envconfig:"IMPORT_WORKERS" default:"4"`
		MaxUploadSize int64 `envconfig:"IMPORT_MAX_UPLOAD_SIZE" default:"10485760"`
	}

	Console struct {
		UserID string `envconfig:"BINDER_USER_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// KafkaEnabled reports whether at least one non-empty broker address is configured.
func (c *Config) KafkaEnabled() bool {
	for _, b := range c.Events.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}

	return false
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Import.Workers < 1 {
		cfg.Import.Workers = 1
	}

	return &cfg, nil
}
