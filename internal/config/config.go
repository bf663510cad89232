package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL       string        `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns        int32         `envconfig:"NF_DB_MIN_CONNS" default:"1"`
	DBMaxConns        int32         `envconfig:"NF_DB_MAX_CONNS" default:"8"`
	DBConnectAttempts int           `envconfig:"DB_CONNECT_ATTEMPTS" default:"4"`
	DBRetryDelay      time.Duration `envconfig:"DB_RETRY_DELAY" default:"5s"`

	SimilarityInterval       time.Duration `envconfig:"SIMILARITY_INTERVAL" default:"24h"`
	SimilarityPoll           time.Duration `envconfig:"SIMILARITY_POLL" default:"3s"`
	SimilarityTitleThreshold float64       `envconfig:"SIMILARITY_TITLE_THRESHOLD" default:"0.65"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:"0.0.0.0:8090"`
	RetentionMaxAge time.Duration `envconfig:"RETENTION_MAX_AGE" default:"48h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("NF_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("NF_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("NF_DB_MIN_CONNS (%d) cannot exceed NF_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.DBConnectAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be >= 1")
	}
	if c.DBRetryDelay < 0 {
		return fmt.Errorf("DB_RETRY_DELAY must be >= 0")
	}
	if c.SimilarityInterval <= 0 {
		return fmt.Errorf("SIMILARITY_INTERVAL must be > 0")
	}
	if c.SimilarityPoll <= 0 {
		return fmt.Errorf("SIMILARITY_POLL must be > 0")
	}
	if c.SimilarityPoll > c.SimilarityInterval {
		return fmt.Errorf("SIMILARITY_POLL (%s) cannot exceed SIMILARITY_INTERVAL (%s)", c.SimilarityPoll, c.SimilarityInterval)
	}
	if c.SimilarityTitleThreshold <= 0 || c.SimilarityTitleThreshold >= 1 {
		return fmt.Errorf("SIMILARITY_TITLE_THRESHOLD must be in (0, 1)")
	}
	if c.RetentionMaxAge <= 0 {
		return fmt.Errorf("RETENTION_MAX_AGE must be > 0")
	}
	return nil
}
