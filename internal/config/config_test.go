package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:              "local",
		LogLevel:                 "info",
		DatabaseURL:              "postgres://localhost/newsfinder",
		DBMinConns:               1,
		DBMaxConns:               8,
		DBConnectAttempts:        4,
		DBRetryDelay:             5 * time.Second,
		SimilarityInterval:       24 * time.Hour,
		SimilarityPoll:           3 * time.Second,
		SimilarityTitleThreshold: 0.65,
		HTTPAddr:                 "0.0.0.0:8090",
		RetentionMaxAge:          48 * time.Hour,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "missing database url", mutate: func(c *Config) { c.DatabaseURL = " " }, want: "DATABASE_URL"},
		{name: "min above max", mutate: func(c *Config) { c.DBMinConns = 9 }, want: "NF_DB_MIN_CONNS"},
		{name: "zero attempts", mutate: func(c *Config) { c.DBConnectAttempts = 0 }, want: "DB_CONNECT_ATTEMPTS"},
		{name: "zero interval", mutate: func(c *Config) { c.SimilarityInterval = 0 }, want: "SIMILARITY_INTERVAL"},
		{name: "poll above interval", mutate: func(c *Config) { c.SimilarityPoll = 48 * time.Hour }, want: "SIMILARITY_POLL"},
		{name: "threshold of one", mutate: func(c *Config) { c.SimilarityTitleThreshold = 1 }, want: "SIMILARITY_TITLE_THRESHOLD"},
		{name: "zero retention", mutate: func(c *Config) { c.RetentionMaxAge = 0 }, want: "RETENTION_MAX_AGE"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
