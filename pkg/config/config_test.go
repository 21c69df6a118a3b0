package config

import (
	"testing"
	"time"
)

// helper to build a minimal valid config that can be tweaked in tests.
func validBaseConfig() *Config {
	cfg := DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.RequestsPerSecond = 10
	cfg.RateLimiting.Burst = 20
	return cfg
}

func TestValidate_RateLimitingDisabled_AllowsZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 0
	cfg.RateLimiting.Burst = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config to be valid when rate limiting disabled, got error: %v", err)
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name: "rate limiting rps must be > 0",
			mutate: func(c *Config) {
				c.RateLimiting.RequestsPerSecond = 0
			},
		},
		{
			name: "rate limiting burst must be > 0",
			mutate: func(c *Config) {
				c.RateLimiting.Burst = 0
			},
		},
		{
			name: "server address must not be empty",
			mutate: func(c *Config) {
				c.Server.Address = ""
			},
		},
		{
			name: "directory operation timeout must be > 0",
			mutate: func(c *Config) {
				c.Directory.OperationTimeout = 0
			},
		},
		{
			name: "feed buffer size must be > 0",
			mutate: func(c *Config) {
				c.Directory.FeedBufferSize = 0
			},
		},
		{
			name: "avatar size must be > 0",
			mutate: func(c *Config) {
				c.Avatar.Size = 0
			},
		},
		{
			name: "jpeg quality must be in range",
			mutate: func(c *Config) {
				c.Avatar.JPEGQuality = 101
			},
		},
		{
			name: "max upload bytes must be > 0",
			mutate: func(c *Config) {
				c.Avatar.MaxUploadBytes = 0
			},
		},
		{
			name: "jwt secret must not be empty",
			mutate: func(c *Config) {
				c.Auth.JWTSecret = ""
			},
		},
		{
			name: "token ttl must be > 0",
			mutate: func(c *Config) {
				c.Auth.TokenTTL = 0
			},
		},
		{
			name: "redis address required when enabled",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Address = ""
			},
		},
		{
			name: "tracing sample rate must be in 0..1",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.SampleRate = 1.5
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validBaseConfig()
			// ensure timing fields are valid to isolate the mutation
			cfg.Server.ReadTimeout = time.Second
			cfg.Server.WriteTimeout = time.Second
			tc.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for case %q, got nil", tc.name)
			}
		})
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got error: %v", err)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("does/not/exist.yaml")
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address, got %q", cfg.Server.Address)
	}
	if !cfg.Directory.DedupByID {
		t.Fatal("expected dedup_by_id to default to true")
	}
}
