package scoreauth

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "empty base url falls back to default",
			mutate: func(c *Config) {
				c.API.BaseURL = ""
			},
			wantValid: true,
		},
		{
			name: "relative base url invalid",
			mutate: func(c *Config) {
				c.API.BaseURL = "/v1"
			},
			wantValid: false,
		},
		{
			name: "non-http scheme invalid",
			mutate: func(c *Config) {
				c.API.BaseURL = "ftp://scoring.example/v1"
			},
			wantValid: false,
		},
		{
			name: "negative timeout invalid",
			mutate: func(c *Config) {
				c.API.Timeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "negative storage ttl invalid",
			mutate: func(c *Config) {
				c.Storage.TTL = -time.Minute
			},
			wantValid: false,
		},
		{
			name: "key prefix with whitespace invalid",
			mutate: func(c *Config) {
				c.Storage.KeyPrefix = "@sport ae:"
			},
			wantValid: false,
		},
		{
			name: "leeway too large invalid",
			mutate: func(c *Config) {
				c.Session.TokenLeeway = 11 * time.Minute
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "histograms without metrics invalid",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = -time.Second

	if _, err := New().WithConfig(cfg).WithClient(&stubClient{}).Build(); err == nil {
		t.Fatal("expected Build to reject invalid config")
	}
}
