package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Security: SecurityConfig{
			JWTSigningKey: strings.Repeat("k", 32),
			TokenTTL:      time.Hour,
		},
		Classifier: ClassifierConfig{FuzzyMatchThreshold: 70, MaxBatchRows: 100},
		Matrix:     MatrixConfig{Store: StorePostgres, RefreshInterval: time.Minute},
	}
}

func TestEnsureSecrets_GeneratesMissingValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	if err := cfg.ensureSecrets(); err != nil {
		t.Fatalf("ensureSecrets() error = %v", err)
	}

	// 32 random bytes hex-encoded -> 64 chars.
	if len(cfg.Security.JWTSigningKey) != 64 {
		t.Fatalf("signing key length = %d, want 64", len(cfg.Security.JWTSigningKey))
	}
}

func TestEnsureSecrets_PreservesProvidedValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{Security: SecurityConfig{JWTSigningKey: "keep-existing-signing-key"}}
	if err := cfg.ensureSecrets(); err != nil {
		t.Fatalf("ensureSecrets() error = %v", err)
	}

	if got := cfg.Security.JWTSigningKey; got != "keep-existing-signing-key" {
		t.Fatalf("signing key changed unexpectedly: %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"short signing key", func(c *Config) { c.Security.JWTSigningKey = "short-secret" }, true},
		{"zero token ttl", func(c *Config) { c.Security.TokenTTL = 0 }, true},
		{"negative threshold", func(c *Config) { c.Classifier.FuzzyMatchThreshold = -1 }, true},
		{"threshold at bound", func(c *Config) { c.Classifier.FuzzyMatchThreshold = 100 }, false},
		{"zero batch limit", func(c *Config) { c.Classifier.MaxBatchRows = 0 }, true},
		{"unknown store", func(c *Config) { c.Matrix.Store = "redis" }, true},
		{"memory store ignores refresh", func(c *Config) {
			c.Matrix.Store = StoreMemory
			c.Matrix.RefreshInterval = 0
		}, false},
		{"postgres needs refresh", func(c *Config) { c.Matrix.RefreshInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Security.TokenTTL = 0
	cfg.Classifier.MaxBatchRows = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	for _, want := range []string{"security.token_ttl", "classifier.max_batch_rows"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}
