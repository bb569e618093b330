// Package config provides configuration management for the VME analyzer.
//
// Environment variables such as DATABASE_URL or MATRIX_STORE override an
// optional config.yaml, which overrides the built-in defaults.
//
// Import Path: vme-analyzer.io/analyzer/internal/config
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Matrix store kinds.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	River      RiverConfig      `mapstructure:"river"`
	Security   SecurityConfig   `mapstructure:"security"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Matrix     MatrixConfig     `mapstructure:"matrix"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// CORS for the report frontend. An empty AllowedOrigins falls back to
	// the local development origins.
	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AllowCredentials      bool     `mapstructure:"allow_credentials"`
	UnsafeAllowAllOrigins bool     `mapstructure:"unsafe_allow_all_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings.
// One pool is shared by the matrix store and River.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`

	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
// Priority: DATABASE_URL > constructed from individual fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode,
	)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// RiverConfig contains River Queue settings.
type RiverConfig struct {
	MaxWorkers                  int           `mapstructure:"max_workers"`
	CompletedJobRetentionPeriod time.Duration `mapstructure:"completed_job_retention_period"`
}

// SecurityConfig contains admin API token settings.
// The signing key is generated on first boot when missing; tokens then do
// not survive a restart.
type SecurityConfig struct {
	JWTSigningKey string        `mapstructure:"jwt_signing_key"`
	JWTIssuer     string        `mapstructure:"jwt_issuer"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	// Previous signing keys still accepted during rotation.
	JWTVerificationKeys []string `mapstructure:"jwt_verification_keys"`
}

// WorkerConfig contains worker pool settings.
type WorkerConfig struct {
	GeneralPoolSize  int `mapstructure:"general_pool_size"`
	ClassifyPoolSize int `mapstructure:"classify_pool_size"`
	// Batches with at least this many rows are classified on the pool.
	ParallelThreshold int `mapstructure:"parallel_threshold"`
}

// ClassifierConfig contains classification settings.
type ClassifierConfig struct {
	// Percent; matches scoring below it are low confidence.
	FuzzyMatchThreshold float64 `mapstructure:"fuzzy_match_threshold"`
	MaxBatchRows        int     `mapstructure:"max_batch_rows"`
}

// MatrixConfig selects and tunes the compatibility matrix store.
type MatrixConfig struct {
	Store string `mapstructure:"store"` // postgres or memory
	// Optional YAML seed replacing the built-in one.
	SeedFile        string        `mapstructure:"seed_file"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// searchPaths are tried in order for config.yaml.
var searchPaths = []string{".", "./config", "/etc/vme-analyzer"}

// Load reads config.yaml when present, then environment variables, over
// the defaults. Environment names carry no prefix and map nested keys with
// underscores: classifier.fuzzy_match_threshold is
// CLASSIFIER_FUZZY_MATCH_THRESHOLD.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.ensureSecrets(); err != nil {
		return nil, fmt.Errorf("ensure secrets: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(len(c.Security.JWTSigningKey) >= 32, "security.jwt_signing_key must be at least 32 characters")
	check(c.Security.TokenTTL > 0, "security.token_ttl must be positive")
	t := c.Classifier.FuzzyMatchThreshold
	check(t >= 0 && t <= 100, "classifier.fuzzy_match_threshold must be within [0,100], got %v", t)
	check(c.Classifier.MaxBatchRows > 0, "classifier.max_batch_rows must be positive")

	switch c.Matrix.Store {
	case StoreMemory:
	case StorePostgres:
		check(c.Matrix.RefreshInterval > 0, "matrix.refresh_interval must be positive")
	default:
		check(false, "matrix.store must be %q or %q, got %q", StorePostgres, StoreMemory, c.Matrix.Store)
	}
	return errors.Join(errs...)
}

// ensureSecrets fills a random signing key when none is configured.
func (c *Config) ensureSecrets() error {
	if c.Security.JWTSigningKey != "" {
		return nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generate jwt signing key: %w", err)
	}
	c.Security.JWTSigningKey = hex.EncodeToString(b)
	// The global logger is not built yet.
	if l, err := zap.NewProduction(); err == nil {
		l.Warn("generated a random jwt_signing_key; admin tokens will not survive a restart, set SECURITY_JWT_SIGNING_KEY to persist one")
		_ = l.Sync()
	}
	return nil
}

var defaults = map[string]any{
	"server.port":                     8080,
	"server.read_timeout":             "30s",
	"server.write_timeout":            "60s",
	"server.shutdown_timeout":         "30s",
	"server.allowed_origins":          []string{},
	"server.allow_credentials":        true,
	"server.unsafe_allow_all_origins": false,

	"database.url":                "",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "vme",
	"database.password":           "",
	"database.database":           "vme_analyzer",
	"database.sslmode":            "disable",
	"database.max_conns":          20,
	"database.min_conns":          2,
	"database.max_conn_lifetime":  "1h",
	"database.max_conn_idle_time": "10m",
	"database.auto_migrate":       true,

	"log.level":  "info",
	"log.format": "json",

	"river.max_workers":                    5,
	"river.completed_job_retention_period": "24h",

	"security.jwt_issuer":            "vme-analyzer",
	"security.token_ttl":             "8h",
	"security.jwt_verification_keys": []string{},

	"worker.general_pool_size":  16,
	"worker.classify_pool_size": 32,
	"worker.parallel_threshold": 256,

	"classifier.fuzzy_match_threshold": 70.0,
	"classifier.max_batch_rows":        50000,

	"matrix.store":            StorePostgres,
	"matrix.seed_file":        "",
	"matrix.refresh_interval": "5m",
}
