package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for querygate-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (API keys, database passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8460"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Validation pipeline tuning. These are empirical values; keep them in
	// config rather than constants so boundary behavior can be tuned and
	// tested without a rebuild.
	Validation ValidationConfig `yaml:"validation"`

	// LLM generation collaborator
	LLM LLMConfig `yaml:"llm"`

	// Execution engine
	Datastore DatastoreConfig `yaml:"datastore"`
}

// ValidationConfig holds the pipeline threshold constants.
type ValidationConfig struct {
	// ClarityThreshold is the minimum intent clarity score; requests
	// scoring below it are routed to clarification before SQL generation.
	ClarityThreshold float64 `yaml:"clarity_threshold" env:"CLARITY_THRESHOLD" env-default:"0.6"`

	// MaxRegenerationAttempts bounds the structural-failure regeneration loop.
	MaxRegenerationAttempts int `yaml:"max_regeneration_attempts" env:"MAX_REGENERATION_ATTEMPTS" env-default:"2"`

	// Complexity score boundaries: scores >= ComplexBoundary classify as
	// complex, scores >= MediumBoundary as medium, everything else simple.
	MediumBoundary  int `yaml:"medium_boundary" env:"COMPLEXITY_MEDIUM_BOUNDARY" env-default:"3"`
	ComplexBoundary int `yaml:"complex_boundary" env:"COMPLEXITY_COMPLEX_BOUNDARY" env-default:"6"`

	// CheckTimeoutSeconds bounds a single validation check in the
	// concurrent strategy.
	CheckTimeoutSeconds int `yaml:"check_timeout_seconds" env:"CHECK_TIMEOUT_SECONDS" env-default:"30"`
}

// LLMConfig holds settings for the SQL generation collaborator.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML

	EmbeddingModel string  `yaml:"embedding_model" env:"LLM_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	Temperature    float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.1"`
}

// DatastoreConfig holds execution engine settings.
type DatastoreConfig struct {
	// Type selects the adapter: "duckdb" or "postgres".
	Type string `yaml:"type" env:"DATASTORE_TYPE" env-default:"duckdb"`

	// Path is the DuckDB database file (duckdb only).
	Path string `yaml:"path" env:"DATASTORE_PATH" env-default:"data/data.db"`

	// Postgres connection settings (postgres only).
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"querygate"`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:"querygate"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`

	// SelectRowLimit caps un-limited SELECT results at execution time.
	SelectRowLimit int `yaml:"select_row_limit" env:"SELECT_ROW_LIMIT" env-default:"100"`

	// SchemaSnapshotPath, when set, loads the schema catalog from a YAML
	// snapshot instead of introspecting the datastore.
	SchemaSnapshotPath string `yaml:"schema_snapshot_path" env:"SCHEMA_SNAPSHOT_PATH" env-default:""`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on
// the returned Config. Falls back to env-only when config.yaml is absent.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validation.validate(); err != nil {
		return nil, fmt.Errorf("invalid validation configuration: %w", err)
	}

	return cfg, nil
}

func (v *ValidationConfig) validate() error {
	if v.ClarityThreshold < 0 || v.ClarityThreshold > 1 {
		return fmt.Errorf("clarity_threshold must be in [0,1], got %v", v.ClarityThreshold)
	}
	if v.MaxRegenerationAttempts < 0 {
		return fmt.Errorf("max_regeneration_attempts must be >= 0, got %d", v.MaxRegenerationAttempts)
	}
	if v.MediumBoundary >= v.ComplexBoundary {
		return fmt.Errorf("medium_boundary (%d) must be below complex_boundary (%d)", v.MediumBoundary, v.ComplexBoundary)
	}
	return nil
}
