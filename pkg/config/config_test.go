package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirWithConfig writes yamlContent as config.yaml in a temp directory
// and makes it the working directory for the test, so Load() picks it up.
func chdirWithConfig(t *testing.T, yamlContent string) {
	t.Helper()
	tmpDir := t.TempDir()
	if yamlContent != "" {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	chdirWithConfig(t, `
port: "3443"
env: "test"
datastore:
  type: "duckdb"
  path: "data/test.db"
`)

	// Set env vars to override YAML values
	t.Setenv("PORT", "4443")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify env vars override YAML
	if cfg.Port != "4443" {
		t.Errorf("expected Port=4443 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}

	// Version comes from the Load parameter, never from config
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}

	// YAML values without env overrides survive
	if cfg.Datastore.Path != "data/test.db" {
		t.Errorf("expected Datastore.Path=data/test.db (from yaml), got %s", cfg.Datastore.Path)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	chdirWithConfig(t, "")

	cfg, err := Load("v1")
	if err != nil {
		t.Fatalf("Load() without config.yaml failed: %v", err)
	}

	// Falls back to env defaults
	if cfg.Port != "8460" {
		t.Errorf("expected default port 8460, got %s", cfg.Port)
	}
	if cfg.Env != "local" {
		t.Errorf("expected default env local, got %s", cfg.Env)
	}
}

func TestLoad_ValidationDefaults(t *testing.T) {
	chdirWithConfig(t, "")

	cfg, err := Load("v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Validation.ClarityThreshold != 0.6 {
		t.Errorf("expected ClarityThreshold=0.6 (default), got %v", cfg.Validation.ClarityThreshold)
	}
	if cfg.Validation.MaxRegenerationAttempts != 2 {
		t.Errorf("expected MaxRegenerationAttempts=2 (default), got %d", cfg.Validation.MaxRegenerationAttempts)
	}
	if cfg.Validation.MediumBoundary != 3 {
		t.Errorf("expected MediumBoundary=3 (default), got %d", cfg.Validation.MediumBoundary)
	}
	if cfg.Validation.ComplexBoundary != 6 {
		t.Errorf("expected ComplexBoundary=6 (default), got %d", cfg.Validation.ComplexBoundary)
	}
	if cfg.Datastore.SelectRowLimit != 100 {
		t.Errorf("expected SelectRowLimit=100 (default), got %d", cfg.Datastore.SelectRowLimit)
	}
}

func TestLoad_ValidationFromYAML(t *testing.T) {
	chdirWithConfig(t, `
validation:
  clarity_threshold: 0.75
  max_regeneration_attempts: 3
  medium_boundary: 2
  complex_boundary: 8
`)

	cfg, err := Load("v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Validation.ClarityThreshold != 0.75 {
		t.Errorf("expected ClarityThreshold=0.75 (from yaml), got %v", cfg.Validation.ClarityThreshold)
	}
	if cfg.Validation.MaxRegenerationAttempts != 3 {
		t.Errorf("expected MaxRegenerationAttempts=3 (from yaml), got %d", cfg.Validation.MaxRegenerationAttempts)
	}
	if cfg.Validation.MediumBoundary != 2 {
		t.Errorf("expected MediumBoundary=2 (from yaml), got %d", cfg.Validation.MediumBoundary)
	}
	if cfg.Validation.ComplexBoundary != 8 {
		t.Errorf("expected ComplexBoundary=8 (from yaml), got %d", cfg.Validation.ComplexBoundary)
	}
}

func TestLoad_ValidationFromEnv(t *testing.T) {
	chdirWithConfig(t, "")

	t.Setenv("CLARITY_THRESHOLD", "0.8")
	t.Setenv("MAX_REGENERATION_ATTEMPTS", "1")

	cfg, err := Load("v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Validation.ClarityThreshold != 0.8 {
		t.Errorf("expected ClarityThreshold=0.8 (from env), got %v", cfg.Validation.ClarityThreshold)
	}
	if cfg.Validation.MaxRegenerationAttempts != 1 {
		t.Errorf("expected MaxRegenerationAttempts=1 (from env), got %d", cfg.Validation.MaxRegenerationAttempts)
	}
}

func TestLoad_InvalidClarityThreshold(t *testing.T) {
	chdirWithConfig(t, "")
	t.Setenv("CLARITY_THRESHOLD", "1.5")

	if _, err := Load("v1"); err == nil {
		t.Fatal("expected error for clarity_threshold outside [0,1]")
	}
}

func TestLoad_InvalidComplexityBoundaries(t *testing.T) {
	chdirWithConfig(t, `
validation:
  medium_boundary: 6
  complex_boundary: 3
`)

	if _, err := Load("v1"); err == nil {
		t.Fatal("expected error when medium_boundary >= complex_boundary")
	}
}

func TestLoad_LLMDefaults(t *testing.T) {
	chdirWithConfig(t, "")

	cfg, err := Load("v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected default provider openai, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Errorf("expected default temperature 0.1, got %v", cfg.LLM.Temperature)
	}
}

func TestLoad_SecretsOnlyFromEnv(t *testing.T) {
	// API keys in YAML must be ignored; the yaml tag on the field is "-".
	chdirWithConfig(t, `
llm:
  api_key: "from-yaml"
`)

	t.Setenv("LLM_API_KEY", "from-env")

	cfg, err := Load("v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LLM.APIKey != "from-env" {
		t.Errorf("expected APIKey from env, got %q", cfg.LLM.APIKey)
	}
}
