package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Generation.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic', got %q", cfg.Generation.Provider)
	}
	if cfg.Search.Limit != 10 {
		t.Errorf("expected search limit 10, got %d", cfg.Search.Limit)
	}
	if cfg.Daily.Count != 3 {
		t.Errorf("expected daily count 3, got %d", cfg.Daily.Count)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
generation:
  provider: ollama
  ollama_model: llama3
search:
  domain_cap: 2
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Generation.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", cfg.Generation.Provider)
	}
	if cfg.Search.DomainCap != 2 {
		t.Errorf("expected domain cap 2, got %d", cfg.Search.DomainCap)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Generation.TimeoutSeconds != 120 {
		t.Errorf("expected default timeout 120, got %d", cfg.Generation.TimeoutSeconds)
	}
	if cfg.Search.PhraseBonus != 5.0 {
		t.Errorf("expected default phrase bonus 5.0, got %v", cfg.Search.PhraseBonus)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Daily.CooldownDays != 3 {
		t.Errorf("expected cooldown 3, got %d", cfg.Daily.CooldownDays)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Classifier.MaxQuality != 11 {
		t.Errorf("expected max quality 11, got %d", cfg.Classifier.MaxQuality)
	}
	if cfg.Generation.MaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.Generation.MaxRetries)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
