package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
llm:
  base_url: https://api.example.com/v1
  api_key: sk-test
  model: test-model
search:
  provider: googlecse
  googlecse:
    api_key: cse-key
    engine_id: cse-id
research:
  target_sources: 4
  excluded_hosts:
    - instagram.com
trends:
  window_days: 14
db:
  host: localhost
  port: 5432
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LLM.Model != "test-model" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Search.Provider != "googlecse" || cfg.Search.GoogleCSE.EngineID != "cse-id" {
		t.Errorf("search config = %+v", cfg.Search)
	}
	if cfg.Research.TargetSources != 4 {
		t.Errorf("Research.TargetSources = %d, want 4", cfg.Research.TargetSources)
	}
	if len(cfg.Research.ExcludedHosts) != 1 || cfg.Research.ExcludedHosts[0] != "instagram.com" {
		t.Errorf("Research.ExcludedHosts = %v", cfg.Research.ExcludedHosts)
	}
	if cfg.Trends.WindowDays != 14 {
		t.Errorf("Trends.WindowDays = %d, want 14", cfg.Trends.WindowDays)
	}
	if cfg.DB.Port != 5432 {
		t.Errorf("DB.Port = %d", cfg.DB.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
