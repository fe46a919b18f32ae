package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "frostadvisor" {
		t.Errorf("expected Name=frostadvisor, got %s", cfg.Name)
	}
	if cfg.AI.Mode != AIModeOn {
		t.Errorf("expected AI mode on, got %s", cfg.AI.Mode)
	}
	if cfg.AI.DailyLimitFree != 10 {
		t.Errorf("expected DailyLimitFree=10, got %d", cfg.AI.DailyLimitFree)
	}
	if cfg.Providers.Anthropic.BaseURL == "" {
		t.Error("expected anthropic base URL default")
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.AI.Mode = AIModeUnlimited
	cfg.AI.CooldownSeconds = 15
	cfg.Providers.Anthropic.APIKey = "sk-test"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.AI.Mode != AIModeUnlimited {
		t.Errorf("expected mode unlimited, got %s", loaded.AI.Mode)
	}
	if loaded.AI.CooldownSeconds != 15 {
		t.Errorf("expected cooldown 15, got %d", loaded.AI.CooldownSeconds)
	}
	if loaded.Providers.Anthropic.APIKey != "sk-test" {
		t.Errorf("expected persisted API key, got %q", loaded.Providers.Anthropic.APIKey)
	}
}

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if cfg.AI.DailyLimitAdmin != 30 {
		t.Errorf("expected default admin limit 30, got %d", cfg.AI.DailyLimitAdmin)
	}
}

func TestConfig_EnvOverride(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-env")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("providers:\n  anthropic:\n    api_key: sk-file\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Providers.Anthropic.APIKey != "sk-env" {
		t.Errorf("expected env override to win, got %q", cfg.Providers.Anthropic.APIKey)
	}
}

func TestStaticSettings(t *testing.T) {
	s := StaticSettings{Value: AISettings{Mode: AIModeOff}}
	if s.Settings().Mode != AIModeOff {
		t.Error("StaticSettings should return the fixed value")
	}
}
