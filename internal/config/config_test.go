// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Backend.URL != "http://127.0.0.1:8080" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.Language != "vietnamese" {
		t.Errorf("Backend.Language = %q", cfg.Backend.Language)
	}
	if !cfg.Reveal.Enabled {
		t.Error("reveal should be enabled by default")
	}
	if cfg.Reveal.TickMillis != 30 {
		t.Errorf("Reveal.TickMillis = %d, want 30", cfg.Reveal.TickMillis)
	}
	if cfg.Follow.ThresholdLines != 2 {
		t.Errorf("Follow.ThresholdLines = %d, want 2", cfg.Follow.ThresholdLines)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Backend.URL == "" {
		t.Error("Backend.URL not filled")
	}
	if cfg.Backend.TimeoutSecs == 0 {
		t.Error("Backend.TimeoutSecs not filled")
	}
	if cfg.Reveal.TickMillis == 0 {
		t.Error("Reveal.TickMillis not filled")
	}
	if cfg.UI.Theme == "" {
		t.Error("UI.Theme not filled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSecs = -1 }},
		{"reveal tick too fast", func(c *Config) { c.Reveal.TickMillis = 1 }},
		{"reveal tick too slow", func(c *Config) { c.Reveal.TickMillis = 1000 }},
		{"negative threshold", func(c *Config) { c.Follow.ThresholdLines = -1 }},
		{"cache entries too large", func(c *Config) { c.Cache.MaxEntries = 200000 }},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MEDICHAIN_BACKEND_URL", "http://10.0.0.5:9000")
	t.Setenv("MEDICHAIN_NO_REVEAL", "1")
	t.Setenv("MEDICHAIN_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.URL != "http://10.0.0.5:9000" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Reveal.Enabled {
		t.Error("reveal should be disabled via MEDICHAIN_NO_REVEAL")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}
}

func TestSaveAndLoadTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Backend.URL = "http://backend.hospital.local:8080"
	cfg.Reveal.TickMillis = 45
	cfg.Follow.ThresholdLines = 3

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file perm = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Backend.URL != cfg.Backend.URL {
		t.Errorf("Backend.URL = %q, want %q", loaded.Backend.URL, cfg.Backend.URL)
	}
	if loaded.Reveal.TickMillis != 45 {
		t.Errorf("Reveal.TickMillis = %d, want 45", loaded.Reveal.TickMillis)
	}
	if loaded.Follow.ThresholdLines != 3 {
		t.Errorf("Follow.ThresholdLines = %d, want 3", loaded.Follow.ThresholdLines)
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	// SaveJSON calls EnsureConfigDir, which touches the real home dir, so
	// write through a temp HOME.
	t.Setenv("HOME", t.TempDir())

	path, err := ConfigPathJSON()
	if err != nil {
		t.Fatalf("ConfigPathJSON: %v", err)
	}

	cfg := Default()
	cfg.Backend.Language = "english"
	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Backend.Language != "english" {
		t.Errorf("Backend.Language = %q, want english", loaded.Backend.Language)
	}
}

func TestLoadFromPathPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	// Only backend section present; everything else should default.
	content := "[backend]\nurl = \"http://127.0.0.1:8080\"\ntimeout_secs = 30\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("Backend.TimeoutSecs = %d, want 30", cfg.Backend.TimeoutSecs)
	}
	if cfg.Reveal.TickMillis != 30 {
		t.Errorf("Reveal.TickMillis = %d, want default 30", cfg.Reveal.TickMillis)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q, want default dark", cfg.UI.Theme)
	}
}
