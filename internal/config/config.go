// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the MediChain assistant.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.medichain/config.toml
//   - ~/.medichain/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/medichain/assist-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete assistant configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Backend connection configuration
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Reveal (typewriter) animation configuration
	Reveal RevealConfig `toml:"reveal" json:"reveal"`

	// Viewport follow configuration
	Follow FollowConfig `toml:"follow" json:"follow"`

	// Session persistence configuration
	Session SessionConfig `toml:"session" json:"session"`

	// Answer cache configuration
	Cache CacheConfig `toml:"cache" json:"cache"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// BackendConfig contains assistant backend connection configuration.
type BackendConfig struct {
	// URL is the base URL of the assistant backend
	URL string `toml:"url" json:"url"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// Language is the answer language requested from the backend
	Language string `toml:"language" json:"language"`
	// EnhanceRetrieval enables the backend's retrieval enhancement pass
	EnhanceRetrieval bool `toml:"enhance_retrieval" json:"enhance_retrieval"`
	// RatePerMin limits outgoing questions per minute (0 = default)
	RatePerMin int `toml:"rate_per_min" json:"rate_per_min"`
}

// RevealConfig contains typewriter reveal configuration.
type RevealConfig struct {
	// Enabled controls whether answers are revealed character by character.
	// When false, answers appear in full immediately.
	Enabled bool `toml:"enabled" json:"enabled"`
	// TickMillis is the delay between revealed characters in milliseconds
	TickMillis int `toml:"tick_millis" json:"tick_millis"`
}

// FollowConfig contains viewport auto-follow configuration.
type FollowConfig struct {
	// ThresholdLines is how close to the bottom (in lines) the viewport must
	// be for auto-follow to resume
	ThresholdLines int `toml:"threshold_lines" json:"threshold_lines"`
}

// SessionConfig contains session persistence configuration.
type SessionConfig struct {
	// Enabled controls whether conversations are persisted to disk
	Enabled bool `toml:"enabled" json:"enabled"`
	// Dir is the session storage directory (empty = ~/.medichain/sessions)
	Dir string `toml:"dir" json:"dir"`
	// Encrypt enables at-rest encryption of session files.
	// Conversations may contain patient-identifying details.
	Encrypt bool `toml:"encrypt" json:"encrypt"`
}

// CacheConfig contains answer cache configuration.
type CacheConfig struct {
	// Enabled controls whether answers are cached locally
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the cache database path (empty = ~/.medichain/cache.db)
	Path string `toml:"path" json:"path"`
	// TTLHours is the time-to-live for cache entries in hours
	TTLHours int `toml:"ttl_hours" json:"ttl_hours"`
	// MaxEntries is the maximum number of cached answers
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowSources displays retrieval sources under assistant answers
	ShowSources bool `toml:"show_sources" json:"show_sources"`
	// ShowSuggestions displays follow-up question suggestions
	ShowSuggestions bool `toml:"show_suggestions" json:"show_suggestions"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			URL:              "http://127.0.0.1:8080",
			TimeoutSecs:      60,
			Language:         "vietnamese",
			EnhanceRetrieval: true,
			RatePerMin:       30,
		},

		Reveal: RevealConfig{
			Enabled:    true,
			TickMillis: 30,
		},

		Follow: FollowConfig{
			ThresholdLines: 2,
		},

		Session: SessionConfig{
			Enabled: true,
			Dir:     "",
			Encrypt: false,
		},

		Cache: CacheConfig{
			Enabled:    true,
			Path:       "",
			TTLHours:   24,
			MaxEntries: 5000,
		},

		UI: UIConfig{
			Theme:           "dark",
			ShowSources:     true,
			ShowSuggestions: true,
			CompactMode:     false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the assistant configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".medichain"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// SessionDir returns the session storage directory from config, with fallback
// to ~/.medichain/sessions.
func (c *Config) SessionDir() (string, error) {
	if c.Session.Dir != "" {
		return c.Session.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// CachePath returns the cache database path from config, with fallback to
// ~/.medichain/cache.db.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err = finish(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finish applies env overrides, defaults, and validation to a loaded config.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems; warn but continue.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# MediChain assistant configuration file")
	fmt.Fprintln(file, "# Generated by medichain-assist - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
// Writes atomically so a crash can never leave a truncated config behind.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend URL must parse
	if c.Backend.URL != "" {
		if _, err := url.Parse(c.Backend.URL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "backend.url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: "must be non-negative",
		})
	}

	if c.Backend.RatePerMin < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_per_min",
			Message: "must be non-negative",
		})
	}

	// Reveal tick must stay in a range that reads as animation. Below 5ms the
	// effect is invisible; above 500ms it reads as a stall.
	if c.Reveal.TickMillis != 0 && (c.Reveal.TickMillis < 5 || c.Reveal.TickMillis > 500) {
		errs = append(errs, ValidationError{
			Field:   "reveal.tick_millis",
			Message: fmt.Sprintf("must be 5-500, got %d", c.Reveal.TickMillis),
		})
	}

	if c.Follow.ThresholdLines < 0 {
		errs = append(errs, ValidationError{
			Field:   "follow.threshold_lines",
			Message: "must be non-negative",
		})
	}

	if c.Cache.TTLHours < 0 {
		errs = append(errs, ValidationError{
			Field:   "cache.ttl_hours",
			Message: "must be non-negative",
		})
	}
	if c.Cache.MaxEntries < 0 || c.Cache.MaxEntries > 100000 {
		errs = append(errs, ValidationError{
			Field:   "cache.max_entries",
			Message: fmt.Sprintf("must be 0-100000, got %d", c.Cache.MaxEntries),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Backend.URL == "" {
		c.Backend.URL = defaults.Backend.URL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.Backend.Language == "" {
		c.Backend.Language = defaults.Backend.Language
	}
	if c.Backend.RatePerMin == 0 {
		c.Backend.RatePerMin = defaults.Backend.RatePerMin
	}

	if c.Reveal.TickMillis == 0 {
		c.Reveal.TickMillis = defaults.Reveal.TickMillis
	}

	if c.Follow.ThresholdLines == 0 {
		c.Follow.ThresholdLines = defaults.Follow.ThresholdLines
	}

	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = defaults.Cache.TTLHours
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = defaults.Cache.MaxEntries
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - MEDICHAIN_BACKEND_URL: overrides backend.url
//   - MEDICHAIN_LANGUAGE: overrides backend.language
//   - MEDICHAIN_NO_REVEAL: set to "1" or "true" to disable the reveal animation
//   - MEDICHAIN_NO_CACHE: set to "1" or "true" to disable the answer cache
//   - MEDICHAIN_SESSION_DIR: overrides session.dir
//   - MEDICHAIN_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("MEDICHAIN_BACKEND_URL"); u != "" {
		c.Backend.URL = u
	}

	if lang := os.Getenv("MEDICHAIN_LANGUAGE"); lang != "" {
		c.Backend.Language = lang
	}

	if noReveal := os.Getenv("MEDICHAIN_NO_REVEAL"); noReveal != "" {
		if noReveal == "1" || strings.ToLower(noReveal) == "true" {
			c.Reveal.Enabled = false
		}
	}

	if noCache := os.Getenv("MEDICHAIN_NO_CACHE"); noCache != "" {
		if noCache == "1" || strings.ToLower(noCache) == "true" {
			c.Cache.Enabled = false
		}
	}

	if dir := os.Getenv("MEDICHAIN_SESSION_DIR"); dir != "" {
		c.Session.Dir = dir
	}

	if theme := os.Getenv("MEDICHAIN_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
