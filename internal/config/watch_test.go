// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeWatchedConfig(t *testing.T, path string, url string) {
	t.Helper()
	cfg := Default()
	cfg.Backend.URL = url
	require.NoError(t, SaveTOML(cfg, path))
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeWatchedConfig(t, path, "http://127.0.0.1:8080")

	reloaded := make(chan *Config, 4)
	w, err := NewWatcherForPath(path, func(cfg *Config) {
		reloaded <- cfg
	}, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	writeWatchedConfig(t, path, "http://127.0.0.1:9999")

	select {
	case cfg := <-reloaded:
		require.Equal(t, "http://127.0.0.1:9999", cfg.Backend.URL)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload within 3s of the config write")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeWatchedConfig(t, path, "http://127.0.0.1:8080")

	reloaded := make(chan *Config, 4)
	w, err := NewWatcherForPath(path, func(cfg *Config) {
		reloaded <- cfg
	}, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	// A sibling file in the watched directory must not trigger a reload.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	select {
	case <-reloaded:
		t.Fatal("reload fired for an unrelated file")
	case <-time.After(600 * time.Millisecond):
	}
}

func TestWatcherCloseStopsCallbacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeWatchedConfig(t, path, "http://127.0.0.1:8080")

	reloaded := make(chan *Config, 4)
	w, err := NewWatcherForPath(path, func(cfg *Config) {
		reloaded <- cfg
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	require.NoError(t, w.Close())

	writeWatchedConfig(t, path, "http://127.0.0.1:7777")

	select {
	case <-reloaded:
		t.Fatal("reload fired after Close")
	case <-time.After(600 * time.Millisecond):
	}
}
