// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// DefaultWatchDebounce is how long to wait after the last write before
// reloading. Editors typically issue several writes per save.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher watches the config file for changes and invokes a callback with the
// reloaded configuration.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onReload func(*Config)
	onError  func(error)

	mu          sync.Mutex
	lastChange  time.Time
	pendingLoad bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher for the default TOML config path.
// onReload receives the freshly loaded config after each change; onError may
// be nil.
func NewWatcher(onReload func(*Config), onError func(error)) (*Watcher, error) {
	path, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	return NewWatcherForPath(path, onReload, onError)
}

// NewWatcherForPath creates a watcher for a specific config file path.
func NewWatcherForPath(path string, onReload func(*Config), onError func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		watcher:  fw,
		path:     path,
		debounce: DefaultWatchDebounce,
		onReload: onReload,
		onError:  onError,
		ctx:      ctx,
		cancel:   cancel,
	}

	return w, nil
}

// Watch starts watching for config changes.
func (w *Watcher) Watch() error {
	// Watch the parent directory rather than the file itself: atomic saves
	// replace the file, which would invalidate a direct file watch.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// processEvents records write events for the watched config file.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.lastChange = time.Now()
				w.pendingLoad = true
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// processPending fires the reload callback after the debounce window elapses.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			w.mu.Lock()
			ready := w.pendingLoad && time.Since(w.lastChange) >= w.debounce
			if ready {
				w.pendingLoad = false
			}
			w.mu.Unlock()

			if !ready {
				continue
			}

			cfg, err := LoadFromPath(w.path)
			if err != nil {
				if w.onError != nil {
					w.onError(err)
				}
				continue
			}
			w.onReload(cfg)
		}
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}
