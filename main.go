// MediChain assist TUI - hospital administration assistant chat interface.
//
// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medichain/assist-tui/internal/assist"
	"github.com/medichain/assist-tui/internal/cache"
	"github.com/medichain/assist-tui/internal/cli"
	"github.com/medichain/assist-tui/internal/config"
	"github.com/medichain/assist-tui/internal/logging"
	"github.com/medichain/assist-tui/internal/session"
	"github.com/medichain/assist-tui/internal/ui/chat"
	"github.com/medichain/assist-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for messages originating outside the event loop
// (the config file watcher).
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdSession:
		cli.HandleSession(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdCache:
		cli.HandleCache(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	cfg := loadConfig(args)
	config.SetGlobal(cfg)

	theme := styles.NewTheme()

	client := assist.NewClientWithConfig(&assist.ClientConfig{
		BaseURL:          cfg.Backend.URL,
		Timeout:          time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		Language:         cfg.Backend.Language,
		EnhanceRetrieval: cfg.Backend.EnhanceRetrieval,
		RatePerMin:       cfg.Backend.RatePerMin,
	})

	store := openSessionStore(cfg)
	if store == nil {
		fmt.Fprintln(os.Stderr, "Lỗi: không khởi tạo được kho phiên trò chuyện")
		os.Exit(1)
	}
	if cfg.Session.Enabled {
		// Resume where the user left off. A fresh install has nothing to load.
		_ = store.LoadMostRecent()
	}

	answerCache := openAnswerCache(cfg, args)
	if answerCache != nil {
		defer answerCache.Close()
	}

	m := chat.New(theme, cfg, store, client, answerCache)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Watch the config file so display settings apply without a restart.
	watcher := startConfigWatcher(args)
	if watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Lỗi: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration, honoring CLI overrides. Load failures fall
// back to defaults so a corrupt config file cannot brick the interface.
func loadConfig(args cli.Args) *config.Config {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cảnh báo: không đọc được cấu hình, dùng mặc định: %v\n", err)
		cfg = config.Default()
	}
	if args.BackendURL != "" {
		cfg.Backend.URL = args.BackendURL
	}
	if args.NoCache {
		cfg.Cache.Enabled = false
	}
	return cfg
}

// openSessionStore opens the conversation store. When session persistence is
// disabled the store still runs, backed by a throwaway directory, because
// the chat model requires one to hold the live conversation.
func openSessionStore(cfg *config.Config) *session.Store {
	dir, err := cfg.SessionDir()
	if err != nil {
		return nil
	}
	if !cfg.Session.Enabled {
		tmp, err := os.MkdirTemp("", "medichain-session-")
		if err != nil {
			return nil
		}
		dir = tmp
	}

	var store *session.Store
	if cfg.Session.Encrypt {
		store, err = session.NewEncryptedStore(dir)
	} else {
		store, err = session.NewStore(dir)
	}
	if err != nil {
		return nil
	}
	return store
}

// openAnswerCache opens the answer cache when enabled. Never fatal.
func openAnswerCache(cfg *config.Config, args cli.Args) *cache.Cache {
	if args.NoCache || !cfg.Cache.Enabled {
		return nil
	}
	path, err := cfg.CachePath()
	if err != nil {
		return nil
	}
	c, err := cache.Open(
		path,
		time.Duration(cfg.Cache.TTLHours)*time.Hour,
		cfg.Cache.MaxEntries,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cảnh báo: không mở được bộ nhớ đệm: %v\n", err)
		return nil
	}
	return c
}

// startConfigWatcher watches the config file and forwards reloads into the
// running program. Returns nil when watching is not possible; the TUI runs
// fine without it.
func startConfigWatcher(args cli.Args) *config.Watcher {
	onReload := func(cfg *config.Config) {
		config.SetGlobal(cfg)
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(chat.ConfigReloadedMsg{Cfg: cfg})
		}
	}
	onError := func(err error) {
		// Stderr is invisible in alt-screen mode; record to the fault log.
		logging.Faultf("config watch: %v", err)
	}

	var watcher *config.Watcher
	var err error
	if args.ConfigPath != "" {
		watcher, err = config.NewWatcherForPath(args.ConfigPath, onReload, onError)
	} else {
		watcher, err = config.NewWatcher(onReload, onError)
	}
	if err != nil {
		return nil
	}
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}
