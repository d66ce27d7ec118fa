// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/medichain/assist-tui/internal/config"
)

// HandleConfigCommand dispatches configuration subcommands.
func HandleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(args)
	case "path":
		return configPath()
	case "init":
		return configInit()
	default:
		return NewValidationError("lệnh config không hợp lệ: %s (dùng show, path, init)", args.Subcommand)
	}
}

func configShow(args Args) error {
	cfg, err := loadCLIConfig(args)
	if err != nil {
		return err
	}

	fmt.Println("Cấu hình hiện tại:")
	fmt.Printf("  backend.url               = %s\n", cfg.Backend.URL)
	fmt.Printf("  backend.timeout_secs      = %d\n", cfg.Backend.TimeoutSecs)
	fmt.Printf("  backend.language          = %s\n", cfg.Backend.Language)
	fmt.Printf("  backend.enhance_retrieval = %t\n", cfg.Backend.EnhanceRetrieval)
	fmt.Printf("  backend.rate_per_min      = %d\n", cfg.Backend.RatePerMin)
	fmt.Printf("  reveal.enabled            = %t\n", cfg.Reveal.Enabled)
	fmt.Printf("  reveal.tick_millis        = %d\n", cfg.Reveal.TickMillis)
	fmt.Printf("  follow.threshold_lines    = %d\n", cfg.Follow.ThresholdLines)
	fmt.Printf("  session.enabled           = %t\n", cfg.Session.Enabled)
	fmt.Printf("  session.encrypt           = %t\n", cfg.Session.Encrypt)
	fmt.Printf("  cache.enabled             = %t\n", cfg.Cache.Enabled)
	fmt.Printf("  cache.ttl_hours           = %d\n", cfg.Cache.TTLHours)
	fmt.Printf("  cache.max_entries         = %d\n", cfg.Cache.MaxEntries)
	fmt.Printf("  ui.theme                  = %s\n", cfg.UI.Theme)
	fmt.Printf("  ui.show_sources           = %t\n", cfg.UI.ShowSources)
	fmt.Printf("  ui.show_suggestions       = %t\n", cfg.UI.ShowSuggestions)
	return nil
}

func configPath() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// configInit writes a default config file unless one already exists.
func configInit() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return NewValidationError("tệp cấu hình đã tồn tại: %s", path)
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return err
	}
	fmt.Printf("Đã tạo tệp cấu hình: %s\n", path)
	return nil
}
