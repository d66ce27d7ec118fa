// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/medichain/assist-tui/internal/cache"
)

// HandleCacheCommand dispatches answer cache maintenance subcommands.
func HandleCacheCommand(args Args) error {
	cfg, err := loadCLIConfig(args)
	if err != nil {
		return err
	}

	path, err := cfg.CachePath()
	if err != nil {
		return err
	}
	c, err := cache.Open(
		path,
		time.Duration(cfg.Cache.TTLHours)*time.Hour,
		cfg.Cache.MaxEntries,
	)
	if err != nil {
		return err
	}
	defer c.Close()

	switch args.Subcommand {
	case "", "stats":
		return cacheStats(c, path, cfg.Cache.TTLHours)
	case "clear", "xoa":
		return cacheClear(c)
	default:
		return NewValidationError("lệnh cache không hợp lệ: %s (dùng stats, clear)", args.Subcommand)
	}
}

func cacheStats(c *cache.Cache, path string, ttlHours int) error {
	size, err := c.Size()
	if err != nil {
		return err
	}
	fmt.Println("Bộ nhớ đệm câu trả lời:")
	fmt.Printf("  Tệp:       %s\n", path)
	fmt.Printf("  Số mục:    %d\n", size)
	fmt.Printf("  Hạn dùng:  %d giờ\n", ttlHours)
	return nil
}

func cacheClear(c *cache.Cache) error {
	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Println("Đã xóa bộ nhớ đệm câu trả lời.")
	return nil
}
