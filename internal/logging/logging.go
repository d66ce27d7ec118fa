// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging writes application faults to a file under the config
// directory. The TUI runs on the alternate screen, so anything written to
// stdout or stderr mid-run would corrupt the display; faults go to
// ~/.medichain/assist.log instead.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/medichain/assist-tui/internal/config"
)

const logFileName = "assist.log"

var (
	openOnce sync.Once
	logger   *log.Logger
)

// FilePath returns the fault log location.
func FilePath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// Faultf appends a formatted fault record to the log file. Logging must
// never take the application down, so every failure here is silent.
func Faultf(format string, a ...interface{}) {
	openOnce.Do(openLogger)
	if logger == nil {
		return
	}
	logger.Output(2, fmt.Sprintf(format, a...))
}

func openLogger() {
	path, err := FilePath()
	if err != nil {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return
	}
	logger = log.New(f, "", log.LstdFlags)
}
