// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medichain/assist-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner animates the loading placeholder while a question is in flight.
type Spinner struct {
	spinner  spinner.Model
	isActive bool
}

// NewSpinner creates a spinner with ASCII-safe frames.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner

	return Spinner{spinner: s}
}

// Start activates the spinner and returns its tick command.
func (s *Spinner) Start() tea.Cmd {
	s.isActive = true
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// Active returns whether the spinner is running.
func (s *Spinner) Active() bool {
	return s.isActive
}

// Update advances the animation. Tick messages are dropped when inactive so
// a stopped spinner does not keep scheduling wakeups.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); ok && !s.isActive {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// Frame returns the current animation frame.
func (s *Spinner) Frame() string {
	return s.spinner.View()
}
