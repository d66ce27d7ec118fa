// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal implements the progressive reveal of a resolved answer.
//
// The engine exposes a finished answer one rune per tick, firing a progress
// event every few runes (used to nudge the viewport) and a completion event
// exactly once. Ticks are generation-counted: superseding or stopping an
// animation bumps the generation so timers already in flight are ignored
// when they land, which keeps a torn-down view free of dangling updates.
package reveal

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTickInterval is how long each revealed rune is on screen before
	// the next appears.
	DefaultTickInterval = 30 * time.Millisecond

	// ProgressEvery is how many runes advance between progress events.
	ProgressEvery = 5
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is what a tick produced.
type Event int

const (
	// EventNone: the tick advanced (or was stale) with nothing to report.
	EventNone Event = iota
	// EventProgress: enough runes advanced to nudge the viewport.
	EventProgress
	// EventComplete: the full text is now revealed. Fired exactly once.
	EventComplete
)

// TickMsg drives the reveal animation through the Bubble Tea loop.
// Gen identifies the animation the timer belongs to; stale ticks are dropped.
type TickMsg struct {
	Gen int
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine reveals one answer at a time. It is not safe for concurrent use;
// all calls happen on the Bubble Tea update loop.
type Engine struct {
	messageID  string
	sourceText string
	source     []rune

	revealed      int
	animating     bool
	sinceProgress int

	gen      int
	interval time.Duration
}

// NewEngine creates a reveal engine with the default tick interval.
func NewEngine() *Engine {
	return NewEngineWithInterval(DefaultTickInterval)
}

// NewEngineWithInterval creates a reveal engine with a custom tick interval.
func NewEngineWithInterval(interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Engine{interval: interval}
}

// StartOutcome reports what Start did.
type StartOutcome struct {
	// Cmd schedules the first tick when an animation began. Nil otherwise.
	Cmd tea.Cmd
	// Completed is true when the reveal finished synchronously (reveal
	// disabled). The final state is indistinguishable from a completed
	// animation.
	Completed bool
}

// Start begins revealing text for the given message.
//
//   - Disabled: the full text is shown immediately and Completed is set.
//   - A running animation for a different message or different text is
//     discarded (its pending ticks go stale, no completion fires for it)
//     and the new one starts from zero.
//   - Restarting the same message/text after completion is a no-op: the
//     text stays fully revealed and completion does not re-fire.
//   - Restarting the same message/text mid-animation is also a no-op; the
//     running ticker keeps going.
func (e *Engine) Start(messageID, text string, enabled bool) StartOutcome {
	same := e.messageID != "" && messageID == e.messageID && text == e.sourceText
	if same && (e.animating || e.revealed == len(e.source)) {
		return StartOutcome{}
	}

	// Discard whatever was running
	e.gen++
	e.messageID = messageID
	e.sourceText = text
	e.source = []rune(text)
	e.sinceProgress = 0

	if !enabled || len(e.source) == 0 {
		e.revealed = len(e.source)
		e.animating = false
		return StartOutcome{Completed: true}
	}

	e.revealed = 0
	e.animating = true
	return StartOutcome{Cmd: e.tickCmd()}
}

// Tick advances the animation in response to a TickMsg. Stale ticks (from a
// superseded or stopped animation) report EventNone with no follow-up.
func (e *Engine) Tick(msg TickMsg) (Event, tea.Cmd) {
	if !e.animating || msg.Gen != e.gen {
		return EventNone, nil
	}

	e.revealed++
	e.sinceProgress++

	if e.revealed >= len(e.source) {
		e.revealed = len(e.source)
		e.animating = false
		return EventComplete, nil
	}

	if e.sinceProgress >= ProgressEvery {
		e.sinceProgress = 0
		return EventProgress, e.tickCmd()
	}

	return EventNone, e.tickCmd()
}

// Stop abandons any running animation. Ticks already scheduled go stale.
// Used on view teardown.
func (e *Engine) Stop() {
	e.gen++
	e.animating = false
}

// =============================================================================
// STATE ACCESSORS
// =============================================================================

// Visible returns the currently revealed prefix of the source text.
func (e *Engine) Visible() string {
	if e.revealed >= len(e.source) {
		return e.sourceText
	}
	return string(e.source[:e.revealed])
}

// VisibleFor returns the display text for a message: the revealed prefix for
// the message being animated, the full fallback for everything else.
func (e *Engine) VisibleFor(messageID, full string) string {
	if e.animating && messageID == e.messageID {
		return e.Visible()
	}
	return full
}

// Animating reports whether a reveal is in progress.
func (e *Engine) Animating() bool {
	return e.animating
}

// MessageID returns the id of the message being (or last) revealed.
func (e *Engine) MessageID() string {
	return e.messageID
}

// Revealed returns how many runes are currently shown.
func (e *Engine) Revealed() int {
	return e.revealed
}

// Generation returns the current animation generation. Exposed for tests
// that drive ticks directly.
func (e *Engine) Generation() int {
	return e.gen
}

// tickCmd schedules the next tick for the current generation.
func (e *Engine) tickCmd() tea.Cmd {
	gen := e.gen
	return tea.Tick(e.interval, func(time.Time) tea.Msg {
		return TickMsg{Gen: gen}
	})
}
