// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import "testing"

// drain runs the animation to completion by feeding ticks directly,
// counting events along the way.
func drain(t *testing.T, e *Engine) (progress, complete int) {
	t.Helper()

	for i := 0; i < 10000; i++ {
		if !e.Animating() {
			return progress, complete
		}
		ev, _ := e.Tick(TickMsg{Gen: e.Generation()})
		switch ev {
		case EventProgress:
			progress++
		case EventComplete:
			complete++
		}
	}
	t.Fatal("animation did not complete")
	return progress, complete
}

func TestRevealCompleteness(t *testing.T) {
	e := NewEngine()
	text := "Bạn nên nghỉ ngơi và uống nhiều nước."

	out := e.Start("msg_1", text, true)
	if out.Completed {
		t.Fatal("Enabled reveal should not complete synchronously")
	}
	if out.Cmd == nil {
		t.Fatal("Enabled reveal should schedule a tick")
	}
	if e.Revealed() != 0 {
		t.Errorf("Revealed = %d, want 0 at start", e.Revealed())
	}

	_, complete := drain(t, e)
	if complete != 1 {
		t.Errorf("Completion fired %d times, want exactly once", complete)
	}
	if e.Visible() != text {
		t.Errorf("Visible = %q, want full text", e.Visible())
	}
	if want := len([]rune(text)); e.Revealed() != want {
		t.Errorf("Revealed = %d, want %d", e.Revealed(), want)
	}
}

func TestRevealDisabledInstant(t *testing.T) {
	e := NewEngine()

	out := e.Start("msg_1", "xin chào", false)
	if !out.Completed {
		t.Fatal("Disabled reveal should complete synchronously")
	}
	if out.Cmd != nil {
		t.Error("Disabled reveal should not schedule ticks")
	}
	if e.Animating() {
		t.Error("Disabled reveal should not animate")
	}
	if e.Visible() != "xin chào" {
		t.Errorf("Visible = %q, want full text", e.Visible())
	}
}

func TestProgressEveryFiveUnits(t *testing.T) {
	e := NewEngine()
	// 12 runes: progress at 5 and 10, completion at 12
	e.Start("msg_1", "abcdefghijkl", true)

	progress, complete := drain(t, e)
	if progress != 2 {
		t.Errorf("Progress fired %d times, want 2", progress)
	}
	if complete != 1 {
		t.Errorf("Completion fired %d times, want 1", complete)
	}
}

func TestIdempotentRestartAfterCompletion(t *testing.T) {
	e := NewEngine()
	e.Start("msg_1", "hello", true)
	drain(t, e)

	out := e.Start("msg_1", "hello", true)
	if out.Cmd != nil || out.Completed {
		t.Error("Restart with identical id/text after completion should be a no-op")
	}
	if e.Visible() != "hello" {
		t.Errorf("Visible = %q, want already-revealed full text", e.Visible())
	}
}

func TestRestartMidAnimationIsNoop(t *testing.T) {
	e := NewEngine()
	e.Start("msg_1", "hello", true)
	e.Tick(TickMsg{Gen: e.Generation()})

	before := e.Revealed()
	out := e.Start("msg_1", "hello", true)
	if out.Cmd != nil || out.Completed {
		t.Error("Restart with identical id/text mid-animation should be a no-op")
	}
	if e.Revealed() != before {
		t.Error("Restart must not reset progress")
	}
}

func TestSupersedeDiscardsWithoutCompletion(t *testing.T) {
	e := NewEngine()
	e.Start("msg_1", "first answer", true)
	oldGen := e.Generation()
	e.Tick(TickMsg{Gen: oldGen})

	out := e.Start("msg_2", "second", true)
	if out.Cmd == nil {
		t.Fatal("Superseding start should schedule a new tick")
	}
	if e.Revealed() != 0 {
		t.Error("Superseding start should restart from zero")
	}

	// A tick left over from the discarded animation must be ignored
	ev, cmd := e.Tick(TickMsg{Gen: oldGen})
	if ev != EventNone || cmd != nil {
		t.Error("Stale tick should be dropped, not advance or complete")
	}

	_, complete := drain(t, e)
	if complete != 1 {
		t.Errorf("Only the new animation should complete; got %d completions", complete)
	}
}

func TestSameIDNewTextRestarts(t *testing.T) {
	e := NewEngine()
	e.Start("msg_1", "first", true)
	drain(t, e)

	out := e.Start("msg_1", "updated text", true)
	if out.Cmd == nil {
		t.Fatal("Same id with different text should restart")
	}
	if e.Revealed() != 0 {
		t.Error("Restart should begin at zero")
	}
}

func TestStopDropsPendingTicks(t *testing.T) {
	e := NewEngine()
	e.Start("msg_1", "hello", true)
	gen := e.Generation()

	e.Stop()
	if e.Animating() {
		t.Error("Stop should end the animation")
	}

	ev, cmd := e.Tick(TickMsg{Gen: gen})
	if ev != EventNone || cmd != nil {
		t.Error("Ticks after Stop must be ignored")
	}
}

func TestVisibleFor(t *testing.T) {
	e := NewEngine()
	e.Start("msg_1", "abcdefghij", true)
	e.Tick(TickMsg{Gen: e.Generation()})
	e.Tick(TickMsg{Gen: e.Generation()})

	if got := e.VisibleFor("msg_1", "abcdefghij"); got != "ab" {
		t.Errorf("VisibleFor(animated) = %q, want %q", got, "ab")
	}
	if got := e.VisibleFor("msg_other", "full"); got != "full" {
		t.Errorf("VisibleFor(other) = %q, want %q", got, "full")
	}
}

func TestEmptyTextCompletesImmediately(t *testing.T) {
	e := NewEngine()

	out := e.Start("msg_1", "", true)
	if !out.Completed {
		t.Error("Empty text should complete synchronously")
	}
	if e.Animating() {
		t.Error("Empty text should not animate")
	}
}
