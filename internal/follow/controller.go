// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package follow decides when a scrollable chat region should stay pinned to
// its bottom edge.
//
// The controller is a single explicit state value transitioned only through
// the named operations below. It deliberately has no UI dependencies: the
// viewport component reports scroll positions and interaction events into it
// and obeys the scroll decisions it returns.
package follow

import "time"

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultThreshold is how close to the bottom (in scroll units) counts
	// as "at the bottom" and re-enables following.
	DefaultThreshold = 50

	// InteractionDebounce absorbs momentum scrolling after the user lets go
	// of the scrollbar or wheel before interaction is considered over.
	InteractionDebounce = 100 * time.Millisecond

	// SettleDelay is how long to wait before scrolling after content grows,
	// so layout can settle first.
	SettleDelay = 100 * time.Millisecond
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller tracks whether new content should auto-scroll the viewport.
//
// Initial state: following, not interacting, zero unread.
type Controller struct {
	following   bool
	interacting bool
	unread      int
	threshold   int
}

// New creates a follow controller with the given bottom-proximity threshold.
// A threshold <= 0 falls back to DefaultThreshold.
func New(threshold int) *Controller {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Controller{
		following: true,
		threshold: threshold,
	}
}

// Following reports whether new content currently auto-scrolls.
func (c *Controller) Following() bool {
	return c.following
}

// Interacting reports whether the user is mid-gesture on the scrollbar.
func (c *Controller) Interacting() bool {
	return c.interacting
}

// Unread returns the number of items that arrived while not following.
func (c *Controller) Unread() int {
	return c.unread
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// OnScroll records a new scroll position as distance from the bottom edge.
// Within the threshold the user is considered back at the bottom: following
// resumes and the unread counter clears. Further away, following suspends.
func (c *Controller) OnScroll(distanceFromBottom int) {
	if distanceFromBottom < c.threshold {
		c.resumeFollow()
		return
	}
	c.following = false
}

// OnInteractionStart marks the user as actively engaging the scrollbar.
// Manual engagement suspends following immediately, regardless of scroll
// position, so auto-scroll never fights the user mid-gesture.
func (c *Controller) OnInteractionStart() {
	c.interacting = true
	c.following = false
}

// OnInteractionEnd marks the gesture as over. The caller is responsible for
// the debounce (see InteractionDebounce); this transition itself does not
// re-enable following. Only OnScroll bottom proximity or JumpToBottom do.
func (c *Controller) OnInteractionEnd() {
	c.interacting = false
}

// OnContentGrew records n new items and reports whether the viewport should
// scroll to the bottom. While not following, the items count as unread
// instead.
func (c *Controller) OnContentGrew(n int) bool {
	if c.following && !c.interacting {
		return true
	}
	if !c.following && n > 0 {
		c.unread += n
	}
	return false
}

// OnProgressNudge reports whether an in-place content update (a reveal
// progress tick) should nudge the viewport to the bottom. Nudges never
// count as unread.
func (c *Controller) OnProgressNudge() bool {
	return c.following && !c.interacting
}

// JumpToBottom forces the viewport back to the bottom: following resumes
// and the unread counter clears.
func (c *Controller) JumpToBottom() {
	c.resumeFollow()
}

// resumeFollow is the single place where following turns back on, so the
// unread counter is cleared exactly when following resumes.
func (c *Controller) resumeFollow() {
	c.following = true
	c.unread = 0
}
