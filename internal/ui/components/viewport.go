// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/medichain/assist-tui/internal/follow"
	"github.com/medichain/assist-tui/internal/ui/styles"
	"github.com/medichain/assist-tui/internal/util"
)

// =============================================================================
// CHAT VIEWPORT COMPONENT - scrollable chat area with follow tracking
// =============================================================================

// ChatViewport is a scrollable chat area. Follow behavior (auto-scroll on new
// content, unread counting while scrolled up) is delegated to the follow
// controller so the policy stays testable outside the terminal.
type ChatViewport struct {
	viewport viewport.Model
	follow   *follow.Controller
	width    int
	height   int
	ready    bool
	theme    *styles.Theme
}

// NewChatViewport creates a new ChatViewport. thresholdLines controls how
// close to the bottom the view must be for auto-follow to resume.
func NewChatViewport(theme *styles.Theme, thresholdLines int) *ChatViewport {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return &ChatViewport{
		viewport: vp,
		follow:   follow.New(thresholdLines),
		width:    80,
		height:   20,
		theme:    theme,
	}
}

// Follow exposes the follow controller.
func (cv *ChatViewport) Follow() *follow.Controller {
	return cv.follow
}

// SetSize updates the viewport dimensions.
func (cv *ChatViewport) SetSize(width, height int) {
	cv.width = width
	cv.height = height
	cv.viewport.Width = width
	cv.viewport.Height = height
	cv.ready = true
}

// Width returns the usable content width.
func (cv *ChatViewport) Width() int {
	return cv.width
}

// SetContent replaces the viewport content, wrapped to the current width.
func (cv *ChatViewport) SetContent(content string) {
	cv.viewport.SetContent(wrapContentForViewport(content, cv.width))
	if cv.follow.Following() {
		cv.viewport.GotoBottom()
	}
}

// ContentGrew reports that n new messages arrived. The viewport scrolls to
// the bottom when following; otherwise the messages count as unread.
func (cv *ChatViewport) ContentGrew(n int) {
	if cv.follow.OnContentGrew(n) {
		cv.viewport.GotoBottom()
	}
}

// ProgressNudge keeps the bottom visible while an answer is being revealed.
// It never affects the unread count.
func (cv *ChatViewport) ProgressNudge() {
	if cv.follow.OnProgressNudge() {
		cv.viewport.GotoBottom()
	}
}

// JumpToBottom scrolls to the bottom and resumes following.
func (cv *ChatViewport) JumpToBottom() {
	cv.follow.JumpToBottom()
	cv.viewport.GotoBottom()
}

// Unread returns the number of messages that arrived while scrolled up.
func (cv *ChatViewport) Unread() int {
	return cv.follow.Unread()
}

// distanceFromBottom returns how many lines the view is above the bottom.
func (cv *ChatViewport) distanceFromBottom() int {
	total := cv.viewport.TotalLineCount()
	bottom := total - cv.viewport.Height
	if bottom < 0 {
		bottom = 0
	}
	d := bottom - cv.viewport.YOffset
	if d < 0 {
		d = 0
	}
	return d
}

// reportScroll informs the follow controller after any user scroll.
func (cv *ChatViewport) reportScroll() {
	cv.follow.OnScroll(cv.distanceFromBottom())
}

// Update handles scroll input. Every user-initiated scroll is reported to the
// follow controller so following suspends and resumes at the right moments.
func (cv *ChatViewport) Update(msg tea.Msg) (*ChatViewport, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			cv.viewport.LineUp(1)
			cv.reportScroll()
			return cv, nil
		case "down", "j":
			cv.viewport.LineDown(1)
			cv.reportScroll()
			return cv, nil
		case "pgup":
			cv.viewport.ViewUp()
			cv.reportScroll()
			return cv, nil
		case "pgdn", "pgdown":
			cv.viewport.ViewDown()
			cv.reportScroll()
			return cv, nil
		case "home", "g":
			cv.viewport.GotoTop()
			cv.reportScroll()
			return cv, nil
		case "end", "G":
			cv.JumpToBottom()
			return cv, nil
		}

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			cv.follow.OnInteractionStart()
			cv.viewport.LineUp(3)
			cv.follow.OnInteractionEnd()
			cv.reportScroll()
			return cv, nil
		case tea.MouseWheelDown:
			cv.follow.OnInteractionStart()
			cv.viewport.LineDown(3)
			cv.follow.OnInteractionEnd()
			cv.reportScroll()
			return cv, nil
		}
	}

	cv.viewport, cmd = cv.viewport.Update(msg)
	return cv, cmd
}

// View renders the viewport with an unread indicator when scrolled up.
func (cv *ChatViewport) View() string {
	if !cv.ready {
		return ""
	}

	var result strings.Builder
	result.WriteString(cv.viewport.View())

	if indicator := cv.renderUnreadIndicator(); indicator != "" {
		result.WriteString("\n")
		result.WriteString(indicator)
	}
	return result.String()
}

// renderUnreadIndicator renders the new-message badge shown while the user
// is scrolled away from the bottom.
func (cv *ChatViewport) renderUnreadIndicator() string {
	if cv.follow.Following() {
		return ""
	}

	line := lipgloss.NewStyle().
		Width(cv.width).
		Align(lipgloss.Center)

	if n := cv.follow.Unread(); n > 0 {
		badge := cv.theme.UnreadBadge.Render("v " + util.IntToString(n) + " tin nhắn mới v")
		hint := cv.theme.ShortcutDesc.Render(" (End: xuống cuối)")
		return line.Render(badge + hint)
	}

	hint := cv.theme.ShortcutDesc.Render("End: xuống cuối cuộc trò chuyện")
	return line.Render(hint)
}

// =============================================================================
// CONTENT WRAPPING WITH RUNEWIDTH SUPPORT
// =============================================================================

// wrapContentForViewport wraps content to fit within the specified width,
// using go-runewidth so wide characters and combining marks are measured
// correctly.
func wrapContentForViewport(content string, width int) string {
	if width <= 0 {
		return content
	}

	var wrapped strings.Builder
	for i, line := range strings.Split(content, "\n") {
		if i > 0 {
			wrapped.WriteByte('\n')
		}
		if runewidth.StringWidth(line) <= width {
			wrapped.WriteString(line)
			continue
		}
		wrapped.WriteString(hardWrap(line, width))
	}
	return wrapped.String()
}

// hardWrap breaks a single overlong line at the last rune that fits.
func hardWrap(line string, width int) string {
	var result strings.Builder
	var current strings.Builder
	currentWidth := 0

	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if currentWidth+w > width && current.Len() > 0 {
			if result.Len() > 0 {
				result.WriteByte('\n')
			}
			result.WriteString(current.String())
			current.Reset()
			currentWidth = 0
		}
		current.WriteRune(r)
		currentWidth += w
	}

	if current.Len() > 0 {
		if result.Len() > 0 {
			result.WriteByte('\n')
		}
		result.WriteString(current.String())
	}
	return result.String()
}
