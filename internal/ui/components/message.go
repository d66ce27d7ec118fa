// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/medichain/assist-tui/internal/model"
	"github.com/medichain/assist-tui/internal/ui/styles"
	"github.com/medichain/assist-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single chat message as a styled bubble.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool
	ShowSources   bool

	// ContentOverride replaces the message content when non-empty. The reveal
	// animation uses it to show a partially revealed answer.
	ContentOverride string

	// SpinnerFrame is shown before the placeholder text while loading.
	SpinnerFrame string

	theme *styles.Theme
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	if msg == nil {
		msg = model.NewSystemMessage("")
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		ShowSources:   true,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	case model.RoleAssistant:
		return b.renderAssistantBubble()
	default:
		return b.renderSystemBubble()
	}
}

// content returns the text to display, honoring overrides and loading state.
func (b *MessageBubble) content() string {
	if b.Message.Loading {
		placeholder := b.Message.Content
		if placeholder == "" {
			placeholder = model.PendingText
		}
		if b.SpinnerFrame != "" {
			return b.SpinnerFrame + " " + placeholder
		}
		return placeholder
	}
	if b.ContentOverride != "" {
		return b.ContentOverride
	}
	return b.Message.Content
}

// ==========================================================================
// USER BUBBLE - right-aligned blue tones
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.content()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.UserBubble.Width(contentWidth).Render(wrapped)

	header := b.theme.Timestamp.Render(b.Message.Role.DisplayName())
	if b.ShowTimestamp {
		header += " " + b.theme.Timestamp.Render(b.Message.TimeLabel())
	}

	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	margin := lipgloss.NewStyle().MarginLeft(leftMargin)

	return margin.Render(header) + "\n" + margin.Render(bubble)
}

// ==========================================================================
// ASSISTANT BUBBLE - left-aligned teal tones, with sources
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.content()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubbleStyle := b.theme.AssistantBubble
	if b.Message.Loading {
		bubbleStyle = bubbleStyle.Italic(true)
	}
	bubble := bubbleStyle.Width(contentWidth).Render(wrapped)

	header := b.theme.SenderLabel.Render(b.Message.Role.DisplayName())
	if b.ShowTimestamp {
		header += " " + b.theme.Timestamp.Render(b.Message.TimeLabel())
	}

	out := header + "\n" + bubble

	if b.ShowSources && !b.Message.Loading && len(b.Message.Sources) > 0 {
		out += "\n" + b.renderSources()
	}
	return out
}

// renderSources lists retrieval sources under the answer.
func (b *MessageBubble) renderSources() string {
	var sb strings.Builder
	sb.WriteString(b.theme.SourceHeader.Render("Nguồn tham khảo:"))
	for _, src := range b.Message.Sources {
		title := src.Title
		if title == "" {
			title = src.ID
		}
		sb.WriteString("\n")
		sb.WriteString(b.theme.SourceItem.Render("  - " + util.TruncateRunes(title, b.Width-6)))
	}
	return sb.String()
}

// ==========================================================================
// SYSTEM BUBBLE - amber notices
// ==========================================================================

func (b *MessageBubble) renderSystemBubble() string {
	content := b.content()
	if content == "" {
		return ""
	}

	maxContentWidth := b.Width - 8
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)

	return b.theme.SystemBubble.Render(wrapped)
}

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders an ordered conversation log.
type MessageList struct {
	messages []*model.Message
	width    int
	theme    *styles.Theme

	// Reveal override for the currently animating answer.
	revealID   string
	revealText string

	// Current spinner frame for loading placeholders.
	spinnerFrame string

	showSources bool
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		width:       80,
		theme:       theme,
		showSources: true,
	}
}

// SetMessages sets the messages to render.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.messages = messages
}

// SetWidth sets the rendering width.
func (ml *MessageList) SetWidth(width int) {
	ml.width = width
}

// SetShowSources toggles source lists under assistant answers.
func (ml *MessageList) SetShowSources(show bool) {
	ml.showSources = show
}

// SetReveal sets the partially revealed text for an animating message.
// Pass empty id to clear.
func (ml *MessageList) SetReveal(id, text string) {
	ml.revealID = id
	ml.revealText = text
}

// SetSpinnerFrame sets the spinner frame shown in loading placeholders.
func (ml *MessageList) SetSpinnerFrame(frame string) {
	ml.spinnerFrame = frame
}

// View renders the full message list.
func (ml *MessageList) View() string {
	if len(ml.messages) == 0 {
		return ml.theme.ThinkingText.Render("Hãy đặt câu hỏi về thủ tục hành chính của bệnh viện.")
	}

	var sb strings.Builder
	for i, msg := range ml.messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.width)
		bubble.ShowSources = ml.showSources
		bubble.SpinnerFrame = ml.spinnerFrame
		if msg.ID == ml.revealID {
			bubble.ContentOverride = ml.revealText
		}

		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(bubble.View())
	}
	return sb.String()
}

// =============================================================================
// TEXT HELPERS
// =============================================================================

// wordWrap wraps text to the given display width, breaking at word
// boundaries where possible. Uses runewidth so wide characters count
// correctly.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var out strings.Builder
	for li, line := range strings.Split(text, "\n") {
		if li > 0 {
			out.WriteByte('\n')
		}
		if runewidth.StringWidth(line) <= width {
			out.WriteString(line)
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, word := range strings.Fields(line) {
			w := runewidth.StringWidth(word)
			if currentWidth > 0 && currentWidth+1+w > width {
				out.WriteString(current.String())
				out.WriteByte('\n')
				current.Reset()
				currentWidth = 0
			}
			if currentWidth > 0 {
				current.WriteByte(' ')
				currentWidth++
			}
			current.WriteString(word)
			currentWidth += w
		}
		out.WriteString(current.String())
	}
	return out.String()
}

// maxLineWidth returns the display width of the widest line.
func maxLineWidth(text string) int {
	max := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > max {
			max = w
		}
	}
	return max
}

// minInt returns the smaller of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
