// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/medichain/assist-tui/internal/logging"
	"github.com/medichain/assist-tui/internal/ui/components"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the chat view. Rendering is wrapped in a recover so a layout
// panic degrades to a readable error screen instead of tearing down the
// terminal mid-session.
func (m Model) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Faultf("render fault recovered: %v", r)
			out = m.renderFallback()
		}
	}()
	return m.renderChat()
}

// renderChat stacks header, messages, suggestions, input, and status bar.
// The viewport height was pre-sized in recalcLayout from the same chrome, so
// the stack fills the terminal exactly.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Đang khởi động..."
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()
	suggestions := m.suggestions.View()

	messages := m.viewport.View()
	if m.viewport.Follow().Following() {
		// The unread indicator line is absent while following. Keep the
		// stack height stable.
		messages += "\n"
	}

	parts := []string{header, messages}
	if suggestions != "" {
		parts = append(parts, suggestions)
	}
	parts = append(parts, input, status)

	base := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.toasts.HasToasts() {
		return m.overlayToasts(base)
	}
	return base
}

// chromeHeight returns how many terminal rows the fixed chrome occupies,
// leaving the rest for the viewport. Includes the unread indicator row under
// the viewport.
func (m Model) chromeHeight() int {
	h := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar()) +
		1 // unread indicator row

	if s := m.suggestions.View(); s != "" {
		h += lipgloss.Height(s)
	}
	return h
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("MediChain")
	subtitle := m.theme.HeaderSubtitle.Render("Trợ lý thủ tục hành chính bệnh viện")

	return m.theme.Header.Width(m.width).Render(title + " " + subtitle)
}

func (m Model) renderInput() string {
	separator := m.theme.ShortcutDesc.Render(strings.Repeat("-", maxInt(m.width, 1)))
	return separator + "\n" + m.theme.InputContainer.Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case !m.backendChecked:
		left = m.theme.ShortcutDesc.Render("o Đang kiểm tra kết nối...")
	case m.backendUp:
		left = m.theme.InfoStyle.Render("* Đã kết nối")
	default:
		left = m.theme.ErrorMessage.Render("x Mất kết nối")
	}

	if m.busy {
		left += "  " + m.theme.ThinkingText.Render(m.spinner.Frame()+" Đang xử lý...")
	}

	shortcuts := m.theme.ShortcutKey.Render("Enter") + m.theme.ShortcutDesc.Render(" gửi  ") +
		m.theme.ShortcutKey.Render("Ctrl+L") + m.theme.ShortcutDesc.Render(" xóa  ") +
		m.theme.ShortcutKey.Render("Ctrl+C") + m.theme.ShortcutDesc.Render(" thoát")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(shortcuts) - 2
	if gap < 1 {
		gap = 1
	}

	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + shortcuts)
}

// renderFallback is the degraded view shown when rendering panics.
func (m Model) renderFallback() string {
	msg := m.theme.ErrorTitle.Render("Đã xảy ra lỗi hiển thị.") + "\n" +
		m.theme.ErrorMessage.Render("Nhấn Ctrl+C để thoát và khởi động lại ứng dụng.")
	return m.theme.ErrorBox.Render(msg)
}

// =============================================================================
// TOAST OVERLAY
// =============================================================================

// overlayToasts paints the toast stack over the bottom-right corner of the
// base view without shifting the layout.
func (m Model) overlayToasts(base string) string {
	toastView := components.RenderToasts(m.toasts.GetToasts(), m.width/2, m.theme)
	if toastView == "" {
		return base
	}

	baseLines := strings.Split(base, "\n")
	toastLines := strings.Split(toastView, "\n")

	// Leave the input and status rows visible under the toasts.
	startRow := len(baseLines) - len(toastLines) - 3
	if startRow < 0 {
		startRow = 0
	}

	for i, toastLine := range toastLines {
		row := startRow + i
		if row >= len(baseLines) || lipgloss.Width(toastLine) == 0 {
			continue
		}
		pad := m.width - lipgloss.Width(toastLine) - 1
		if pad < 0 {
			pad = 0
		}
		baseLines[row] = strings.Repeat(" ", pad) + toastLine
	}

	return strings.Join(baseLines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
