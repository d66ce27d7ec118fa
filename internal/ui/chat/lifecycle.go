// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/unicode/norm"

	"github.com/medichain/assist-tui/internal/assist"
	"github.com/medichain/assist-tui/internal/model"
	"github.com/medichain/assist-tui/internal/reveal"
	"github.com/medichain/assist-tui/internal/session"
	"github.com/medichain/assist-tui/internal/ui/components"
)

// User-facing notices raised by the question lifecycle.
const (
	noticeCleared    = "Đã xóa cuộc trò chuyện."
	noticeSaveFailed = "Không thể lưu phiên trò chuyện."
	noticeFromCache  = "Câu trả lời lấy từ bộ nhớ đệm."
	noticeBackendOff = "Không thể kết nối đến máy chủ trợ lý."
)

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.reveal.Stop()
		return m, tea.Quit

	case "enter":
		return m.submit(m.input.Value())

	case "ctrl+l":
		return m.clearConversation()

	case "esc":
		m.input.Reset()
		return m, nil

	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5":
		n := int(msg.String()[4] - '0')
		if q := m.suggestions.At(n); q != "" {
			return m.submit(q)
		}
		return m, nil

	case "up", "down", "pgup", "pgdn", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit starts the lifecycle for a question: user message, loading
// placeholder, backend ask. At most one question is in flight; further
// submissions while busy are dropped without any observable side effect.
func (m Model) submit(raw string) (tea.Model, tea.Cmd) {
	question := norm.NFC.String(strings.TrimSpace(raw))
	if question == "" {
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	m.input.Reset()
	m.suggestions.Clear()
	m.reveal.Stop()
	m.list.SetReveal("", "")

	var cmds []tea.Cmd

	if _, err := m.store.AddUserMessage(question); err != nil {
		m.toasts.AddWarning(noticeSaveFailed)
		cmds = append(cmds, components.ToastTickCmd())
	}
	pendingID, err := m.store.AddPendingMessage()
	if err != nil {
		m.toasts.AddWarning(noticeSaveFailed)
		cmds = append(cmds, components.ToastTickCmd())
	}

	m.busy = true
	m.pendingID = pendingID
	m.list.SetSpinnerFrame(m.spinner.Frame())

	m.recalcLayout()
	m.refreshMessages()
	m.viewport.ContentGrew(2)

	cmds = append(cmds,
		m.spinner.Start(),
		AskCmd(m.client, m.cache, question, pendingID),
	)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// RESOLUTION
// =============================================================================

// handleAnswer resolves the pending placeholder with a real answer.
func (m Model) handleAnswer(msg AnswerMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.pendingID {
		// Answer for a placeholder that no longer exists (conversation was
		// cleared mid-flight). Drop it.
		return m, nil
	}

	m.busy = false
	m.pendingID = ""
	m.spinner.Stop()

	var cmds []tea.Cmd

	if err := m.store.ResolveMessage(msg.MessageID, msg.Answer, msg.Sources); err != nil {
		m.surfaceResolveFailure(err, msg.Answer)
		cmds = append(cmds, components.ToastTickCmd())
	}
	if msg.FromCache {
		m.toasts.AddStatus(noticeFromCache)
		cmds = append(cmds, components.ToastTickCmd())
	}

	if m.cfg.UI.ShowSuggestions {
		m.suggestions.SetQuestions(model.SuggestedQuestions(msg.Sources))
	}

	m.recalcLayout()
	m.refreshMessages()
	m.viewport.ContentGrew(1)

	cmds = append(cmds, SettleCmd(msg.MessageID))
	return m, tea.Batch(cmds...)
}

// handleAnswerError resolves the pending placeholder with a readable error.
// The placeholder always resolves; a failed question never leaves a spinner
// behind.
func (m Model) handleAnswerError(msg AnswerErrorMsg) (tea.Model, tea.Cmd) {
	if msg.MessageID != m.pendingID {
		return m, nil
	}

	m.busy = false
	m.pendingID = ""
	m.spinner.Stop()

	text := assist.Classify(msg.Err)
	if isCancellation(msg.Err) {
		text = assist.MsgGeneric
	}

	var cmds []tea.Cmd
	if err := m.store.ResolveMessage(msg.MessageID, text, nil); err != nil {
		m.surfaceResolveFailure(err, text)
	}
	m.toasts.AddError(text)
	cmds = append(cmds, components.ToastTickCmd())

	m.recalcLayout()
	m.refreshMessages()
	m.viewport.ContentGrew(1)

	return m, tea.Batch(cmds...)
}

// surfaceResolveFailure keeps a failed resolution visible. When the
// placeholder resolved in memory and only persistence failed, a notice is
// enough. When the placeholder is gone entirely, the text is appended as a
// fresh message so the submission still has a visible outcome.
func (m *Model) surfaceResolveFailure(err error, text string) {
	if errors.Is(err, session.ErrSessionNotFound) {
		if _, addErr := m.store.AddSystemMessage(text); addErr != nil {
			m.toasts.AddWarning(noticeSaveFailed)
		}
		return
	}
	m.toasts.AddWarning(noticeSaveFailed)
}

// =============================================================================
// REVEAL
// =============================================================================

// handleSettle starts the reveal animation once the post-resolution reflow
// has settled.
func (m Model) handleSettle(msg SettleMsg) (tea.Model, tea.Cmd) {
	resolved := m.store.Conversation().FindMessage(msg.MessageID)
	if resolved == nil || resolved.Loading {
		return m, nil
	}

	outcome := m.reveal.Start(msg.MessageID, resolved.Content, m.cfg.Reveal.Enabled)
	if outcome.Completed {
		m.list.SetReveal("", "")
		m.refreshMessages()
		return m, nil
	}

	m.list.SetReveal(msg.MessageID, m.reveal.Visible())
	m.refreshMessages()
	return m, outcome.Cmd
}

// handleRevealTick advances the reveal animation by one rune.
func (m Model) handleRevealTick(msg reveal.TickMsg) (tea.Model, tea.Cmd) {
	event, cmd := m.reveal.Tick(msg)

	switch event {
	case reveal.EventComplete:
		m.list.SetReveal("", "")
		m.refreshMessages()
		m.viewport.ProgressNudge()

	case reveal.EventProgress:
		m.list.SetReveal(m.reveal.MessageID(), m.reveal.Visible())
		m.refreshMessages()
		m.viewport.ProgressNudge()

	default:
		if cmd != nil {
			m.list.SetReveal(m.reveal.MessageID(), m.reveal.Visible())
			m.refreshMessages()
		}
	}

	return m, cmd
}

// =============================================================================
// HOUSEKEEPING
// =============================================================================

// clearConversation wipes the log but keeps the session loadable. A question
// still in flight is orphaned; its answer is dropped when it lands.
func (m Model) clearConversation() (tea.Model, tea.Cmd) {
	m.reveal.Stop()
	m.spinner.Stop()
	m.busy = false
	m.pendingID = ""
	m.list.SetReveal("", "")
	m.suggestions.Clear()

	if err := m.store.Clear(); err != nil {
		m.toasts.AddWarning(noticeSaveFailed)
	} else {
		m.toasts.AddStatus(noticeCleared)
	}

	m.recalcLayout()
	m.refreshMessages()
	m.viewport.JumpToBottom()

	return m, components.ToastTickCmd()
}

// handleBackendStatus records the backend health check result.
func (m Model) handleBackendStatus(msg BackendStatusMsg) (tea.Model, tea.Cmd) {
	m.backendChecked = true
	m.backendUp = msg.Running

	if !msg.Running {
		m.toasts.AddWarning(noticeBackendOff)
		return m, components.ToastTickCmd()
	}
	return m, nil
}
