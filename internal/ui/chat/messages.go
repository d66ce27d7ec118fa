// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medichain/assist-tui/internal/assist"
	"github.com/medichain/assist-tui/internal/cache"
	"github.com/medichain/assist-tui/internal/config"
	"github.com/medichain/assist-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// AnswerMsg carries a resolved answer for a pending message.
type AnswerMsg struct {
	MessageID string
	Answer    string
	Sources   []model.Source
	FromCache bool
}

// AnswerErrorMsg carries a failed question.
type AnswerErrorMsg struct {
	MessageID string
	Err       error
}

// BackendStatusMsg reports the result of a backend health check.
type BackendStatusMsg struct {
	Running bool
	Err     error
}

// SettleMsg fires after the post-resolution settle delay, starting the
// reveal animation once the layout has stabilized.
type SettleMsg struct {
	MessageID string
}

// ConfigReloadedMsg carries a config that changed on disk while the
// application was running.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}

// SettleDelay is how long to wait after resolving a message before starting
// the reveal animation, so the resize/reflow caused by the resolution has
// settled.
const SettleDelay = 100 * time.Millisecond

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// AskCmd creates a command that asks the backend a question. The answer cache
// is consulted first; a hit skips the network entirely.
func AskCmd(client *assist.Client, answerCache *cache.Cache, question, messageID string) tea.Cmd {
	return func() tea.Msg {
		if answerCache != nil {
			if entry, err := answerCache.Get(question); err == nil {
				return AnswerMsg{
					MessageID: messageID,
					Answer:    entry.Answer,
					Sources:   entry.Sources,
					FromCache: true,
				}
			}
		}

		if client == nil {
			return AnswerErrorMsg{MessageID: messageID, Err: assist.ErrConnection}
		}

		resp, err := client.Ask(context.Background(), question)
		if err != nil {
			return AnswerErrorMsg{MessageID: messageID, Err: err}
		}

		answer := resp.Answer
		if answer == "" {
			answer = assist.FallbackAnswer
		}
		sources := model.ParseSources(resp.Sources)

		if answerCache != nil && resp.Answer != "" {
			// Cache failures are not worth interrupting the answer for.
			_ = answerCache.Put(question, answer, sources)
		}

		return AnswerMsg{
			MessageID: messageID,
			Answer:    answer,
			Sources:   sources,
		}
	}
}

// CheckBackendCmd creates a command that checks backend availability.
func CheckBackendCmd(client *assist.Client) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return BackendStatusMsg{Running: false, Err: assist.ErrConnection}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := client.CheckRunning(ctx)
		return BackendStatusMsg{Running: err == nil, Err: err}
	}
}

// SettleCmd schedules the reveal start after the settle delay.
func SettleCmd(messageID string) tea.Cmd {
	return tea.Tick(SettleDelay, func(time.Time) tea.Msg {
		return SettleMsg{MessageID: messageID}
	})
}

// isCancellation reports whether an error is a context cancellation rather
// than a real failure.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
