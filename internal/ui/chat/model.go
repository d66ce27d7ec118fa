// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medichain/assist-tui/internal/assist"
	"github.com/medichain/assist-tui/internal/cache"
	"github.com/medichain/assist-tui/internal/config"
	"github.com/medichain/assist-tui/internal/reveal"
	"github.com/medichain/assist-tui/internal/session"
	"github.com/medichain/assist-tui/internal/ui/components"
	"github.com/medichain/assist-tui/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view: conversation log, input line, status bar, and the
// machinery that turns a submitted question into a resolved answer.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config

	store  *session.Store
	client *assist.Client
	cache  *cache.Cache

	viewport    *components.ChatViewport
	list        *components.MessageList
	input       textinput.Model
	spinner     components.Spinner
	toasts      *components.ToastManager
	suggestions *components.Suggestions
	reveal      *reveal.Engine

	width  int
	height int

	// busy is true while a question is in flight. A second submission is
	// rejected rather than queued.
	busy      bool
	pendingID string

	backendUp      bool
	backendChecked bool
}

// New creates a chat model wired to the given backend client, session store,
// and answer cache. Store must be non-nil; client and answer cache may be nil
// (the first ask will then fail with a connection error, and caching is
// skipped).
func New(theme *styles.Theme, cfg *config.Config, store *session.Store, client *assist.Client, answerCache *cache.Cache) Model {
	if cfg == nil {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Nhập câu hỏi của bạn..."
	ti.CharLimit = 2048
	ti.Focus()

	list := components.NewMessageList(theme)
	list.SetShowSources(cfg.UI.ShowSources)

	engine := reveal.NewEngineWithInterval(time.Duration(cfg.Reveal.TickMillis) * time.Millisecond)

	return Model{
		theme:       theme,
		cfg:         cfg,
		store:       store,
		client:      client,
		cache:       answerCache,
		viewport:    components.NewChatViewport(theme, cfg.Follow.ThresholdLines),
		list:        list,
		input:       ti,
		spinner:     components.NewSpinner(theme),
		toasts:      components.NewToastManager(),
		suggestions: components.NewSuggestions(theme),
		reveal:      engine,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		CheckBackendCmd(m.client),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case AnswerMsg:
		return m.handleAnswer(msg)

	case AnswerErrorMsg:
		return m.handleAnswerError(msg)

	case SettleMsg:
		return m.handleSettle(msg)

	case reveal.TickMsg:
		return m.handleRevealTick(msg)

	case BackendStatusMsg:
		return m.handleBackendStatus(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case spinner.TickMsg:
		cmd := m.spinner.Update(msg)
		if m.busy {
			m.list.SetSpinnerFrame(m.spinner.Frame())
			m.refreshMessages()
		}
		return m, cmd

	case components.ToastTickMsg:
		m.toasts.TickToasts()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// handleResize recomputes the layout after a terminal size change.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	m.input.Width = msg.Width - 4
	m.list.SetWidth(msg.Width - 2)
	m.suggestions.SetWidth(msg.Width - 2)

	m.recalcLayout()
	m.refreshMessages()
	return m, nil
}

// recalcLayout sizes the viewport to whatever the fixed chrome leaves free.
func (m *Model) recalcLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	vpHeight := m.height - m.chromeHeight()
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.SetSize(m.width-2, vpHeight)
}

// refreshMessages re-renders the conversation into the viewport.
func (m *Model) refreshMessages() {
	m.list.SetMessages(m.store.Conversation().Messages)
	m.viewport.SetContent(m.list.View())
}

// handleConfigReloaded applies display-level settings from a freshly
// reloaded config file. Connection-level settings (backend URL, timeouts)
// keep their startup values until the next launch.
func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Cfg == nil {
		return m, nil
	}
	m.cfg = msg.Cfg
	m.list.SetShowSources(msg.Cfg.UI.ShowSources)
	if !msg.Cfg.UI.ShowSuggestions {
		m.suggestions.Clear()
	}
	m.recalcLayout()
	m.refreshMessages()
	return m, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Busy reports whether a question is currently in flight.
func (m *Model) Busy() bool {
	return m.busy
}

// PendingID returns the id of the placeholder awaiting an answer, or empty.
func (m *Model) PendingID() string {
	return m.pendingID
}

// Store returns the session store backing the conversation.
func (m *Model) Store() *session.Store {
	return m.store
}

// Viewport exposes the chat viewport, mainly for tests.
func (m *Model) Viewport() *components.ChatViewport {
	return m.viewport
}

// Toasts exposes the toast manager.
func (m *Model) Toasts() *components.ToastManager {
	return m.toasts
}
