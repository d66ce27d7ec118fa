// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/medichain/assist-tui/internal/assist"
	"github.com/medichain/assist-tui/internal/cache"
	"github.com/medichain/assist-tui/internal/config"
	"github.com/medichain/assist-tui/internal/model"
	"github.com/medichain/assist-tui/internal/reveal"
	"github.com/medichain/assist-tui/internal/session"
	"github.com/medichain/assist-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	m := New(styles.NewTheme(), config.Default(), store, nil, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func submit(t *testing.T, m Model, question string) Model {
	t.Helper()
	updated, _ := m.submit(question)
	return updated.(Model)
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmitCreatesUserAndPendingPair(t *testing.T) {
	m := submit(t, newTestModel(t), "Thủ tục nhập viện cần giấy tờ gì?")

	conv := m.Store().Conversation()
	if conv.MessageCount() != 2 {
		t.Fatalf("expected 2 messages, got %d", conv.MessageCount())
	}
	if conv.Messages[0].Role != model.RoleUser {
		t.Errorf("first message role = %v, want user", conv.Messages[0].Role)
	}
	if !conv.Messages[1].Loading {
		t.Error("second message should be a loading placeholder")
	}
	if !m.Busy() {
		t.Error("model should be busy after submission")
	}
	if m.PendingID() != conv.Messages[1].ID {
		t.Errorf("pendingID = %q, want %q", m.PendingID(), conv.Messages[1].ID)
	}
}

func TestSubmitNormalizesWhitespace(t *testing.T) {
	m := submit(t, newTestModel(t), "  Tôi bị sốt cao  ")

	conv := m.Store().Conversation()
	if got := conv.Messages[0].Content; got != "Tôi bị sốt cao" {
		t.Errorf("content = %q, want trimmed", got)
	}
}

func TestEmptySubmissionIgnored(t *testing.T) {
	m := submit(t, newTestModel(t), "   ")

	if m.Store().Conversation().MessageCount() != 0 {
		t.Error("blank submission should not add messages")
	}
	if m.Busy() {
		t.Error("blank submission should not set busy")
	}
}

func TestSecondSubmissionRejectedWhileBusy(t *testing.T) {
	m := submit(t, newTestModel(t), "Câu hỏi thứ nhất")
	m = submit(t, m, "Câu hỏi thứ hai")

	if got := m.Store().Conversation().MessageCount(); got != 2 {
		t.Errorf("second submission should be rejected, got %d messages", got)
	}
	if m.Toasts().HasToasts() {
		t.Error("rejected submission should have no observable side effect")
	}
}

func TestSubmitKeepsPlaceholderIDWhenSaveFails(t *testing.T) {
	m := newTestModel(t)
	m.Store().BaseDir = "/nonexistent/no-such-dir"

	m = submit(t, m, "Câu hỏi khi không lưu được")

	if m.PendingID() == "" {
		t.Fatal("placeholder ID must survive a failed save")
	}
	id := m.PendingID()

	updated, _ := m.handleAnswer(AnswerMsg{MessageID: id, Answer: "Câu trả lời vẫn hiển thị."})
	m = updated.(Model)

	msg := m.Store().Conversation().FindMessage(id)
	if msg == nil || msg.Loading {
		t.Fatal("placeholder must resolve even when persistence fails")
	}
	if msg.Content != "Câu trả lời vẫn hiển thị." {
		t.Errorf("content = %q, want the answer text", msg.Content)
	}
	if !m.Toasts().HasToasts() {
		t.Error("failed persistence should raise a notice")
	}
}

func TestAnswerForMissingPlaceholderSurfacesFreshMessage(t *testing.T) {
	m := newTestModel(t)
	m.busy = true
	m.pendingID = "missing-id"

	updated, _ := m.handleAnswer(AnswerMsg{MessageID: "missing-id", Answer: "Câu trả lời mồ côi."})
	m = updated.(Model)

	conv := m.Store().Conversation()
	if conv.MessageCount() != 1 {
		t.Fatalf("answer without a placeholder should append a fresh message, got %d", conv.MessageCount())
	}
	if got := conv.Messages[0].Content; got != "Câu trả lời mồ côi." {
		t.Errorf("content = %q", got)
	}
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestAnswerResolvesPlaceholder(t *testing.T) {
	m := submit(t, newTestModel(t), "Giờ thăm bệnh nhân?")
	id := m.PendingID()

	updated, cmd := m.handleAnswer(AnswerMsg{
		MessageID: id,
		Answer:    "Giờ thăm bệnh là 17h đến 19h hàng ngày.",
		Sources:   []model.Source{{ID: "s1", Title: "Nội quy thăm bệnh"}},
	})
	m = updated.(Model)

	msg := m.Store().Conversation().FindMessage(id)
	if msg == nil || msg.Loading {
		t.Fatal("placeholder should be resolved")
	}
	if msg.Content != "Giờ thăm bệnh là 17h đến 19h hàng ngày." {
		t.Errorf("content = %q", msg.Content)
	}
	if m.Busy() {
		t.Error("busy should clear on resolution")
	}
	if cmd == nil {
		t.Error("resolution should schedule the settle command")
	}
}

func TestStaleAnswerDropped(t *testing.T) {
	m := submit(t, newTestModel(t), "Câu hỏi")
	id := m.PendingID()

	updated, _ := m.handleAnswer(AnswerMsg{MessageID: id, Answer: "Trả lời thứ nhất."})
	m = updated.(Model)

	updated, _ = m.handleAnswer(AnswerMsg{MessageID: id, Answer: "Trả lời thứ hai."})
	m = updated.(Model)

	if got := m.Store().Conversation().FindMessage(id).Content; got != "Trả lời thứ nhất." {
		t.Errorf("duplicate answer should be dropped, content = %q", got)
	}
}

func TestAnswerErrorResolvesWithReadableText(t *testing.T) {
	m := submit(t, newTestModel(t), "Câu hỏi")
	id := m.PendingID()

	updated, _ := m.handleAnswerError(AnswerErrorMsg{
		MessageID: id,
		Err:       errors.New("timeout waiting for backend response"),
	})
	m = updated.(Model)

	msg := m.Store().Conversation().FindMessage(id)
	if msg.Loading {
		t.Fatal("failed question must still resolve its placeholder")
	}
	if msg.Content != assist.MsgTimeout {
		t.Errorf("content = %q, want timeout notice", msg.Content)
	}
	if m.Busy() {
		t.Error("busy should clear on error")
	}
	if !m.Toasts().HasToasts() {
		t.Error("error should raise a toast")
	}
}

func TestClearOrphansInFlightQuestion(t *testing.T) {
	m := submit(t, newTestModel(t), "Câu hỏi")
	id := m.PendingID()

	updated, _ := m.clearConversation()
	m = updated.(Model)

	if m.Busy() {
		t.Error("clear should reset busy")
	}

	updated, _ = m.handleAnswer(AnswerMsg{MessageID: id, Answer: "Trả lời muộn."})
	m = updated.(Model)

	if got := m.Store().Conversation().MessageCount(); got != 0 {
		t.Errorf("late answer for a cleared conversation should be dropped, got %d messages", got)
	}
}

// =============================================================================
// REVEAL
// =============================================================================

func TestSettleStartsRevealWhenEnabled(t *testing.T) {
	m := submit(t, newTestModel(t), "Câu hỏi")
	id := m.PendingID()

	updated, _ := m.handleAnswer(AnswerMsg{MessageID: id, Answer: "Một câu trả lời dài."})
	m = updated.(Model)

	updated, cmd := m.handleSettle(SettleMsg{MessageID: id})
	m = updated.(Model)

	if !m.reveal.Animating() {
		t.Error("reveal should be animating after settle")
	}
	if cmd == nil {
		t.Error("settle should schedule the first reveal tick")
	}
}

func TestSettleShowsFullAnswerWhenRevealDisabled(t *testing.T) {
	m := newTestModel(t)
	m.cfg.Reveal.Enabled = false

	m = submit(t, m, "Câu hỏi")
	id := m.PendingID()

	updated, _ := m.handleAnswer(AnswerMsg{MessageID: id, Answer: "Trả lời."})
	m = updated.(Model)

	updated, cmd := m.handleSettle(SettleMsg{MessageID: id})
	m = updated.(Model)

	if m.reveal.Animating() {
		t.Error("reveal should not animate when disabled")
	}
	if cmd != nil {
		t.Error("disabled reveal should not schedule ticks")
	}
}

func TestRevealTicksRunToCompletion(t *testing.T) {
	m := submit(t, newTestModel(t), "Câu hỏi")
	id := m.PendingID()

	updated, _ := m.handleAnswer(AnswerMsg{MessageID: id, Answer: "Ngắn"})
	m = updated.(Model)
	updated, _ = m.handleSettle(SettleMsg{MessageID: id})
	m = updated.(Model)

	gen := m.reveal.Generation()
	for i := 0; i < 100 && m.reveal.Animating(); i++ {
		updated, _ = m.handleRevealTick(reveal.TickMsg{Gen: gen})
		m = updated.(Model)
	}

	if m.reveal.Animating() {
		t.Fatal("reveal did not complete")
	}
	if got := m.reveal.Visible(); got != "Ngắn" {
		t.Errorf("visible = %q, want full text", got)
	}
}

// =============================================================================
// ASK COMMAND
// =============================================================================

func TestAskCmdNilClient(t *testing.T) {
	msg := AskCmd(nil, nil, "câu hỏi", "msg_1")()

	errMsg, ok := msg.(AnswerErrorMsg)
	if !ok {
		t.Fatalf("expected AnswerErrorMsg, got %T", msg)
	}
	if errMsg.MessageID != "msg_1" {
		t.Errorf("message id = %q", errMsg.MessageID)
	}
}

func TestAskCmdCacheHitSkipsNetwork(t *testing.T) {
	c, err := cache.Open(t.TempDir()+"/cache.db", time.Hour, 100)
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	defer c.Close()

	sources := []model.Source{{ID: "s1", Title: "Quy trình xuất viện"}}
	if err := c.Put("thủ tục xuất viện", "Cần thanh toán viện phí trước.", sources); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Nil client: a cache miss would fail with a connection error.
	msg := AskCmd(nil, c, "Thủ Tục Xuất Viện", "msg_2")()

	answer, ok := msg.(AnswerMsg)
	if !ok {
		t.Fatalf("expected AnswerMsg from cache, got %T", msg)
	}
	if !answer.FromCache {
		t.Error("answer should be marked as cached")
	}
	if answer.Answer != "Cần thanh toán viện phí trước." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if len(answer.Sources) != 1 || answer.Sources[0].ID != "s1" {
		t.Errorf("sources = %+v", answer.Sources)
	}
}
