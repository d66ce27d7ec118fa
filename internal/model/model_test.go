// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewPendingMessage(t *testing.T) {
	msg := NewPendingMessage()

	if !msg.Loading {
		t.Error("Pending message should start loading")
	}
	if msg.Content != PendingText {
		t.Errorf("Expected placeholder %q, got %q", PendingText, msg.Content)
	}
	if !msg.IsBot() {
		t.Error("Pending message should be assistant-authored")
	}
	if msg.ID == "" {
		t.Error("Message should have an ID")
	}
}

func TestResolveOnce(t *testing.T) {
	msg := NewPendingMessage()

	msg.Resolve("Bạn nên nghỉ ngơi và uống nhiều nước.", []Source{{Title: "A"}})

	if msg.Loading {
		t.Error("Resolve should clear the loading flag")
	}
	if msg.Content != "Bạn nên nghỉ ngơi và uống nhiều nước." {
		t.Errorf("Unexpected content after resolve: %q", msg.Content)
	}
	if len(msg.Sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(msg.Sources))
	}

	// A second resolve must not overwrite the first
	msg.Resolve("khác", nil)
	if msg.Content != "Bạn nên nghỉ ngơi và uống nhiều nước." {
		t.Error("Second resolve should be a no-op")
	}
}

func TestResolveEmptySourcesUnset(t *testing.T) {
	msg := NewPendingMessage()
	msg.Resolve("trả lời", nil)

	if msg.Sources != nil {
		t.Error("Empty sources should stay unset")
	}
}

func TestPreviewUnicode(t *testing.T) {
	msg := NewUserMessage("Tôi bị sốt phải làm sao đây bác sĩ ơi")
	preview := msg.Preview(10)

	if got := len([]rune(preview)); got > 10 {
		t.Errorf("Preview exceeds 10 runes: %d", got)
	}
}

// =============================================================================
// SOURCE PARSING TESTS
// =============================================================================

func TestParseSourcesDegradation(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"null", `null`},
		{"string", `"not a list"`},
		{"object", `{"oops": true}`},
		{"number", `42`},
		{"empty list", `[]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseSources(json.RawMessage(tc.raw)); got != nil {
				t.Errorf("ParseSources(%s) = %v, want nil", tc.raw, got)
			}
		})
	}

	// Omitted entirely
	if got := ParseSources(nil); got != nil {
		t.Errorf("ParseSources(nil) = %v, want nil", got)
	}
}

func TestParseSourcesValid(t *testing.T) {
	raw := json.RawMessage(`[{"title":"Sốt","questions":["A","B"]},{"title":"Cảm cúm"}]`)
	sources := ParseSources(raw)

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[0].Title != "Sốt" {
		t.Errorf("Unexpected title: %q", sources[0].Title)
	}
	if len(sources[0].Questions) != 2 {
		t.Errorf("Expected 2 questions, got %d", len(sources[0].Questions))
	}
}

// =============================================================================
// SUGGESTION TESTS
// =============================================================================

func TestSuggestedQuestionsDedup(t *testing.T) {
	sources := []Source{
		{Questions: []string{"A", "B"}},
		{Questions: []string{"B", "C"}},
		{Questions: []string{"A"}},
	}

	got := SuggestedQuestions(sources)
	want := []string{"A", "B", "C"}

	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Suggestion %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSuggestedQuestionsCap(t *testing.T) {
	sources := []Source{
		{Questions: []string{"1", "2", "3", "4"}},
		{Questions: []string{"5", "6", "7"}},
	}

	got := SuggestedQuestions(sources)
	if len(got) != MaxSuggestions {
		t.Errorf("Expected cap of %d, got %d", MaxSuggestions, len(got))
	}
}

func TestSuggestedQuestionsEmpty(t *testing.T) {
	if got := SuggestedQuestions(nil); got != nil {
		t.Errorf("Expected nil for no sources, got %v", got)
	}
	if got := SuggestedQuestions([]Source{{Title: "x"}}); got != nil {
		t.Errorf("Expected nil for sources without questions, got %v", got)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversationAppendAndFind(t *testing.T) {
	conv := NewConversation()

	user := conv.AddUserMessage("Tôi bị sốt phải làm sao?")
	pending := conv.AddPendingMessage()

	if conv.MessageCount() != 2 {
		t.Fatalf("Expected 2 messages, got %d", conv.MessageCount())
	}
	if !conv.HasPending() {
		t.Error("Conversation should have a pending message")
	}
	if conv.FindMessage(pending.ID) != pending {
		t.Error("FindMessage should return the pending message")
	}
	if conv.FindMessage(user.ID) != user {
		t.Error("FindMessage should return the user message")
	}
	if conv.FindMessage("msg_missing") != nil {
		t.Error("FindMessage should return nil for unknown id")
	}

	pending.Resolve("answer", nil)
	if conv.HasPending() {
		t.Error("Conversation should have no pending message after resolve")
	}
}

func TestConversationTitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddSystemMessage("Chào mừng")
	conv.AddUserMessage("Giờ khám bệnh của bệnh viện?")

	if conv.Title == "" {
		t.Error("Title should derive from the first user message")
	}
}

func TestConversationPrune(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddMessage(NewUserMessage("m"))
	}

	if conv.MessageCount() != MaxMessages {
		t.Errorf("Expected pruned count %d, got %d", MaxMessages, conv.MessageCount())
	}
}
