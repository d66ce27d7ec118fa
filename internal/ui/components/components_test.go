// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestWordWrap(t *testing.T) {
	wrapped := wordWrap("giờ thăm bệnh buổi chiều từ mười sáu giờ", 12)
	for _, line := range strings.Split(wrapped, "\n") {
		if w := runewidth.StringWidth(line); w > 12 {
			t.Errorf("line %q width %d exceeds 12", line, w)
		}
	}
	if strings.ReplaceAll(wrapped, "\n", " ") != "giờ thăm bệnh buổi chiều từ mười sáu giờ" {
		t.Errorf("wrap lost content: %q", wrapped)
	}
}

func TestHardWrapLongToken(t *testing.T) {
	wrapped := hardWrap(strings.Repeat("a", 25), 10)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != strings.Repeat("a", 10) || lines[2] != strings.Repeat("a", 5) {
		t.Errorf("unexpected split: %q", lines)
	}
}

func TestToastManagerExpiry(t *testing.T) {
	m := NewToastManager()

	id := m.AddError("lỗi kết nối")
	if id == 0 {
		t.Error("expected assigned toast ID")
	}
	if !m.HasToasts() {
		t.Fatal("toast should be active")
	}

	// Force expiry.
	toasts := m.GetToasts()
	toasts[0].CreatedAt = time.Now().Add(-time.Minute)
	m.Clear()
	m.AddToast(toasts[0])

	if remaining := m.TickToasts(); len(remaining) != 0 {
		t.Errorf("expired toast should be removed, %d remain", len(remaining))
	}
}

func TestToastManagerCapsCount(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 5; i++ {
		m.AddStatus("thông báo")
	}
	if n := len(m.GetToasts()); n != 3 {
		t.Errorf("toast count = %d, want 3", n)
	}
}

func TestSuggestionsAt(t *testing.T) {
	s := NewSuggestions(nil)
	s.SetQuestions([]string{"Giờ thăm bệnh?", "Thủ tục nhập viện?"})

	if got := s.At(1); got != "Giờ thăm bệnh?" {
		t.Errorf("At(1) = %q", got)
	}
	if got := s.At(3); got != "" {
		t.Errorf("At(3) = %q, want empty", got)
	}
	if got := s.At(0); got != "" {
		t.Errorf("At(0) = %q, want empty", got)
	}
}
