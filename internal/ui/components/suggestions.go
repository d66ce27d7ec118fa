// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/medichain/assist-tui/internal/ui/styles"
	"github.com/medichain/assist-tui/internal/util"
)

// =============================================================================
// FOLLOW-UP SUGGESTIONS
// =============================================================================

// Suggestions renders follow-up questions collected from the latest answer's
// sources. Pressing the numbered key submits the corresponding question.
type Suggestions struct {
	questions []string
	width     int
	theme     *styles.Theme
}

// NewSuggestions creates an empty suggestions bar.
func NewSuggestions(theme *styles.Theme) *Suggestions {
	return &Suggestions{width: 80, theme: theme}
}

// SetQuestions replaces the displayed questions.
func (s *Suggestions) SetQuestions(questions []string) {
	s.questions = questions
}

// SetWidth sets the rendering width.
func (s *Suggestions) SetWidth(width int) {
	s.width = width
}

// Questions returns the current questions.
func (s *Suggestions) Questions() []string {
	return s.questions
}

// At returns the question at a 1-based index, or empty string.
func (s *Suggestions) At(n int) string {
	if n < 1 || n > len(s.questions) {
		return ""
	}
	return s.questions[n-1]
}

// Clear removes all suggestions.
func (s *Suggestions) Clear() {
	s.questions = nil
}

// View renders the suggestions list.
func (s *Suggestions) View() string {
	if len(s.questions) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(s.theme.SourceHeader.Render("Câu hỏi gợi ý:"))
	for i, q := range s.questions {
		sb.WriteString("\n")
		sb.WriteString("  " + s.theme.SuggestionKey.Render("["+util.IntToString(i+1)+"]") + " ")
		sb.WriteString(s.theme.Suggestion.Render(util.TruncateRunes(q, s.width-8)))
	}
	return sb.String()
}
