// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "encoding/json"

// =============================================================================
// SOURCE TYPE
// =============================================================================

// Source is one retrieved record returned by the backend with an answer.
// The only field the UI depends on is Questions; the rest is display metadata.
type Source struct {
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content,omitempty"`
	Score     float64  `json:"score,omitempty"`
	Questions []string `json:"questions,omitempty"`
}

// ParseSources decodes the backend's sources field defensively.
//
// The field's shape is not contractually a list: it may be absent, null, a
// string, or malformed. Anything that does not decode as a list of source
// records is treated as "no sources" rather than an error, so a bad sources
// payload can never fail an otherwise successful answer.
func ParseSources(raw json.RawMessage) []Source {
	if len(raw) == 0 {
		return nil
	}

	var sources []Source
	if err := json.Unmarshal(raw, &sources); err != nil {
		return nil
	}
	if len(sources) == 0 {
		return nil
	}
	return sources
}

// =============================================================================
// SUGGESTED QUESTIONS
// =============================================================================

// MaxSuggestions caps how many follow-up questions are offered per answer.
const MaxSuggestions = 5

// SuggestedQuestions flattens the question lists of the given sources into a
// deduplicated suggestion list. Duplicates are dropped by exact text with the
// first occurrence winning, order preserved, capped at MaxSuggestions.
func SuggestedQuestions(sources []Source) []string {
	if len(sources) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var suggestions []string

	for _, src := range sources {
		for _, q := range src.Questions {
			if q == "" {
				continue
			}
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			suggestions = append(suggestions, q)
			if len(suggestions) >= MaxSuggestions {
				return suggestions
			}
		}
	}

	return suggestions
}
