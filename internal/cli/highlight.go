// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// FENCED BLOCK HIGHLIGHTING
// =============================================================================

// Backend answers occasionally embed fenced blocks (sample form payloads,
// JSON snippets from the procedure database). When glamour is unavailable
// we still highlight those blocks instead of dumping raw markdown.

// HighlightFencedBlocks walks a markdown-ish answer and replaces fenced
// code blocks with terminal-highlighted versions. Prose lines pass through
// untouched.
func HighlightFencedBlocks(text string) string {
	if !ColorsEnabled() {
		return text
	}

	lines := strings.Split(text, "\n")
	var out []string
	var block []string
	var language string
	inBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if inBlock {
				out = append(out, highlightBlock(strings.Join(block, "\n"), language))
				block = nil
				language = ""
				inBlock = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inBlock = true
			}
			continue
		}
		if inBlock {
			block = append(block, line)
		} else {
			out = append(out, line)
		}
	}

	// Unclosed fence: emit what we collected rather than swallowing it.
	if inBlock && len(block) > 0 {
		out = append(out, highlightBlock(strings.Join(block, "\n"), language))
	}

	return strings.Join(out, "\n")
}

// highlightBlock applies chroma highlighting with plain-text fallback.
func highlightBlock(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
