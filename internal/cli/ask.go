// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/medichain/assist-tui/internal/assist"
	"github.com/medichain/assist-tui/internal/cache"
	"github.com/medichain/assist-tui/internal/config"
	"github.com/medichain/assist-tui/internal/model"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	askLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	askDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	askSourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4"))
)

// markdownRenderer renders backend answers for TTY output. A nil renderer
// means glamour could not initialize; we fall back to plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		markdownRenderer = r
	}
}

// renderMarkdown renders text as markdown. When glamour is unavailable
// the fenced blocks are still highlighted directly.
func renderMarkdown(text string) string {
	if markdownRenderer == nil {
		return HighlightFencedBlocks(text) + "\n"
	}
	out, err := markdownRenderer.Render(text)
	if err != nil {
		return HighlightFencedBlocks(text) + "\n"
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// =============================================================================
// WIRING HELPERS
// =============================================================================

// loadCLIConfig loads configuration for a CLI command, honoring the
// --config and --backend overrides.
func loadCLIConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("không thể đọc cấu hình: %w", err)
	}
	if args.BackendURL != "" {
		cfg.Backend.URL = args.BackendURL
	}
	return cfg, nil
}

// newAssistClient builds a backend client from configuration.
func newAssistClient(cfg *config.Config) *assist.Client {
	return assist.NewClientWithConfig(&assist.ClientConfig{
		BaseURL:          cfg.Backend.URL,
		Timeout:          time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		Language:         cfg.Backend.Language,
		EnhanceRetrieval: cfg.Backend.EnhanceRetrieval,
		RatePerMin:       cfg.Backend.RatePerMin,
	})
}

// openAnswerCache opens the answer cache when enabled. Cache failures are
// reported but never fatal; the command just runs without a cache.
func openAnswerCache(cfg *config.Config, args Args) *cache.Cache {
	if args.NoCache || !cfg.Cache.Enabled {
		return nil
	}
	path, err := cfg.CachePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cảnh báo: không mở được bộ nhớ đệm: %v\n", err)
		return nil
	}
	c, err := cache.Open(
		path,
		time.Duration(cfg.Cache.TTLHours)*time.Hour,
		cfg.Cache.MaxEntries,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cảnh báo: không mở được bộ nhớ đệm: %v\n", err)
		return nil
	}
	return c
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// askResult is the JSON shape of a one-shot answer.
type askResult struct {
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Sources   []model.Source `json:"sources,omitempty"`
	FromCache bool           `json:"from_cache"`
	ElapsedMs int64          `json:"elapsed_ms"`
}

// HandleAskCommand answers a single question and prints the result.
// The question comes from positional arguments or, when absent, from
// piped stdin so that `echo cau_hoi | medichain-assist ask` works.
func HandleAskCommand(args Args) error {
	question := strings.TrimSpace(args.Question)
	if question == "" && !IsTTY() {
		question = readStdinQuestion()
	}
	if question == "" {
		return NewValidationError("thiếu câu hỏi: medichain-assist ask \"<câu hỏi>\"")
	}

	cfg, err := loadCLIConfig(args)
	if err != nil {
		return err
	}

	client := newAssistClient(cfg)
	answerCache := openAnswerCache(cfg, args)
	if answerCache != nil {
		defer answerCache.Close()
	}

	start := time.Now()

	// Cache first. A hit skips the backend entirely.
	if answerCache != nil {
		if entry, cacheErr := answerCache.Get(question); cacheErr == nil {
			return displayAnswer(askResult{
				Question:  question,
				Answer:    entry.Answer,
				Sources:   entry.Sources,
				FromCache: true,
				ElapsedMs: time.Since(start).Milliseconds(),
			}, args.JSON)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutSecs)*time.Second)
	defer cancel()

	resp, err := client.Ask(ctx, question)
	if err != nil {
		return err
	}

	answer := resp.Answer
	if strings.TrimSpace(answer) == "" {
		answer = assist.FallbackAnswer
	}
	sources := model.ParseSources(resp.Sources)

	if answerCache != nil && resp.Answer != "" {
		_ = answerCache.Put(question, resp.Answer, sources)
	}

	return displayAnswer(askResult{
		Question:  question,
		Answer:    answer,
		Sources:   sources,
		ElapsedMs: time.Since(start).Milliseconds(),
	}, args.JSON)
}

// readStdinQuestion reads a piped question from stdin.
func readStdinQuestion() string {
	scanner := bufio.NewScanner(os.Stdin)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

// displayAnswer prints the answer, rendered as markdown on a TTY and as
// plain text otherwise.
func displayAnswer(res askResult, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(res)
	}

	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(res.Answer))
	} else {
		fmt.Println(res.Answer)
	}

	if len(res.Sources) > 0 && IsStdoutTTY() {
		fmt.Println(askLabelStyle.Render("Nguồn tham khảo:"))
		for i, src := range res.Sources {
			title := src.Title
			if title == "" {
				title = src.ID
			}
			fmt.Printf("  %s\n", askSourceStyle.Render(fmt.Sprintf("[%d] %s", i+1, title)))
		}
	}

	if IsStdoutTTY() {
		note := fmt.Sprintf("(%.1fs)", float64(res.ElapsedMs)/1000)
		if res.FromCache {
			note = "(từ bộ nhớ đệm)"
		}
		fmt.Println(askDimStyle.Render(note))
	}
	return nil
}

// =============================================================================
// STATUS COMMAND
// =============================================================================

// HandleStatusCommand checks backend connectivity.
func HandleStatusCommand(args Args) error {
	cfg, err := loadCLIConfig(args)
	if err != nil {
		return err
	}

	client := newAssistClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	checkErr := client.CheckRunning(ctx)

	if args.JSON {
		fmt.Printf("{\"backend\":%q,\"running\":%t}\n", cfg.Backend.URL, checkErr == nil)
		return checkErr
	}

	fmt.Printf("Máy chủ trợ lý: %s\n", cfg.Backend.URL)
	if checkErr != nil {
		fmt.Println("Trạng thái: không kết nối được")
		return checkErr
	}
	fmt.Println("Trạng thái: đã kết nối")
	return nil
}
