// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/medichain/assist-tui/internal/assist"
	"github.com/medichain/assist-tui/internal/cache"
	"github.com/medichain/assist-tui/internal/config"
	"github.com/medichain/assist-tui/internal/model"
	"github.com/medichain/assist-tui/internal/session"
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// ChatCLI wraps the line editor with persistent input history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the config dir.
func NewChatCLI() (*ChatCLI, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.loadHistory()
	return cli, nil
}

func (c *ChatCLI) loadHistory() {
	f, err := os.Open(c.historyFile)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.ReadHistory(f)
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() error {
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.line.WriteHistory(f)
	return err
}

// ReadInput prompts for a line and records it in history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close restores the terminal and saves history.
func (c *ChatCLI) Close() {
	_ = c.SaveHistory()
	_ = c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChatCommand runs the line-based chat REPL. It offers the same
// question lifecycle as the TUI (session persistence, cached answers,
// readable error text) without the full-screen interface.
func HandleChatCommand(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
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

	store := openSessionStore(cfg)

	chatCLI, err := NewChatCLI()
	if err != nil {
		return err
	}
	defer chatCLI.Close()

	printChatWelcome(cfg, client)

	questionCount := 0
	for {
		input, err := chatCLI.ReadInput("> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				break
			}
			// EOF on Ctrl+D ends the session cleanly.
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" || input == "thoat" {
			break
		}
		if strings.HasPrefix(input, "/") {
			if done := handleSlashCommand(input, store); done {
				break
			}
			continue
		}

		askOne(cfg, client, answerCache, store, input)
		questionCount++
	}

	if questionCount > 0 {
		fmt.Printf("\nĐã trả lời %d câu hỏi. Tạm biệt!\n", questionCount)
	} else {
		fmt.Println("\nTạm biệt!")
	}
	return nil
}

// openSessionStore opens the conversation store when session persistence
// is enabled. Failures degrade to an in-memory-free run rather than abort.
func openSessionStore(cfg *config.Config) *session.Store {
	if !cfg.Session.Enabled {
		return nil
	}
	dir, err := cfg.SessionDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cảnh báo: không lưu được phiên trò chuyện: %v\n", err)
		return nil
	}
	var store *session.Store
	if cfg.Session.Encrypt {
		store, err = session.NewEncryptedStore(dir)
	} else {
		store, err = session.NewStore(dir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cảnh báo: không lưu được phiên trò chuyện: %v\n", err)
		return nil
	}
	return store
}

// askOne sends one question and prints the answer, recording the exchange
// in the session store when available.
func askOne(cfg *config.Config, client *assist.Client, answerCache *cache.Cache, store *session.Store, question string) {
	if store != nil {
		if _, err := store.AddUserMessage(question); err != nil {
			fmt.Fprintf(os.Stderr, "Cảnh báo: không lưu được phiên trò chuyện: %v\n", err)
		}
	}

	// Cache first, then backend.
	if answerCache != nil {
		if entry, err := answerCache.Get(question); err == nil {
			printChatAnswer(entry.Answer, entry.Sources, true)
			recordAnswer(store, entry.Answer, entry.Sources)
			return
		}
	}

	fmt.Println(askDimStyle.Render("Đang xử lý..."))

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutSecs)*time.Second)
	defer cancel()

	resp, err := client.Ask(ctx, question)
	if err != nil {
		text := assist.Classify(err)
		fmt.Println(askDimStyle.Render(text))
		recordAnswer(store, text, nil)
		return
	}

	answer := resp.Answer
	if strings.TrimSpace(answer) == "" {
		answer = assist.FallbackAnswer
	}
	sources := model.ParseSources(resp.Sources)
	if answerCache != nil && resp.Answer != "" {
		_ = answerCache.Put(question, resp.Answer, sources)
	}

	printChatAnswer(answer, sources, false)
	recordAnswer(store, answer, sources)
}

// recordAnswer appends an assistant message to the session store.
func recordAnswer(store *session.Store, answer string, sources []model.Source) {
	if store == nil {
		return
	}
	id, err := store.AddPendingMessage()
	if err != nil {
		return
	}
	if err := store.ResolveMessage(id, answer, sources); err != nil {
		fmt.Fprintf(os.Stderr, "Cảnh báo: không lưu được phiên trò chuyện: %v\n", err)
	}
}

// printChatAnswer renders an answer with its sources.
func printChatAnswer(answer string, sources []model.Source, fromCache bool) {
	fmt.Println()
	fmt.Print(renderMarkdown(answer))

	if len(sources) > 0 {
		fmt.Println(askLabelStyle.Render("Nguồn tham khảo:"))
		for i, src := range sources {
			title := src.Title
			if title == "" {
				title = src.ID
			}
			fmt.Printf("  %s\n", askSourceStyle.Render(fmt.Sprintf("[%d] %s", i+1, title)))
		}
	}
	if fromCache {
		fmt.Println(askDimStyle.Render("(từ bộ nhớ đệm)"))
	}
	fmt.Println()
}

// handleSlashCommand processes REPL commands. Returns true when the
// session should end.
func handleSlashCommand(input string, store *session.Store) bool {
	cmd := strings.Fields(input)[0]
	switch cmd {
	case "/help", "/tro-giup":
		printChatHelp()
	case "/clear", "/xoa":
		if store != nil {
			if err := store.Clear(); err != nil {
				fmt.Fprintf(os.Stderr, "Cảnh báo: không lưu được phiên trò chuyện: %v\n", err)
			}
		}
		fmt.Println("Đã xóa cuộc trò chuyện.")
	case "/history", "/lich-su":
		printChatHistory(store)
	case "/quit", "/exit":
		return true
	default:
		fmt.Printf("Lệnh không hợp lệ: %s (gõ /help để xem danh sách)\n", cmd)
	}
	return false
}

func printChatWelcome(cfg *config.Config, client *assist.Client) {
	fmt.Println(askLabelStyle.Render("MediChain - Trợ lý thủ tục hành chính bệnh viện"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if client.CheckRunning(ctx) == nil {
		fmt.Printf("Máy chủ: %s (đã kết nối)\n", cfg.Backend.URL)
	} else {
		fmt.Printf("Máy chủ: %s (%s)\n", cfg.Backend.URL, "không kết nối được")
	}
	fmt.Println(askDimStyle.Render("Gõ câu hỏi và nhấn Enter. /help để xem lệnh, exit để thoát."))
	fmt.Println()
}

func printChatHelp() {
	fmt.Println("Các lệnh:")
	fmt.Println("  /help     Hiện trợ giúp này")
	fmt.Println("  /clear    Xóa cuộc trò chuyện hiện tại")
	fmt.Println("  /history  Xem lại các câu hỏi trong phiên")
	fmt.Println("  /quit     Thoát (hoặc gõ exit, quit, thoat)")
}

func printChatHistory(store *session.Store) {
	if store == nil {
		fmt.Println("Lưu phiên đang tắt; không có lịch sử.")
		return
	}
	conv := store.Conversation()
	if len(conv.Messages) == 0 {
		fmt.Println("Chưa có tin nhắn nào trong phiên này.")
		return
	}
	for _, msg := range conv.Messages {
		fmt.Printf("[%s] %s: %s\n", msg.TimeLabel(), msg.Role.DisplayName(), msg.Preview(72))
	}
}
