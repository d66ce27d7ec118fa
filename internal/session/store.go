// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/medichain/assist-tui/internal/model"
	"github.com/medichain/assist-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session doesn't exist.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &SessionError{Message: "session not found"}

// SessionError represents a session storage error.
type SessionError struct {
	Message string
}

func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// SESSION METADATA
// =============================================================================

// Meta contains metadata for listing sessions.
type Meta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Store manages the active conversation and its persistence.
//
// All message mutations go through the store so the on-disk session never
// drifts from what the user sees. Write failures are returned to the caller,
// never swallowed.
type Store struct {
	// BaseDir is the directory for storing sessions.
	BaseDir string

	// MaxSessions limits stored sessions (0 = unlimited).
	MaxSessions int

	// cipher encrypts session files at rest when non-nil.
	cipher *Cipher

	conv *model.Conversation
}

// NewStore creates a store backed by baseDir with a fresh conversation.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &Store{
		BaseDir:     baseDir,
		MaxSessions: 100,
		conv:        model.NewConversation(),
	}, nil
}

// NewEncryptedStore creates a store whose session files are encrypted with a
// machine-local key stored next to the sessions.
func NewEncryptedStore(baseDir string) (*Store, error) {
	s, err := NewStore(baseDir)
	if err != nil {
		return nil, err
	}

	cipher, err := LoadOrCreateCipher(filepath.Join(baseDir, "session.key"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session encryption: %w", err)
	}
	s.cipher = cipher
	return s, nil
}

// Conversation returns the active conversation.
func (s *Store) Conversation() *model.Conversation {
	return s.conv
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AddUserMessage appends a user message, persists, and returns the message
// ID. The ID is valid even when persistence fails: the in-memory append has
// already succeeded, and the caller needs the ID to keep the lifecycle
// consistent with what is on screen.
func (s *Store) AddUserMessage(content string) (string, error) {
	msg := s.conv.AddUserMessage(content)
	return msg.ID, s.Save()
}

// AddPendingMessage appends a loading assistant placeholder, persists, and
// returns the message ID. As with AddUserMessage, the ID is valid even when
// persistence fails.
func (s *Store) AddPendingMessage() (string, error) {
	msg := s.conv.AddPendingMessage()
	return msg.ID, s.Save()
}

// AddSystemMessage appends a system notice, persists, and returns the
// message ID. As with AddUserMessage, the ID is valid even when persistence
// fails.
func (s *Store) AddSystemMessage(content string) (string, error) {
	msg := s.conv.AddSystemMessage(content)
	return msg.ID, s.Save()
}

// ResolveMessage replaces a pending message's placeholder with the final
// answer and sources, then persists. Resolving an already-resolved message is
// a no-op for the message but still returns any persistence error.
func (s *Store) ResolveMessage(id, content string, sources []model.Source) error {
	msg := s.conv.FindMessage(id)
	if msg == nil {
		return ErrSessionNotFound
	}
	msg.Resolve(content, sources)
	return s.Save()
}

// Clear discards all messages in the active conversation and persists the
// empty session.
func (s *Store) Clear() error {
	s.conv.Clear()
	return s.Save()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save persists the active conversation.
func (s *Store) Save() error {
	s.conv.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(s.conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if s.cipher != nil {
		data, err = s.cipher.Encrypt(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt session: %w", err)
		}
	}

	if err := util.AtomicWriteFile(s.filePath(s.conv.ID), data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	if s.MaxSessions > 0 {
		s.enforceLimit()
	}
	return nil
}

// Load replaces the active conversation with a stored session.
func (s *Store) Load(id string) error {
	conv, err := s.read(id)
	if err != nil {
		return err
	}
	s.conv = conv
	return nil
}

// LoadMostRecent loads the most recently updated stored session, or keeps the
// fresh conversation when none exist.
func (s *Store) LoadMostRecent() error {
	metas, err := s.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		return nil
	}
	return s.Load(metas[0].ID)
}

// read loads and decodes a stored session file.
func (s *Store) read(id string) (*model.Conversation, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if IsEncrypted(data) {
		if s.cipher == nil {
			return nil, fmt.Errorf("session %s is encrypted but encryption is not configured", id)
		}
		data, err = s.cipher.Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt session %s: %w", id, err)
		}
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &conv, nil
}

// List returns all stored sessions, most recently updated first.
func (s *Store) List() ([]Meta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Meta{}, nil
		}
		return nil, err
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		conv, err := s.read(id)
		if err != nil {
			continue // skip corrupted files
		}

		preview := ""
		for _, msg := range conv.Messages {
			if msg.Role == model.RoleUser {
				preview = msg.Preview(80)
				break
			}
		}

		metas = append(metas, Meta{
			ID:           conv.ID,
			Title:        conv.Title,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
			Preview:      preview,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Delete removes a stored session by ID.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// DeleteAll removes every stored session.
func (s *Store) DeleteAll() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}
	return nil
}

// enforceLimit removes the oldest sessions when over MaxSessions.
func (s *Store) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxSessions {
		return
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	excess := len(metas) - s.MaxSessions
	for i := 0; i < excess; i++ {
		s.Delete(metas[i].ID)
	}
}

// filePath returns the file path for a session ID.
func (s *Store) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// EXPORT / DISPLAY
// =============================================================================

// FormatList formats stored sessions as a display table.
func FormatList(sessions []Meta) string {
	if len(sessions) == 0 {
		return "Chưa có phiên trò chuyện nào."
	}

	var sb strings.Builder
	sb.WriteString("Phiên trò chuyện:\n")
	sb.WriteString("-----------------------------------------------------\n")
	sb.WriteString(pad("ID", 14) + " " + pad("Tạo lúc", 20) + " " + pad("Tin nhắn", 8) + " Nội dung\n")
	sb.WriteString("-----------------------------------------------------\n")

	for _, m := range sessions {
		id := m.ID
		if len(id) > 14 {
			id = id[:14]
		}
		sb.WriteString(pad(id, 14) + " " +
			pad(m.CreatedAt.Format("2006-01-02 15:04"), 20) + " " +
			pad(util.IntToString(m.MessageCount), 8) + " " +
			util.TruncateRunes(m.Preview, 30) + "\n")
	}
	return sb.String()
}

// ExportMarkdown renders a stored session as Markdown.
func ExportMarkdown(conv *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("# " + conv.Title + "\n\n")
	sb.WriteString("Tạo lúc: " + conv.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range conv.Messages {
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + msg.TimeLabel() + "):\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// pad pads a string to width with spaces (rune-aware).
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(runes))
}
