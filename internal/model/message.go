// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Bạn"
	case RoleAssistant:
		return "Trợ lý"
	case RoleSystem:
		return "Hệ thống"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// PendingText is the placeholder shown while an assistant reply is in flight.
const PendingText = "Đang tìm kiếm thông tin..."

// Message represents a single entry in a conversation.
//
// ID, Role and Timestamp are fixed at creation. Content, Loading and Sources
// change only through Resolve, which fires at most once per message.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Loading is true while the assistant reply is awaited.
	Loading bool `json:"loading,omitempty"`

	// Sources returned by the backend alongside the answer.
	// Empty means no follow-up suggestions are offered.
	Sources []Source `json:"sources,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewPendingMessage creates the assistant placeholder that is shown while a
// question is in flight. It starts loading with the placeholder text.
func NewPendingMessage() *Message {
	return &Message{
		ID:        generateID(),
		Role:      RoleAssistant,
		Content:   PendingText,
		Timestamp: time.Now(),
		Loading:   true,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsBot returns true for assistant-authored entries.
func (m *Message) IsBot() bool {
	return m.Role == RoleAssistant
}

// Resolve finishes a loading message with its final content and sources.
// Calling Resolve on an already resolved message is a no-op, so loading
// becomes false exactly once for every pending message.
func (m *Message) Resolve(content string, sources []Source) {
	if !m.Loading {
		return
	}
	m.Content = content
	m.Loading = false
	if len(sources) > 0 {
		m.Sources = sources
	}
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Vietnamese text correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// TimeLabel returns the creation time formatted for display.
func (m *Message) TimeLabel() string {
	return m.Timestamp.Format("15:04")
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
