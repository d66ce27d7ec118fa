// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"os"
	"testing"

	"github.com/medichain/assist-tui/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestAddAndResolveMessage(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.AddUserMessage("Thủ tục xuất viện cần giấy tờ gì?"); err != nil {
		t.Fatalf("AddUserMessage: %v", err)
	}
	pendingID, err := s.AddPendingMessage()
	if err != nil {
		t.Fatalf("AddPendingMessage: %v", err)
	}

	msg := s.Conversation().FindMessage(pendingID)
	if msg == nil || !msg.Loading {
		t.Fatal("pending message should exist and be loading")
	}

	sources := []model.Source{{ID: "doc-7", Title: "Quy trình xuất viện"}}
	if err := s.ResolveMessage(pendingID, "Cần mang theo CMND và sổ khám bệnh.", sources); err != nil {
		t.Fatalf("ResolveMessage: %v", err)
	}

	msg = s.Conversation().FindMessage(pendingID)
	if msg.Loading {
		t.Error("message should no longer be loading")
	}
	if msg.Content != "Cần mang theo CMND và sổ khám bệnh." {
		t.Errorf("Content = %q", msg.Content)
	}
	if len(msg.Sources) != 1 {
		t.Errorf("Sources = %+v", msg.Sources)
	}
}

func TestResolveUnknownMessage(t *testing.T) {
	s := newTestStore(t)

	err := s.ResolveMessage("msg_missing", "x", nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSaveFailureSurfaced(t *testing.T) {
	s := newTestStore(t)
	// Point the store at a directory that does not exist so writes fail.
	s.BaseDir = "/nonexistent/medichain-test"

	id, err := s.AddUserMessage("xin chào")
	if err == nil {
		t.Error("expected write failure to surface")
	}
	// The in-memory append already happened, so the caller still gets a
	// usable ID.
	if id == "" {
		t.Fatal("message ID must be returned even when the save fails")
	}
	if s.Conversation().FindMessage(id) == nil {
		t.Error("message should remain in the conversation")
	}

	pendingID, err := s.AddPendingMessage()
	if err == nil {
		t.Error("expected write failure to surface for the placeholder")
	}
	if pendingID == "" {
		t.Fatal("placeholder ID must be returned even when the save fails")
	}
	if err := s.ResolveMessage(pendingID, "vẫn phân giải được", nil); err == nil {
		t.Error("resolution should still report the save failure")
	} else if errors.Is(err, ErrSessionNotFound) {
		t.Error("placeholder must be found despite the failed save")
	}
	if msg := s.Conversation().FindMessage(pendingID); msg == nil || msg.Loading {
		t.Error("placeholder should resolve in memory despite the failed save")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	s.AddUserMessage("Bệnh viện có làm việc chủ nhật không?")
	id := s.Conversation().ID

	s2, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s2.Load(id); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s2.Conversation().MessageCount() != 1 {
		t.Errorf("MessageCount = %d, want 1", s2.Conversation().MessageCount())
	}
	if s2.Conversation().Messages[0].Content != "Bệnh viện có làm việc chủ nhật không?" {
		t.Errorf("Content = %q", s2.Conversation().Messages[0].Content)
	}
}

func TestLoadMostRecent(t *testing.T) {
	dir := t.TempDir()

	s, _ := NewStore(dir)
	s.AddUserMessage("phiên đầu tiên")

	s2, _ := NewStore(dir)
	if err := s2.LoadMostRecent(); err != nil {
		t.Fatalf("LoadMostRecent: %v", err)
	}
	if s2.Conversation().MessageCount() != 1 {
		t.Errorf("should load the stored session, got %d messages", s2.Conversation().MessageCount())
	}

	// Empty directory keeps the fresh conversation.
	s3, _ := NewStore(t.TempDir())
	if err := s3.LoadMostRecent(); err != nil {
		t.Fatalf("LoadMostRecent empty: %v", err)
	}
	if s3.Conversation().MessageCount() != 0 {
		t.Error("fresh conversation expected")
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	s.AddUserMessage("một")
	s.AddSystemMessage("hai")

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Conversation().MessageCount() != 0 {
		t.Error("conversation should be empty after Clear")
	}

	// The empty session is persisted, not deleted.
	if err := s.Load(s.Conversation().ID); err != nil {
		t.Errorf("empty session should remain loadable: %v", err)
	}
}

func TestEncryptedStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewEncryptedStore(dir)
	if err != nil {
		t.Fatalf("NewEncryptedStore: %v", err)
	}
	s.AddUserMessage("Bệnh nhân Nguyễn Văn A cần chuyển viện")
	id := s.Conversation().ID

	// On-disk content must not be plaintext.
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !IsEncrypted(data) {
		t.Fatal("session file should be encrypted")
	}

	// A second encrypted store sharing the key file can read it back.
	s2, err := NewEncryptedStore(dir)
	if err != nil {
		t.Fatalf("NewEncryptedStore: %v", err)
	}
	if err := s2.Load(id); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s2.Conversation().Messages[0].Content != "Bệnh nhân Nguyễn Văn A cần chuyển viện" {
		t.Error("decrypted content mismatch")
	}
}

func TestCipherRejectsTamperedData(t *testing.T) {
	c, err := LoadOrCreateCipher(t.TempDir() + "/session.key")
	if err != nil {
		t.Fatalf("LoadOrCreateCipher: %v", err)
	}

	enc, err := c.Encrypt([]byte("hồ sơ bệnh án"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Flip a byte inside the base64 payload.
	enc[len(enc)-2] ^= 0x01
	if _, err := c.Decrypt(enc); err == nil {
		t.Error("tampered ciphertext should fail to decrypt")
	}

	if _, err := c.Decrypt([]byte("not encrypted")); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("expected ErrInvalidCiphertext, got %v", err)
	}
}
