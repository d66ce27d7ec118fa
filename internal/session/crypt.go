// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a stored blob as encrypted
// (format: ENC:base64(nonce|ciphertext|tag)).
const EncryptedPrefix = "ENC:"

// NonceSize is the size of the nonce/IV for AES-GCM (12 bytes / 96 bits).
const NonceSize = 12

// KeySize is the size of the AES-256 key (32 bytes / 256 bits).
const KeySize = 32

// SaltSize is the size of the salt for key derivation (32 bytes).
const SaltSize = 32

// PBKDF2Iterations is the number of iterations for PBKDF2-SHA-256 key
// derivation. OWASP 2023 recommends 600,000+ against modern hardware.
const PBKDF2Iterations = 600000

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidCiphertext indicates the ciphertext format is invalid.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates decryption failed (wrong key or tampered data).
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// zeroBytes zeros key material to prevent memory disclosure via crash dumps.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// CIPHER
// =============================================================================

// Cipher provides AES-256-GCM authenticated encryption for session files.
type Cipher struct {
	aead cipher.AEAD
}

// DeriveKey derives an AES-256 key from a password and salt using
// PBKDF2-SHA-256.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// NewCipher creates a cipher from a raw 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// LoadOrCreateCipher loads the session key from keyPath, generating a fresh
// random key on first use. The key file is created with 0600 permissions.
func LoadOrCreateCipher(keyPath string) (*Cipher, error) {
	key, err := os.ReadFile(keyPath)
	if err == nil && len(key) == KeySize {
		defer zeroBytes(key)
		return NewCipher(key)
	}

	key = make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	defer zeroBytes(key)

	if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to store session key: %w", err)
	}

	return NewCipher(key)
}

// Encrypt encrypts plaintext and returns ENC:base64(nonce|ciphertext|tag).
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	out := EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed)
	return []byte(out), nil
}

// Decrypt decrypts data produced by Encrypt.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	s := string(data)
	if len(s) < len(EncryptedPrefix) || s[:len(EncryptedPrefix)] != EncryptedPrefix {
		return nil, ErrInvalidCiphertext
	}

	raw, err := base64.StdEncoding.DecodeString(s[len(EncryptedPrefix):])
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	if len(raw) < NonceSize {
		return nil, ErrInvalidCiphertext
	}

	nonce, ciphertext := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// IsEncrypted reports whether stored data carries the encryption prefix.
func IsEncrypted(data []byte) bool {
	return len(data) >= len(EncryptedPrefix) && string(data[:len(EncryptedPrefix)]) == EncryptedPrefix
}
