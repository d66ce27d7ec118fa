// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides a local SQLite-backed answer cache.
//
// Hospital staff ask the same administrative questions repeatedly (visiting
// hours, insurance paperwork, discharge procedures). Caching answers keyed by
// the normalized question text avoids a backend round trip for repeats.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/medichain/assist-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrCacheMiss indicates no fresh entry exists for the question.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed = errors.New("cache closed")
)

// =============================================================================
// ANSWER CACHE
// =============================================================================

// Entry is a cached answer.
type Entry struct {
	Question  string
	Answer    string
	Sources   []model.Source
	CreatedAt time.Time
}

// Cache is a SQLite-backed answer cache keyed by normalized question text.
type Cache struct {
	db         *sql.DB
	ttl        time.Duration
	maxEntries int
}

const schema = `
CREATE TABLE IF NOT EXISTS answers (
	question_key TEXT PRIMARY KEY,
	question     TEXT NOT NULL,
	answer       TEXT NOT NULL,
	sources      TEXT NOT NULL DEFAULT '[]',
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_answers_created_at ON answers(created_at);
`

// Open opens (or creates) the answer cache at path.
func Open(path string, ttl time.Duration, maxEntries int) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl, maxEntries: maxEntries}, nil
}

// NormalizeQuestion produces the cache key for a question: NFC-normalized,
// lowercased, with collapsed whitespace. Vietnamese input may arrive in
// either composed or decomposed Unicode form depending on the input method.
func NormalizeQuestion(q string) string {
	q = norm.NFC.String(q)
	q = strings.ToLower(strings.TrimSpace(q))
	return strings.Join(strings.Fields(q), " ")
}

// Get returns the cached answer for a question, or ErrCacheMiss.
func (c *Cache) Get(question string) (*Entry, error) {
	if c.db == nil {
		return nil, ErrCacheClosed
	}

	key := NormalizeQuestion(question)

	var (
		entry      Entry
		sourcesRaw string
		createdAt  int64
	)
	err := c.db.QueryRow(
		"SELECT question, answer, sources, created_at FROM answers WHERE question_key = ?",
		key,
	).Scan(&entry.Question, &entry.Answer, &sourcesRaw, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	entry.CreatedAt = time.Unix(createdAt, 0)
	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		// Expired entries are deleted lazily on access.
		c.db.Exec("DELETE FROM answers WHERE question_key = ?", key)
		return nil, ErrCacheMiss
	}

	if err := json.Unmarshal([]byte(sourcesRaw), &entry.Sources); err != nil {
		entry.Sources = nil
	}
	return &entry, nil
}

// Put stores an answer for a question, replacing any previous entry.
func (c *Cache) Put(question, answer string, sources []model.Source) error {
	if c.db == nil {
		return ErrCacheClosed
	}

	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		sourcesJSON = []byte("[]")
	}

	_, err = c.db.Exec(`
		INSERT INTO answers (question_key, question, answer, sources, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(question_key) DO UPDATE SET
			question = excluded.question,
			answer = excluded.answer,
			sources = excluded.sources,
			created_at = excluded.created_at
	`, NormalizeQuestion(question), question, answer, string(sourcesJSON), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("cache store failed: %w", err)
	}

	if c.maxEntries > 0 {
		c.enforceLimit()
	}
	return nil
}

// enforceLimit removes the oldest entries when over maxEntries.
func (c *Cache) enforceLimit() {
	c.db.Exec(`
		DELETE FROM answers WHERE question_key IN (
			SELECT question_key FROM answers
			ORDER BY created_at ASC
			LIMIT max(0, (SELECT COUNT(*) FROM answers) - ?)
		)
	`, c.maxEntries)
}

// Size returns the number of cached answers.
func (c *Cache) Size() (int, error) {
	if c.db == nil {
		return 0, ErrCacheClosed
	}
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM answers").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Clear removes all cached answers.
func (c *Cache) Clear() error {
	if c.db == nil {
		return ErrCacheClosed
	}
	_, err := c.db.Exec("DELETE FROM answers")
	return err
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
