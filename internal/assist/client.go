// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the assist client.
type ClientConfig struct {
	// BaseURL is the QA backend base URL (default: http://127.0.0.1:8080)
	BaseURL string

	// Timeout for ask requests (default: 60s; retrieval-enhanced answers
	// can take a while)
	Timeout time.Duration

	// Language tag sent with every question (default: "vietnamese")
	Language string

	// EnhanceRetrieval toggles the backend's retrieval-enhancement flag
	// (default: true)
	EnhanceRetrieval bool

	// RatePerMin limits outgoing questions per minute (default: 30).
	// Zero disables rate limiting.
	RatePerMin int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:          "http://127.0.0.1:8080",
		Timeout:          60 * time.Second,
		Language:         DefaultLanguage,
		EnhanceRetrieval: true,
		RatePerMin:       30,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the question-answering backend.
//
// The Client is safe for concurrent use, though the chat layer serializes
// submissions anyway (one in-flight question at a time).
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new assist client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new assist client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8080"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.Language == "" {
		config.Language = DefaultLanguage
	}

	var limiter *rate.Limiter
	if config.RatePerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RatePerMin)/60.0), config.RatePerMin)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: limiter,
	}
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the backend is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrConnection
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeUnavailable,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// ASK
// =============================================================================

// Ask sends one question to the backend and returns the raw response.
//
// The request always carries the configured language tag and the
// retrieval-enhancement flag. No deadline is imposed beyond the HTTP
// client's own timeout; the caller decides how a timeout surfaces.
func (c *Client) Ask(ctx context.Context, question string) (*AskResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "timeout waiting for rate limiter", Cause: err}
		}
	}

	reqBody := AskRequest{
		Question:         question,
		Language:         c.config.Language,
		EnhanceRetrieval: c.config.EnhanceRetrieval,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/ask", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "network connection failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &ClientError{Type: ErrTypeUnavailable, Message: "backend endpoint not found: 404"}
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, ErrUnavailable
	}

	if resp.StatusCode != http.StatusOK {
		// Try to read the backend's error message
		var backendErr BackendError
		if err := json.NewDecoder(resp.Body).Decode(&backendErr); err == nil && backendErr.Error != "" {
			return nil, &ClientError{
				Type:    ErrTypeInvalidResponse,
				Message: backendErr.Error,
			}
		}
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "ask request failed: " + resp.Status,
		}
	}

	var result AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}
