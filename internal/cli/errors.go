// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/medichain/assist-tui/internal/assist"
)

// =============================================================================
// EXIT CODES
// =============================================================================

// Exit codes follow a small taxonomy so that scripts can distinguish
// "backend is down" from "you typed the command wrong".
const (
	ExitSuccess    = 0 // Command completed
	ExitError      = 1 // Generic failure
	ExitUsage      = 2 // Invalid arguments
	ExitConnection = 3 // Backend unreachable
	ExitNotFound   = 4 // Requested resource does not exist
	ExitTimeout    = 5 // Backend did not answer in time
)

// ValidationError signals bad command-line input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, a ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, a...)}
}

// NotFoundError signals that a named resource (session, config file) is missing.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

// GetExitCode maps an error to its exit code. Typed errors are matched
// first, then the assist package classifiers, then substring heuristics.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsage
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitNotFound
	}

	var clientErr *assist.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case assist.ErrTypeTimeout:
			return ExitTimeout
		case assist.ErrTypeConnection, assist.ErrTypeUnavailable:
			return ExitConnection
		}
		return ExitError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return ExitTimeout
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"):
		return ExitConnection
	case strings.Contains(msg, "not found"):
		return ExitNotFound
	}

	return ExitError
}

// DisplayError writes an error to stderr, as JSON when requested.
func DisplayError(err error, jsonOut bool) {
	if err == nil {
		return
	}
	if jsonOut {
		fmt.Fprintf(os.Stderr, "{\"error\":%q,\"code\":%d}\n", err.Error(), GetExitCode(err))
		return
	}
	fmt.Fprintf(os.Stderr, "Lỗi: %v\n", err)
}
