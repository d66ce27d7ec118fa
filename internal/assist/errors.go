// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package assist

import (
	"errors"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the assist client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnavailable
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrConnection  = &ClientError{Type: ErrTypeConnection, Message: "network connection failed"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "timeout waiting for backend response"}
	ErrUnavailable = &ClientError{Type: ErrTypeUnavailable, Message: "service unavailable"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsUnavailable checks if an error indicates the backend is unavailable.
func IsUnavailable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnavailable
	}
	return errors.Is(err, ErrUnavailable)
}

// =============================================================================
// USER-FACING CLASSIFICATION
// =============================================================================

// User-facing error texts, surfaced as the resolved content of a failed
// assistant message.
const (
	// FallbackAnswer is used when the backend returns a response without an
	// answer field.
	FallbackAnswer = "Xin lỗi, tôi không tìm thấy câu trả lời phù hợp cho câu hỏi này."

	MsgConnectivity = "Không thể kết nối đến máy chủ. Vui lòng kiểm tra kết nối mạng và thử lại."
	MsgTimeout      = "Yêu cầu đã hết thời gian chờ. Vui lòng thử lại sau."
	MsgUnavailable  = "Dịch vụ trợ lý tạm thời không khả dụng. Vui lòng thử lại sau ít phút."
	MsgGeneric      = "Đã xảy ra lỗi khi xử lý câu hỏi của bạn. Vui lòng thử lại."
)

// Classify converts a failed submission's error into the Vietnamese text
// shown to the user.
//
// Classification works by case-insensitive substring matching on the error
// message, first match wins, because the call layer's errors are not
// contractually structured (wrapped transport errors, backend free text).
func Classify(err error) string {
	if err == nil {
		return MsgGeneric
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "network"):
		return MsgConnectivity
	case strings.Contains(msg, "timeout"):
		return MsgTimeout
	case strings.Contains(msg, "unavailable"), strings.Contains(msg, "404"):
		return MsgUnavailable
	default:
		return MsgGeneric
	}
}
