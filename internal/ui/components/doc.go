// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the assistant TUI:
// message bubbles, the scrollable chat viewport, loading spinner, toast
// notifications, and follow-up suggestions.
package components
