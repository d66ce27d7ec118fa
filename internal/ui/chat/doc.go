// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the assistant chat view for the TUI.
//
// The model owns the question lifecycle: at most one question is in flight at
// a time, every submission produces a pending placeholder that is resolved
// exactly once (with an answer or a readable error), and answers are revealed
// character by character while the viewport follows the bottom.
package chat
