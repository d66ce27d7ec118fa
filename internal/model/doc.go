// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for assistant conversations.
//
// A Conversation is an ordered log of Messages. User messages are immutable
// after creation; assistant messages are created in a loading state and
// resolved exactly once, either with an answer from the backend or with a
// user-facing error text. Sources attached to a resolved answer carry the
// follow-up questions the UI offers as suggestions.
//
// The package is free of UI and transport dependencies so that the chat
// view, the CLI and the session store can all share it.
package model
