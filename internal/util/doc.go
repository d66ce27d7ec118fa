// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers: rune-safe string truncation
// for Vietnamese text and crash-safe atomic file writes.
package util
