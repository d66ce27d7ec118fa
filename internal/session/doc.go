// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides conversation persistence for the assistant.
//
// Conversations are stored one JSON file per session under the session
// directory (default ~/.medichain/sessions). Writes are atomic, and files can
// optionally be encrypted at rest since hospital conversations may contain
// patient-identifying details.
package session
