// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist provides the HTTP client for the hospital question-answering
// backend.
//
// The backend receives a question plus fixed request options (language tag,
// retrieval-enhancement flag) and returns an answer string with an optional
// list of retrieved source records. The response's sources field has no
// guaranteed shape and is decoded defensively; a malformed sources payload
// degrades to "no sources" instead of failing the answer.
//
// Errors are classified into a small taxonomy (connectivity, timeout,
// service-unavailable, generic) and rendered as Vietnamese user-facing
// strings by Classify. Callers surface those strings in the conversation
// instead of propagating the raw error.
package assist
