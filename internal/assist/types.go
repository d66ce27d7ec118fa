// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package assist

import "encoding/json"

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// DefaultLanguage is the language tag sent with every question.
const DefaultLanguage = "vietnamese"

// AskRequest is the request body for the /api/ask endpoint.
type AskRequest struct {
	Question         string `json:"question"`
	Language         string `json:"language"`
	EnhanceRetrieval bool   `json:"enhance_retrieval"`
}

// AskResponse is the raw response from the /api/ask endpoint.
//
// Answer may be absent; Sources is kept raw because its shape is not
// contractually a list (see model.ParseSources).
type AskResponse struct {
	Answer  string          `json:"answer"`
	Sources json.RawMessage `json:"sources,omitempty"`
}

// BackendError is the error body the backend returns on failures.
type BackendError struct {
	Error string `json:"error"`
}
