// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the command-line surface of the assistant:
// argument parsing, the one-shot ask command, the line-based chat REPL,
// and the session/config/cache maintenance subcommands.
package cli
