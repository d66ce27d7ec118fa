// Copyright (c) 2025 MediChain Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (set at build time by the main package).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies which subcommand was requested.
type Command int

const (
	CmdTUI     Command = iota // Default: full-screen chat interface
	CmdAsk                    // One-shot question, answer to stdout
	CmdChat                   // Line-based REPL for dumb terminals
	CmdStatus                 // Backend connectivity check
	CmdSession                // Session maintenance (list, export, delete)
	CmdConfig                 // Configuration inspection
	CmdCache                  // Answer cache maintenance
	CmdVersion                // Print version info
	CmdHelp                   // Print usage
)

// Args holds parsed command-line arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config: explicit config file path
	BackendURL string // --backend: override backend base URL
	JSON       bool   // --json: machine-readable output
	NoColor    bool   // --no-color: disable ANSI styling
	NoCache    bool   // --no-cache: bypass the answer cache

	// ask
	Question string

	// session / config / cache subcommands
	Subcommand string
	SubArgs    []string
}

const usageText = `medichain-assist - Trợ lý thủ tục hành chính bệnh viện

Usage:
  medichain-assist [flags]                 Start the full-screen chat interface
  medichain-assist ask <question> [flags]  Ask a single question, print the answer
  medichain-assist chat [flags]            Line-based chat for terminals without TUI support
  medichain-assist status                  Check backend connectivity
  medichain-assist session <list|export|delete|delete-all> [id]
  medichain-assist config <show|path|init>
  medichain-assist cache <stats|clear>
  medichain-assist version                 Show version information
  medichain-assist help                    Show this help

Global Flags:
  --config <path>    Explicit config file (default: ~/.medichain/config.toml)
  --backend <url>    Override the backend base URL
  --json             Machine-readable output (ask, status, version)
  --no-color         Disable colored output
  --no-cache         Bypass the answer cache

Examples:
  medichain-assist
  medichain-assist ask "Thủ tục nhập viện cần giấy tờ gì?"
  echo "Thủ tục xuất viện?" | medichain-assist ask --json
  medichain-assist session list
  medichain-assist session export abc123 > phien.md
  medichain-assist cache clear

Version: %s
`

// PrintUsage writes the help text to stdout.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion writes version information to stdout.
func PrintVersion(jsonOut bool) {
	if jsonOut {
		fmt.Printf("{\"version\":%q,\"commit\":%q,\"built\":%q}\n", Version, GitCommit, BuildDate)
		return
	}
	fmt.Printf("medichain-assist %s\n", Version)
	fmt.Printf("  commit: %s\n", GitCommit)
	fmt.Printf("  built:  %s\n", BuildDate)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads os.Args and returns the requested command plus its arguments.
// Unknown commands fall through to the TUI so that plain invocation always
// lands somewhere useful.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an explicit argument slice. Split out for testing.
func ParseArgs(argv []string) (Command, Args) {
	var args Args

	rest := parseGlobalFlags(argv, &args)
	if len(rest) == 0 {
		return CmdTUI, args
	}

	cmd := rest[0]
	rest = rest[1:]

	switch cmd {
	case "ask", "hoi":
		return CmdAsk, parseAskArgs(rest, args)
	case "chat":
		return CmdChat, args
	case "status", "ping":
		return CmdStatus, args
	case "session", "sessions", "phien":
		return CmdSession, parseSubcommandArgs(rest, args)
	case "config", "cfg":
		return CmdConfig, parseSubcommandArgs(rest, args)
	case "cache":
		return CmdCache, parseSubcommandArgs(rest, args)
	case "version", "--version", "-v":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		// Bare flags or typos start the TUI rather than erroring out.
		return CmdTUI, args
	}
}

// parseGlobalFlags consumes leading global flags and returns the remainder.
func parseGlobalFlags(argv []string, args *Args) []string {
	rest := make([]string, 0, len(argv))
	i := 0
	for i < len(argv) {
		arg := argv[i]
		switch {
		case arg == "--json":
			args.JSON = true
		case arg == "--no-color":
			args.NoColor = true
		case arg == "--no-cache":
			args.NoCache = true
		case arg == "--config" && i+1 < len(argv):
			i++
			args.ConfigPath = argv[i]
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--backend" && i+1 < len(argv):
			i++
			args.BackendURL = argv[i]
		case strings.HasPrefix(arg, "--backend="):
			args.BackendURL = strings.TrimPrefix(arg, "--backend=")
		default:
			rest = append(rest, arg)
		}
		i++
	}
	return rest
}

// parseAskArgs joins the remaining positional words into the question.
func parseAskArgs(rest []string, args Args) Args {
	positional := make([]string, 0, len(rest))
	for _, arg := range rest {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		positional = append(positional, arg)
	}
	args.Question = strings.Join(positional, " ")
	return args
}

// parseSubcommandArgs captures the subcommand word and anything after it.
func parseSubcommandArgs(rest []string, args Args) Args {
	if len(rest) > 0 {
		args.Subcommand = rest[0]
		args.SubArgs = rest[1:]
	}
	return args
}

// =============================================================================
// HANDLERS
// =============================================================================

// HandleAsk runs the one-shot ask command and exits with a taxonomy code.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		DisplayError(err, args.JSON)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat runs the line-based chat REPL and exits with a taxonomy code.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		DisplayError(err, false)
		os.Exit(GetExitCode(err))
	}
}

// HandleStatus checks backend connectivity and exits with a taxonomy code.
func HandleStatus(args Args) {
	if err := HandleStatusCommand(args); err != nil {
		DisplayError(err, args.JSON)
		os.Exit(GetExitCode(err))
	}
}

// HandleSession dispatches session maintenance subcommands.
func HandleSession(args Args) {
	if err := HandleSessionCommand(args); err != nil {
		DisplayError(err, false)
		os.Exit(GetExitCode(err))
	}
}

// HandleConfig dispatches config subcommands.
func HandleConfig(args Args) {
	if err := HandleConfigCommand(args); err != nil {
		DisplayError(err, false)
		os.Exit(GetExitCode(err))
	}
}

// HandleCache dispatches cache maintenance subcommands.
func HandleCache(args Args) {
	if err := HandleCacheCommand(args); err != nil {
		DisplayError(err, false)
		os.Exit(GetExitCode(err))
	}
}

// HandleVersion prints version information.
func HandleVersion(args Args) {
	PrintVersion(args.JSON)
}

// HandleHelp prints usage.
func HandleHelp() {
	PrintUsage()
}
