// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing and dispatch for tibschat.

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSessions
	CmdPersonas
	CmdModels
	CmdStatus
	CmdConfig
	CmdMigrate
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string
	Persona string

	// Command-specific
	Query      string
	Subcommand string

	// Raw args remaining after global flag parsing
	Raw []string
}

const usageText = `tibschat - persona-driven chat for local models

Tibschat is a terminal front-end for Ollama with persistent,
named conversations and reusable system-prompt personas.

Usage:
  tibschat                        Start TUI (default)
  tibschat ask "question"         Ask a single question
  tibschat chat                   Interactive chat REPL
  tibschat sessions [subcommand]  Conversation management
  tibschat personas [subcommand]  Persona management
  tibschat models                 List available models
  tibschat status, s              Show system status
  tibschat config [show|set|path] Configuration
  tibschat migrate                Import a legacy single-history file
  tibschat version                Show version
  tibschat help                   Show this help

Session Commands:
  tibschat sessions list            List all conversations
  tibschat sessions show <id>       Show a conversation transcript
  tibschat sessions search <query>  Search names and system prompts
  tibschat sessions new [name]      Create a conversation
  tibschat sessions rename <id> <name>
  tibschat sessions delete <id>     Delete (the last one is protected)
  tibschat sessions export <id>     Export a conversation
    --format md|json|html           Export format (default: md)
    --output DIR                    Output directory (default: .)
  tibschat sessions import <file>   Import a conversation document

Persona Commands:
  tibschat personas list            List personas (predefined + custom)
  tibschat personas show <name>     Show a persona's system prompt
  tibschat personas save <name> <prompt...>
  tibschat personas delete <name>   Delete a custom persona
  tibschat personas export          Export custom personas
    --output FILE                   Write to file (default: stdout)
  tibschat personas import <file>   Merge personas from an export
    --on-conflict skip|overwrite    Conflict policy (default: skip)

Global Flags:
  -q, --quiet       Minimal output
  -v, --verbose     Debug output
  --model NAME      Override default model
  --persona NAME    Apply a persona to the conversation

Examples:
  tibschat                                Start the TUI
  tibschat ask "What is a goroutine?"     One-shot question
  tibschat ask --persona "Coding Assistant" "Review this diff"
  tibschat chat --model llama3            Chat with a specific model
  tibschat sessions export <id> --format html
  tibschat personas save "Pirate" "You are a pirate. Answer in pirate speak."

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("tibschat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out from Parse for testing.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "session", "sessions":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdSessions, parsedArgs

	case "persona", "personas":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdPersonas, parsedArgs

	case "models", "model":
		return CmdModels, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdConfig, parsedArgs

	case "migrate":
		return CmdMigrate, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command is treated as a direct question.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		parseAskArgs(&parsedArgs, parsedArgs.Raw)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--model", "-m":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--persona", "-p":
			if i+1 < len(args) {
				i++
				parsedArgs.Persona = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--persona="):
				parsedArgs.Persona = strings.TrimPrefix(arg, "--persona=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs joins non-flag args into the query.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		if strings.HasPrefix(arg, "-") {
			// Flags with values consume the next token.
			if (arg == "--model" || arg == "-m" || arg == "--persona" || arg == "-p") && i+1 < len(remaining) {
				i++
			}
			continue
		}
		query = append(query, arg)
	}
	args.Query = strings.Join(query, " ")
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
