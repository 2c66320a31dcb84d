// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the tibschat CLI.
//
// Handles "tibschat ask" which sends one question through the active
// conversation and prints the reply, rendered as markdown on a TTY.
//
// Examples:
//   tibschat ask "What is a goroutine?"
//   tibschat ask --model llama3 "Summarize this"
//   tibschat ask --persona "Coding Assistant" "Review this function"

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/session"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the shared glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails.
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a response, with markdown rendering on a TTY.
// Piped output stays plain so it is machine-readable.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Println(response)
	}
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) error {
	if args.Query == "" {
		return ErrMissingArgument("question", `tibschat ask "What is a goroutine?"`)
	}

	cfg, err := config.Load()
	if err != nil {
		return WrapError(err, "failed to load configuration")
	}

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}

	if args.Model != "" {
		sess.Model = args.Model
	}
	if args.Persona != "" {
		if err := sess.SelectPersona(args.Persona); err != nil {
			return err
		}
	}

	timeout := time.Duration(cfg.Ollama.GenerateTimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reply, err := sess.Send(ctx, args.Query)
	if err != nil {
		return err
	}

	displayResponse(reply)
	return nil
}
