// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the tibschat CLI.
//
// Handles "tibschat chat", a readline-style REPL over the active
// conversation. All messages persist through the conversation store, so a
// chat resumed later picks up exactly where it left off.
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /new [name]         Start a new conversation
//   /list, /ls          List conversations
//   /switch <id>        Switch to another conversation
//   /rename <name>      Rename the active conversation
//   /delete             Delete the active conversation
//   /persona [name]     Show or apply a persona
//   /personas           List personas
//   /prompt <text>      Set the system prompt directly
//   /model [name]       Show or switch model
//   /models             List available models
//   /export [format]    Export the conversation (md, json, html)
//   /history            Show the transcript
//   /quit, /q           Exit chat

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/export"
	"github.com/tibsdev/tibschat/internal/model"
	"github.com/tibsdev/tibschat/internal/persona"
	"github.com/tibsdev/tibschat/internal/session"
	"github.com/tibsdev/tibschat/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "input_history"),
	}
	cli.loadHistory()
	return cli
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

func (c *ChatCLI) saveHistory() {
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) error {
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

	if !args.Quiet {
		printChatWelcome(sess)
	}

	input := NewChatCLI()
	defer input.Close()

	for {
		line, err := input.ReadInput(PromptStyle.Render("tibschat> "))
		if err != nil {
			// Ctrl+C or Ctrl+D exits gracefully.
			fmt.Println()
			fmt.Println(DimStyle.Render("Goodbye!"))
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, err := handleSlashCommand(line, sess, cfg)
			if err != nil {
				DisplayError(err)
			}
			if !keepGoing {
				fmt.Println(DimStyle.Render("Goodbye!"))
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			fmt.Println(DimStyle.Render("Goodbye!"))
			return nil
		}

		if err := sendChatMessage(sess, cfg, line); err != nil {
			DisplayError(err)
		}
	}
}

// sendChatMessage sends one message and prints the reply.
func sendChatMessage(sess *session.Context, cfg *config.Config, content string) error {
	timeout := time.Duration(cfg.Ollama.GenerateTimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	reply, err := sess.Send(ctx, content)
	if err != nil {
		return err
	}

	fmt.Println()
	displayResponse(reply)
	fmt.Println()

	conv, convErr := sess.Active()
	if convErr == nil {
		fmt.Fprintf(os.Stderr, "%s %s | %d messages | %s\n",
			InfoStyle.Render("[Stats]"),
			HighlightStyle.Render(sess.ModelSelector()),
			len(conv.Messages),
			time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (keepGoing, error) where keepGoing=false means exit.
func handleSlashCommand(cmd string, sess *session.Context, cfg *config.Config) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printChatHelp()
		return true, nil

	case "/new", "/n":
		conv, err := sess.NewConversation(strings.Join(rest, " "))
		if err != nil {
			return true, err
		}
		fmt.Printf("%s Started %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(conv.DisplayName()))
		return true, nil

	case "/list", "/ls", "/l":
		return true, printConversationList(sess)

	case "/switch", "/sw":
		if len(rest) == 0 {
			return true, ErrMissingArgument("id", "/switch <conversation-id>")
		}
		if err := sess.SwitchTo(rest[0]); err != nil {
			return true, err
		}
		conv, _ := sess.Active()
		fmt.Printf("%s Switched to %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(conv.DisplayName()))
		return true, nil

	case "/rename":
		if len(rest) == 0 {
			return true, ErrMissingArgument("name", "/rename <new name>")
		}
		if err := sess.Conversations.Rename(sess.ActiveID, strings.Join(rest, " ")); err != nil {
			return true, err
		}
		fmt.Println(SuccessStyle.Render("[OK]") + " Renamed")
		return true, nil

	case "/delete", "/del":
		if !promptConfirm("Delete the active conversation?") {
			fmt.Println(DimStyle.Render("Cancelled"))
			return true, nil
		}
		if err := sess.Delete(sess.ActiveID); err != nil {
			return true, err
		}
		conv, _ := sess.Active()
		fmt.Printf("%s Deleted. Now on %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(conv.DisplayName()))
		return true, nil

	case "/persona":
		if len(rest) == 0 {
			conv, err := sess.Active()
			if err != nil {
				return true, err
			}
			if conv.SystemPrompt == "" {
				fmt.Println(DimStyle.Render("[No system prompt set]"))
			} else {
				fmt.Printf("%s %s\n", InfoStyle.Render("[Prompt]"), conv.SystemPrompt)
			}
			return true, nil
		}
		name := strings.Join(rest, " ")
		if err := sess.SelectPersona(name); err != nil {
			return true, err
		}
		fmt.Printf("%s Applied persona %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(name))
		return true, nil

	case "/personas":
		return true, printPersonaList(sess)

	case "/prompt":
		if len(rest) == 0 {
			return true, ErrMissingArgument("text", "/prompt You are a helpful assistant.")
		}
		if err := sess.SetSystemPrompt(strings.Join(rest, " ")); err != nil {
			return true, err
		}
		fmt.Println(SuccessStyle.Render("[OK]") + " System prompt updated")
		return true, nil

	case "/model", "/m":
		if len(rest) == 0 {
			fmt.Printf("%s Current model: %s\n",
				InfoStyle.Render("[Model]"),
				HighlightStyle.Render(sess.ModelSelector()))
			return true, nil
		}
		sess.Model = rest[0]
		fmt.Printf("%s Switched to model: %s\n", SuccessStyle.Render("[OK]"), rest[0])
		return true, nil

	case "/models":
		return true, printModelList(sess)

	case "/export":
		format := "md"
		if len(rest) > 0 {
			format = rest[0]
		}
		return true, exportActiveConversation(sess, format)

	case "/history":
		return true, printTranscript(sess)

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// exportActiveConversation writes the active conversation to the cwd.
func exportActiveConversation(sess *session.Context, format string) error {
	conv, err := sess.Active()
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}

	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%s Exported to %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(path))
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// printChatWelcome prints the welcome banner.
func printChatWelcome(sess *session.Context) {
	conv, err := sess.Active()
	if err != nil {
		return
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("tibschat interactive chat"))
	fmt.Printf("%s %s\n",
		InfoStyle.Render("Conversation:"),
		HighlightStyle.Render(conv.DisplayName()))
	fmt.Printf("%s %s\n",
		InfoStyle.Render("Model:"),
		HighlightStyle.Render(sess.ModelSelector()))
	if conv.SystemPrompt != "" {
		fmt.Printf("%s %s\n",
			InfoStyle.Render("Prompt:"),
			DimStyle.Render(util.Truncate(util.Flatten(conv.SystemPrompt), 60)))
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available slash commands.
func printChatHelp() {
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/new [name]", "Start a new conversation"},
		{"/list, /ls", "List conversations"},
		{"/switch <id>", "Switch conversation"},
		{"/rename <name>", "Rename the active conversation"},
		{"/delete", "Delete the active conversation"},
		{"/persona [name]", "Show or apply a persona"},
		{"/personas", "List personas"},
		{"/prompt <text>", "Set the system prompt directly"},
		{"/model [name]", "Show or switch model"},
		{"/models", "List available models"},
		{"/export [format]", "Export conversation (md, json, html)"},
		{"/history", "Show the transcript"},
		{"/quit, /q", "Exit chat"},
	}

	fmt.Println()
	fmt.Println(SectionStyle.Render("Available Commands"))
	fmt.Println(RenderSeparator(24))
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			CommandStyle.Render(fmt.Sprintf("%-17s", c.cmd)),
			DimStyle.Render(c.desc))
	}
	fmt.Println()
}

// printConversationList lists all conversations, active one marked.
func printConversationList(sess *session.Context) error {
	metas, err := sess.Conversations.ListSummaries()
	if err != nil {
		return err
	}

	fmt.Println()
	for _, meta := range metas {
		marker := "  "
		name := meta.Name
		if meta.ID == sess.ActiveID {
			marker = HighlightStyle.Render("* ")
		}
		fmt.Printf("%s%s  %s  %s\n",
			marker,
			ValueStyle.Render(util.PadRight(util.TruncateDisplay(name, model.NameDisplayWidth), model.NameDisplayWidth)),
			DimStyle.Render(fmt.Sprintf("%3d msgs", meta.MessageCount)),
			DimStyle.Render(formatTimeAgo(meta.UpdatedAt)))
		fmt.Printf("  %s\n", DimStyle.Render(meta.ID))
	}
	fmt.Println()
	return nil
}

// printPersonaList lists all personas.
func printPersonaList(sess *session.Context) error {
	infos, err := sess.Personas.List()
	if err != nil {
		return err
	}

	fmt.Println()
	for _, info := range infos {
		tag := DimStyle.Render("custom")
		if info.Origin == persona.OriginPredefined {
			tag = InfoStyle.Render("built-in")
		}
		fmt.Printf("  %s  %s\n", ValueStyle.Render(util.PadRight(info.Name, 24)), tag)
	}
	fmt.Println()
	return nil
}

// printModelList lists available models.
func printModelList(sess *session.Context) error {
	entries := sess.Models.Available(context.Background())

	fmt.Println()
	for _, entry := range entries {
		fmt.Printf("  %s  %s\n",
			ValueStyle.Render(util.PadRight(entry.Name, 28)),
			DimStyle.Render(entry.ID))
	}
	fmt.Println()
	return nil
}

// printTranscript shows the active conversation's messages.
func printTranscript(sess *session.Context) error {
	conv, err := sess.Active()
	if err != nil {
		return err
	}
	if len(conv.Messages) == 0 {
		fmt.Println(DimStyle.Render("[No messages yet]"))
		return nil
	}

	fmt.Println()
	for i, msg := range conv.Messages {
		role := HighlightStyle.Render("You")
		if msg.Role == model.RoleAssistant {
			role = InfoStyle.Render("AI")
		}
		fmt.Printf("  %d. %s: %s\n", i+1, role,
			util.Truncate(util.Flatten(msg.Content), 100))
	}
	fmt.Println()
	return nil
}
