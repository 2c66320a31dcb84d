// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions_cmd.go - Conversation management command handlers.
//
// Command: sessions
// Subcommands: list, show, search, new, rename, delete, export, import

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/export"
	"github.com/tibsdev/tibschat/internal/model"
	"github.com/tibsdev/tibschat/internal/session"
	"github.com/tibsdev/tibschat/internal/util"
)

// HandleSessions handles the "sessions" command.
func HandleSessions(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapError(err, "failed to load configuration")
	}
	sess, err := session.New(cfg)
	if err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return sessionsList(sess)
	case "show":
		return sessionsShow(sess, parser)
	case "search":
		return sessionsSearch(sess, parser)
	case "new":
		return sessionsNew(sess, parser)
	case "rename":
		return sessionsRename(sess, parser)
	case "delete", "rm":
		return sessionsDelete(sess, parser)
	case "export":
		return sessionsExport(sess, parser)
	case "import":
		return sessionsImport(sess, parser)
	default:
		return NewValidationError("subcommand", parser.Subcommand(),
			"expected list, show, search, new, rename, delete, export, or import")
	}
}

func sessionsList(sess *session.Context) error {
	metas, err := sess.Conversations.ListSummaries()
	if err != nil {
		return err
	}
	printSessionTable(sess, metas)
	return nil
}

func sessionsShow(sess *session.Context, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("id", "tibschat sessions show <id>")
	}

	conv, err := sess.Conversations.Load(id)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render(conv.Name))
	fmt.Printf("%s %s\n", LabelStyle.Render("ID"), DimStyle.Render(conv.ID))
	fmt.Printf("%s %s\n", LabelStyle.Render("Created"), conv.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("%s %s\n", LabelStyle.Render("Updated"), conv.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if conv.SystemPrompt != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("Prompt"), util.Flatten(conv.SystemPrompt))
	}
	fmt.Println()

	for _, msg := range conv.Messages {
		label := HighlightStyle.Render("You")
		if msg.Role == model.RoleAssistant {
			label = InfoStyle.Render("AI")
		}
		fmt.Printf("%s:\n%s\n\n", label, msg.Content)
	}
	return nil
}

func sessionsSearch(sess *session.Context, parser *ArgParser) error {
	query := parser.JoinPositional(1)
	if query == "" {
		return ErrMissingArgument("query", "tibschat sessions search <query>")
	}

	metas, err := sess.Conversations.Search(query)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("No conversations matched."))
		return nil
	}
	printSessionTable(sess, metas)
	return nil
}

func sessionsNew(sess *session.Context, parser *ArgParser) error {
	name := parser.JoinPositional(1)
	conv, err := sess.NewConversation(name)
	if err != nil {
		return err
	}
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(conv.DisplayName()))
	fmt.Printf("  %s\n", DimStyle.Render(conv.ID))
	return nil
}

func sessionsRename(sess *session.Context, parser *ArgParser) error {
	id := parser.Positional(1)
	name := parser.JoinPositional(2)
	if id == "" || name == "" {
		return ErrMissingArgument("id and name", "tibschat sessions rename <id> <new name>")
	}
	if err := sess.Conversations.Rename(id, name); err != nil {
		return err
	}
	fmt.Printf("%s Renamed to %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(name))
	return nil
}

func sessionsDelete(sess *session.Context, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("id", "tibschat sessions delete <id>")
	}
	if !parser.BoolFlag("confirm") && !promptConfirm("Delete this conversation?") {
		fmt.Println(DimStyle.Render("Cancelled"))
		return nil
	}
	if err := sess.Delete(id); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("[OK]") + " Deleted")
	return nil
}

func sessionsExport(sess *session.Context, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return ErrMissingArgument("id", "tibschat sessions export <id> [--format md|json|html]")
	}

	conv, err := sess.Conversations.Load(id)
	if err != nil {
		return err
	}

	opts := export.DefaultOptions()
	opts.OutputDir = parser.FlagOrDefault("output", ".")
	format := parser.FlagOrDefault("format", "md")

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

func sessionsImport(sess *session.Context, parser *ArgParser) error {
	file := parser.Positional(1)
	if file == "" {
		return ErrMissingArgument("file", "tibschat sessions import <file>")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return WrapError(err, "failed to read import file")
	}

	conv, err := sess.Conversations.ImportOne(data)
	if err != nil {
		return err
	}
	fmt.Printf("%s Imported %s (%d messages)\n",
		SuccessStyle.Render("[OK]"),
		HighlightStyle.Render(conv.DisplayName()),
		len(conv.Messages))
	fmt.Printf("  %s\n", DimStyle.Render(conv.ID))
	return nil
}

// printSessionTable renders a conversation listing with the active one marked.
func printSessionTable(sess *session.Context, metas []model.ConversationMeta) {
	fmt.Println()
	for _, meta := range metas {
		marker := "  "
		if meta.ID == sess.ActiveID {
			marker = HighlightStyle.Render("* ")
		}
		fmt.Printf("%s%s  %s  %s\n",
			marker,
			ValueStyle.Render(util.PadRight(util.TruncateDisplay(meta.Name, model.NameDisplayWidth), model.NameDisplayWidth)),
			DimStyle.Render(fmt.Sprintf("%3d msgs", meta.MessageCount)),
			DimStyle.Render(formatTimeAgo(meta.UpdatedAt)))
		detail := meta.ID
		if meta.Preview != "" {
			detail += "  " + strings.TrimSpace(meta.Preview)
		}
		fmt.Printf("  %s\n", DimStyle.Render(detail))
	}
	fmt.Println()
}
