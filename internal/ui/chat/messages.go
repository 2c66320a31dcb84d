// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tibsdev/tibschat/internal/export"
	"github.com/tibsdev/tibschat/internal/session"
)

// =============================================================================
// MESSAGES
// =============================================================================

// replyMsg carries a completed model reply.
type replyMsg struct {
	reply string
}

// errMsg carries an error from a background command.
type errMsg struct {
	err error
}

// exportedMsg carries the path of a completed export.
type exportedMsg struct {
	path string
}

// clearStatusMsg clears the transient status line.
type clearStatusMsg struct{}

// personasChangedMsg signals an external edit to the personas file.
type personasChangedMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// sendCmd invokes the model with the user's message in the background.
func sendCmd(sess *session.Context, content string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply, err := sess.Send(ctx, content)
		if err != nil {
			return errMsg{err: err}
		}
		return replyMsg{reply: reply}
	}
}

// exportCmd exports the active conversation as markdown in the background.
func exportCmd(sess *session.Context) tea.Cmd {
	return func() tea.Msg {
		conv, err := sess.Active()
		if err != nil {
			return errMsg{err: err}
		}

		opts := export.DefaultOptions()
		exporter := export.NewMarkdownExporter(opts)
		path, err := export.ExportToFile(conv, exporter, opts)
		if err != nil {
			return errMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

// clearStatusAfter schedules a status line reset.
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
