// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for tibschat.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/persona"
	"github.com/tibsdev/tibschat/internal/session"
	"github.com/tibsdev/tibschat/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady    State = iota // Ready for input
	StateThinking              // Waiting for a model reply
	StateError                 // Showing an error
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State

	sess *session.Context
	cfg  *config.Config

	theme styles.Theme
	keys  KeyMap

	// Dimensions
	width  int
	height int
	ready  bool

	// Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Persona cycling order for the ctrl+p shortcut
	personaIndex int

	// Transient status line
	status  string
	lastErr error
}

// New creates the chat model over an initialized session.
func New(sess *session.Context, cfg *config.Config) Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan)
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return Model{
		state:        StateReady,
		sess:         sess,
		cfg:          cfg,
		theme:        styles.NewTheme(),
		keys:         DefaultKeyMap(),
		input:        input,
		spinner:      sp,
		personaIndex: -1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// generateTimeout returns the configured per-reply timeout.
func (m Model) generateTimeout() time.Duration {
	return time.Duration(m.cfg.Ollama.GenerateTimeoutSecs) * time.Second
}

// Run starts the chat TUI over an initialized session.
func Run(sess *session.Context, cfg *config.Config) error {
	styles.ApplyBackground(cfg.UI.Theme)
	program := tea.NewProgram(New(sess, cfg), tea.WithAltScreen())

	// External edits to the personas file show up without a restart. A
	// failed watcher is not fatal; the TUI just won't auto-refresh.
	if watcher, err := persona.NewWatcher(sess.Personas, func() {
		program.Send(personasChangedMsg{})
	}); err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		} else {
			watcher.Close()
		}
	}

	_, err := program.Run()
	return err
}
