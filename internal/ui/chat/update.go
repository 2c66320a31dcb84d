// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// statusLinger is how long transient status messages stay visible.
const statusLinger = 4 * time.Second

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Send):
			if m.state == StateThinking {
				break
			}
			content := strings.TrimSpace(m.input.Value())
			if content == "" {
				break
			}
			m.input.Reset()
			m.state = StateThinking
			m.lastErr = nil
			m.refreshViewportWithPending(content)
			cmds = append(cmds,
				sendCmd(m.sess, content, m.generateTimeout()),
				m.spinner.Tick)

		case key.Matches(msg, m.keys.NewConversation):
			if m.state == StateThinking {
				break
			}
			if _, err := m.sess.NewConversation(""); err != nil {
				m.lastErr = err
				m.state = StateError
				break
			}
			m.status = "Started a new conversation"
			m.refreshViewport()
			cmds = append(cmds, clearStatusAfter(statusLinger))

		case key.Matches(msg, m.keys.NextConversation):
			if m.state == StateThinking {
				break
			}
			if err := m.cycleConversation(); err != nil {
				m.lastErr = err
				m.state = StateError
				break
			}
			m.refreshViewport()

		case key.Matches(msg, m.keys.NextPersona):
			if m.state == StateThinking {
				break
			}
			if name, err := m.cyclePersona(); err != nil {
				m.lastErr = err
				m.state = StateError
			} else {
				m.status = "Persona: " + name
				m.refreshViewport()
				cmds = append(cmds, clearStatusAfter(statusLinger))
			}

		case key.Matches(msg, m.keys.Export):
			cmds = append(cmds, exportCmd(m.sess))

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case replyMsg:
		m.state = StateReady
		m.refreshViewport()

	case errMsg:
		m.state = StateError
		m.lastErr = msg.err
		m.refreshViewport()

	case exportedMsg:
		m.status = "Exported to " + msg.path
		cmds = append(cmds, clearStatusAfter(statusLinger))

	case clearStatusMsg:
		m.status = ""

	case personasChangedMsg:
		// The cycling index is stale once the list changes on disk.
		m.personaIndex = -1
		m.status = "Personas reloaded"
		cmds = append(cmds, clearStatusAfter(statusLinger))

	case spinner.TickMsg:
		if m.state == StateThinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Viewport handles scrolling keys.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// layout sizes the viewport and input to the window.
func (m *Model) layout() {
	headerHeight := 2
	inputHeight := 3
	statusHeight := 1
	viewHeight := m.height - headerHeight - inputHeight - statusHeight
	if viewHeight < 3 {
		viewHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, viewHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = viewHeight
	}
	m.input.Width = m.width - 6
}

// cycleConversation switches to the next conversation by recency.
func (m *Model) cycleConversation() error {
	metas, err := m.sess.Conversations.ListSummaries()
	if err != nil {
		return err
	}
	if len(metas) < 2 {
		return nil
	}
	for i, meta := range metas {
		if meta.ID == m.sess.ActiveID {
			return m.sess.SwitchTo(metas[(i+1)%len(metas)].ID)
		}
	}
	return m.sess.SwitchTo(metas[0].ID)
}

// cyclePersona applies the next persona in listing order.
func (m *Model) cyclePersona() (string, error) {
	infos, err := m.sess.Personas.List()
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("no personas available")
	}
	m.personaIndex = (m.personaIndex + 1) % len(infos)
	name := infos[m.personaIndex].Name
	if err := m.sess.SelectPersona(name); err != nil {
		return "", err
	}
	return name, nil
}
