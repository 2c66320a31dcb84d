// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/tibsdev/tibschat/internal/model"
	"github.com/tibsdev/tibschat/internal/ui/components"
	"github.com/tibsdev/tibschat/internal/util"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.theme.InputFocused.Width(m.width - 2).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusBar())
	return sb.String()
}

// renderHeader shows the app name and active conversation.
func (m Model) renderHeader() string {
	conv, err := m.sess.Active()
	name := ""
	if err == nil {
		name = conv.DisplayName()
	}
	title := m.theme.Header.Render("tibschat")
	sub := m.theme.StatusKey.Render(" · ") + m.theme.StatusValue.Render(name)
	return title + sub
}

// renderStatusBar shows model, message count, and transient status.
func (m Model) renderStatusBar() string {
	parts := []string{
		m.theme.StatusKey.Render("model ") + m.theme.StatusValue.Render(m.sess.ModelSelector()),
	}

	if conv, err := m.sess.Active(); err == nil {
		parts = append(parts,
			m.theme.StatusKey.Render("msgs ")+m.theme.StatusValue.Render(fmt.Sprintf("%d", len(conv.Messages))))
		if conv.SystemPrompt != "" {
			parts = append(parts, m.theme.StatusKey.Render("persona set"))
		}
	}

	switch {
	case m.state == StateThinking:
		parts = append(parts, m.spinner.View()+m.theme.StatusKey.Render("thinking"))
	case m.state == StateError && m.lastErr != nil:
		parts = append(parts, m.theme.Error.Render(util.Truncate(m.lastErr.Error(), 48)))
	case m.status != "":
		parts = append(parts, m.theme.StatusValue.Render(m.status))
	default:
		parts = append(parts, m.theme.Help.Render("ctrl+n new · ctrl+o switch · ctrl+p persona · ctrl+e export · ctrl+c quit"))
	}

	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, m.theme.StatusKey.Render(" │ ")))
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport rebuilds the transcript and scrolls to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(""))
	m.viewport.GotoBottom()
}

// refreshViewportWithPending appends a just-sent user message that is not yet
// persisted in the loaded snapshot.
func (m *Model) refreshViewportWithPending(pending string) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(pending))
	m.viewport.GotoBottom()
}

// renderTranscript renders the active conversation's messages.
func (m Model) renderTranscript(pending string) string {
	conv, err := m.sess.Active()
	if err != nil {
		return m.theme.Error.Render(err.Error())
	}

	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}

	var sb strings.Builder

	if conv.SystemPrompt != "" {
		sb.WriteString(m.theme.SystemBanner.MaxWidth(width).Render(
			util.Truncate(util.Flatten(conv.SystemPrompt), 120)))
		sb.WriteString("\n\n")
	}

	if len(conv.Messages) == 0 && pending == "" {
		sb.WriteString(m.theme.Help.Render("No messages yet. Say hello!"))
		return sb.String()
	}

	for _, msg := range conv.Messages {
		sb.WriteString(m.renderMessage(msg, width))
		sb.WriteString("\n")
	}

	// The pending message is only shown when the snapshot predates it.
	if pending != "" && !lastUserContentIs(conv, pending) {
		sb.WriteString(m.renderMessage(model.Message{Role: model.RoleUser, Content: pending}, width))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderMessage renders one message with its role label.
func (m Model) renderMessage(msg model.Message, width int) string {
	if msg.Role == model.RoleAssistant {
		body := components.ParseCodeBlocks(msg.Content, width)
		body = components.ParseInlineCode(body)
		return m.theme.AssistLabel.Render("Assistant") + "\n" +
			m.theme.AssistBody.MaxWidth(width).Render(body) + "\n"
	}
	return m.theme.UserLabel.Render("You") + "\n" +
		m.theme.UserBody.MaxWidth(width).Render(msg.Content) + "\n"
}

// lastUserContentIs reports whether the newest user message matches content.
func lastUserContentIs(conv *model.Conversation, content string) bool {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == model.RoleUser {
			return conv.Messages[i].Content == content
		}
	}
	return false
}
