// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/model"
	"github.com/tibsdev/tibschat/internal/session"
)

func testModel(t *testing.T) (Model, *session.Context) {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	if err := cfg.SetDefaults(); err != nil {
		t.Fatalf("SetDefaults failed: %v", err)
	}
	sess, err := session.New(cfg)
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	return New(sess, cfg), sess
}

func resized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func TestWindowSizeMakesModelReady(t *testing.T) {
	m, _ := testModel(t)
	if m.ready {
		t.Fatal("model should not be ready before first resize")
	}
	m = resized(m)
	if !m.ready {
		t.Fatal("model should be ready after resize")
	}
	if m.View() == "Loading..." {
		t.Error("view still shows loading screen after resize")
	}
}

func TestTranscriptShowsMessages(t *testing.T) {
	m, sess := testModel(t)
	m = resized(m)

	if _, err := sess.Conversations.AppendMessage(sess.ActiveID, model.RoleUser, "hello there"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := sess.Conversations.AppendMessage(sess.ActiveID, model.RoleAssistant, "hi!"); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	transcript := m.renderTranscript("")
	if !strings.Contains(transcript, "hello there") {
		t.Error("user message missing from transcript")
	}
	if !strings.Contains(transcript, "hi!") {
		t.Error("assistant message missing from transcript")
	}
}

func TestTranscriptShowsSystemPromptBanner(t *testing.T) {
	m, sess := testModel(t)
	m = resized(m)

	if err := sess.SetSystemPrompt("You are terse."); err != nil {
		t.Fatalf("set prompt failed: %v", err)
	}
	if !strings.Contains(m.renderTranscript(""), "You are terse.") {
		t.Error("system prompt banner missing")
	}
}

func TestReplyMsgReturnsToReady(t *testing.T) {
	m, _ := testModel(t)
	m = resized(m)
	m.state = StateThinking

	updated, _ := m.Update(replyMsg{reply: "done"})
	m = updated.(Model)
	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
}

func TestErrMsgShowsError(t *testing.T) {
	m, _ := testModel(t)
	m = resized(m)

	updated, _ := m.Update(errMsg{err: errors.New("model unavailable")})
	m = updated.(Model)
	if m.state != StateError {
		t.Errorf("state = %v, want StateError", m.state)
	}
	if !strings.Contains(m.View(), "model unavailable") {
		t.Error("error text missing from status bar")
	}
}

func TestCycleConversation(t *testing.T) {
	m, sess := testModel(t)
	m = resized(m)

	second, err := sess.NewConversation("second")
	if err != nil {
		t.Fatalf("NewConversation failed: %v", err)
	}
	if sess.ActiveID != second.ID {
		t.Fatal("setup: second conversation should be active")
	}

	if err := m.cycleConversation(); err != nil {
		t.Fatalf("cycleConversation failed: %v", err)
	}
	if sess.ActiveID == second.ID {
		t.Error("cycle did not switch conversations")
	}
}

func TestCyclePersonaAppliesPrompt(t *testing.T) {
	m, sess := testModel(t)
	m = resized(m)

	name, err := m.cyclePersona()
	if err != nil {
		t.Fatalf("cyclePersona failed: %v", err)
	}
	if name == "" {
		t.Fatal("expected a persona name")
	}

	conv, err := sess.Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if conv.SystemPrompt == "" {
		t.Error("persona prompt was not applied to the conversation")
	}
}
