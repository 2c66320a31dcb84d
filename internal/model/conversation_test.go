// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewConversationDefaults(t *testing.T) {
	conv := NewConversation("")

	if conv.ID == "" {
		t.Error("expected generated ID")
	}
	if conv.Name != DefaultConversationName {
		t.Errorf("expected default name, got %q", conv.Name)
	}
	if conv.CreatedAt.IsZero() || conv.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if conv.Messages == nil {
		t.Error("expected non-nil message slice")
	}
}

func TestNewConversationUniqueIDs(t *testing.T) {
	a := NewConversation("a")
	b := NewConversation("b")
	if a.ID == b.ID {
		t.Errorf("expected unique IDs, both were %s", a.ID)
	}
}

func TestAddMessageTouchesUpdatedAt(t *testing.T) {
	conv := NewConversation("test")
	conv.UpdatedAt = time.Now().Add(-time.Hour)
	before := conv.UpdatedAt

	conv.AddMessage(RoleUser, "hello")

	if len(conv.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(conv.Messages))
	}
	if !conv.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance")
	}
}

func TestPreviewUsesFirstUserMessage(t *testing.T) {
	conv := NewConversation("test")
	conv.AddMessage(RoleAssistant, "greeting")
	conv.AddMessage(RoleUser, "line one\nline two")

	got := conv.Preview()
	if got != "line one line two" {
		t.Errorf("Preview = %q", got)
	}
}

func TestPreviewTruncatesLongContent(t *testing.T) {
	conv := NewConversation("test")
	conv.AddMessage(RoleUser, strings.Repeat("x", 200))

	got := conv.Preview()
	if len([]rune(got)) != 80 {
		t.Errorf("expected 80 runes, got %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	conv := NewConversation("test")
	conv.AddMessage(RoleUser, "original")

	clone := conv.Clone()
	clone.Messages[0].Content = "mutated"
	clone.Name = "other"

	if conv.Messages[0].Content != "original" {
		t.Error("clone mutation leaked into original messages")
	}
	if conv.Name != "test" {
		t.Error("clone mutation leaked into original name")
	}
}

func TestConversationWireFormat(t *testing.T) {
	conv := NewConversation("Trip Planning")
	conv.AddMessage(RoleUser, "hi")
	conv.SetSystemPrompt("You are concise.")

	data, err := json.Marshal(conv)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"id", "name", "created_at", "updated_at", "messages", "system_prompt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing wire field %q", key)
		}
	}

	msgs := doc["messages"].([]any)
	first := msgs[0].(map[string]any)
	if first["role"] != "user" || first["content"] != "hi" {
		t.Errorf("unexpected message shape: %v", first)
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("expected user and assistant to be valid")
	}
	if Role("system").Valid() {
		t.Error("system is not an accepted role")
	}
	if Role("").Valid() {
		t.Error("empty role is not valid")
	}
}

func TestDisplayNameTruncation(t *testing.T) {
	conv := NewConversation(strings.Repeat("n", 100))
	display := conv.DisplayName()
	if !strings.HasSuffix(display, "...") {
		t.Errorf("expected truncated display name, got %q", display)
	}
	// Stored name stays full length.
	if len(conv.Name) != 100 {
		t.Errorf("stored name must not be truncated, len=%d", len(conv.Name))
	}
}
