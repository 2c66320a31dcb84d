// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	if err := cfg.SetDefaults(); err != nil {
		t.Fatalf("SetDefaults failed: %v", err)
	}
	return cfg
}

func TestNewCreatesFirstConversation(t *testing.T) {
	sess, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if sess.ActiveID == "" {
		t.Fatal("expected an active conversation")
	}
	metas, _ := sess.Conversations.ListSummaries()
	if len(metas) != 1 {
		t.Errorf("expected exactly one conversation, got %d", len(metas))
	}
}

func TestNewMigratesLegacyHistory(t *testing.T) {
	cfg := testConfig(t)
	legacyDoc := `{"messages":[{"role":"user","content":"hi"}],"system_prompt":"Be nice"}`
	if err := os.WriteFile(cfg.Storage.LegacyHistoryFile, []byte(legacyDoc), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	sess, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	conv, err := sess.Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if conv.Name != storage.LegacyHistoryName {
		t.Errorf("expected migrated conversation active, got %q", conv.Name)
	}
	if conv.SystemPrompt != "Be nice" {
		t.Errorf("system prompt = %q", conv.SystemPrompt)
	}

	// Legacy file untouched.
	if _, err := os.Stat(cfg.Storage.LegacyHistoryFile); err != nil {
		t.Errorf("legacy file missing after migration: %v", err)
	}
}

func TestNewSurvivesCorruptLegacyFile(t *testing.T) {
	cfg := testConfig(t)
	os.WriteFile(cfg.Storage.LegacyHistoryFile, []byte("{{{"), 0644)

	sess, err := New(cfg)
	if err != nil {
		t.Fatalf("corrupt legacy file must not block startup: %v", err)
	}
	if sess.ActiveID == "" {
		t.Error("expected a fresh conversation despite corrupt legacy file")
	}
}

func TestDeleteActiveSelectsReplacement(t *testing.T) {
	sess, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	first := sess.ActiveID

	second, err := sess.NewConversation("second")
	if err != nil {
		t.Fatalf("NewConversation failed: %v", err)
	}
	if sess.ActiveID != second.ID {
		t.Fatal("new conversation should become active")
	}

	if err := sess.Delete(second.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if sess.ActiveID != first {
		t.Errorf("expected replacement active id %s, got %s", first, sess.ActiveID)
	}
	if _, err := sess.Conversations.Load(second.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Error("deleted conversation still loadable")
	}
}

func TestDeleteLastConversationRejected(t *testing.T) {
	sess, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := sess.Delete(sess.ActiveID); !errors.Is(err, storage.ErrLastConversation) {
		t.Errorf("expected ErrLastConversation, got %v", err)
	}
	if _, err := sess.Active(); err != nil {
		t.Errorf("active conversation lost after rejected delete: %v", err)
	}
}

func TestSelectPersonaCopiesPromptByValue(t *testing.T) {
	sess, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := sess.Personas.Save("My Expert", "You are an expert."); err != nil {
		t.Fatalf("persona save failed: %v", err)
	}
	if err := sess.SelectPersona("My Expert"); err != nil {
		t.Fatalf("SelectPersona failed: %v", err)
	}

	// Edit the persona afterward; the conversation keeps the old text.
	if err := sess.Personas.Save("My Expert", "Changed."); err != nil {
		t.Fatalf("persona update failed: %v", err)
	}

	conv, _ := sess.Active()
	if conv.SystemPrompt != "You are an expert." {
		t.Errorf("expected copy-on-select semantics, got %q", conv.SystemPrompt)
	}
}

func TestSendAppendsBothTurns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			json.NewEncoder(w).Encode(map[string]any{
				"models": []map[string]string{{"name": "llama3", "model": "llama3"}},
			})
		case "/api/generate":
			json.NewEncoder(w).Encode(map[string]string{"response": "the answer"})
		}
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Ollama.URL = server.URL
	cfg.DefaultModel = "llama3"

	sess, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	reply, err := sess.Send(context.Background(), "question?")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "the answer" {
		t.Errorf("reply = %q", reply)
	}

	conv, _ := sess.Active()
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Content != "question?" || conv.Messages[1].Content != "the answer" {
		t.Errorf("unexpected transcript: %+v", conv.Messages)
	}
}

func TestSwitchTo(t *testing.T) {
	sess, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	other, _ := sess.NewConversation("other")
	first := sess.ActiveID

	if err := sess.SwitchTo(first); err != nil {
		t.Fatalf("SwitchTo failed: %v", err)
	}
	_ = other

	if err := sess.SwitchTo("missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStatePathsUnderDataDir(t *testing.T) {
	cfg := testConfig(t)
	if filepath.Dir(cfg.Storage.ConversationsDir) != cfg.Storage.DataDir {
		t.Errorf("conversations dir not under data dir: %s", cfg.Storage.ConversationsDir)
	}
}
