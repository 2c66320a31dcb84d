// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tibsdev/tibschat/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	conv, _ := s.Create("Round Trip")
	s.AppendMessage(conv.ID, model.RoleUser, "question")
	s.AppendMessage(conv.ID, model.RoleAssistant, "answer")
	s.SetSystemPrompt(conv.ID, "Be terse.")

	doc, err := s.ExportOne(conv.ID)
	if err != nil {
		t.Fatalf("ExportOne failed: %v", err)
	}

	imported, err := s.ImportOne(doc)
	if err != nil {
		t.Fatalf("ImportOne failed: %v", err)
	}

	if imported.ID == conv.ID {
		t.Error("imported conversation must get a fresh id")
	}
	if imported.SystemPrompt != "Be terse." {
		t.Errorf("system prompt lost: %q", imported.SystemPrompt)
	}
	original, _ := s.Load(conv.ID)
	if len(imported.Messages) != len(original.Messages) {
		t.Fatalf("message count mismatch: %d vs %d", len(imported.Messages), len(original.Messages))
	}
	for i := range imported.Messages {
		if imported.Messages[i] != original.Messages[i] {
			t.Errorf("message %d mismatch", i)
		}
	}

	// Both exist side by side.
	metas, _ := s.ListSummaries()
	if len(metas) != 2 {
		t.Errorf("expected 2 conversations after import, got %d", len(metas))
	}
}

func TestImportBarePayload(t *testing.T) {
	s := newTestStore(t)

	doc := []byte(`{"messages":[{"role":"user","content":"hi"}],"system_prompt":"Be nice"}`)
	conv, err := s.ImportOne(doc)
	if err != nil {
		t.Fatalf("ImportOne failed: %v", err)
	}
	if conv.Name != model.DefaultConversationName {
		t.Errorf("bare payload should get default name, got %q", conv.Name)
	}
	if conv.SystemPrompt != "Be nice" {
		t.Errorf("system prompt = %q", conv.SystemPrompt)
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Content != "hi" {
		t.Errorf("messages = %+v", conv.Messages)
	}
}

func TestImportLegacyFlatArray(t *testing.T) {
	s := newTestStore(t)

	doc := []byte(`[{"role":"user","content":"one"},{"role":"assistant","content":"two"}]`)
	conv, err := s.ImportOne(doc)
	if err != nil {
		t.Fatalf("ImportOne failed: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	if conv.SystemPrompt != "" {
		t.Errorf("flat array import should have empty system prompt")
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.ImportOne([]byte("not json at all")); !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("expected ErrCorruptDocument, got %v", err)
	}
	if _, err := s.ImportOne([]byte(`{"unrelated": true}`)); !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("expected ErrCorruptDocument for unrecognized shape, got %v", err)
	}
}

func TestImportRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)

	doc := []byte(`{"messages":[{"role":"wizard","content":"zap"}]}`)
	if _, err := s.ImportOne(doc); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMigrateLegacyIfNeeded(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	legacyPath := filepath.Join(dir, "chat_history.json")
	legacyDoc := `{"messages":[{"role":"user","content":"hi"}],"system_prompt":"Be nice"}`
	if err := os.WriteFile(legacyPath, []byte(legacyDoc), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	legacy, err := LoadLegacyHistory(legacyPath)
	if err != nil {
		t.Fatalf("LoadLegacyHistory failed: %v", err)
	}

	conv, err := s.MigrateLegacyIfNeeded(legacy)
	if err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	if conv == nil {
		t.Fatal("expected migration to produce a conversation")
	}

	metas, _ := s.ListSummaries()
	if len(metas) != 1 {
		t.Fatalf("expected exactly one conversation, got %d", len(metas))
	}
	loaded, _ := s.Load(conv.ID)
	if len(loaded.Messages) != 1 || loaded.Messages[0].Content != "hi" {
		t.Errorf("migrated messages = %+v", loaded.Messages)
	}
	if loaded.SystemPrompt != "Be nice" {
		t.Errorf("migrated system prompt = %q", loaded.SystemPrompt)
	}

	// Legacy file stays in place as a backup.
	if _, err := os.Stat(legacyPath); err != nil {
		t.Errorf("legacy file must not be deleted: %v", err)
	}

	// Second call is a no-op.
	again, err := s.MigrateLegacyIfNeeded(legacy)
	if err != nil {
		t.Fatalf("second migration call failed: %v", err)
	}
	if again != nil {
		t.Error("migration must be idempotent")
	}
	metas, _ = s.ListSummaries()
	if len(metas) != 1 {
		t.Errorf("conversation set changed on repeat migration: %d", len(metas))
	}
}

func TestMigrateSkippedWhenConversationsExist(t *testing.T) {
	s := newTestStore(t)
	s.Create("existing")

	legacy := &LegacyHistory{Messages: []model.Message{{Role: model.RoleUser, Content: "old"}}}
	conv, err := s.MigrateLegacyIfNeeded(legacy)
	if err != nil {
		t.Fatalf("migration call failed: %v", err)
	}
	if conv != nil {
		t.Error("migration must be a no-op when conversations exist")
	}
}

func TestLoadLegacyHistoryVariants(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		legacy, err := LoadLegacyHistory(filepath.Join(dir, "absent.json"))
		if err != nil || legacy != nil {
			t.Errorf("missing file: got %+v, %v", legacy, err)
		}
	})

	t.Run("bare array variant", func(t *testing.T) {
		path := filepath.Join(dir, "flat.json")
		os.WriteFile(path, []byte(`[{"role":"user","content":"x"}]`), 0644)
		legacy, err := LoadLegacyHistory(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(legacy.Messages) != 1 || legacy.SystemPrompt != "" {
			t.Errorf("unexpected legacy: %+v", legacy)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.json")
		os.WriteFile(path, []byte("{{{"), 0644)
		if _, err := LoadLegacyHistory(path); !errors.Is(err, ErrCorruptDocument) {
			t.Errorf("expected ErrCorruptDocument, got %v", err)
		}
	})
}
