// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides JSON-file persistence for conversations: one
// document per conversation in a directory, keyed by the conversation id.
package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/tibsdev/tibschat/internal/model"
	"github.com/tibsdev/tibschat/internal/util"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store handles conversation persistence. It keeps no cache: every read goes
// back to disk, so external edits to the data directory are always visible.
type Store struct {
	// BaseDir is the conversations directory.
	// Default: ~/.tibschat/conversations/
	BaseDir string

	// Warnings receives non-fatal enumeration diagnostics.
	// Default: os.Stderr
	Warnings io.Writer
}

// NewStore creates a store rooted at baseDir, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Store{
		BaseDir:  baseDir,
		Warnings: os.Stderr,
	}, nil
}

// =============================================================================
// CREATE / LOAD / SAVE
// =============================================================================

// Create makes a new empty conversation and persists it immediately.
func (s *Store) Create(name string) (*model.Conversation, error) {
	conv := model.NewConversation(strings.TrimSpace(name))
	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Load retrieves a conversation by id.
func (s *Store) Load(id string) (*model.Conversation, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, id, err)
	}
	return &conv, nil
}

// Save rewrites the full document for conv.ID. The updated timestamp is
// refreshed here; callers never set it manually.
func (s *Store) Save(conv *model.Conversation) error {
	if conv.ID == "" {
		return ErrInvalidInput
	}
	conv.UpdatedAt = time.Now().UTC()
	return s.write(conv)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Rename changes a conversation's name. The stored name is never truncated;
// display truncation is the renderer's concern.
func (s *Store) Rename(id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidInput
	}

	conv, err := s.Load(id)
	if err != nil {
		return err
	}
	conv.Name = newName
	return s.Save(conv)
}

// AppendMessage appends one message to a conversation and persists it. This
// runs once per chat turn, so it addresses the target document directly by
// id with no directory scan.
func (s *Store) AppendMessage(id string, role model.Role, content string) (*model.Conversation, error) {
	if content == "" || !role.Valid() {
		return nil, ErrInvalidInput
	}

	conv, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	conv.AddMessage(role, content)
	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// SetSystemPrompt copies prompt text into a conversation and persists it.
func (s *Store) SetSystemPrompt(id, prompt string) error {
	conv, err := s.Load(id)
	if err != nil {
		return err
	}
	conv.SetSystemPrompt(prompt)
	return s.write(conv)
}

// Delete removes a conversation's document. Deleting the only remaining
// conversation fails with ErrLastConversation and changes nothing.
func (s *Store) Delete(id string) error {
	ids, err := s.ids()
	if err != nil {
		return err
	}

	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	if len(ids) <= 1 {
		return ErrLastConversation
	}

	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// =============================================================================
// LISTING & SEARCH
// =============================================================================

// ListSummaries enumerates all conversations, most recently updated first.
// Corrupt documents are skipped with a warning so one bad file cannot block
// the rest.
func (s *Store) ListSummaries() ([]model.ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.ConversationMeta{}, nil
		}
		return nil, err
	}

	metas := make([]model.ConversationMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		conv, err := s.Load(id)
		if err != nil {
			s.warnf("Warning: skipping unreadable conversation %s: %v\n", id, err)
			continue
		}
		metas = append(metas, conv.Meta())
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search returns summaries whose name or system prompt contains the query,
// case-insensitively. An empty query returns everything.
func (s *Store) Search(query string) ([]model.ConversationMeta, error) {
	all, err := s.ListSummaries()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}

	needle := searchFold(query)
	var results []model.ConversationMeta
	for _, meta := range all {
		if strings.Contains(searchFold(meta.Name), needle) {
			results = append(results, meta)
			continue
		}
		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		if strings.Contains(searchFold(conv.SystemPrompt), needle) {
			results = append(results, meta)
		}
	}
	return results, nil
}

// searchFold normalizes to NFC before lowercasing so composed and decomposed
// forms of the same text match each other.
func searchFold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// Count returns the number of persisted conversations.
func (s *Store) Count() (int, error) {
	ids, err := s.ids()
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

func (s *Store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// write marshals and atomically replaces the document. On failure the
// previous on-disk version is left intact.
func (s *Store) write(conv *model.Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.filePath(conv.ID), data, 0644)
}

func (s *Store) warnf(format string, args ...any) {
	w := s.Warnings
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}
