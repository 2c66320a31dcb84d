// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"

	"github.com/tibsdev/tibschat/internal/model"
)

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

// ExportOne returns the full JSON document for one conversation, suitable
// for re-import elsewhere.
func (s *Store) ExportOne(id string) ([]byte, error) {
	conv, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(conv, "", "  ")
}

// importPayload covers both the full conversation document and the bare
// {messages, system_prompt} payload; the two are told apart by the id field.
type importPayload struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Messages     []model.Message `json:"messages"`
	SystemPrompt string          `json:"system_prompt"`
}

// ImportOne accepts three document shapes, tried in fixed priority order:
//
//  1. full conversation document (object with an "id" field)
//  2. bare {"messages": [...], "system_prompt": "..."} payload
//  3. legacy flat message array
//
// The result is always persisted under a freshly generated id so an import
// can never collide with or overwrite an existing conversation.
func (s *Store) ImportOne(document []byte) (*model.Conversation, error) {
	var payload importPayload
	if err := json.Unmarshal(document, &payload); err == nil {
		if payload.ID != "" || payload.Messages != nil {
			return s.importAs(payload.Name, payload.Messages, payload.SystemPrompt)
		}
	}

	var flat []model.Message
	if err := json.Unmarshal(document, &flat); err == nil {
		return s.importAs("", flat, "")
	}

	return nil, ErrCorruptDocument
}

func (s *Store) importAs(name string, messages []model.Message, systemPrompt string) (*model.Conversation, error) {
	for _, msg := range messages {
		if !msg.Role.Valid() {
			return nil, ErrInvalidInput
		}
	}

	conv := model.NewConversation(name)
	if messages != nil {
		conv.Messages = messages
	}
	conv.SystemPrompt = systemPrompt

	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}
