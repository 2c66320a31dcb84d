// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"os"

	"github.com/tibsdev/tibschat/internal/model"
)

// LegacyHistoryName is the name given to a conversation synthesized from the
// pre-migration single-file history.
const LegacyHistoryName = "Imported Chat History"

// LegacyHistory is the single-conversation storage format that predates
// per-conversation documents.
type LegacyHistory struct {
	Messages     []model.Message
	SystemPrompt string
}

// LoadLegacyHistory reads a legacy history file. Two variants exist in the
// wild: a wrapper object {"messages": [...], "system_prompt": "..."} and a
// bare message array. A missing file returns (nil, nil); a file that parses
// as neither variant returns ErrCorruptDocument.
func LoadLegacyHistory(path string) (*LegacyHistory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var wrapper struct {
		Messages     []model.Message `json:"messages"`
		SystemPrompt string          `json:"system_prompt"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Messages != nil {
		return &LegacyHistory{Messages: wrapper.Messages, SystemPrompt: wrapper.SystemPrompt}, nil
	}

	var flat []model.Message
	if err := json.Unmarshal(data, &flat); err == nil {
		return &LegacyHistory{Messages: flat}, nil
	}

	return nil, ErrCorruptDocument
}

// MigrateLegacyIfNeeded wraps a legacy history into exactly one new
// conversation, but only when the conversation set is still empty. With any
// conversation already present, or a nil legacy document, it is a no-op and
// returns nil. The legacy file is never deleted; it stays as a backup.
func (s *Store) MigrateLegacyIfNeeded(legacy *LegacyHistory) (*model.Conversation, error) {
	if legacy == nil {
		return nil, nil
	}

	count, err := s.Count()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	conv := model.NewConversation(LegacyHistoryName)
	conv.Messages = append(conv.Messages, legacy.Messages...)
	conv.SystemPrompt = legacy.SystemPrompt

	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}
