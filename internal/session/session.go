// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the request-scoped state the UI surfaces thread
// through store operations: the active conversation id, the selected model,
// and the wired stores. State lives here explicitly instead of in globals.
package session

import (
	"context"
	"fmt"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/llm"
	"github.com/tibsdev/tibschat/internal/model"
	"github.com/tibsdev/tibschat/internal/ollama"
	"github.com/tibsdev/tibschat/internal/persona"
	"github.com/tibsdev/tibschat/internal/storage"
)

// Context is the per-run session state passed into command handlers.
type Context struct {
	Config        *config.Config
	Conversations *storage.Store
	Personas      *persona.Store
	Models        *llm.Registry

	// ActiveID is the currently selected conversation.
	ActiveID string

	// Model is the selected model id; empty falls back to config.
	Model string
}

// New wires the stores from configuration, runs the one-time legacy
// migration, and guarantees at least one conversation exists with the most
// recently updated one active.
func New(cfg *config.Config) (*Context, error) {
	conversations, err := storage.NewStore(cfg.Storage.ConversationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation store: %w", err)
	}

	legacy, err := storage.LoadLegacyHistory(cfg.Storage.LegacyHistoryFile)
	if err != nil {
		// A corrupt legacy file must not block startup; the per-document
		// store is the source of truth.
		legacy = nil
	}
	if _, err := conversations.MigrateLegacyIfNeeded(legacy); err != nil {
		return nil, fmt.Errorf("legacy migration failed: %w", err)
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
	})

	sess := &Context{
		Config:        cfg,
		Conversations: conversations,
		Personas:      persona.NewStore(cfg.Storage.PersonasFile),
		Models:        llm.NewRegistry(client),
		Model:         cfg.DefaultModel,
	}

	if err := sess.ensureActive(); err != nil {
		return nil, err
	}
	return sess, nil
}

// ensureActive makes sure a conversation exists and ActiveID points at one.
func (s *Context) ensureActive() error {
	metas, err := s.Conversations.ListSummaries()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		conv, err := s.Conversations.Create("")
		if err != nil {
			return err
		}
		s.ActiveID = conv.ID
		return nil
	}

	for _, meta := range metas {
		if meta.ID == s.ActiveID {
			return nil
		}
	}
	s.ActiveID = metas[0].ID
	return nil
}

// Active loads the active conversation.
func (s *Context) Active() (*model.Conversation, error) {
	if err := s.ensureActive(); err != nil {
		return nil, err
	}
	return s.Conversations.Load(s.ActiveID)
}

// SwitchTo makes another conversation active.
func (s *Context) SwitchTo(id string) error {
	if _, err := s.Conversations.Load(id); err != nil {
		return err
	}
	s.ActiveID = id
	return nil
}

// NewConversation creates a conversation and makes it active.
func (s *Context) NewConversation(name string) (*model.Conversation, error) {
	conv, err := s.Conversations.Create(name)
	if err != nil {
		return nil, err
	}
	s.ActiveID = conv.ID
	return conv, nil
}

// Delete removes a conversation. When the active conversation is deleted the
// most recently updated remaining one becomes active before the document is
// removed, so the session never points at a missing conversation.
func (s *Context) Delete(id string) error {
	if id == s.ActiveID {
		metas, err := s.Conversations.ListSummaries()
		if err != nil {
			return err
		}
		replacement := ""
		for _, meta := range metas {
			if meta.ID != id {
				replacement = meta.ID
				break
			}
		}
		if replacement == "" {
			return storage.ErrLastConversation
		}
		s.ActiveID = replacement
	}

	if err := s.Conversations.Delete(id); err != nil {
		return err
	}
	return nil
}

// SelectPersona copies a persona's prompt into the active conversation.
// The copy is by value: later persona edits never touch this conversation.
func (s *Context) SelectPersona(name string) error {
	prompt, err := s.Personas.Get(name)
	if err != nil {
		return err
	}
	return s.Conversations.SetSystemPrompt(s.ActiveID, prompt)
}

// SetSystemPrompt sets arbitrary prompt text on the active conversation.
func (s *Context) SetSystemPrompt(prompt string) error {
	return s.Conversations.SetSystemPrompt(s.ActiveID, prompt)
}

// ModelSelector returns the effective model selector for invocations.
func (s *Context) ModelSelector() string {
	if s.Model != "" {
		return s.Model
	}
	return s.Config.DefaultModel
}

// Send appends the user message to the active conversation, invokes the
// selected model with the full history and system prompt, appends the reply,
// and returns it.
func (s *Context) Send(ctx context.Context, content string) (string, error) {
	conv, err := s.Conversations.AppendMessage(s.ActiveID, model.RoleUser, content)
	if err != nil {
		return "", err
	}

	reply, err := s.Models.Invoke(ctx, conv.Messages, conv.SystemPrompt, s.ModelSelector())
	if err != nil {
		return "", err
	}

	if _, err := s.Conversations.AppendMessage(s.ActiveID, model.RoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}
