// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core chat data types shared by the stores and
// the UI surfaces.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/tibsdev/tibschat/internal/util"
)

// DefaultConversationName is assigned to conversations created without an
// explicit name.
const DefaultConversationName = "New Conversation"

// NameDisplayWidth is the maximum display width for conversation names in
// lists and status bars. Stored names are never truncated, only rendering.
const NameDisplayWidth = 40

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two accepted roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// MESSAGES
// =============================================================================

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// Conversation is the unit of persistence: one conversation maps to one JSON
// document on disk.
type Conversation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`

	// SystemPrompt is the persona prompt copied into the conversation at
	// selection time. It has no live link back to the persona it came from.
	SystemPrompt string `json:"system_prompt"`
}

// NewConversation creates an empty conversation with a fresh identifier and
// both timestamps set to now. An empty name falls back to the default.
func NewConversation(name string) *Conversation {
	if name == "" {
		name = DefaultConversationName
	}
	now := time.Now().UTC()
	return &Conversation{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []Message{},
	}
}

// AddMessage appends a message and touches the updated timestamp.
func (c *Conversation) AddMessage(role Role, content string) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content})
	c.UpdatedAt = time.Now().UTC()
}

// SetSystemPrompt copies a persona prompt into the conversation. Later edits
// to the persona do not affect conversations that already selected it.
func (c *Conversation) SetSystemPrompt(prompt string) {
	c.SystemPrompt = prompt
	c.UpdatedAt = time.Now().UTC()
}

// DisplayName returns the name truncated to the list display width.
func (c *Conversation) DisplayName() string {
	return util.TruncateDisplay(c.Name, NameDisplayWidth)
}

// Preview returns the first user message flattened and truncated for list
// display. Empty when the conversation has no user messages yet.
func (c *Conversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return util.Truncate(util.Flatten(msg.Content), 80)
		}
	}
	return ""
}

// Clone returns a deep copy. The stores hand out clones so callers cannot
// mutate cached state.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return &clone
}

// Meta reduces the conversation to its listing summary.
func (c *Conversation) Meta() ConversationMeta {
	return ConversationMeta{
		ID:           c.ID,
		Name:         c.Name,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MessageCount: len(c.Messages),
		Preview:      c.Preview(),
	}
}

// ConversationMeta is the summary row returned by list operations. Loading
// the full message history requires a separate load by ID.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}
