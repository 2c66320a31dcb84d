// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// Sentinel errors for conversation operations. Compare with errors.Is.
var (
	// ErrNotFound is returned when no document exists for a conversation id.
	ErrNotFound = &Error{Message: "conversation not found"}

	// ErrInvalidInput is returned for empty names or content, or a role
	// outside user/assistant.
	ErrInvalidInput = &Error{Message: "invalid conversation input"}

	// ErrLastConversation is returned when a delete would leave zero
	// conversations.
	ErrLastConversation = &Error{Message: "cannot delete the last conversation"}

	// ErrCorruptDocument is returned when an individual document fails to
	// parse on a direct load. During listing, corrupt documents are skipped
	// with a warning instead.
	ErrCorruptDocument = &Error{Message: "conversation document is corrupt"}
)

// Error is a conversation-related error comparable with errors.Is.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
