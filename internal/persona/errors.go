// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

// Sentinel errors for persona operations. Compare with errors.Is.
var (
	// ErrNotFound is returned when a persona name is in neither the
	// predefined table nor the custom mapping.
	ErrNotFound = &Error{Message: "persona not found"}

	// ErrInvalidInput is returned when a name or prompt is empty after
	// trimming.
	ErrInvalidInput = &Error{Message: "persona name and prompt must be non-empty"}

	// ErrNameConflict is returned when a save targets a name reserved by a
	// predefined persona.
	ErrNameConflict = &Error{Message: "persona name conflicts with a predefined persona"}

	// ErrProtected is returned when a delete targets a predefined persona.
	ErrProtected = &Error{Message: "predefined personas cannot be deleted"}
)

// Error is a persona-related error comparable with errors.Is.
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
