// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm merges the dynamically discovered Ollama models with the
// static catalog entries and dispatches generation requests to the right
// backend.
package llm

import (
	"context"

	"github.com/tibsdev/tibschat/internal/model"
	"github.com/tibsdev/tibschat/internal/ollama"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrModelUnavailable is returned when the selected model is unknown or
	// its backend cannot be reached.
	ErrModelUnavailable = &Error{Message: "model unavailable"}

	// ErrModelError is returned when a backend accepted the request but
	// failed to produce a reply.
	ErrModelError = &Error{Message: "model invocation failed"}
)

// Error is a model-invocation error comparable with errors.Is.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// CATALOG
// =============================================================================

// BackendType selects the inference path for a catalog entry.
type BackendType string

const (
	BackendOllama    BackendType = "ollama"
	BackendBERT      BackendType = "bert"
	BackendHFHub     BackendType = "hf_hub"
	BackendOpenAI    BackendType = "openai"
	BackendAnthropic BackendType = "anthropic"
)

// Entry is one selectable model in the catalog.
type Entry struct {
	Name string      `json:"name"`
	ID   string      `json:"id"`
	Type BackendType `json:"type"`
}

// staticEntries are always present regardless of what Ollama reports. The
// BERT and HF Hub backends require a Python runtime and the hosted API
// backends require keys; selecting them yields a placeholder reply rather
// than an error so the catalog stays honest about what is wired up.
var staticEntries = []Entry{
	{Name: "Intel BERT MRPC (Local)", ID: "bert-mrpc", Type: BackendBERT},
	{Name: "HuggingFace Hub (gpt2)", ID: "gpt2", Type: BackendHFHub},
	{Name: "OpenAI GPT-4.1 (API)", ID: "openai-gpt-4.1", Type: BackendOpenAI},
	{Name: "Anthropic Claude (API)", ID: "anthropic-claude", Type: BackendAnthropic},
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry resolves model selectors to backends.
type Registry struct {
	client *ollama.Client
}

// NewRegistry creates a registry backed by the given Ollama client.
func NewRegistry(client *ollama.Client) *Registry {
	return &Registry{client: client}
}

// Available returns the full catalog: Ollama models discovered live, then
// the static entries. An unreachable Ollama server contributes nothing and
// is not an error; the static entries still list.
func (r *Registry) Available(ctx context.Context) []Entry {
	var entries []Entry

	if models, err := r.client.ListModels(ctx); err == nil {
		for _, m := range models {
			entries = append(entries, Entry{Name: m.Name, ID: m.Model, Type: BackendOllama})
		}
	}

	return append(entries, staticEntries...)
}

// Resolve finds the catalog entry for a selector, matching either the entry
// id or its display name. An empty selector resolves to the first catalog
// entry, so a fresh install with no configured model uses whatever Ollama
// serves first.
func (r *Registry) Resolve(ctx context.Context, selector string) (Entry, error) {
	entries := r.Available(ctx)
	if selector == "" {
		if len(entries) == 0 {
			return Entry{}, ErrModelUnavailable
		}
		return entries[0], nil
	}
	for _, entry := range entries {
		if entry.ID == selector || entry.Name == selector {
			return entry, nil
		}
	}
	return Entry{}, ErrModelUnavailable
}

// Invoke generates one assistant reply for the given history and system
// prompt using the selected model.
func (r *Registry) Invoke(ctx context.Context, messages []model.Message, systemPrompt, selector string) (string, error) {
	entry, err := r.Resolve(ctx, selector)
	if err != nil {
		return "", err
	}

	switch entry.Type {
	case BackendOllama:
		reply, err := r.client.Generate(ctx, entry.ID, messages, systemPrompt)
		if err != nil {
			return "", &Error{Message: ErrModelError.Message, Cause: err}
		}
		return reply, nil

	case BackendBERT:
		return "[BERT paraphrase check runs in the Python runtime. Use the original application for local BERT inference.]", nil

	case BackendHFHub:
		return "[HuggingFace Hub inference runs in the Python runtime. Use the original application for Hub models.]", nil

	case BackendOpenAI:
		return "[OpenAI integration not configured. Add your API key and code to enable.]", nil

	case BackendAnthropic:
		return "[Anthropic integration not configured. Add your API key and code to enable.]", nil

	default:
		return "", ErrModelUnavailable
	}
}
