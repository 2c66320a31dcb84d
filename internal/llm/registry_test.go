// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tibsdev/tibschat/internal/model"
	"github.com/tibsdev/tibschat/internal/ollama"
)

func newTestRegistry(t *testing.T, handler http.HandlerFunc) *Registry {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewRegistry(ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: server.URL}))
}

func tagsAndGenerate(t *testing.T, reply string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			json.NewEncoder(w).Encode(map[string]any{
				"models": []map[string]string{{"name": "llama3:latest", "model": "llama3:latest"}},
			})
		case "/api/generate":
			json.NewEncoder(w).Encode(map[string]string{"response": reply})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}
}

func TestAvailableMergesDynamicAndStatic(t *testing.T) {
	r := newTestRegistry(t, tagsAndGenerate(t, ""))

	entries := r.Available(context.Background())
	if len(entries) != 5 {
		t.Fatalf("expected 1 dynamic + 4 static entries, got %d", len(entries))
	}
	if entries[0].Type != BackendOllama || entries[0].ID != "llama3:latest" {
		t.Errorf("expected ollama entry first, got %+v", entries[0])
	}
	if entries[1].ID != "bert-mrpc" {
		t.Errorf("expected static entries after dynamic, got %+v", entries[1])
	}
}

func TestAvailableWithOllamaDown(t *testing.T) {
	r := NewRegistry(ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: "http://127.0.0.1:1"}))

	entries := r.Available(context.Background())
	if len(entries) != 4 {
		t.Errorf("expected only static entries, got %d", len(entries))
	}
}

func TestInvokeOllamaBackend(t *testing.T) {
	r := newTestRegistry(t, tagsAndGenerate(t, "the reply"))

	reply, err := r.Invoke(context.Background(),
		[]model.Message{{Role: model.RoleUser, Content: "hi"}},
		"Be nice", "llama3:latest")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if reply != "the reply" {
		t.Errorf("reply = %q", reply)
	}
}

func TestInvokePlaceholderBackends(t *testing.T) {
	r := newTestRegistry(t, tagsAndGenerate(t, ""))

	tests := []struct {
		selector string
		want     string
	}{
		{"openai-gpt-4.1", "OpenAI integration not configured"},
		{"anthropic-claude", "Anthropic integration not configured"},
		{"bert-mrpc", "Python runtime"},
		{"gpt2", "Python runtime"},
	}

	for _, tt := range tests {
		reply, err := r.Invoke(context.Background(), nil, "", tt.selector)
		if err != nil {
			t.Errorf("Invoke(%s) failed: %v", tt.selector, err)
			continue
		}
		if !strings.Contains(reply, tt.want) {
			t.Errorf("Invoke(%s) = %q, want contains %q", tt.selector, reply, tt.want)
		}
	}
}

func TestInvokeUnknownSelector(t *testing.T) {
	r := newTestRegistry(t, tagsAndGenerate(t, ""))

	_, err := r.Invoke(context.Background(), nil, "", "no-such-model")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestResolveEmptySelectorPicksFirst(t *testing.T) {
	r := newTestRegistry(t, tagsAndGenerate(t, ""))

	entry, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if entry.ID != "llama3:latest" {
		t.Errorf("resolved %+v, want the first Ollama model", entry)
	}
}

func TestResolveByDisplayName(t *testing.T) {
	r := newTestRegistry(t, tagsAndGenerate(t, ""))

	entry, err := r.Resolve(context.Background(), "OpenAI GPT-4.1 (API)")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if entry.ID != "openai-gpt-4.1" {
		t.Errorf("resolved %+v", entry)
	}
}
