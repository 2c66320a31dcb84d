// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tibsdev/tibschat/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
		{Role: model.RoleUser, Content: "how are you?"},
	}

	got := BuildPrompt(messages, "Be nice")
	want := "Be nice\nUser: hi\nAssistant: hello\nUser: how are you?\n"
	if got != want {
		t.Errorf("BuildPrompt = %q, want %q", got, want)
	}
}

func TestBuildPromptWithoutSystemPrompt(t *testing.T) {
	got := BuildPrompt([]model.Message{{Role: model.RoleUser, Content: "hi"}}, "")
	if got != "User: hi\n" {
		t.Errorf("BuildPrompt = %q", got)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "llama3:latest", "model": "llama3:latest"},
				{"name": "mistral:7b", "model": "mistral:7b"},
			},
		})
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 || models[0].Name != "llama3:latest" {
		t.Errorf("unexpected models: %+v", models)
	}
}

func TestListModelsServerDown(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := client.ListModels(context.Background())
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"response": "generated text"})
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	reply, err := client.Generate(context.Background(),
		"llama3:latest",
		[]model.Message{{Role: model.RoleUser, Content: "hi"}},
		"Be nice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if reply != "generated text" {
		t.Errorf("reply = %q", reply)
	}
	if gotBody.Model != "llama3:latest" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if gotBody.Stream {
		t.Error("stream must be false")
	}
	if gotBody.Prompt != "Be nice\nUser: hi\n" {
		t.Errorf("prompt = %q", gotBody.Prompt)
	}
}

func TestGenerateErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "m", nil, "")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeInvalidResponse {
		t.Errorf("expected invalid-response ClientError, got %v", err)
	}
}

func TestCheckRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	if err := client.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning failed: %v", err)
	}

	down := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})
	if err := down.CheckRunning(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}
