// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tibsdev/tibschat/internal/model"
)

func sampleConversation() *model.Conversation {
	conv := model.NewConversation("Trip: Planning?")
	conv.SetSystemPrompt("Be helpful.")
	conv.AddMessage(model.RoleUser, "Where should I go?")
	conv.AddMessage(model.RoleAssistant, "Try Portugal.\n\n```go\nfmt.Println(\"olá\")\n```")
	return conv
}

func TestMarkdownExport(t *testing.T) {
	content, err := NewMarkdownExporter(nil).Export(sampleConversation())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	out := string(content)
	for _, want := range []string{"---", "generator: tibschat", "[User]", "[Assistant]", "Where should I go?", "Try Portugal."} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownExportWithoutMetadata(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeMetadata = false

	content, err := NewMarkdownExporter(opts).Export(sampleConversation())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if strings.Contains(string(content), "generator:") {
		t.Error("metadata header present despite IncludeMetadata=false")
	}
}

func TestJSONExportIsReimportable(t *testing.T) {
	conv := sampleConversation()
	content, err := NewJSONExporter().Export(conv)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"id", "name", "created_at", "updated_at", "messages", "system_prompt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("JSON export missing %q", key)
		}
	}
}

func TestHTMLExportEscapesContent(t *testing.T) {
	conv := model.NewConversation("Sneaky <script>")
	conv.AddMessage(model.RoleUser, "<b>hi</b>")

	content, err := NewHTMLExporter(nil).Export(conv)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := string(content)
	if strings.Contains(out, "<script>") {
		t.Error("unescaped script tag in HTML output")
	}
	if !strings.Contains(out, "&lt;b&gt;hi&lt;/b&gt;") {
		t.Error("message content not escaped")
	}
}

func TestHTMLExportCodeFences(t *testing.T) {
	content, err := NewHTMLExporter(nil).Export(sampleConversation())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(string(content), "<pre>") {
		t.Error("expected fenced code rendered as <pre>")
	}
}

func TestExportToFileNaming(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()

	path, err := ExportToFile(sampleConversation(), NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}
	base := strings.TrimPrefix(path, opts.OutputDir)
	if strings.ContainsAny(base, ":?") {
		t.Errorf("unsanitized filename: %s", base)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("expected .md extension: %s", path)
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"markdown", "md", "json", "html"} {
		if _, err := ForFormat(format, nil); err != nil {
			t.Errorf("ForFormat(%s) failed: %v", format, err)
		}
	}
	if _, err := ForFormat("pdf", nil); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", "simple"},
		{"has space", "has_space"},
		{"a/b\\c:d", "a-b-c-d"},
		{"", "conversation"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
