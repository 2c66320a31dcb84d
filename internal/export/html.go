// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/tibsdev/tibschat/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders conversations as a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(conv.Name)))
	sb.WriteString("<style>\n")
	sb.WriteString(e.styles())
	sb.WriteString("</style>\n</head>\n<body>\n")

	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(conv.Name)))

	if e.options.IncludeMetadata {
		sb.WriteString("<div class=\"meta\">\n")
		sb.WriteString(fmt.Sprintf("<span>Created: %s</span>\n", formatTimestamp(conv.CreatedAt)))
		sb.WriteString(fmt.Sprintf("<span>Updated: %s</span>\n", formatTimestamp(conv.UpdatedAt)))
		sb.WriteString(fmt.Sprintf("<span>Messages: %d</span>\n", len(conv.Messages)))
		sb.WriteString("</div>\n")
		if conv.SystemPrompt != "" {
			sb.WriteString(fmt.Sprintf("<div class=\"system-prompt\">%s</div>\n",
				html.EscapeString(conv.SystemPrompt)))
		}
	}

	for _, msg := range conv.Messages {
		cls := "user"
		label := "User"
		if msg.Role == model.RoleAssistant {
			cls = "assistant"
			label = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("<div class=\"message %s\">\n", cls))
		sb.WriteString(fmt.Sprintf("<div class=\"role\">%s</div>\n", label))
		sb.WriteString(fmt.Sprintf("<div class=\"content\">%s</div>\n",
			formatHTMLContent(msg.Content)))
		sb.WriteString("</div>\n")
	}

	sb.WriteString(fmt.Sprintf("<footer>Exported from tibschat on %s</footer>\n",
		time.Now().Format("January 2, 2006")))
	sb.WriteString("</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING HELPERS
// =============================================================================

// formatHTMLContent escapes content and preserves paragraph breaks and
// fenced code blocks.
func formatHTMLContent(content string) string {
	escaped := html.EscapeString(content)

	// Fenced code blocks become <pre> so whitespace survives.
	var sb strings.Builder
	inCode := false
	for _, line := range strings.Split(escaped, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCode {
				sb.WriteString("</pre>\n")
			} else {
				sb.WriteString("<pre>")
			}
			inCode = !inCode
			continue
		}
		sb.WriteString(line)
		if inCode {
			sb.WriteString("\n")
		} else {
			sb.WriteString("<br>\n")
		}
	}
	if inCode {
		sb.WriteString("</pre>\n")
	}
	return sb.String()
}

func (e *HTMLExporter) styles() string {
	if e.options.Theme == "light" {
		return `body { font-family: sans-serif; max-width: 800px; margin: 2em auto; background: #ffffff; color: #1a1a1a; }
.meta { color: #666; font-size: 0.9em; display: flex; gap: 1.5em; }
.system-prompt { background: #f0f0f0; padding: 0.8em; border-radius: 6px; margin: 1em 0; font-style: italic; }
.message { margin: 1em 0; padding: 0.8em 1em; border-radius: 8px; }
.message.user { background: #e8f0fe; }
.message.assistant { background: #f5f5f5; }
.role { font-weight: bold; margin-bottom: 0.4em; }
pre { background: #eee; padding: 0.8em; border-radius: 6px; overflow-x: auto; }
footer { color: #999; font-size: 0.8em; margin-top: 2em; }`
	}
	return `body { font-family: sans-serif; max-width: 800px; margin: 2em auto; background: #1e1e2e; color: #cdd6f4; }
.meta { color: #a6adc8; font-size: 0.9em; display: flex; gap: 1.5em; }
.system-prompt { background: #313244; padding: 0.8em; border-radius: 6px; margin: 1em 0; font-style: italic; }
.message { margin: 1em 0; padding: 0.8em 1em; border-radius: 8px; }
.message.user { background: #313244; }
.message.assistant { background: #24273a; }
.role { font-weight: bold; margin-bottom: 0.4em; }
pre { background: #11111b; padding: 0.8em; border-radius: 6px; overflow-x: auto; }
footer { color: #6c7086; font-size: 0.8em; margin-top: 2em; }`
}
