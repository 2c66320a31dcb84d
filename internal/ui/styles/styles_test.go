// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestStatusIndicatorsInOutput(t *testing.T) {
	tests := []struct {
		render func(string) string
		want   string
	}{
		{RenderSuccess, "[OK]"},
		{RenderError, "[X]"},
		{RenderWarning, "[!]"},
		{RenderInfo, "[i]"},
	}
	for _, tt := range tests {
		out := tt.render("message")
		if !strings.Contains(out, tt.want) {
			t.Errorf("expected indicator %q in %q", tt.want, out)
		}
		if !strings.Contains(out, "message") {
			t.Errorf("message text missing from %q", out)
		}
	}
}

func TestNewThemeStylesRender(t *testing.T) {
	theme := NewTheme()
	if theme.Header.Render("tibschat") == "" {
		t.Error("header style produced empty output")
	}
	if theme.SystemBanner.Render("prompt") == "" {
		t.Error("system banner style produced empty output")
	}
}
