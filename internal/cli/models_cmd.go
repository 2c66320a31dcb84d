// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// models_cmd.go - Model catalog command handler.

package cli

import (
	"context"
	"fmt"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/llm"
	"github.com/tibsdev/tibschat/internal/ollama"
	"github.com/tibsdev/tibschat/internal/util"
)

// HandleModels handles the "models" command.
func HandleModels(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapError(err, "failed to load configuration")
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Ollama.URL})
	registry := llm.NewRegistry(client)

	entries := registry.Available(context.Background())

	fmt.Println()
	fmt.Println(TitleStyle.Render("Available Models"))
	for _, entry := range entries {
		style := ValueStyle
		name := entry.Name
		if entry.Name == cfg.DefaultModel || entry.ID == cfg.DefaultModel {
			style = HighlightStyle
			name += " (default)"
		}
		fmt.Printf("  %s  %s  %s\n",
			style.Render(util.PadRight(name, 36)),
			DimStyle.Render(util.PadRight(entry.ID, 20)),
			DimStyle.Render(string(entry.Type)))
	}
	fmt.Println()
	return nil
}
