// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - System status command handler.
//
// Shows Ollama reachability, conversation and persona counts, and the
// configured data paths.

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/ollama"
	"github.com/tibsdev/tibschat/internal/persona"
	"github.com/tibsdev/tibschat/internal/storage"
)

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapError(err, "failed to load configuration")
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("tibschat status"))

	// Ollama reachability
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Ollama.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ollamaOK := client.CheckRunning(ctx) == nil
	fmt.Printf("%s %s  %s\n",
		LabelStyle.Render("Ollama"),
		RenderStatus(ollamaOK),
		DimStyle.Render(cfg.Ollama.URL))

	if ollamaOK {
		if models, err := client.ListModels(ctx); err == nil {
			fmt.Printf("%s %d local\n", LabelStyle.Render("Models"), len(models))
		}
	} else {
		fmt.Printf("%s %s\n",
			LabelStyle.Render(""),
			DimStyle.Render("Start it with: ollama serve"))
	}

	// Conversation store
	convStore, err := storage.NewStore(cfg.Storage.ConversationsDir)
	if err != nil {
		return err
	}
	count, err := convStore.Count()
	if err != nil {
		return err
	}
	fmt.Printf("%s %d\n", LabelStyle.Render("Conversations"), count)

	// Persona store
	personaStore := persona.NewStore(cfg.Storage.PersonasFile)
	infos, err := personaStore.List()
	if err != nil {
		return err
	}
	custom := 0
	for _, info := range infos {
		if info.Origin == persona.OriginCustom {
			custom++
		}
	}
	fmt.Printf("%s %d (%d custom)\n", LabelStyle.Render("Personas"), len(infos), custom)

	// Paths
	fmt.Printf("%s %s\n", LabelStyle.Render("Data dir"), DimStyle.Render(cfg.Storage.DataDir))
	fmt.Printf("%s %s\n", LabelStyle.Render("Default model"), ValueStyle.Render(cfg.DefaultModel))
	fmt.Println()
	return nil
}
