// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers.
//
// Command: config
// Subcommands: show (default), set <key> <value>, path

package cli

import (
	"fmt"
	"strconv"

	"github.com/tibsdev/tibschat/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return configShow()
	case "set":
		return configSet(parser.Positional(1), parser.JoinPositional(2))
	case "path":
		return configPath()
	default:
		return NewValidationError("subcommand", parser.Subcommand(), "expected show, set, or path")
	}
}

func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return WrapError(err, "failed to load configuration")
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Configuration"))
	fmt.Printf("%s %s\n", LabelStyle.Render("model"), ValueStyle.Render(cfg.DefaultModel))
	fmt.Printf("%s %s\n", LabelStyle.Render("ollama.url"), ValueStyle.Render(cfg.Ollama.URL))
	fmt.Printf("%s %d\n", LabelStyle.Render("ollama.timeout"), cfg.Ollama.GenerateTimeoutSecs)
	fmt.Printf("%s %s\n", LabelStyle.Render("storage.data_dir"), ValueStyle.Render(cfg.Storage.DataDir))
	fmt.Printf("%s %s\n", LabelStyle.Render("ui.theme"), ValueStyle.Render(cfg.UI.Theme))
	fmt.Println()
	return nil
}

func configSet(key, value string) error {
	if key == "" || value == "" {
		return ErrMissingArgument("key and value", "tibschat config set model llama3")
	}

	cfg, err := config.Load()
	if err != nil {
		return WrapError(err, "failed to load configuration")
	}

	switch key {
	case "model", "default_model":
		cfg.DefaultModel = value
	case "ollama.url", "ollama_url":
		cfg.Ollama.URL = value
	case "ollama.timeout", "ollama.generate_timeout_secs":
		secs, err := strconv.Atoi(value)
		if err != nil {
			return NewValidationError(key, value, "must be an integer number of seconds")
		}
		cfg.Ollama.GenerateTimeoutSecs = secs
	case "storage.data_dir", "data_dir":
		cfg.Storage.DataDir = value
		// Derived paths follow the new root.
		cfg.Storage.ConversationsDir = ""
		cfg.Storage.PersonasFile = ""
		cfg.Storage.LegacyHistoryFile = ""
		if err := cfg.SetDefaults(); err != nil {
			return err
		}
	case "ui.theme", "theme":
		cfg.UI.Theme = value
	default:
		return NewValidationError("key", key,
			"expected model, ollama.url, ollama.timeout, storage.data_dir, or ui.theme")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return WrapError(err, "failed to save configuration")
	}

	fmt.Printf("%s Set %s = %s\n", SuccessStyle.Render("[OK]"),
		HighlightStyle.Render(key), value)
	return nil
}

func configPath() error {
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(tomlPath)
	return nil
}
