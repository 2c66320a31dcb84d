// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// migrate_cmd.go - Legacy history migration command handler.
//
// Migration also runs automatically on startup; this command runs it
// explicitly and reports what happened.

package cli

import (
	"fmt"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/storage"
)

// HandleMigrate handles the "migrate" command.
func HandleMigrate(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapError(err, "failed to load configuration")
	}

	legacy, err := storage.LoadLegacyHistory(cfg.Storage.LegacyHistoryFile)
	if err != nil {
		return WrapError(err, "legacy history file is unreadable")
	}
	if legacy == nil {
		fmt.Println(DimStyle.Render("No legacy history file found; nothing to migrate."))
		return nil
	}

	store, err := storage.NewStore(cfg.Storage.ConversationsDir)
	if err != nil {
		return err
	}

	conv, err := store.MigrateLegacyIfNeeded(legacy)
	if err != nil {
		return err
	}
	if conv == nil {
		fmt.Println(DimStyle.Render("Conversations already exist; legacy history left untouched."))
		return nil
	}

	fmt.Printf("%s Migrated %d messages into %s\n",
		SuccessStyle.Render("[OK]"),
		len(conv.Messages),
		HighlightStyle.Render(conv.Name))
	fmt.Printf("  %s\n", DimStyle.Render("The original file was left in place: "+cfg.Storage.LegacyHistoryFile))
	return nil
}
