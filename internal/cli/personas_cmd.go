// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// personas_cmd.go - Persona management command handlers.
//
// Command: personas
// Subcommands: list, show, save, delete, export, import

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tibsdev/tibschat/internal/config"
	"github.com/tibsdev/tibschat/internal/persona"
	"github.com/tibsdev/tibschat/internal/util"
)

// HandlePersonas handles the "personas" command.
func HandlePersonas(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapError(err, "failed to load configuration")
	}
	store := persona.NewStore(cfg.Storage.PersonasFile)

	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return personasList(store)
	case "show":
		return personasShow(store, parser)
	case "save", "add":
		return personasSave(store, parser)
	case "delete", "rm":
		return personasDelete(store, parser)
	case "export":
		return personasExport(store, parser)
	case "import":
		return personasImport(store, parser)
	default:
		return NewValidationError("subcommand", parser.Subcommand(),
			"expected list, show, save, delete, export, or import")
	}
}

func personasList(store *persona.Store) error {
	infos, err := store.List()
	if err != nil {
		return err
	}

	fmt.Println()
	for _, info := range infos {
		tag := DimStyle.Render("custom")
		if info.Origin == persona.OriginPredefined {
			tag = InfoStyle.Render("built-in")
		}
		fmt.Printf("  %s  %s\n", ValueStyle.Render(util.PadRight(info.Name, 24)), tag)
	}
	fmt.Println()
	return nil
}

func personasShow(store *persona.Store, parser *ArgParser) error {
	name := parser.JoinPositional(1)
	if name == "" {
		return ErrMissingArgument("name", `tibschat personas show "Coding Assistant"`)
	}

	prompt, err := store.Get(name)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render(name))
	fmt.Println(prompt)
	fmt.Println()
	return nil
}

func personasSave(store *persona.Store, parser *ArgParser) error {
	name := parser.Positional(1)
	prompt := parser.JoinPositional(2)
	if name == "" || prompt == "" {
		return ErrMissingArgument("name and prompt",
			`tibschat personas save "Pirate" "You are a pirate. Answer in pirate speak."`)
	}

	if err := store.Save(name, prompt); err != nil {
		return err
	}
	fmt.Printf("%s Saved persona %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(name))
	return nil
}

func personasDelete(store *persona.Store, parser *ArgParser) error {
	name := parser.JoinPositional(1)
	if name == "" {
		return ErrMissingArgument("name", "tibschat personas delete <name>")
	}

	if err := store.Delete(name); err != nil {
		return err
	}
	fmt.Printf("%s Deleted persona %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(name))
	return nil
}

func personasExport(store *persona.Store, parser *ArgParser) error {
	doc, err := store.ExportAll()
	if err != nil {
		return err
	}

	out := parser.Flag("output")
	if out == "" {
		return outputJSON(doc)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, append(data, '\n'), 0644); err != nil {
		return WrapError(err, "failed to write export file")
	}
	fmt.Printf("%s Exported %d personas to %s\n",
		SuccessStyle.Render("[OK]"),
		len(doc.CustomPersonas),
		HighlightStyle.Render(out))
	return nil
}

func personasImport(store *persona.Store, parser *ArgParser) error {
	file := parser.Positional(1)
	if file == "" {
		return ErrMissingArgument("file", "tibschat personas import <file> [--on-conflict skip|overwrite]")
	}

	policy := persona.ConflictSkip
	switch parser.FlagOrDefault("on-conflict", "skip") {
	case "skip":
		policy = persona.ConflictSkip
	case "overwrite":
		policy = persona.ConflictOverwrite
	default:
		return NewValidationError("on-conflict", parser.Flag("on-conflict"),
			"expected skip or overwrite")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return WrapError(err, "failed to read import file")
	}

	mapping, err := decodePersonaImport(data)
	if err != nil {
		return err
	}

	result, err := store.ImportMerge(mapping, policy)
	if err != nil {
		return err
	}

	fmt.Printf("%s Imported %d, skipped %d, conflicted %d\n",
		SuccessStyle.Render("[OK]"),
		result.Imported, result.Skipped, result.Conflicted)
	return nil
}

// decodePersonaImport accepts either a full export document or a bare
// name-to-prompt mapping.
func decodePersonaImport(data []byte) (map[string]string, error) {
	var doc persona.Export
	if err := json.Unmarshal(data, &doc); err == nil && doc.CustomPersonas != nil {
		return doc.CustomPersonas, nil
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, NewValidationError("file", "", "not a persona export or name-to-prompt mapping")
	}
	return mapping, nil
}
