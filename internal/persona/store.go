// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tibsdev/tibschat/internal/util"
)

// =============================================================================
// STORE
// =============================================================================

// Store manages the merged persona set. Custom personas live in a single
// JSON document mapping name to prompt, rewritten in full on every mutation.
type Store struct {
	// FilePath is the custom-personas document.
	// Default: ~/.tibschat/custom_personas.json
	FilePath string

	// Warnings receives non-fatal load diagnostics.
	// Default: os.Stderr
	Warnings io.Writer
}

// NewStore creates a store backed by the given custom-personas file.
func NewStore(filePath string) *Store {
	return &Store{
		FilePath: filePath,
		Warnings: os.Stderr,
	}
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// List returns all personas, predefined and custom merged, sorted by name
// case-insensitively. On a name collision the predefined entry wins.
func (s *Store) List() ([]Info, error) {
	custom, err := s.loadCustom()
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(predefined)+len(custom))
	for name := range predefined {
		infos = append(infos, Info{Name: name, Origin: OriginPredefined})
	}
	for name := range custom {
		if IsPredefined(name) {
			continue
		}
		infos = append(infos, Info{Name: name, Origin: OriginCustom})
	}

	sort.Slice(infos, func(i, j int) bool {
		a, b := strings.ToLower(infos[i].Name), strings.ToLower(infos[j].Name)
		if a == b {
			return infos[i].Name < infos[j].Name
		}
		return a < b
	})

	return infos, nil
}

// Get resolves a persona name to its prompt text.
func (s *Store) Get(name string) (string, error) {
	if prompt, ok := predefined[name]; ok {
		return prompt, nil
	}

	custom, err := s.loadCustom()
	if err != nil {
		return "", err
	}
	if prompt, ok := custom[name]; ok {
		return prompt, nil
	}

	return "", ErrNotFound
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Save inserts or updates a custom persona. Saving under an existing custom
// name is an update; saving under a predefined name fails with ErrNameConflict.
func (s *Store) Save(name, prompt string) error {
	name = strings.TrimSpace(name)
	prompt = strings.TrimSpace(prompt)
	if name == "" || prompt == "" {
		return ErrInvalidInput
	}
	if IsPredefined(name) {
		return ErrNameConflict
	}

	custom, err := s.loadCustom()
	if err != nil {
		return err
	}

	custom[name] = prompt
	return s.writeCustom(custom)
}

// Delete removes a custom persona. Predefined personas are protected.
func (s *Store) Delete(name string) error {
	if IsPredefined(name) {
		return ErrProtected
	}

	custom, err := s.loadCustom()
	if err != nil {
		return err
	}
	if _, ok := custom[name]; !ok {
		return ErrNotFound
	}

	delete(custom, name)
	return s.writeCustom(custom)
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

// ConflictPolicy selects what ImportMerge does when an incoming name matches
// an existing custom persona.
type ConflictPolicy string

const (
	ConflictSkip      ConflictPolicy = "skip"
	ConflictOverwrite ConflictPolicy = "overwrite"
)

// ImportResult reports what an ImportMerge did.
type ImportResult struct {
	Imported   int
	Skipped    int
	Conflicted int
}

// ImportMerge merges an incoming name-to-prompt mapping into the custom set.
// Names reserved by predefined personas are never imported and count as
// conflicts. Collisions with existing custom personas follow the policy;
// empty names or prompts are skipped.
func (s *Store) ImportMerge(mapping map[string]string, onConflict ConflictPolicy) (ImportResult, error) {
	if onConflict == "" {
		onConflict = ConflictSkip
	}

	custom, err := s.loadCustom()
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	changed := false

	for name, prompt := range mapping {
		name = strings.TrimSpace(name)
		prompt = strings.TrimSpace(prompt)
		if name == "" || prompt == "" {
			result.Skipped++
			continue
		}
		if IsPredefined(name) {
			result.Conflicted++
			continue
		}
		if _, exists := custom[name]; exists && onConflict == ConflictSkip {
			result.Skipped++
			continue
		}
		custom[name] = prompt
		result.Imported++
		changed = true
	}

	if changed {
		if err := s.writeCustom(custom); err != nil {
			return ImportResult{}, err
		}
	}

	return result, nil
}

// Export is the export-all document shape.
type Export struct {
	CustomPersonas  map[string]string `json:"custom_personas"`
	ExportTimestamp string            `json:"export_timestamp"`
}

// ExportAll snapshots the custom mapping with a capture timestamp.
// Predefined personas are not included.
func (s *Store) ExportAll() (*Export, error) {
	custom, err := s.loadCustom()
	if err != nil {
		return nil, err
	}
	return &Export{
		CustomPersonas:  custom,
		ExportTimestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// loadCustom reads the custom-personas document. A missing file is an empty
// set. A document that fails to parse is also treated as an empty set with a
// warning; the corrupt file is left untouched so the user can recover it.
func (s *Store) loadCustom() (map[string]string, error) {
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read personas file: %w", err)
	}

	var custom map[string]string
	if err := json.Unmarshal(data, &custom); err != nil {
		s.warnf("Warning: custom personas file %s is corrupt (%v), starting with an empty set\n", s.FilePath, err)
		return map[string]string{}, nil
	}
	if custom == nil {
		custom = map[string]string{}
	}
	return custom, nil
}

func (s *Store) writeCustom(custom map[string]string) error {
	data, err := json.MarshalIndent(custom, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.FilePath, data, 0644)
}

func (s *Store) warnf(format string, args ...any) {
	w := s.Warnings
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}
