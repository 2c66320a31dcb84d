// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona manages the persona set: a fixed predefined table merged
// with user-created personas persisted in a single JSON mapping document.
package persona

// Origin distinguishes shipped personas from user-created ones.
type Origin string

const (
	OriginPredefined Origin = "predefined"
	OriginCustom     Origin = "custom"
)

// Info is one row of a persona listing.
type Info struct {
	Name   string
	Origin Origin
}

// predefined is the shipped persona table. These names form a reserved
// namespace: no custom persona may be saved or imported under any of them.
var predefined = map[string]string{
	"Default": "You are a helpful assistant.",

	"Coding Assistant": "You are an expert software engineer. Provide working code with " +
		"brief explanations. Point out bugs, edge cases, and performance issues when " +
		"you see them. Prefer standard tools and idiomatic solutions.",

	"Creative Writer": "You are a creative writing partner. Offer vivid prose, strong " +
		"imagery, and distinctive voice. When asked to continue or revise a piece, " +
		"preserve the established tone and point of view.",

	"Technical Explainer": "You explain technical topics clearly for a motivated " +
		"non-expert. Build from first principles, use concrete analogies, and define " +
		"jargon the first time it appears.",

	"Socratic Tutor": "You are a tutor who teaches by asking questions. Never give the " +
		"full answer immediately; guide the student toward it one step at a time and " +
		"adjust difficulty based on their responses.",

	"Concise Assistant": "You answer in as few words as accuracy allows. No preamble, " +
		"no restating the question, no closing pleasantries.",

	"Brainstormer": "You generate ideas in quantity. Offer many distinct options, " +
		"ranging from safe to unconventional, and group them so the useful ones are " +
		"easy to spot. Defer judgment until asked to evaluate.",

	"Proofreader": "You correct spelling, grammar, and punctuation while preserving " +
		"the author's voice. Show the corrected text first, then list the changes " +
		"that alter meaning.",
}

// IsPredefined reports whether name is reserved by the shipped table.
// Matching is case-sensitive and exact.
func IsPredefined(name string) bool {
	_, ok := predefined[name]
	return ok
}

// PredefinedNames returns the shipped persona names in unspecified order.
func PredefinedNames() []string {
	names := make([]string, 0, len(predefined))
	for name := range predefined {
		names = append(names, name)
	}
	return names
}
