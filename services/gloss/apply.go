// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gloss

import "strings"

// ApplyOutcome classifies the result of applying a composed line to a note.
type ApplyOutcome int

const (
	// OutcomeUpdated means the destination field was set to the new value.
	// This is the only branch that mutates the note.
	OutcomeUpdated ApplyOutcome = iota

	// OutcomeSkippedUnchanged means the destination field already held the
	// new value; no write was performed. Re-running a fill on an
	// already-filled note is a no-op.
	OutcomeSkippedUnchanged

	// OutcomeSkippedFiltered means the note type matched none of the
	// configured filters; the note was left untouched.
	OutcomeSkippedFiltered

	// OutcomeRejected means the destination field does not exist on the
	// note's type. Reported as a distinct skip reason, never fatal.
	OutcomeRejected
)

// String returns the outcome name used in summaries and metrics labels.
func (o ApplyOutcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeSkippedUnchanged:
		return "skipped_unchanged"
	case OutcomeSkippedFiltered:
		return "skipped_filtered"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// matchesTypeFilter reports whether noteType passes the configured filters.
// Filters are case-insensitive substrings; an empty filter set matches all.
func matchesTypeFilter(noteType string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	lower := strings.ToLower(noteType)
	for _, f := range filters {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

// Apply writes newValue into note's destination field.
//
// The write is skipped when the note type fails the filter
// (OutcomeSkippedFiltered), when the field already holds newValue
// (OutcomeSkippedUnchanged), or when the field does not exist on the note
// (OutcomeRejected). Only OutcomeUpdated mutates the note, and the mutation
// is a single field assignment, so an interrupted batch never leaves a note
// half-written.
func Apply(note *Note, destField, newValue string, typeFilters []string) ApplyOutcome {
	if !matchesTypeFilter(note.Type, typeFilters) {
		return OutcomeSkippedFiltered
	}
	current, ok := note.Field(destField)
	if !ok {
		return OutcomeRejected
	}
	if current == newValue {
		return OutcomeSkippedUnchanged
	}
	note.Fields[destField] = newValue
	return OutcomeUpdated
}
