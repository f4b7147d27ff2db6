// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gloss implements the constituent resolution engine.
//
// The engine enriches a compound-text note (e.g. a vocabulary entry) with a
// gloss line listing every distinct kanji the note contains, looked up from
// a separate collection of single-kanji notes:
//
//	Expression → Decompose → unique kanji → resolve per kanji → Compose → apply
//
// Two entry points share the pipeline: Engine.ResolveOne for interactive use
// (a field-blur event on one note) and Engine.ResolveMany for bulk fills over
// a caller-selected set of notes. The engine is stateless between calls; the
// only side effect is the destination-field write performed by apply.
package gloss

import "context"

// Note is a record with named fields, owned by an external store.
//
// The engine never persists a Note itself beyond proposing a new value for
// one field; the attached NoteStore (if any) owns durability.
type Note struct {
	// ID identifies the note within its collection.
	ID string `json:"id"`

	// Type is the note type name, matched against the configured
	// note-type filters.
	Type string `json:"type"`

	// Collection is the deck/class the note belongs to.
	Collection string `json:"collection"`

	// Fields maps field names to their current values.
	Fields map[string]string `json:"fields"`
}

// Field returns the value of a named field and whether the field exists.
func (n *Note) Field(name string) (string, bool) {
	if n.Fields == nil {
		return "", false
	}
	v, ok := n.Fields[name]
	return v, ok
}

// SymbolIndex finds single-symbol notes in a named collection.
//
// Implementations treat unknown collection or field names as "no matches",
// not as errors; a non-nil error means the query channel itself failed and
// is surfaced by the resolver as a lookup failure for that symbol only.
type SymbolIndex interface {
	// Find returns every note in collection whose field equals value, in
	// the provider's native order. The engine uses the first exact match.
	Find(ctx context.Context, collection, field, value string) ([]Note, error)
}

// NoteStore persists notes for batch fills.
type NoteStore interface {
	// Get loads one note by collection and ID.
	Get(ctx context.Context, collection, id string) (*Note, error)

	// Put writes a note back to the store.
	Put(ctx context.Context, note *Note) error

	// List returns the IDs of every note in a collection.
	List(ctx context.Context, collection string) ([]string, error)
}
