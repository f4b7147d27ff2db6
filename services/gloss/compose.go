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

const (
	// PairSeparator joins composed symbol/gloss pairs. U+3000 (ideographic
	// space) renders as a visual field break and cannot appear inside a
	// single kanji or a trimmed gloss.
	PairSeparator = "　"

	// MissingGloss is rendered for symbols that resolved to no gloss, so an
	// incomplete fill is visible at a glance instead of a shortened line.
	MissingGloss = "?"
)

// GlossEntry pairs one symbol with its resolved gloss. Found is false when
// no single-kanji note matched or the configured gloss field was empty;
// Err is non-nil only when the index query itself failed for this symbol.
type GlossEntry struct {
	Symbol string `json:"symbol"`
	Gloss  string `json:"gloss"`
	Found  bool   `json:"found"`
	Err    error  `json:"-"`
}

// Compose joins entries into the destination-field line, one
// "<symbol>: <gloss>" pair per entry in input order. Entries without a
// gloss render the MissingGloss placeholder. Empty input composes to "".
//
// Pure function; no side effects.
func Compose(entries []GlossEntry) string {
	if len(entries) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		g := e.Gloss
		if !e.Found || g == "" {
			g = MissingGloss
		}
		pairs = append(pairs, e.Symbol+": "+g)
	}
	return strings.Join(pairs, PairSeparator)
}
