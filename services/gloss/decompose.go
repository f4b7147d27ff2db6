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

// Kanji range selected for constituent extraction: the CJK Unified
// Ideographs block. Kana, punctuation and Latin text in an expression are
// not constituents and are skipped.
const (
	kanjiRangeLo = 0x4E00
	kanjiRangeHi = 0x9FFF
)

// IsKanji reports whether r falls in the CJK Unified Ideographs block.
func IsKanji(r rune) bool {
	return r >= kanjiRangeLo && r <= kanjiRangeHi
}

// Decompose returns the unique kanji of expression in first-occurrence
// order. Repeated kanji later in the expression are dropped, not
// re-ordered. An empty or kanji-free expression yields an empty slice.
//
// Pure function; no side effects.
func Decompose(expression string) []string {
	seen := make(map[rune]struct{})
	var out []string
	for _, r := range expression {
		if !IsKanji(r) {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, string(r))
	}
	return out
}
