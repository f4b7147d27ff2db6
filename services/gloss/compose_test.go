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

import (
	"errors"
	"strings"
	"testing"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name    string
		entries []GlossEntry
		want    string
	}{
		{
			name: "all resolved",
			entries: []GlossEntry{
				{Symbol: "日", Gloss: "sun", Found: true},
				{Symbol: "本", Gloss: "book", Found: true},
			},
			want: "日: sun　本: book",
		},
		{
			name: "absent gloss renders placeholder",
			entries: []GlossEntry{
				{Symbol: "日", Gloss: "sun", Found: true},
				{Symbol: "鬱"},
				{Symbol: "本", Gloss: "book", Found: true},
			},
			want: "日: sun　鬱: ?　本: book",
		},
		{
			name: "lookup failure renders placeholder",
			entries: []GlossEntry{
				{Symbol: "火", Err: errors.New("index down")},
			},
			want: "火: ?",
		},
		{
			name:    "empty input",
			entries: nil,
			want:    "",
		},
		{
			name: "single entry has no separator",
			entries: []GlossEntry{
				{Symbol: "水", Gloss: "water", Found: true},
			},
			want: "水: water",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compose(tt.entries); got != tt.want {
				t.Errorf("Compose() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompose_SeparatorCount(t *testing.T) {
	entries := []GlossEntry{
		{Symbol: "一", Gloss: "one", Found: true},
		{Symbol: "二", Gloss: "two", Found: true},
		{Symbol: "三", Gloss: "three", Found: true},
	}
	got := Compose(entries)
	if n := strings.Count(got, PairSeparator); n != len(entries)-1 {
		t.Errorf("expected %d separators, got %d in %q", len(entries)-1, n, got)
	}
}

func TestCompose_PreservesInputOrder(t *testing.T) {
	entries := []GlossEntry{
		{Symbol: "語", Gloss: "language", Found: true},
		{Symbol: "日", Gloss: "sun", Found: true},
	}
	got := Compose(entries)
	if strings.Index(got, "語") > strings.Index(got, "日") {
		t.Errorf("composed order does not follow entry order: %q", got)
	}
}
