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
	"reflect"
	"testing"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       []string
	}{
		{
			name:       "mixed kanji and kana",
			expression: "日本語を勉強する",
			want:       []string{"日", "本", "語", "勉", "強"},
		},
		{
			name:       "duplicates keep first occurrence order",
			expression: "人人木人森木",
			want:       []string{"人", "木", "森"},
		},
		{
			name:       "empty expression",
			expression: "",
			want:       nil,
		},
		{
			name:       "kana only",
			expression: "ひらがなとカタカナ",
			want:       nil,
		},
		{
			name:       "latin and digits",
			expression: "ABC 123 abc",
			want:       nil,
		},
		{
			name:       "punctuation between kanji",
			expression: "水、火。山！",
			want:       []string{"水", "火", "山"},
		},
		{
			name:       "single kanji",
			expression: "猫",
			want:       []string{"猫"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decompose(tt.expression)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decompose(%q) = %v, want %v", tt.expression, got, tt.want)
			}
		})
	}
}

func TestIsKanji_BlockBoundaries(t *testing.T) {
	if !IsKanji(0x4E00) {
		t.Error("expected U+4E00 (block start) to be kanji")
	}
	if !IsKanji(0x9FFF) {
		t.Error("expected U+9FFF (block end) to be kanji")
	}
	if IsKanji(0x4DFF) {
		t.Error("expected U+4DFF (before block) to not be kanji")
	}
	if IsKanji(0xA000) {
		t.Error("expected U+A000 (after block) to not be kanji")
	}
	if IsKanji('あ') {
		t.Error("expected hiragana to not be kanji")
	}
	if IsKanji('ア') {
		t.Error("expected katakana to not be kanji")
	}
}

func TestDecompose_Deterministic(t *testing.T) {
	const expr = "森林火災の森林"
	first := Decompose(expr)
	for i := 0; i < 10; i++ {
		if got := Decompose(expr); !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: Decompose not deterministic: %v vs %v", i, got, first)
		}
	}
}
