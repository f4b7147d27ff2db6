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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Collection != "Kanji_Deck" {
		t.Errorf("expected collection = Kanji_Deck, got %q", cfg.Collection)
	}
	if cfg.SearchField != "Expression" {
		t.Errorf("expected search_field = Expression, got %q", cfg.SearchField)
	}
	if cfg.AdditionalField != "keyword" {
		t.Errorf("expected additional_field = keyword, got %q", cfg.AdditionalField)
	}
	if cfg.DestinationField != "Constituents" {
		t.Errorf("expected destination_field = Constituents, got %q", cfg.DestinationField)
	}
	if !cfg.PopulateOnEdit {
		t.Error("expected populate_on_edit = true")
	}
	if cfg.Debug {
		t.Error("expected debug = false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded defaults must validate: %v", err)
	}
}

func TestLoadConfig_Valid(t *testing.T) {
	yaml := []byte(`
collection: My_Kanji
search_field: Kanji
additional_field: Meaning
source_field: Expression
destination_field: Parts
note_types: ["japanese", "vocab"]
populate_on_edit: false
debug: true
`)
	cfg, err := LoadConfig(yaml)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Collection != "My_Kanji" {
		t.Errorf("expected collection = My_Kanji, got %q", cfg.Collection)
	}
	if len(cfg.NoteTypes) != 2 {
		t.Errorf("expected 2 note type filters, got %d", len(cfg.NoteTypes))
	}
	if cfg.PopulateOnEdit {
		t.Error("expected populate_on_edit = false")
	}
	if !cfg.Debug {
		t.Error("expected debug = true")
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	yaml := []byte(`
collection: My_Kanji
search_field: Kanji
`)
	_, err := LoadConfig(yaml)
	if err == nil {
		t.Fatal("expected error for incomplete config")
	}
	if !errors.Is(err, ErrConfigurationMissing) {
		t.Errorf("expected ErrConfigurationMissing, got %v", err)
	}
	// The error must name the missing settings so the user can fix them.
	for _, field := range []string{"AdditionalField", "SourceField", "DestinationField"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name missing field %s", err.Error(), field)
		}
	}
}

func TestLoadConfig_Empty(t *testing.T) {
	_, err := LoadConfig(nil)
	if err == nil {
		t.Fatal("expected error for empty data")
	}
	if !errors.Is(err, ErrConfigurationMissing) {
		t.Errorf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	_, err := LoadConfig([]byte("collection: [unclosed"))
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collection = "Round_Trip"
	cfg.NoteTypes = []string{"vocab"}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if loaded.Collection != "Round_Trip" {
		t.Errorf("expected collection = Round_Trip, got %q", loaded.Collection)
	}
	if len(loaded.NoteTypes) != 1 || loaded.NoteTypes[0] != "vocab" {
		t.Errorf("note_types did not round-trip: %v", loaded.NoteTypes)
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
