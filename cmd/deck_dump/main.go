// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// deck_dump inspects the KanjiKit deck database.
//
// The deck database persists note collections in BadgerDB. This tool opens
// it read-only and prints a human-readable summary per collection: note
// counts, note types, and optionally every note's fields.
//
// Usage:
//
//	deck_dump [--path /path/to/decks] [--collection Kanji_Deck] [--notes]
//
// If --path is not given, reads KANJIKIT_DATA_DIR from the environment,
// falling back to ~/.kanjikit/decks/.
//
// Exit codes:
//
//	0 — success (including "empty database" which prints a message and exits 0)
//	1 — error opening or reading the database
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dgbadger "github.com/dgraph-io/badger/v4"
)

// noteKeyPrefix must match the store package exactly.
const noteKeyPrefix = "note/v1/"

// dumpNote mirrors the store's JSON layout; decoded loosely so a layout
// drift shows up as a decode error instead of silent zero values.
type dumpNote struct {
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields"`
}

func main() {
	pathFlag := flag.String("path", "", "Path to deck BadgerDB directory (overrides KANJIKIT_DATA_DIR env var)")
	collectionFlag := flag.String("collection", "", "Only dump this collection")
	notesFlag := flag.Bool("notes", false, "Print every note's fields, not just counts")
	flag.Parse()

	dbPath := *pathFlag
	if dbPath == "" {
		dbPath = os.Getenv("KANJIKIT_DATA_DIR")
	}
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fatalf("cannot resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, ".kanjikit", "decks")
	}

	fmt.Printf("Deck database path: %s\n", dbPath)

	// Check existence before trying to open — gives a cleaner error message
	// than BadgerDB's "no such file or directory" buried in a long error.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Deck directory does not exist. Nothing has been imported yet.")
		fmt.Println("Run `kanjikit import` to load a deck export.")
		os.Exit(0)
	}

	opts := dgbadger.DefaultOptions(dbPath).
		WithLogger(nil). // suppress BadgerDB internal logs
		WithReadOnly(true)

	db, err := dgbadger.Open(opts)
	if err != nil {
		fatalf("open BadgerDB at %s: %v", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	type collectionStats struct {
		notes     []dumpNote
		typeCount map[string]int
		decodeErr int
	}
	collections := make(map[string]*collectionStats)

	err = db.View(func(txn *dgbadger.Txn) error {
		iopts := dgbadger.DefaultIteratorOptions
		iopts.PrefetchValues = true
		it := txn.NewIterator(iopts)
		defer it.Close()

		prefix := []byte(noteKeyPrefix)
		if *collectionFlag != "" {
			prefix = []byte(noteKeyPrefix + *collectionFlag + "/")
		}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			rest := strings.TrimPrefix(string(item.Key()), noteKeyPrefix)
			idx := strings.IndexByte(rest, '/')
			if idx <= 0 {
				continue
			}
			name := rest[:idx]

			stats := collections[name]
			if stats == nil {
				stats = &collectionStats{typeCount: make(map[string]int)}
				collections[name] = stats
			}

			raw, err := item.ValueCopy(nil)
			if err != nil {
				stats.decodeErr++
				continue
			}
			var note dumpNote
			if err := json.Unmarshal(raw, &note); err != nil {
				stats.decodeErr++
				continue
			}
			stats.typeCount[note.Type]++
			if *notesFlag {
				stats.notes = append(stats.notes, note)
			} else {
				stats.notes = append(stats.notes, dumpNote{ID: note.ID})
			}
		}
		return nil
	})
	if err != nil {
		fatalf("read BadgerDB: %v", err)
	}

	if len(collections) == 0 {
		fmt.Println("\nNo notes found.")
		os.Exit(0)
	}

	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println(strings.Repeat("─", 72))
	for _, name := range names {
		stats := collections[name]
		fmt.Printf("\nCollection: %s — %d note%s\n", name, len(stats.notes), plural(len(stats.notes), "", "s"))

		types := make([]string, 0, len(stats.typeCount))
		for t := range stats.typeCount {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			label := t
			if label == "" {
				label = "(untyped)"
			}
			fmt.Printf("  type %-20s %d\n", label, stats.typeCount[t])
		}
		if stats.decodeErr > 0 {
			fmt.Printf("  DECODE ERRORS: %d\n", stats.decodeErr)
		}

		if *notesFlag {
			for _, note := range stats.notes {
				fmt.Printf("\n  [%s] %s\n", note.Type, note.ID)
				fieldNames := make([]string, 0, len(note.Fields))
				for f := range note.Fields {
					fieldNames = append(fieldNames, f)
				}
				sort.Strings(fieldNames)
				for _, f := range fieldNames {
					fmt.Printf("    %-18s %s\n", f+":", note.Fields[f])
				}
			}
		}
	}
	fmt.Printf("\n%s\n", strings.Repeat("─", 72))
	fmt.Printf("Summary: %d collection%s, database path: %s\n",
		len(names), plural(len(names), "", "s"), dbPath)
}

// plural returns singular or plural suffix based on count.
func plural(n int, singular, pluralSuffix string) string {
	if n == 1 {
		return singular
	}
	return pluralSuffix
}

// fatalf prints to stderr and exits 1.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "deck_dump: "+format+"\n", args...)
	os.Exit(1)
}
