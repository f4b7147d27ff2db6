// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	importCollection string // Target collection
	importNoteType   string // Note type assigned to imported notes
	importFields     string // Comma-separated field names, in column order
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// importCmd loads a tab-separated deck export into the local database.
//
// # Examples
//
//	kanjikit import kanji.tsv -c Kanji_Deck -t Kanji -f Expression,keyword
//	kanjikit import vocab.tsv -c Vocab_Deck -t Vocab -f Expression,Meaning,Constituents
var importCmd = &cobra.Command{
	Use:   "import <file.tsv>",
	Short: "Import a tab-separated deck export into the local database",
	Long: `Imports a tab-separated deck export. Columns map onto the field
names given with --fields, in order; '#' header lines are skipped. Every
imported note gets a fresh ID.`,
	Args: cobra.ExactArgs(1),
	Run:  runImportCommand,
}

func init() {
	importCmd.Flags().StringVarP(&importCollection, "collection", "c", "",
		"Collection to import into (required)")
	importCmd.Flags().StringVarP(&importNoteType, "type", "t", "",
		"Note type name assigned to imported notes (required)")
	importCmd.Flags().StringVarP(&importFields, "fields", "f", "",
		"Comma-separated field names in column order (required)")
	_ = importCmd.MarkFlagRequired("collection")
	_ = importCmd.MarkFlagRequired("type")
	_ = importCmd.MarkFlagRequired("fields")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runImportCommand(cmd *cobra.Command, args []string) {
	var fieldNames []string
	for _, f := range strings.Split(importFields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fieldNames = append(fieldNames, f)
		}
	}
	if len(fieldNames) == 0 {
		fmt.Fprintln(os.Stderr, styled(styleErr, "--fields must name at least one field"))
		os.Exit(1)
	}

	file, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, fmt.Sprintf("open %s: %v", args[0], err)))
		os.Exit(1)
	}
	defer file.Close()

	db, store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	count, err := store.ImportTSV(cmd.Context(), file, importCollection, importNoteType, fieldNames)
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, fmt.Sprintf("import failed after %d notes: %v", count, err)))
		os.Exit(1)
	}
	fmt.Printf("%s Imported %d notes into %q.\n", styled(styleOK, "✓"), count, importCollection)
}
