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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/kanjikit/services/gloss"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	fillCollection string // Target collection of notes to fill
	fillAll        bool   // Fill every note in the collection
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// fillCmd runs the bulk fill over notes in the local deck database.
//
// # Examples
//
//	kanjikit fill --collection Vocab_Deck --all
//	kanjikit fill --collection Vocab_Deck id1 id2 id3
var fillCmd = &cobra.Command{
	Use:   "fill [noteID...]",
	Short: "Fill the constituent field of stored notes",
	Long: `Runs the fill pipeline over notes in the local deck database:
decompose each note's expression into its unique kanji, look up every
kanji's gloss in the configured single-kanji collection, and write the
composed constituent line into the destination field.

Already-filled notes are skipped (the fill is idempotent), filtered note
types are left untouched, and per-note lookup failures never abort the
rest of the batch.`,
	Run: runFillCommand,
}

func init() {
	fillCmd.Flags().StringVarP(&fillCollection, "collection", "c", "",
		"Collection holding the notes to fill (required)")
	fillCmd.Flags().BoolVar(&fillAll, "all", false,
		"Fill every note in the collection")
	_ = fillCmd.MarkFlagRequired("collection")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runFillCommand(cmd *cobra.Command, args []string) {
	if len(args) == 0 && !fillAll {
		fmt.Fprintln(os.Stderr, styled(styleErr, "no notes selected: pass note IDs or --all"))
		os.Exit(1)
	}

	db, store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := cmd.Context()
	ids := args
	if fillAll {
		ids, err = store.List(ctx, fillCollection)
		if err != nil {
			fmt.Fprintln(os.Stderr, styled(styleErr, fmt.Sprintf("list collection: %v", err)))
			os.Exit(1)
		}
		if len(ids) == 0 {
			fmt.Printf("Collection %q is empty.\n", fillCollection)
			return
		}
	}

	var notes []*gloss.Note
	loadFailed := 0
	for _, id := range ids {
		note, err := store.Get(ctx, fillCollection, id)
		if err != nil {
			fmt.Fprintln(os.Stderr, styled(styleWarn, fmt.Sprintf("skipping %s: %v", id, err)))
			loadFailed++
			continue
		}
		notes = append(notes, note)
	}

	engine := gloss.NewEngine(store, gloss.WithStore(store))
	summary, err := engine.ResolveMany(ctx, cliConfig, notes)
	if err != nil && summary == nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}

	fmt.Println(styled(styleHeading, "Fill summary"))
	fmt.Printf("  %s %d updated\n", styled(styleOK, "✓"), summary.Updated)
	fmt.Printf("  - %d unchanged\n", summary.SkippedUnchanged)
	if summary.SkippedFiltered > 0 {
		fmt.Printf("  - %d filtered by note type\n", summary.SkippedFiltered)
	}
	if summary.Rejected > 0 {
		fmt.Printf("  %s %d rejected (missing destination field)\n",
			styled(styleWarn, "!"), summary.Rejected)
	}
	if loadFailed > 0 {
		fmt.Printf("  %s %d could not be loaded\n", styled(styleWarn, "!"), loadFailed)
	}
	if summary.LookupFailures > 0 {
		fmt.Printf("  %s %d kanji lookups failed — check the single-kanji collection\n",
			styled(styleErr, "✗"), summary.LookupFailures)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleWarn, "batch interrupted: "+err.Error()))
	}
}
