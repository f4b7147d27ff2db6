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

// lookupCmd resolves the kanji of an ad-hoc word without touching notes.
//
// # Examples
//
//	kanjikit lookup 国家
var lookupCmd = &cobra.Command{
	Use:   "lookup <word>",
	Short: "Look up the glosses of every kanji in a word",
	Args:  cobra.ExactArgs(1),
	Run:   runLookupCommand,
}

func runLookupCommand(cmd *cobra.Command, args []string) {
	db, store, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	engine := gloss.NewEngine(store)
	entries, err := engine.Lookup(cmd.Context(), cliConfig, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Printf("No kanji found in %q.\n", args[0])
		return
	}

	for _, e := range entries {
		switch {
		case e.Err != nil:
			fmt.Printf("  %s: %s\n", e.Symbol, styled(styleErr, "lookup failed"))
		case !e.Found:
			fmt.Printf("  %s: %s\n", e.Symbol, styled(styleWarn, gloss.MissingGloss))
		default:
			fmt.Printf("  %s: %s\n", e.Symbol, e.Gloss)
		}
	}
}
