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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// optionsCmd edits the fill settings interactively and writes them to the
// config file. The daemon picks the new file up through its watcher.
//
// # Examples
//
//	kanjikit options
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Edit the fill settings interactively",
	Run:   runOptionsCommand,
}

func runOptionsCommand(cmd *cobra.Command, args []string) {
	cfg := cliConfig
	noteTypes := strings.Join(cfg.NoteTypes, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target collection").
				Description("Collection holding the single-kanji notes").
				Value(&cfg.Collection),
			huh.NewInput().
				Title("Kanji search field").
				Description("Field on single-kanji notes holding the kanji").
				Value(&cfg.SearchField),
			huh.NewInput().
				Title("Additional field").
				Description("Field on single-kanji notes holding the gloss").
				Value(&cfg.AdditionalField),
			huh.NewInput().
				Title("Source field").
				Description("Expression field read from target notes").
				Value(&cfg.SourceField),
			huh.NewInput().
				Title("Destination field").
				Description("Field receiving the constituent line").
				Value(&cfg.DestinationField),
			huh.NewInput().
				Title("Note-type filter (comma)").
				Description("Only fill notes whose type matches; empty = all").
				Value(&noteTypes),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Populate when leaving the expression field?").
				Value(&cfg.PopulateOnEdit),
			huh.NewConfirm().
				Title("Enable debug logging?").
				Value(&cfg.Debug),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Settings unchanged.")
			return
		}
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}

	cfg.NoteTypes = nil
	for _, t := range strings.Split(noteTypes, ",") {
		if t = strings.TrimSpace(t); t != "" {
			cfg.NoteTypes = append(cfg.NoteTypes, t)
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}

	path := configPath()
	if path == "" {
		fmt.Fprintln(os.Stderr, styled(styleErr, "cannot resolve config file location"))
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, fmt.Sprintf("create config directory: %v", err)))
		os.Exit(1)
	}
	if err := cfg.Save(path); err != nil {
		fmt.Fprintln(os.Stderr, styled(styleErr, err.Error()))
		os.Exit(1)
	}
	fmt.Printf("%s Settings saved to %s\n", styled(styleOK, "✓"), path)
}
