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
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/kanjikit/services/gloss"
	badgerstore "github.com/AleutianAI/kanjikit/services/gloss/store/badger"
)

// --- Global Command Variables ---
var (
	configPathFlag string
	dataDirFlag    string
	debugFlag      bool

	cliConfig gloss.Config

	rootCmd = &cobra.Command{
		Use:   "kanjikit",
		Short: "A cli to manage kanji constituent auto-fill decks",
		Long: `KanjiKit fills the constituent field of vocabulary notes with a
gloss line for every distinct kanji they contain, looked up from a
separate single-kanji deck.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cliConfig = loadCLIConfig()
			if debugFlag {
				cliConfig.Debug = true
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "",
		"Path to config YAML (default ~/.kanjikit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"Path to deck database directory (default ~/.kanjikit/decks)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"Enable debug diagnostics")

	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(backupCmd)
}

// configPath returns the active config file location.
func configPath() string {
	if configPathFlag != "" {
		return configPathFlag
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kanjikit", "config.yaml")
}

// dataDir returns the deck database directory.
func dataDir() string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kanjikit", "decks")
}

// loadCLIConfig reads the config file, falling back to embedded defaults
// when it does not exist yet.
func loadCLIConfig() gloss.Config {
	path := configPath()
	if path != "" {
		if cfg, err := gloss.LoadConfigFile(path); err == nil {
			return cfg
		}
	}
	return gloss.DefaultConfig()
}

// openStore opens the deck database for a command's lifetime.
func openStore() (*badgerstore.DB, *badgerstore.NoteStore, error) {
	dir := dataDir()
	if dir == "" {
		return nil, nil, fmt.Errorf("cannot resolve deck database directory")
	}
	cfg := badgerstore.DefaultConfig()
	cfg.Path = dir
	cfg.GCInterval = 0 // short-lived CLI process, no GC loop
	db, err := badgerstore.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open deck database at %s: %w", dir, err)
	}
	return db, badgerstore.NewNoteStore(db), nil
}

// --- Terminal styling ---

var (
	styleHeading = lipgloss.NewStyle().Bold(true)
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// stdoutIsTTY gates styled output so piped output stays plain.
func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func styled(style lipgloss.Style, s string) string {
	if !stdoutIsTTY() {
		return s
	}
	return style.Render(s)
}
