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
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultConfigYAML []byte

// MaxConfigFileSize bounds config files read from disk.
const MaxConfigFileSize = 1 << 20 // 1 MiB

// Config is the immutable-per-call settings snapshot the engine reads.
//
// The engine never mutates a Config and reads it exactly once per call, so
// a live-reloaded file never changes a resolution mid-pipeline.
//
// Thread Safety: Immutable after loading; safe for concurrent use by value.
type Config struct {
	// Collection names the single-kanji collection queried per symbol.
	Collection string `yaml:"collection" validate:"required"`

	// SearchField is the field on single-kanji notes holding the kanji.
	SearchField string `yaml:"search_field" validate:"required"`

	// AdditionalField is the field on single-kanji notes holding the gloss.
	AdditionalField string `yaml:"additional_field" validate:"required"`

	// SourceField is the expression field read from the target note.
	SourceField string `yaml:"source_field" validate:"required"`

	// DestinationField receives the composed constituent line.
	DestinationField string `yaml:"destination_field" validate:"required"`

	// NoteTypes filters target notes by type name (case-insensitive
	// substring match). Empty means all types.
	NoteTypes []string `yaml:"note_types"`

	// PopulateOnEdit enables the interactive field-blur trigger.
	PopulateOnEdit bool `yaml:"populate_on_edit"`

	// Debug enables the diagnostic channel (symbol queried, match counts,
	// chosen values, final composed string).
	Debug bool `yaml:"debug"`
}

var configValidator = validator.New()

// DefaultConfig returns the embedded default settings.
func DefaultConfig() Config {
	var cfg Config
	// The embedded defaults are compile-time constant and always parse.
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("gloss: embedded defaults.yaml invalid: %v", err))
	}
	return cfg
}

// LoadConfig parses and validates a Config from YAML bytes.
//
// Missing string settings are not defaulted: an incomplete file is a
// configuration error (ErrConfigurationMissing), surfaced before any note
// is touched.
func LoadConfig(data []byte) (Config, error) {
	if len(data) == 0 {
		return Config{}, fmt.Errorf("LoadConfig: empty YAML data: %w", ErrConfigurationMissing)
	}
	if len(data) > MaxConfigFileSize {
		return Config{}, fmt.Errorf("LoadConfig: YAML data exceeds maximum size (%d > %d)",
			len(data), MaxConfigFileSize)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("LoadConfig: parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	slog.Debug("gloss config loaded",
		slog.String("collection", cfg.Collection),
		slog.String("source_field", cfg.SourceField),
		slog.String("destination_field", cfg.DestinationField),
		slog.Int("note_type_filters", len(cfg.NoteTypes)),
		slog.Bool("debug", cfg.Debug),
	)
	return cfg, nil
}

// LoadConfigFile reads and validates a Config from a YAML file on disk.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("LoadConfigFile: %w", err)
	}
	return LoadConfig(data)
}

// Validate checks that every required setting is present.
//
// Returns an error wrapping ErrConfigurationMissing so callers can
// distinguish configuration problems from runtime failures.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var missing []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
			return fmt.Errorf("%w: missing %s", ErrConfigurationMissing,
				strings.Join(missing, ", "))
		}
		return fmt.Errorf("%w: %v", ErrConfigurationMissing, err)
	}
	return nil
}

// Save writes the config as YAML to path, creating the file if needed.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("Save: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("Save: write %s: %w", path, err)
	}
	return nil
}
