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
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigSource hands out immutable Config snapshots and optionally keeps
// them fresh from a file on disk.
//
// Each engine call reads one snapshot via Current(); a reload swaps the
// pointer atomically, so the new settings apply from the next call onward
// and never change a resolution mid-pipeline.
//
// Thread Safety: Safe for concurrent use.
type ConfigSource struct {
	current atomic.Pointer[Config]
	path    string
	logger  *slog.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// NewConfigSource creates a source serving a fixed snapshot.
func NewConfigSource(cfg Config) *ConfigSource {
	s := &ConfigSource{logger: slog.Default()}
	s.current.Store(&cfg)
	return s
}

// Current returns the active settings snapshot by value.
func (s *ConfigSource) Current() Config {
	return *s.current.Load()
}

// Set replaces the active snapshot. Invalid configs are rejected.
func (s *ConfigSource) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.current.Store(&cfg)
	return nil
}

// configReloadDebounce absorbs the editor write-then-rename burst that a
// single save produces.
const configReloadDebounce = 250 * time.Millisecond

// WatchFile starts reloading the snapshot whenever path changes.
//
// The parent directory is watched rather than the file itself, so
// rename-style saves (write temp, rename over) keep working. A file that
// fails to parse or validate is logged and skipped; the previous snapshot
// stays active.
func (s *ConfigSource) WatchFile(path string, logger *slog.Logger) error {
	if logger != nil {
		s.logger = logger.With(slog.String("component", "config_watcher"))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("WatchFile: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("WatchFile: watch %s: %w", filepath.Dir(path), err)
	}

	s.path = path
	s.watcher = watcher
	s.done = make(chan struct{})
	go s.run()

	s.logger.Info("watching config file", slog.String("path", path))
	return nil
}

// Stop halts the watcher. Safe to call multiple times, and a no-op for
// sources created without WatchFile.
func (s *ConfigSource) Stop() {
	s.stopOnce.Do(func() {
		if s.watcher == nil {
			return
		}
		close(s.done)
		s.watcher.Close()
	})
}

func (s *ConfigSource) run() {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(configReloadDebounce)
				timerCh = timer.C
			} else {
				timer.Reset(configReloadDebounce)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("config watcher error", slog.String("error", err.Error()))
		case <-timerCh:
			timer = nil
			timerCh = nil
			s.reload()
		}
	}
}

func (s *ConfigSource) reload() {
	cfg, err := LoadConfigFile(s.path)
	if err != nil {
		s.logger.Warn("config reload failed, keeping previous settings",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return
	}
	s.current.Store(&cfg)
	s.logger.Info("config reloaded",
		slog.String("path", s.path),
		slog.String("collection", cfg.Collection))
}
