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

import "log/slog"

// diagnostics is the debug side-channel of the engine. It is invoked at
// fixed pipeline checkpoints (symbol queried, match count, chosen value,
// final composed line) and is observational only: disabling or redirecting
// it never changes a resolution outcome.
type diagnostics struct {
	enabled bool
	logger  *slog.Logger
}

func newDiagnostics(enabled bool, logger *slog.Logger) diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	return diagnostics{enabled: enabled, logger: logger.With(slog.String("component", "gloss_engine"))}
}

func (d diagnostics) symbolQueried(symbol, collection string, matches int) {
	if !d.enabled {
		return
	}
	d.logger.Info("symbol queried",
		slog.String("symbol", symbol),
		slog.String("collection", collection),
		slog.Int("matches", matches),
	)
}

func (d diagnostics) symbolResolved(symbol, gloss string, found bool) {
	if !d.enabled {
		return
	}
	d.logger.Info("symbol resolved",
		slog.String("symbol", symbol),
		slog.String("gloss", gloss),
		slog.Bool("found", found),
	)
}

func (d diagnostics) lookupFailed(symbol, collection string, err error) {
	if !d.enabled {
		return
	}
	d.logger.Warn("symbol lookup failed",
		slog.String("symbol", symbol),
		slog.String("collection", collection),
		slog.String("error", err.Error()),
	)
}

func (d diagnostics) composed(noteID, line string) {
	if !d.enabled {
		return
	}
	d.logger.Info("constituent line composed",
		slog.String("note_id", noteID),
		slog.String("line", line),
	)
}

func (d diagnostics) applied(noteID string, outcome ApplyOutcome) {
	if !d.enabled {
		return
	}
	d.logger.Info("constituent line applied",
		slog.String("note_id", noteID),
		slog.String("outcome", outcome.String()),
	)
}
