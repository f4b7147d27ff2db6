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
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// resolve maps each symbol to a GlossEntry by querying the symbol index,
// preserving input order.
//
// Tie-break: when the index returns more than one note, the first note in
// provider order whose search field exactly equals the symbol wins. This is
// deterministic for a fixed provider but provider-order-dependent; callers
// needing stronger guarantees must keep the single-kanji collection unique.
//
// A failed query channel is recovered locally: the symbol's entry carries
// ErrLookupFailed and an absent gloss, and resolution of the remaining
// symbols continues.
func (e *Engine) resolve(ctx context.Context, symbols []string, cfg Config, diag diagnostics) []GlossEntry {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "gloss.resolve")
	defer span.End()

	entries := make([]GlossEntry, 0, len(symbols))
	failures := 0
	for _, sym := range symbols {
		entry := e.resolveSymbol(ctx, sym, cfg, diag)
		if entry.Err != nil {
			failures++
		}
		entries = append(entries, entry)
	}

	span.SetAttributes(
		attribute.String("collection", cfg.Collection),
		attribute.Int("symbols", len(symbols)),
		attribute.Int("lookup_failures", failures),
	)
	if failures > 0 {
		span.SetStatus(codes.Error, "partial lookup failure")
	}
	return entries
}

// resolveSymbol queries the index for one symbol and picks its gloss.
func (e *Engine) resolveSymbol(ctx context.Context, symbol string, cfg Config, diag diagnostics) GlossEntry {
	notes, err := e.index.Find(ctx, cfg.Collection, cfg.SearchField, symbol)
	if err != nil {
		diag.lookupFailed(symbol, cfg.Collection, err)
		recordLookupFailure(cfg.Collection)
		return GlossEntry{
			Symbol: symbol,
			Err:    fmt.Errorf("%w: %q: %v", ErrLookupFailed, symbol, err),
		}
	}

	diag.symbolQueried(symbol, cfg.Collection, len(notes))

	for i := range notes {
		sv, ok := notes[i].Field(cfg.SearchField)
		if !ok || strings.TrimSpace(sv) != symbol {
			continue
		}
		gloss, _ := notes[i].Field(cfg.AdditionalField)
		gloss = strings.TrimSpace(gloss)
		if gloss == "" {
			// Matched note with an empty gloss field: absent, not an error.
			diag.symbolResolved(symbol, "", false)
			return GlossEntry{Symbol: symbol}
		}
		diag.symbolResolved(symbol, gloss, true)
		return GlossEntry{Symbol: symbol, Gloss: gloss, Found: true}
	}

	// Zero matches is a normal outcome, surfaced to the composer as an
	// absent gloss rather than raised.
	diag.symbolResolved(symbol, "", false)
	return GlossEntry{Symbol: symbol}
}
