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
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "kanjikit.gloss"

// Engine orchestrates the fill pipeline: decompose → resolve → compose →
// apply. It holds no mutable state across invocations, so concurrent calls
// are independent.
//
// Thread Safety: Safe for concurrent use.
type Engine struct {
	index  SymbolIndex
	store  NoteStore
	cache  *Cache
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore attaches a note store. When present, ResolveMany persists every
// updated note through it; without a store, mutations stay on the in-memory
// notes and the caller owns persistence (the interactive-editor case).
func WithStore(store NoteStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithCache attaches a process-lifetime gloss cache used by Lookup. The
// fill pipeline itself never reads it, keeping fills a pure function of the
// expression and the current collection snapshot.
func WithCache(cache *Cache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithLogger sets the logger for diagnostics and operational messages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an Engine over the given symbol index.
func NewEngine(index SymbolIndex, opts ...Option) *Engine {
	e := &Engine{
		index:  index,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ResolveResult reports one interactive fill.
type ResolveResult struct {
	// Outcome is the apply outcome for the note.
	Outcome ApplyOutcome `json:"outcome"`

	// Composed is the constituent line built for the note, returned for
	// immediate display even when the write was skipped.
	Composed string `json:"composed"`

	// Symbols is the number of unique kanji decomposed from the source.
	Symbols int `json:"symbols"`

	// LookupFailures counts symbols whose index query channel failed.
	LookupFailures int `json:"lookup_failures"`
}

// NoteOutcome is one per-note line of a batch log, in input order.
type NoteOutcome struct {
	NoteID         string       `json:"note_id"`
	Outcome        ApplyOutcome `json:"outcome"`
	LookupFailures int          `json:"lookup_failures"`
}

// BatchSummary aggregates a ResolveMany run. The counts are commutative;
// Outcomes preserves input order for reproducible diagnostics.
type BatchSummary struct {
	Total            int           `json:"total"`
	Updated          int           `json:"updated"`
	SkippedUnchanged int           `json:"skipped_unchanged"`
	SkippedFiltered  int           `json:"skipped_filtered"`
	Rejected         int           `json:"rejected"`
	LookupFailures   int           `json:"lookup_failures"`
	Outcomes         []NoteOutcome `json:"outcomes"`
}

// String renders the summary as a short status line.
func (s *BatchSummary) String() string {
	parts := []string{
		fmt.Sprintf("%d updated", s.Updated),
		fmt.Sprintf("%d unchanged", s.SkippedUnchanged),
	}
	if s.SkippedFiltered > 0 {
		parts = append(parts, fmt.Sprintf("%d filtered", s.SkippedFiltered))
	}
	if s.Rejected > 0 {
		parts = append(parts, fmt.Sprintf("%d rejected", s.Rejected))
	}
	if s.LookupFailures > 0 {
		parts = append(parts, fmt.Sprintf("%d lookup failures", s.LookupFailures))
	}
	return fmt.Sprintf("%d notes: %s", s.Total, strings.Join(parts, ", "))
}

// ResolveOne runs the full pipeline on a single note: read the source
// field, decompose, resolve each symbol, compose, apply.
//
// The note is mutated in place on OutcomeUpdated; when a store is attached
// the updated note is also persisted. Config problems abort before the note
// is touched (ErrConfigurationMissing).
func (e *Engine) ResolveOne(ctx context.Context, cfg Config, note *Note) (*ResolveResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("ResolveOne: note must not be nil")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gloss.ResolveOne")
	defer span.End()
	span.SetAttributes(attribute.String("note_id", note.ID))

	start := time.Now()
	res := e.fill(ctx, cfg, note)
	recordResolveDuration("interactive", time.Since(start))
	recordOutcome("interactive", res.Outcome)

	if res.Outcome == OutcomeUpdated && e.store != nil {
		if err := e.store.Put(ctx, note); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist failed")
			return res, fmt.Errorf("ResolveOne: persist note %s: %w", note.ID, err)
		}
	}

	span.SetAttributes(
		attribute.String("outcome", res.Outcome.String()),
		attribute.Int("symbols", res.Symbols),
		attribute.Int("lookup_failures", res.LookupFailures),
	)
	return res, nil
}

// ResolveMany runs the pipeline over notes in caller-supplied order.
//
// Each note is independent: per-note lookup failures and rejections never
// abort the batch. Cancellation is honored between notes, never mid-note,
// so an interrupted batch leaves no note half-written. Updated notes are
// persisted through the attached store; a persist failure downgrades that
// note to rejected in the summary and the batch continues.
func (e *Engine) ResolveMany(ctx context.Context, cfg Config, notes []*Note) (*BatchSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gloss.ResolveMany")
	defer span.End()
	span.SetAttributes(attribute.Int("notes", len(notes)))

	summary := &BatchSummary{Total: len(notes)}
	for _, note := range notes {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return summary, fmt.Errorf("ResolveMany: %w", err)
		}

		start := time.Now()
		res := e.fill(ctx, cfg, note)
		recordResolveDuration("batch", time.Since(start))

		outcome := res.Outcome
		if outcome == OutcomeUpdated && e.store != nil {
			if err := e.store.Put(ctx, note); err != nil {
				e.logger.Warn("batch fill: persist failed",
					slog.String("note_id", note.ID),
					slog.String("error", err.Error()))
				outcome = OutcomeRejected
			}
		}
		recordOutcome("batch", outcome)

		switch outcome {
		case OutcomeUpdated:
			summary.Updated++
		case OutcomeSkippedUnchanged:
			summary.SkippedUnchanged++
		case OutcomeSkippedFiltered:
			summary.SkippedFiltered++
		case OutcomeRejected:
			summary.Rejected++
		}
		summary.LookupFailures += res.LookupFailures
		summary.Outcomes = append(summary.Outcomes, NoteOutcome{
			NoteID:         note.ID,
			Outcome:        outcome,
			LookupFailures: res.LookupFailures,
		})
	}

	span.SetAttributes(
		attribute.Int("updated", summary.Updated),
		attribute.Int("lookup_failures", summary.LookupFailures),
	)
	e.logger.Info("batch fill finished", slog.String("summary", summary.String()))
	return summary, nil
}

// fill runs decompose → resolve → compose → apply on one note.
func (e *Engine) fill(ctx context.Context, cfg Config, note *Note) *ResolveResult {
	diag := newDiagnostics(cfg.Debug, e.logger)

	expr, ok := note.Field(cfg.SourceField)
	if !ok {
		// Source field absent on this note type: nothing to decompose.
		diag.applied(note.ID, OutcomeRejected)
		return &ResolveResult{Outcome: OutcomeRejected}
	}

	symbols := Decompose(strings.TrimSpace(expr))
	entries := e.resolve(ctx, symbols, cfg, diag)
	composed := Compose(entries)
	diag.composed(note.ID, composed)

	failures := 0
	for _, entry := range entries {
		if entry.Err != nil {
			failures++
		}
	}

	outcome := Apply(note, cfg.DestinationField, composed, cfg.NoteTypes)
	diag.applied(note.ID, outcome)

	return &ResolveResult{
		Outcome:        outcome,
		Composed:       composed,
		Symbols:        len(symbols),
		LookupFailures: failures,
	}
}

// Lookup resolves the unique kanji of an ad-hoc word without touching any
// note: the hover-lookup path. Results go through the attached cache when
// one is configured; entries whose lookup failed are never cached.
func (e *Engine) Lookup(ctx context.Context, cfg Config, word string) ([]GlossEntry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gloss.Lookup")
	defer span.End()

	diag := newDiagnostics(cfg.Debug, e.logger)
	symbols := Decompose(word)
	if e.cache == nil {
		return e.resolve(ctx, symbols, cfg, diag), nil
	}

	entries := make([]GlossEntry, 0, len(symbols))
	for _, sym := range symbols {
		entry := e.cache.Resolve(ctx, sym, func(ctx context.Context) GlossEntry {
			return e.resolveSymbol(ctx, sym, cfg, diag)
		})
		entries = append(entries, entry)
	}
	span.SetAttributes(attribute.Int("symbols", len(symbols)))
	return entries, nil
}
