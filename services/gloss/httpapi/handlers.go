// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package httpapi exposes the gloss engine over HTTP.
//
// REST endpoints cover the interactive fill, the bulk fill and the ad-hoc
// word lookup; a WebSocket channel carries editor sessions (field-blur
// events and bulk actions). The package owns no resolution logic — it
// validates transport-level input, loads notes, and delegates to the
// engine.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/kanjikit/services/gloss"
	"github.com/AleutianAI/kanjikit/services/gloss/reporting"
)

// Handlers serves the gloss API.
type Handlers struct {
	engine   *gloss.Engine
	store    gloss.NoteStore
	configs  *gloss.ConfigSource
	reporter *reporting.BatchReporter
	logger   *slog.Logger
}

// NewHandlers creates the handler set. store may be nil when no local deck
// database is attached (bulk-by-ID then returns 503); reporter may be nil.
func NewHandlers(engine *gloss.Engine, store gloss.NoteStore, configs *gloss.ConfigSource,
	reporter *reporting.BatchReporter, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		engine:   engine,
		store:    store,
		configs:  configs,
		reporter: reporter,
		logger:   logger.With(slog.String("component", "gloss_api")),
	}
}

// RegisterRoutes registers the gloss API under rg.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	g := rg.Group("/gloss")
	{
		g.POST("/fill", h.HandleFill)
		g.POST("/bulk", h.HandleBulk)
		g.POST("/lookup", h.HandleLookup)
		g.GET("/config", h.HandleGetConfig)
		g.GET("/health", h.HandleHealth)
		g.GET("/ws", h.HandleWebSocket)
	}
}

// FillRequest submits one note for an interactive fill. The note travels in
// the request because the editor owns the in-flight edit state; persistence
// stays with the caller unless the note also exists in the attached store.
type FillRequest struct {
	Note *gloss.Note `json:"note" binding:"required"`
}

// FillResponse returns the apply outcome and the composed line for
// immediate display.
type FillResponse struct {
	Outcome        string      `json:"outcome"`
	Composed       string      `json:"composed"`
	Symbols        int         `json:"symbols"`
	LookupFailures int         `json:"lookup_failures"`
	Note           *gloss.Note `json:"note"`
}

// HandleFill runs the interactive pipeline on a submitted note.
func (h *Handlers) HandleFill(c *gin.Context) {
	var req FillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	cfg := h.configs.Current()
	res, err := h.engine.ResolveOne(c.Request.Context(), cfg, req.Note)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gloss.ErrConfigurationMissing) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, FillResponse{
		Outcome:        res.Outcome.String(),
		Composed:       res.Composed,
		Symbols:        res.Symbols,
		LookupFailures: res.LookupFailures,
		Note:           req.Note,
	})
}

// BulkRequest selects notes for a batch fill. IDs are loaded from the
// attached store; an empty ID list with All set fills the entire
// collection.
type BulkRequest struct {
	Collection string   `json:"collection" binding:"required"`
	IDs        []string `json:"ids"`
	All        bool     `json:"all"`
}

// HandleBulk runs the batch pipeline over stored notes.
//
// Notes that cannot be loaded are reported as rejected entries in the
// summary; they never abort the batch.
func (h *Handlers) HandleBulk(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no note store attached"})
		return
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if len(req.IDs) == 0 && !req.All {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no notes selected"})
		return
	}

	ctx := c.Request.Context()
	ids := req.IDs
	if req.All {
		var err error
		ids, err = h.store.List(ctx, req.Collection)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list collection: " + err.Error()})
			return
		}
	}

	var notes []*gloss.Note
	var loadFailures []gloss.NoteOutcome
	for _, id := range ids {
		note, err := h.store.Get(ctx, req.Collection, id)
		if err != nil {
			h.logger.Warn("bulk fill: load failed",
				slog.String("note_id", id),
				slog.String("error", err.Error()))
			loadFailures = append(loadFailures, gloss.NoteOutcome{
				NoteID:  id,
				Outcome: gloss.OutcomeRejected,
			})
			continue
		}
		notes = append(notes, note)
	}

	cfg := h.configs.Current()
	start := time.Now()
	summary, err := h.engine.ResolveMany(ctx, cfg, notes)
	if err != nil && summary == nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gloss.ErrConfigurationMissing) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	summary.Total += len(loadFailures)
	summary.Rejected += len(loadFailures)
	summary.Outcomes = append(summary.Outcomes, loadFailures...)

	h.reporter.Report(ctx, req.Collection, summary, time.Since(start))

	resp := gin.H{"summary": summary, "status": summary.String()}
	if err != nil {
		// Cancellation between notes: partial summary plus the reason.
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// LookupRequest asks for the glosses of an ad-hoc word.
type LookupRequest struct {
	Word string `json:"word" binding:"required"`
}

// HandleLookup decomposes a word and resolves each kanji through the
// engine's cache path, without touching any note.
func (h *Handlers) HandleLookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	cfg := h.configs.Current()
	entries, err := h.engine.Lookup(c.Request.Context(), cfg, req.Word)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gloss.ErrConfigurationMissing) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"word":     req.Word,
		"entries":  entries,
		"composed": gloss.Compose(entries),
	})
}

// HandleGetConfig returns the active settings snapshot.
func (h *Handlers) HandleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.configs.Current())
}

// HandleHealth reports liveness and the active collection.
func (h *Handlers) HandleHealth(c *gin.Context) {
	cfg := h.configs.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"collection": cfg.Collection,
		"store":      h.store != nil,
	})
}
