// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/kanjikit/services/gloss"
)

// WSRequest is one action-tagged message from an editor session.
type WSRequest struct {
	// Action selects the operation: "field_blur", "bulk_fill" or "lookup".
	Action string `json:"action"`

	// Field names the field the editor just left (field_blur).
	Field string `json:"field,omitempty"`

	// Note carries the in-flight edit state (field_blur).
	Note *gloss.Note `json:"note,omitempty"`

	// Collection and IDs select stored notes (bulk_fill).
	Collection string   `json:"collection,omitempty"`
	IDs        []string `json:"ids,omitempty"`

	// Word is the ad-hoc lookup text (lookup).
	Word string `json:"word,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func sendJSON(ws *websocket.Conn, v interface{}) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleWebSocket runs one editor session.
//
// The session implements the UI trigger contract: a "field_blur" message on
// the configured source field runs the interactive fill when
// populate_on_edit is set, and "bulk_fill" runs the batch path over stored
// notes. Responses echo the action name so the editor can route them.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()

	sessionID := uuid.New().String()
	h.logger.Info("editor session started", "sessionID", sessionID)

	if err := sendJSON(ws, gin.H{
		"action":    "session_created",
		"sessionId": sessionID,
	}); err != nil {
		return
	}

	for {
		var req WSRequest
		if err := ws.ReadJSON(&req); err != nil {
			h.logger.Info("editor session closed", "sessionID", sessionID, "error", err.Error())
			return
		}

		ctx := c.Request.Context()
		cfg := h.configs.Current()

		switch req.Action {
		case "field_blur":
			if !cfg.PopulateOnEdit {
				continue
			}
			if req.Field != cfg.SourceField || req.Note == nil {
				continue
			}
			res, err := h.engine.ResolveOne(ctx, cfg, req.Note)
			if err != nil {
				if sendJSON(ws, gin.H{"action": "fill_result", "error": err.Error()}) != nil {
					return
				}
				continue
			}
			if sendJSON(ws, gin.H{
				"action":   "fill_result",
				"outcome":  res.Outcome.String(),
				"composed": res.Composed,
				"note":     req.Note,
			}) != nil {
				return
			}

		case "bulk_fill":
			if h.store == nil {
				if sendJSON(ws, gin.H{"action": "bulk_result", "error": "no note store attached"}) != nil {
					return
				}
				continue
			}
			var notes []*gloss.Note
			rejected := 0
			for _, id := range req.IDs {
				note, err := h.store.Get(ctx, req.Collection, id)
				if err != nil {
					rejected++
					continue
				}
				notes = append(notes, note)
			}
			start := time.Now()
			summary, err := h.engine.ResolveMany(ctx, cfg, notes)
			if err != nil && summary == nil {
				if sendJSON(ws, gin.H{"action": "bulk_result", "error": err.Error()}) != nil {
					return
				}
				continue
			}
			summary.Total += rejected
			summary.Rejected += rejected
			h.reporter.Report(ctx, req.Collection, summary, time.Since(start))
			if sendJSON(ws, gin.H{
				"action":  "bulk_result",
				"summary": summary,
				"status":  summary.String(),
			}) != nil {
				return
			}

		case "lookup":
			entries, err := h.engine.Lookup(ctx, cfg, req.Word)
			if err != nil {
				if sendJSON(ws, gin.H{"action": "lookup_result", "error": err.Error()}) != nil {
					return
				}
				continue
			}
			if sendJSON(ws, gin.H{
				"action":   "lookup_result",
				"word":     req.Word,
				"entries":  entries,
				"composed": gloss.Compose(entries),
			}) != nil {
				return
			}

		default:
			h.logger.Warn("unknown websocket action", "action", req.Action, "sessionID", sessionID)
			if sendJSON(ws, gin.H{"action": "error", "error": "unknown action: " + req.Action}) != nil {
				return
			}
		}
	}
}
