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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/kanjikit/services/gloss"
	dgstore "github.com/AleutianAI/kanjikit/services/gloss/store/badger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() gloss.Config {
	return gloss.Config{
		Collection:       "Kanji_Deck",
		SearchField:      "Expression",
		AdditionalField:  "keyword",
		SourceField:      "Expression",
		DestinationField: "Constituents",
	}
}

// testRouter builds a router over an in-memory deck seeded with two kanji
// notes and one vocab note.
func testRouter(t *testing.T) (*gin.Engine, *dgstore.NoteStore) {
	t.Helper()

	db, err := dgstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := dgstore.NewNoteStore(db)

	ctx := context.Background()
	seed := []*gloss.Note{
		{
			ID: "k1", Type: "Kanji", Collection: "Kanji_Deck",
			Fields: map[string]string{"Expression": "日", "keyword": "sun"},
		},
		{
			ID: "k2", Type: "Kanji", Collection: "Kanji_Deck",
			Fields: map[string]string{"Expression": "本", "keyword": "book"},
		},
		{
			ID: "v1", Type: "Japanese Vocab", Collection: "Vocab",
			Fields: map[string]string{"Expression": "日本", "Constituents": ""},
		},
	}
	for _, n := range seed {
		require.NoError(t, store.Put(ctx, n))
	}

	engine := gloss.NewEngine(store, gloss.WithStore(store), gloss.WithCache(gloss.NewCache()))
	handlers := NewHandlers(engine, store, gloss.NewConfigSource(testConfig()), nil, nil)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), handlers)
	return router, store
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleFill(t *testing.T) {
	router, _ := testRouter(t)

	w := postJSON(t, router, "/api/v1/gloss/fill", FillRequest{
		Note: &gloss.Note{
			ID: "edit-1", Type: "Japanese Vocab", Collection: "Vocab",
			Fields: map[string]string{"Expression": "日本", "Constituents": ""},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp FillResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "updated", resp.Outcome)
	assert.Equal(t, "日: sun　本: book", resp.Composed)
	assert.Equal(t, 2, resp.Symbols)
	require.NotNil(t, resp.Note)
	assert.Equal(t, "日: sun　本: book", resp.Note.Fields["Constituents"])
}

func TestHandleFill_MissingNote(t *testing.T) {
	router, _ := testRouter(t)

	w := postJSON(t, router, "/api/v1/gloss/fill", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleFill_ConfigMissing(t *testing.T) {
	db, err := dgstore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := dgstore.NewNoteStore(db)

	engine := gloss.NewEngine(store)
	handlers := NewHandlers(engine, store, gloss.NewConfigSource(gloss.Config{}), nil, nil)
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), handlers)

	w := postJSON(t, router, "/api/v1/gloss/fill", FillRequest{
		Note: &gloss.Note{ID: "n1", Fields: map[string]string{"Expression": "日"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandleBulk(t *testing.T) {
	router, store := testRouter(t)

	w := postJSON(t, router, "/api/v1/gloss/bulk", BulkRequest{
		Collection: "Vocab",
		All:        true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Summary gloss.BatchSummary `json:"summary"`
		Status  string             `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.Updated)
	assert.Contains(t, resp.Status, "1 updated")

	// The fill was persisted.
	got, err := store.Get(context.Background(), "Vocab", "v1")
	require.NoError(t, err)
	assert.Equal(t, "日: sun　本: book", got.Fields["Constituents"])
}

func TestHandleBulk_MissingNoteRejected(t *testing.T) {
	router, _ := testRouter(t)

	w := postJSON(t, router, "/api/v1/gloss/bulk", BulkRequest{
		Collection: "Vocab",
		IDs:        []string{"v1", "ghost"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Summary gloss.BatchSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.Updated)
	assert.Equal(t, 1, resp.Summary.Rejected)
}

func TestHandleBulk_NoSelection(t *testing.T) {
	router, _ := testRouter(t)

	w := postJSON(t, router, "/api/v1/gloss/bulk", BulkRequest{Collection: "Vocab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleBulk_MissingCollection(t *testing.T) {
	router, _ := testRouter(t)

	w := postJSON(t, router, "/api/v1/gloss/bulk", gin.H{"all": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLookup(t *testing.T) {
	router, _ := testRouter(t)

	w := postJSON(t, router, "/api/v1/gloss/lookup", LookupRequest{Word: "日本語"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Word     string            `json:"word"`
		Entries  []gloss.GlossEntry `json:"entries"`
		Composed string            `json:"composed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "日本語", resp.Word)
	require.Len(t, resp.Entries, 3)
	assert.True(t, resp.Entries[0].Found)
	assert.False(t, resp.Entries[2].Found)
	assert.Equal(t, "日: sun　本: book　語: ?", resp.Composed)
}

func TestHandleLookup_EmptyWord(t *testing.T) {
	router, _ := testRouter(t)

	w := postJSON(t, router, "/api/v1/gloss/lookup", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetConfig(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gloss/config", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var cfg gloss.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, "Kanji_Deck", cfg.Collection)
}

func TestHandleHealth(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gloss/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, true, resp["store"])
}
