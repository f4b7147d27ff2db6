// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/kanjikit/services/gloss"
)

// NoteKeyPrefix namespaces note keys. The scheme is
// note/v1/<collection>/<id>; bump v1 on layout changes. The deck_dump tool
// must use the same prefix.
const NoteKeyPrefix = "note/v1/"

// NoteStore persists gloss.Note values in BadgerDB and serves symbol
// queries over them. Find scans the collection's key range; provider order
// is therefore key order (lexicographic by note ID), which makes the
// engine's first-match tie-break deterministic for a local store.
//
// Thread Safety: Safe for concurrent use.
type NoteStore struct {
	db *DB
}

// NewNoteStore creates a store over an open database.
func NewNoteStore(db *DB) *NoteStore {
	return &NoteStore{db: db}
}

func noteKey(collection, id string) []byte {
	return []byte(NoteKeyPrefix + collection + "/" + id)
}

func collectionPrefix(collection string) []byte {
	return []byte(NoteKeyPrefix + collection + "/")
}

// Get loads one note by collection and ID.
func (s *NoteStore) Get(ctx context.Context, collection, id string) (*gloss.Note, error) {
	var note gloss.Note
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(noteKey(collection, id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s/%s", gloss.ErrNoteNotFound, collection, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &note)
		})
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Put writes a note, assigning an ID when it has none. The note's
// Collection field must be set.
func (s *NoteStore) Put(ctx context.Context, note *gloss.Note) error {
	if note == nil {
		return errors.New("note must not be nil")
	}
	if note.Collection == "" {
		return errors.New("note collection must not be empty")
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}

	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("marshal note %s: %w", note.ID, err)
	}
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.Set(noteKey(note.Collection, note.ID), data)
	})
}

// Delete removes a note. Deleting a missing note is a no-op.
func (s *NoteStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.Delete(noteKey(collection, id))
	})
}

// List returns the IDs of every note in a collection, sorted.
func (s *NoteStore) List(ctx context.Context, collection string) ([]string, error) {
	prefix := collectionPrefix(collection)
	var ids []string
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Collections returns the names of every collection with at least one note.
func (s *NoteStore) Collections(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(NoteKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), NoteKeyPrefix)
			if idx := strings.IndexByte(rest, '/'); idx > 0 {
				seen[rest[:idx]] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Find returns every note in collection whose field equals value, in key
// order. Unknown collections and fields yield no matches, not errors.
func (s *NoteStore) Find(ctx context.Context, collection, field, value string) ([]gloss.Note, error) {
	prefix := collectionPrefix(collection)
	var matches []gloss.Note
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var note gloss.Note
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &note)
			})
			if err != nil {
				return fmt.Errorf("decode note %s: %w", it.Item().Key(), err)
			}
			if v, ok := note.Field(field); ok && strings.TrimSpace(v) == value {
				matches = append(matches, note)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Backup streams a full backup of the database to w and returns the version
// watermark of the snapshot.
func (s *NoteStore) Backup(ctx context.Context, w io.Writer) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	since, err := s.db.DB.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("badger backup: %w", err)
	}
	return since, nil
}
