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
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/AleutianAI/kanjikit/services/gloss"
)

// importMaxLineBytes bounds one TSV row. Deck rows with embedded media
// references stay well under this.
const importMaxLineBytes = 1 << 20

// ImportTSV loads a tab-separated deck export into a collection.
//
// Rows map columns onto fieldNames positionally; short rows leave trailing
// fields empty, surplus columns are dropped. Lines starting with '#'
// (export headers) and blank lines are skipped. Returns the number of
// notes written.
func (s *NoteStore) ImportTSV(ctx context.Context, r io.Reader, collection, noteType string, fieldNames []string) (int, error) {
	if collection == "" {
		return 0, fmt.Errorf("ImportTSV: collection must not be empty")
	}
	if len(fieldNames) == 0 {
		return 0, fmt.Errorf("ImportTSV: field names must not be empty")
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), importMaxLineBytes)

	count := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return count, fmt.Errorf("ImportTSV: %w", err)
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "\t")
		fields := make(map[string]string, len(fieldNames))
		for i, name := range fieldNames {
			if i < len(cols) {
				fields[name] = strings.TrimSpace(cols[i])
			} else {
				fields[name] = ""
			}
		}

		note := &gloss.Note{
			Type:       noteType,
			Collection: collection,
			Fields:     fields,
		}
		if err := s.Put(ctx, note); err != nil {
			return count, fmt.Errorf("ImportTSV: line %d: %w", lineNo, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("ImportTSV: read: %w", err)
	}

	slog.Info("deck import finished",
		slog.String("collection", collection),
		slog.Int("notes", count))
	return count, nil
}
