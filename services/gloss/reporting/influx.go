// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package reporting ships batch-run summaries to InfluxDB for long-term
// fill-rate dashboards. Reporting is best-effort: a write failure is logged
// and never fails the batch that produced it.
package reporting

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/AleutianAI/kanjikit/services/gloss"
)

// BatchReporter writes one point per batch run.
//
// Thread Safety: Safe for concurrent use.
type BatchReporter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	logger   *slog.Logger
}

// NewBatchReporter connects to InfluxDB. Returns nil when url is empty so
// callers can hold an optional reporter without nil checks at every site.
func NewBatchReporter(url, token, org, bucket string, logger *slog.Logger) *BatchReporter {
	if url == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := influxdb2.NewClient(url, token)
	return &BatchReporter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		logger:   logger.With(slog.String("component", "batch_reporter")),
	}
}

// Report records one batch summary. Nil receivers are no-ops.
func (r *BatchReporter) Report(ctx context.Context, collection string, summary *gloss.BatchSummary, duration time.Duration) {
	if r == nil || summary == nil {
		return
	}

	p := influxdb2.NewPoint(
		"gloss_batch",
		map[string]string{"collection": collection},
		map[string]interface{}{
			"total":             summary.Total,
			"updated":           summary.Updated,
			"skipped_unchanged": summary.SkippedUnchanged,
			"skipped_filtered":  summary.SkippedFiltered,
			"rejected":          summary.Rejected,
			"lookup_failures":   summary.LookupFailures,
			"duration_ms":       duration.Milliseconds(),
		},
		time.Now(),
	)
	if err := r.writeAPI.WritePoint(ctx, p); err != nil {
		r.logger.Warn("failed to report batch summary",
			slog.String("error", err.Error()))
	}
}

// Close releases the underlying client. Nil receivers are no-ops.
func (r *BatchReporter) Close() {
	if r == nil {
		return
	}
	r.client.Close()
}
