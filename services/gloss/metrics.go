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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// fillOutcomesTotal counts per-note apply outcomes.
	// Labels: mode (interactive, batch), outcome (updated, skipped_unchanged,
	// skipped_filtered, rejected)
	fillOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kanjikit",
		Subsystem: "gloss",
		Name:      "fill_outcomes_total",
		Help:      "Per-note fill outcomes by mode and outcome kind",
	}, []string{"mode", "outcome"})

	// lookupFailuresTotal counts symbol lookups whose query channel failed.
	// Labels: collection
	lookupFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kanjikit",
		Subsystem: "gloss",
		Name:      "lookup_failures_total",
		Help:      "Symbol lookups that failed at the query channel",
	}, []string{"collection"})

	// resolveDurationSeconds measures full pipeline latency per note.
	// Labels: mode
	resolveDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kanjikit",
		Subsystem: "gloss",
		Name:      "resolve_duration_seconds",
		Help:      "Decompose-to-apply latency per note",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"mode"})

	// cacheRequestsTotal counts gloss cache requests by result.
	// Labels: result (hit, miss)
	cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kanjikit",
		Subsystem: "gloss",
		Name:      "cache_requests_total",
		Help:      "Gloss cache requests by result",
	}, []string{"result"})
)

func recordOutcome(mode string, outcome ApplyOutcome) {
	fillOutcomesTotal.WithLabelValues(mode, outcome.String()).Inc()
}

func recordLookupFailure(collection string) {
	lookupFailuresTotal.WithLabelValues(collection).Inc()
}

func recordResolveDuration(mode string, d time.Duration) {
	resolveDurationSeconds.WithLabelValues(mode).Observe(d.Seconds())
}

func recordCacheResult(hit bool) {
	if hit {
		cacheRequestsTotal.WithLabelValues("hit").Inc()
	} else {
		cacheRequestsTotal.WithLabelValues("miss").Inc()
	}
}
