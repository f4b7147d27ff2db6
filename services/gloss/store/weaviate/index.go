// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package weaviate serves symbol queries from a remote Weaviate instance,
// for deployments whose single-kanji collection lives in a shared vector
// store instead of the local deck database.
//
// The index retries transient network failures with exponential backoff and
// jitter, rate-limits outgoing queries, and reports non-retryable failures
// to the engine, which records them as per-symbol lookup failures.
package weaviate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/kanjikit/services/gloss"
)

// ErrUnavailable is returned when Weaviate cannot be reached after all
// retries.
var ErrUnavailable = errors.New("weaviate is not available")

// IndexConfig configures the remote symbol index.
type IndexConfig struct {
	// URL is the Weaviate server URL (e.g., "http://localhost:8080").
	URL string

	// Fields are the note fields fetched per match. Must include the
	// configured search and gloss fields.
	Fields []string

	// RetryAttempts is the number of retries for failed queries.
	// Default: 3
	RetryAttempts int

	// RetryBackoff is the initial backoff between retries.
	// Default: 100ms
	RetryBackoff time.Duration

	// MaxRetryBackoff caps the exponential backoff.
	// Default: 5s
	MaxRetryBackoff time.Duration

	// RetryJitter adds randomness to backoff (0.0-1.0).
	// Default: 0.25
	RetryJitter float64

	// QueriesPerSecond rate-limits outgoing queries. 0 disables limiting.
	QueriesPerSecond float64

	// QueryBurst is the limiter burst size.
	// Default: 10 when QueriesPerSecond is set.
	QueryBurst int

	// Logger for index operations.
	// Default: slog.Default()
	Logger *slog.Logger
}

func (c *IndexConfig) applyDefaults() {
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	if c.MaxRetryBackoff == 0 {
		c.MaxRetryBackoff = 5 * time.Second
	}
	if c.RetryJitter == 0 {
		c.RetryJitter = 0.25
	}
	if c.QueryBurst == 0 {
		c.QueryBurst = 10
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks the configuration.
func (c *IndexConfig) Validate() error {
	if c.URL == "" {
		return errors.New("url must not be empty")
	}
	if len(c.Fields) == 0 {
		return errors.New("fields must not be empty")
	}
	if c.RetryJitter < 0 || c.RetryJitter > 1 {
		return errors.New("retry_jitter must be between 0 and 1")
	}
	return nil
}

// Index implements gloss.SymbolIndex over a Weaviate class per collection.
//
// Thread Safety: Safe for concurrent use.
type Index struct {
	client  *weaviate.Client
	cfg     IndexConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewIndex creates an Index from the configuration.
func NewIndex(cfg IndexConfig) (*Index, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	wcfg := weaviate.Config{Host: cfg.URL, Scheme: "http"}
	if strings.HasPrefix(cfg.URL, "https://") {
		wcfg.Scheme = "https"
		wcfg.Host = strings.TrimPrefix(cfg.URL, "https://")
	} else if strings.HasPrefix(cfg.URL, "http://") {
		wcfg.Host = strings.TrimPrefix(cfg.URL, "http://")
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	idx := &Index{
		client: client,
		cfg:    cfg,
		logger: cfg.Logger.With(slog.String("component", "weaviate_index")),
	}
	if cfg.QueriesPerSecond > 0 {
		idx.limiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), cfg.QueryBurst)
	}
	return idx, nil
}

// WaitForReady blocks until the server reports ready or timeout.
func (x *Index) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		ready, err := x.client.Misc().ReadyChecker().Do(ctx)
		if err == nil && ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("weaviate not ready within %v: %w", timeout, ErrUnavailable)
		case <-ticker.C:
		}
	}
}

// Find returns every note in the collection's class whose field equals
// value, in the server's return order.
//
// GraphQL errors for unknown classes or properties are treated as "no
// matches" so a misnamed collection degrades to absent glosses instead of
// failing the whole fill; callers validate configuration separately.
func (x *Index) Find(ctx context.Context, collection, field, value string) ([]gloss.Note, error) {
	ctx, span := otel.Tracer("kanjikit.weaviate").Start(ctx, "weaviate.Find",
		oteltrace.WithAttributes(
			attribute.String("collection", collection),
			attribute.String("field", field),
		))
	defer span.End()

	if x.limiter != nil {
		if err := x.limiter.Wait(ctx); err != nil {
			span.SetStatus(codes.Error, "rate limiter wait cancelled")
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var notes []gloss.Note
	var lastErr error
	for attempt := 0; attempt <= x.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			backoff := x.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				span.SetStatus(codes.Error, "cancelled")
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		notes, lastErr = x.query(ctx, collection, field, value)
		if lastErr == nil {
			span.SetAttributes(attribute.Int("matches", len(notes)))
			return notes, nil
		}
		if !isRetryable(lastErr) {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "query failed")
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (x *Index) query(ctx context.Context, collection, field, value string) ([]gloss.Note, error) {
	where := filters.Where().
		WithPath([]string{field}).
		WithOperator(filters.Equal).
		WithValueString(value)

	fields := make([]graphql.Field, 0, len(x.cfg.Fields)+1)
	for _, f := range x.cfg.Fields {
		fields = append(fields, graphql.Field{Name: f})
	}
	fields = append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}},
	})

	resp, err := x.client.GraphQL().Get().
		WithClassName(collection).
		WithWhere(where).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		// Schema-level errors (unknown class or property) mean the query
		// targets nothing; report no matches rather than a channel failure.
		x.logger.Debug("graphql error treated as no matches",
			slog.String("collection", collection),
			slog.String("error", resp.Errors[0].Message))
		return nil, nil
	}

	var parsed struct {
		Get map[string][]map[string]any `json:"Get"`
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql response: %w", err)
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse graphql response: %w", err)
	}

	objects := parsed.Get[collection]
	notes := make([]gloss.Note, 0, len(objects))
	for _, obj := range objects {
		note := gloss.Note{
			Collection: collection,
			Fields:     make(map[string]string, len(obj)),
		}
		for k, v := range obj {
			if k == "_additional" {
				if add, ok := v.(map[string]any); ok {
					if id, ok := add["id"].(string); ok {
						note.ID = id
					}
				}
				continue
			}
			if sv, ok := v.(string); ok {
				note.Fields[k] = sv
			}
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// calculateBackoff returns exponential backoff with jitter.
func (x *Index) calculateBackoff(attempt int) time.Duration {
	backoff := x.cfg.RetryBackoff * time.Duration(1<<attempt)
	if backoff > x.cfg.MaxRetryBackoff {
		backoff = x.cfg.MaxRetryBackoff
	}
	jitterRange := float64(backoff) * x.cfg.RetryJitter
	jitter := (rand.Float64()*2 - 1) * jitterRange
	backoff = time.Duration(float64(backoff) + jitter)
	if backoff < 0 {
		backoff = x.cfg.RetryBackoff
	}
	return backoff
}

// isRetryable reports whether a query failure is worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
