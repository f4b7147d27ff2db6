// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package weaviate

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestIndexConfig_ApplyDefaults(t *testing.T) {
	cfg := IndexConfig{URL: "http://localhost:8080", Fields: []string{"Expression"}}
	cfg.applyDefaults()

	if cfg.RetryAttempts != 3 {
		t.Errorf("expected default retry_attempts = 3, got %d", cfg.RetryAttempts)
	}
	if cfg.RetryBackoff != 100*time.Millisecond {
		t.Errorf("expected default retry_backoff = 100ms, got %v", cfg.RetryBackoff)
	}
	if cfg.MaxRetryBackoff != 5*time.Second {
		t.Errorf("expected default max_retry_backoff = 5s, got %v", cfg.MaxRetryBackoff)
	}
	if cfg.RetryJitter != 0.25 {
		t.Errorf("expected default retry_jitter = 0.25, got %v", cfg.RetryJitter)
	}
	if cfg.QueryBurst != 10 {
		t.Errorf("expected default query_burst = 10, got %d", cfg.QueryBurst)
	}
	if cfg.Logger == nil {
		t.Error("expected default logger")
	}
}

func TestIndexConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     IndexConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  IndexConfig{URL: "http://localhost:8080", Fields: []string{"Expression"}},
		},
		{
			name:    "missing url",
			cfg:     IndexConfig{Fields: []string{"Expression"}},
			wantErr: true,
		},
		{
			name:    "missing fields",
			cfg:     IndexConfig{URL: "http://localhost:8080"},
			wantErr: true,
		},
		{
			name: "jitter out of range",
			cfg: IndexConfig{
				URL:         "http://localhost:8080",
				Fields:      []string{"Expression"},
				RetryJitter: 1.5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"plain error", errors.New("schema mismatch"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_Bounds(t *testing.T) {
	x := &Index{cfg: IndexConfig{
		RetryBackoff:    100 * time.Millisecond,
		MaxRetryBackoff: 1 * time.Second,
		RetryJitter:     0.25,
	}}

	for attempt := 0; attempt < 8; attempt++ {
		for i := 0; i < 20; i++ {
			b := x.calculateBackoff(attempt)
			if b <= 0 {
				t.Fatalf("attempt %d: backoff must be positive, got %v", attempt, b)
			}
			// Cap plus full jitter headroom.
			if max := time.Duration(float64(x.cfg.MaxRetryBackoff) * 1.25); b > max {
				t.Fatalf("attempt %d: backoff %v exceeds jittered cap %v", attempt, b, max)
			}
		}
	}
}

func TestNewIndex_InvalidConfig(t *testing.T) {
	if _, err := NewIndex(IndexConfig{}); err == nil {
		t.Fatal("expected error for empty config")
	}
}
