// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command glossd starts the KanjiKit gloss API server.
//
// glossd serves the constituent fill pipeline over HTTP and WebSocket:
// interactive fills on field-blur events, bulk fills over stored decks, and
// ad-hoc kanji lookups.
//
// Usage:
//
//	go run ./cmd/glossd
//	go run ./cmd/glossd -port 9090 -config ~/.kanjikit/config.yaml
//
// With a remote single-kanji collection in Weaviate:
//
//	WEAVIATE_URL=http://localhost:8080 go run ./cmd/glossd
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8090/v1/gloss/health
//
//	# Ad-hoc lookup
//	curl -X POST http://localhost:8090/v1/gloss/lookup \
//	  -H "Content-Type: application/json" \
//	  -d '{"word": "国家"}'
//
//	# Bulk fill a whole collection
//	curl -X POST http://localhost:8090/v1/gloss/bulk \
//	  -H "Content-Type: application/json" \
//	  -d '{"collection": "Vocab_Deck", "all": true}'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AleutianAI/kanjikit/services/gloss"
	"github.com/AleutianAI/kanjikit/services/gloss/httpapi"
	"github.com/AleutianAI/kanjikit/services/gloss/reporting"
	badgerstore "github.com/AleutianAI/kanjikit/services/gloss/store/badger"
	weaviateindex "github.com/AleutianAI/kanjikit/services/gloss/store/weaviate"
)

func main() {
	port := flag.Int("port", 8090, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	configPath := flag.String("config", "", "Path to config YAML (default ~/.kanjikit/config.yaml)")
	dataDir := flag.String("data-dir", "", "Path to deck database directory (default ~/.kanjikit/decks)")
	traceStdout := flag.Bool("trace-stdout", false, "Print OTel spans to stdout (development)")
	flag.Parse()

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing := setupTracing(*traceStdout)
	defer shutdownTracing()

	// Config: embedded defaults, overridden by the on-disk file when
	// present, watched for live edits (the options command writes it).
	cfgPath := *configPath
	if cfgPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfgPath = filepath.Join(home, ".kanjikit", "config.yaml")
		}
	}
	cfg := gloss.DefaultConfig()
	if cfgPath != "" {
		if loaded, err := gloss.LoadConfigFile(cfgPath); err == nil {
			cfg = loaded
		} else if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Config file unreadable, using defaults",
				slog.String("path", cfgPath),
				slog.String("error", err.Error()))
		}
	}
	if *debug {
		cfg.Debug = true
	}
	configs := gloss.NewConfigSource(cfg)
	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			if err := configs.WatchFile(cfgPath, slog.Default()); err != nil {
				slog.Warn("Config watcher unavailable, live reload disabled",
					slog.String("error", err.Error()))
			}
			defer configs.Stop()
		}
	}

	// Deck database. Graceful degradation: if the directory cannot be
	// opened the server still runs, serving fills on submitted notes only.
	dbDir := *dataDir
	if dbDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dbDir = filepath.Join(home, ".kanjikit", "decks")
		}
	}
	var store *badgerstore.NoteStore
	var db *badgerstore.DB
	if dbDir != "" {
		bcfg := badgerstore.DefaultConfig()
		bcfg.Path = dbDir
		var err error
		db, err = badgerstore.Open(bcfg)
		if err != nil {
			slog.Warn("Deck database unavailable, bulk fill by ID disabled",
				slog.String("path", dbDir),
				slog.String("error", err.Error()))
		} else {
			store = badgerstore.NewNoteStore(db)
			slog.Info("Deck database opened", slog.String("path", dbDir))
		}
	}

	// Symbol index: remote Weaviate when configured, local deck otherwise.
	var index gloss.SymbolIndex
	if url := os.Getenv("WEAVIATE_URL"); url != "" {
		snapshot := configs.Current()
		idx, err := weaviateindex.NewIndex(weaviateindex.IndexConfig{
			URL:              url,
			Fields:           []string{snapshot.SearchField, snapshot.AdditionalField},
			QueriesPerSecond: 50,
		})
		if err != nil {
			slog.Error("Failed to create Weaviate index", slog.String("error", err.Error()))
			os.Exit(1)
		}
		waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := idx.WaitForReady(waitCtx, 30*time.Second); err != nil {
			slog.Warn("Weaviate not ready at startup, lookups may fail until it comes up",
				slog.String("url", url),
				slog.String("error", err.Error()))
		}
		cancel()
		index = idx
		slog.Info("Symbol index: Weaviate", slog.String("url", url))
	} else if store != nil {
		index = store
		slog.Info("Symbol index: local deck database")
	} else {
		slog.Error("No symbol index available: deck database failed and WEAVIATE_URL is unset")
		os.Exit(1)
	}

	reporter := reporting.NewBatchReporter(
		os.Getenv("INFLUXDB_URL"),
		os.Getenv("INFLUXDB_TOKEN"),
		os.Getenv("INFLUXDB_ORG"),
		os.Getenv("INFLUXDB_BUCKET"),
		slog.Default(),
	)
	if reporter != nil {
		defer reporter.Close()
		slog.Info("Batch reporting to InfluxDB enabled")
	}

	engineOpts := []gloss.Option{gloss.WithCache(gloss.NewCache())}
	if store != nil {
		engineOpts = append(engineOpts, gloss.WithStore(store))
	}
	engine := gloss.NewEngine(index, engineOpts...)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("kanjikit-glossd"))
	if *debug {
		router.Use(gin.Logger())
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var storeForAPI gloss.NoteStore
	if store != nil {
		storeForAPI = store
	}
	handlers := httpapi.NewHandlers(engine, storeForAPI, configs, reporter, slog.Default())
	v1 := router.Group("/v1")
	httpapi.RegisterRoutes(v1, handlers)

	printBanner(*port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("Shutting down glossd")
		configs.Stop()
		if db != nil {
			if err := db.Close(); err != nil {
				slog.Warn("Failed to close deck database", slog.String("error", err.Error()))
			}
		}
		reporter.Close()
		shutdownTracing()
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting glossd", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupTracing installs the W3C propagator and, when configured, a span
// exporter: OTLP/gRPC via OTEL_EXPORTER_OTLP_ENDPOINT or stdout via the
// -trace-stdout flag. Returns a shutdown func; safe to call twice.
func setupTracing(stdout bool) func() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	var exporter sdktrace.SpanExporter
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		exp, err := otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			slog.Warn("OTLP exporter unavailable, tracing disabled",
				slog.String("error", err.Error()))
		} else {
			exporter = exp
		}
	} else if stdout {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			slog.Warn("stdout trace exporter unavailable", slog.String("error", err.Error()))
		} else {
			exporter = exp
		}
	}
	if exporter == nil {
		return func() {}
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Warn("Tracer provider shutdown failed", slog.String("error", err.Error()))
		}
	}
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════╗
║                       KANJIKIT GLOSSD                         ║
╠═══════════════════════════════════════════════════════════════╣
║                                                               ║
║  Constituent gloss auto-fill for kanji study decks.           ║
║                                                               ║
║  Quick Start:                                                 ║
║  ┌─────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                          │  ║
║  │ curl http://localhost:%d/v1/gloss/health              │  ║
║  │                                                         │  ║
║  │ # Look up the kanji of a word                           │  ║
║  │ curl -X POST http://localhost:%d/v1/gloss/lookup \    │  ║
║  │   -H "Content-Type: application/json" \                 │  ║
║  │   -d '{"word": "国家"}'                                 │  ║
║  └─────────────────────────────────────────────────────────┘  ║
║                                                               ║
║  Endpoints: /fill, /bulk, /lookup, /config, /health, /ws      ║
║  Metrics:   /metrics                                          ║
║                                                               ║
║  Press Ctrl+C to stop                                         ║
╚═══════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port)
}
