// Package app wires configuration, the LLM client, the resolution
// service, and the HTTP surface into one runnable unit.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"etymograph/internal/gateway/config"
	"etymograph/internal/gateway/handler"
	"etymograph/internal/gateway/metrics"
	"etymograph/internal/gateway/repository/decompstore"
	"etymograph/internal/gateway/repository/morphidx"
	"etymograph/internal/gateway/server"
	"etymograph/internal/gateway/service/resolution"
	"etymograph/internal/gateway/watch"
	"etymograph/internal/llmclient"
)

type App struct {
	server *server.Server
	llm    llmclient.LLMClient
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	llm, err := llmclient.FromEnv(ctx, cfg.Provider, cfg.Model, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to build llm client: %w", err)
	}

	collector := metrics.NewCollector("etymograph")
	llm = llmclient.Wrap(llm,
		llmclient.WithLogging(slog.Default()),
		llmclient.WithMetrics(collector),
	)

	store, err := newStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build decomposition cache: %w", err)
	}

	// Rebuild the morpheme index from whatever the cache already holds,
	// so persisted decompositions stay searchable after a restart.
	index := morphidx.New()
	for _, out := range store.Outcomes() {
		index.Add(out.Document)
	}

	hub := watch.NewHub(0)

	svc := resolution.New(resolution.Options{
		LLM:         llm,
		Store:       store,
		Index:       index,
		Hub:         hub,
		Metrics:     collector,
		Logger:      slog.Default(),
		MaxAttempts: cfg.MaxAttempts,
		Timeout:     cfg.ResolveTimeout,
	})

	h := handler.NewDecompositionHandler(svc, hub, slog.Default())
	router := newRouter(h, collector, cfg.AllowedOrigins)
	srv := server.New(cfg.Port, router)

	return &App{server: srv, llm: llm}, nil
}

func newStore(cfg *config.Config) (*decompstore.Store, error) {
	if cfg.CacheDir == "" {
		return decompstore.New(cfg.CacheSize)
	}
	return decompstore.NewPersistent(cfg.CacheSize, filepath.Join(cfg.CacheDir, "decompositions.json"))
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.llm.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
