package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/policyd/internal/config"
	"github.com/fyrsmithlabs/policyd/internal/embeddings"
	"github.com/fyrsmithlabs/policyd/internal/logging"
	"github.com/fyrsmithlabs/policyd/internal/vectorstore"
)

// app holds the wired-up components shared by the CLI commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider embeddings.Provider
	store    vectorstore.Store
}

// newApp loads configuration and constructs the logger, embedding
// provider, and vector store. Callers must Close the returned app.
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	provider, err := embeddings.NewProvider(embeddings.Config{
		Provider: cfg.Embeddings.Provider,
		Model:    cfg.Embeddings.Model,
		CacheDir: cfg.Embeddings.CacheDir,
		BaseURL:  cfg.Embeddings.BaseURL,
		APIKey:   cfg.Embeddings.APIKey.Value(),
	})
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("initializing embeddings: %w", err)
	}

	store, err := vectorstore.NewStore(cfg, provider, logger)
	if err != nil {
		provider.Close()
		logger.Sync()
		return nil, fmt.Errorf("initializing vector store: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		store:    store,
	}, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.provider != nil {
		a.provider.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}
