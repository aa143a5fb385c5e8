package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/karimzidan/pmdoc/internal/config"
	"github.com/karimzidan/pmdoc/internal/contextbudget"
	"github.com/karimzidan/pmdoc/internal/db"
	"github.com/karimzidan/pmdoc/internal/docstore"
	"github.com/karimzidan/pmdoc/internal/embeddings"
	"github.com/karimzidan/pmdoc/internal/fallback"
	"github.com/karimzidan/pmdoc/internal/generator"
	"github.com/karimzidan/pmdoc/internal/llm"
	"github.com/karimzidan/pmdoc/internal/tokens"
	"github.com/karimzidan/pmdoc/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `pmdoc init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// openStore opens the project database under the configured data directory.
// The caller owns the returned *db.DB and must Close it.
func openStore(cfg *config.Config) (*docstore.Store, *db.DB, error) {
	database, err := db.Open(filepath.Join(cfg.DataDir, "pmdoc.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return docstore.New(database), database, nil
}

// buildManager assembles the provider fallback chain in configured order.
func buildManager(cfg *config.Config, logger *log.Logger) (*fallback.Manager, error) {
	providers := make([]llm.Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		p, err := llm.NewProvider(name, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("creating %s provider: %w", name, err)
		}
		providers = append(providers, p)
	}
	return fallback.NewManager(providers, fallback.Options{
		FailureThreshold: cfg.Fallback.FailureThreshold,
		MaxRetries:       cfg.Fallback.MaxRetries,
		Logger:           logger,
	}), nil
}

func buildBudgeter(cfg *config.Config, store *docstore.Store, logger *log.Logger) (*contextbudget.Budgeter, error) {
	est, err := tokens.NewEstimator(cfg.Context.Estimator)
	if err != nil {
		return nil, fmt.Errorf("creating token estimator: %w", err)
	}
	return contextbudget.New(contextbudget.Config{
		Source:           store,
		Estimator:        est,
		MaxContextTokens: cfg.Context.MaxTokens,
		CacheTTL:         cfg.Context.CacheTTL(),
		Logger:           logger,
	}), nil
}

func buildGenerator(cfg *config.Config, fm *fallback.Manager, budgeter *contextbudget.Budgeter, store *docstore.Store, logger *log.Logger) *generator.Generator {
	return generator.New(fm, budgeter, store, generator.Options{
		Model:      cfg.Model,
		MaxCostUSD: cfg.MaxCostUSD,
		Logger:     logger,
	})
}

// buildSearchStore creates the semantic search index, or returns nil when
// embeddings are not configured.
func buildSearchStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (vectordb.Store, error) {
	if cfg.Embeddings.Provider == "" {
		return nil, nil
	}
	embedder, err := embeddings.NewEmbedder(cfg.Embeddings.Provider)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	vectorDir := filepath.Join(cfg.DataDir, "vectordb")
	if err := store.Load(ctx, vectorDir); err != nil {
		// The index is empty until the first documents are added.
		logger.Debug("no existing vector index", "dir", vectorDir, "err", err)
	}
	return store, nil
}

// resolveProject maps a --project flag value (ID or exact name) onto a
// stored project. An empty value resolves when exactly one project exists.
func resolveProject(ctx context.Context, store *docstore.Store, idOrName string) (*docstore.Project, error) {
	if idOrName != "" {
		if p, err := store.GetProject(ctx, idOrName); err == nil {
			return p, nil
		}
	}
	projects, err := store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if idOrName == "" {
		switch len(projects) {
		case 0:
			return nil, fmt.Errorf("no projects exist yet\nRun `pmdoc project create <name>` first")
		case 1:
			return &projects[0], nil
		default:
			return nil, fmt.Errorf("%d projects exist; pass --project to pick one", len(projects))
		}
	}
	for i := range projects {
		if projects[i].Name == idOrName {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("project %q not found", idOrName)
}
