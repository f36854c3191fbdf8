// Package app assembles the engine, repositories and use cases from
// configuration. The server and the CLI share it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facilitydex/internal/config"
	"github.com/kailas-cloud/facilitydex/internal/dataset"
	"github.com/kailas-cloud/facilitydex/internal/db"
	"github.com/kailas-cloud/facilitydex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/facilitydex/internal/db/redis"
	"github.com/kailas-cloud/facilitydex/internal/repository/index"
	dumpuc "github.com/kailas-cloud/facilitydex/internal/usecase/dump"
	healthuc "github.com/kailas-cloud/facilitydex/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/facilitydex/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/facilitydex/internal/usecase/search"
)

// App holds the wired services.
type App struct {
	Store    db.Store
	Index    *index.Repo
	Search   *searchuc.Service
	Dump     *dumpuc.Service
	Indexing *indexinguc.Service
	Health   *healthuc.Service
	Datasets *dataset.Loader
}

// OpenStore creates the engine named by cfg.Driver.
func OpenStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis":
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// New opens the store, waits for it and builds every service.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := OpenStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	objects, err := dataset.NewS3Client(ctx, cfg.Storage.S3)
	if err != nil {
		store.Close()
		return nil, err
	}

	locales := cfg.Index.Locales
	repo := index.New(store, cfg.Index.Namespace, locales)
	search := searchuc.New(repo, locales).WithSuggestionLimits(searchuc.SuggestionLimits{
		Facilities: cfg.Index.Suggestions.Facilities,
		Categories: cfg.Index.Suggestions.Categories,
		Locations:  cfg.Index.Suggestions.Locations,
	})

	return &App{
		Store:  store,
		Index:  repo,
		Search: search,
		Dump: dumpuc.New(search, locales).
			WithPageSize(cfg.Index.DumpPageSize).
			WithMaxRows(cfg.Index.DumpMaxRows),
		Indexing: indexinguc.New(repo, locales, logger),
		Health:   healthuc.New(store, repo),
		Datasets: dataset.NewLoader(objects),
	}, nil
}

// Close releases the store.
func (a *App) Close() {
	a.Store.Close()
}
