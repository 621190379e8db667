// Package common provides shared dependency construction for commands.
package common

import (
	"context"
	"fmt"

	"github.com/SVatsa12/teamforge/internal/allocator"
	"github.com/SVatsa12/teamforge/internal/config"
	"github.com/SVatsa12/teamforge/internal/logger"
	"github.com/SVatsa12/teamforge/internal/repository"
	"github.com/SVatsa12/teamforge/internal/sources"
)

// Deps bundles the dependencies every command starts from.
type Deps struct {
	Config *config.Config
	Logger logger.Logger
}

// NewCommandDeps loads configuration and builds the logger.
func NewCommandDeps() (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.App.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Deps{
		Config: cfg,
		Logger: log,
	}, nil
}

// NewAllocatorService wires the allocator from configuration: the JSON
// snapshot stores and either the Postgres or in-memory assignment store.
func NewAllocatorService(ctx context.Context, deps *Deps) (*allocator.Service, func(), error) {
	cfg := deps.Config

	snapshot, err := repository.LoadSnapshot(cfg.Allocator.UsersFile, cfg.Allocator.ProjectsFile)
	if err != nil {
		return nil, nil, err
	}

	var store repository.AssignmentStore
	cleanup := func() {}

	if cfg.Database.URL != "" {
		db, openErr := repository.OpenPostgres(ctx, cfg.Database.URL)
		if openErr != nil {
			return nil, nil, openErr
		}
		store = repository.NewPostgresAssignmentStore(db, deps.Logger)
		cleanup = func() { db.Close() }
	} else {
		store = repository.NewMemoryAssignmentStore()
	}

	svc := allocator.NewService(
		snapshot,
		snapshot,
		store,
		deps.Logger,
		cfg.Allocator.DefaultTeamSize,
	)

	return svc, cleanup, nil
}

// LoadSources reads the configured sources file.
func LoadSources(deps *Deps) ([]sources.Source, error) {
	srcs, err := sources.Load(deps.Config.Aggregator.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	return srcs, nil
}
