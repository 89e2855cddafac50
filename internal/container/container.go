// Package container provides dependency injection for the bankimport
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerline/bankimport/internal/config"
	"ledgerline/bankimport/internal/importer"
	"ledgerline/bankimport/internal/ledger"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/periodlock"
	"ledgerline/bankimport/internal/profiles"
	"ledgerline/bankimport/internal/report"
)

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation - all fields are private and
// can only be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	registry *profiles.Registry
	pool     *pgxpool.Pool
	store    *ledger.PostgresStore
	pipeline *importer.Pipeline
	reports  *report.Generator
}

// NewContainer creates and wires all application dependencies.
// The database pool is only created when a connection string is configured;
// preview-only usage works without one.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logrusLogger := config.ConfigureLoggingFromConfig(cfg)
	logger := logging.NewLogrusAdapterFromLogger(logrusLogger)

	registry := profiles.NewRegistry()
	if cfg.Profiles.File != "" {
		if err := registry.LoadFromYAML(cfg.Profiles.File); err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
	}

	c := &Container{
		logger:   logger,
		config:   cfg,
		registry: registry,
		reports:  report.NewGenerator(logrusLogger),
	}

	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		c.pool = pool
		c.store = ledger.NewPostgresStore(pool)
		c.pipeline = importer.NewPipeline(c.store, c.store, logger, importer.Options{
			FuzzyWindowDays: cfg.Import.FuzzyWindowDays,
		})
	}

	return c, nil
}

// NewTestContainer wires a container around externally supplied collaborators.
// Intended for tests and tooling that substitute the database.
func NewTestContainer(cfg *config.Config, logger logging.Logger, store ledger.TransactionStore, lockService periodlock.Service) *Container {
	c := &Container{
		logger:   logger,
		config:   cfg,
		registry: profiles.NewRegistry(),
		reports:  report.NewGenerator(nil),
	}
	if store != nil {
		c.pipeline = importer.NewPipeline(store, lockService, logger, importer.Options{
			FuzzyWindowDays: cfg.Import.FuzzyWindowDays,
		})
	}
	return c
}

// Close releases the database pool if one was created.
func (c *Container) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// GetLogger returns the configured logger.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the application configuration.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRegistry returns the bank profile registry.
func (c *Container) GetRegistry() *profiles.Registry {
	return c.registry
}

// GetStore returns the ledger store, or nil when no database is configured.
func (c *Container) GetStore() *ledger.PostgresStore {
	return c.store
}

// GetPipeline returns the import pipeline, or an error when no database
// connection is configured.
func (c *Container) GetPipeline() (*importer.Pipeline, error) {
	if c.pipeline == nil {
		return nil, fmt.Errorf("no database configured: set DATABASE_URL or database.url")
	}
	return c.pipeline, nil
}

// GetReportGenerator returns the batch report generator.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}
