package cmd

import (
	"fmt"

	"enrollment-manager/core/config"
	"enrollment-manager/core/database"
	"enrollment-manager/core/logger"
	"enrollment-manager/core/reconcile"
	"enrollment-manager/core/storage"
	"enrollment-manager/feature/schemacheck"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles what every command needs: configuration, logger,
// database connection and, when archiving is enabled, the archive store.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	archives *reconcile.StorageArchiver
}

func newRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// A failed connection still yields a runtime; the reconciler reports the
	// store as unavailable.
	db, err := database.Connect(cfg.Database)
	if err != nil {
		l.Warn("Database connection failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
		db = nil
	}

	rt := &runtime{cfg: cfg, logger: l, db: db}
	if cfg.Schema.ArchiveDiscarded {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		rt.archives = reconcile.NewStorageArchiver(client, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Schema.ArchivePrefix)
	}
	return rt, nil
}

// service builds the schema service. A non-empty mode overrides the configured one.
func (rt *runtime) service(mode string) (*schemacheck.Service, error) {
	schemaCfg := rt.cfg.Schema
	if mode != "" {
		schemaCfg.RebuildMode = mode
	}

	var archiver reconcile.Archiver
	if rt.archives != nil {
		archiver = rt.archives
	}
	opts, err := schemaCfg.Options(archiver)
	if err != nil {
		return nil, err
	}
	return schemacheck.NewService(reconcile.NewReconciler(rt.db, rt.logger, opts), rt.archives, rt.logger), nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = rt.logger.Sync()
}
