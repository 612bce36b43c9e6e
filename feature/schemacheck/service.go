package schemacheck

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"enrollment-manager/core/reconcile"
	"enrollment-manager/core/schema"
	"enrollment-manager/feature/enrollment"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnknownTable is returned for tables outside the governed set.
	ErrUnknownTable = errors.New("table is not governed")
	// ErrArchivesDisabled is returned when no archive store is configured.
	ErrArchivesDisabled = errors.New("archives are not configured")
	// ErrInvalidArchive is returned for archive names that are not plain file names.
	ErrInvalidArchive = errors.New("invalid archive name")
)

// Summary aggregates the reports of one run over several tables.
type Summary struct {
	Tables []*reconcile.Report `json:"tables"`
	// Dirty counts tables that needed, or still need, work.
	Dirty int `json:"dirty"`
	// Failed counts tables whose reconciliation failed.
	Failed int `json:"failed"`
}

func summarize(reports []*reconcile.Report) *Summary {
	s := &Summary{Tables: reports}
	if s.Tables == nil {
		s.Tables = []*reconcile.Report{}
	}
	for _, r := range reports {
		if r.Dirty() {
			s.Dirty++
		}
		if r.Outcome == reconcile.OutcomeFailed {
			s.Failed++
		}
	}
	return s
}

// Service runs checks and reconciliations over the governed tables.
type Service struct {
	reconciler *reconcile.Reconciler
	archives   *reconcile.StorageArchiver
	logger     *zap.Logger

	group singleflight.Group
}

// NewService creates a new service. archives may be nil.
func NewService(reconciler *reconcile.Reconciler, archives *reconcile.StorageArchiver, logger *zap.Logger) *Service {
	return &Service{
		reconciler: reconciler,
		archives:   archives,
		logger:     logger,
	}
}

// Check diagnoses tables without modifying them. No names checks every governed table.
func (s *Service) Check(ctx context.Context, tables ...string) (*Summary, error) {
	canonicals, err := resolve(tables)
	if err != nil {
		return nil, err
	}
	reports, err := s.reconciler.CheckAll(ctx, canonicals...)
	return summarize(reports), err
}

// Reconcile brings tables to their canonical schema. Concurrent calls for the
// same set of tables share a single run.
func (s *Service) Reconcile(ctx context.Context, tables ...string) (*Summary, error) {
	canonicals, err := resolve(tables)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(canonicals))
	for i, c := range canonicals {
		names[i] = c.Table
	}
	v, err, shared := s.group.Do(strings.Join(names, ","), func() (any, error) {
		reports, err := s.reconciler.ReconcileAll(ctx, canonicals...)
		return summarize(reports), err
	})
	if shared {
		s.logger.Debug("Joined in-flight reconciliation", zap.Strings("tables", names))
	}
	return v.(*Summary), err
}

// ListArchives returns the archives stored for table.
func (s *Service) ListArchives(ctx context.Context, table string) ([]reconcile.ArchiveObject, error) {
	c, err := s.archiveTable(table)
	if err != nil {
		return nil, err
	}
	return s.archives.List(ctx, c.Table)
}

// GetArchive reads one archive of table by its file name.
func (s *Service) GetArchive(ctx context.Context, table, name string) (*reconcile.ArchiveDocument, error) {
	c, err := s.archiveTable(table)
	if err != nil {
		return nil, err
	}
	if name == "" || name != path.Base(name) || !strings.HasSuffix(name, ".json") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidArchive, name)
	}
	return s.archives.Open(ctx, s.archives.ArchivePrefix(c.Table)+name)
}

func (s *Service) archiveTable(table string) (*schema.Canonical, error) {
	if s.archives == nil {
		return nil, ErrArchivesDisabled
	}
	c, ok := enrollment.Lookup(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return c, nil
}

func resolve(tables []string) ([]*schema.Canonical, error) {
	for _, t := range tables {
		if _, ok := enrollment.Lookup(t); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, t)
		}
	}
	return enrollment.Select(tables...)
}
