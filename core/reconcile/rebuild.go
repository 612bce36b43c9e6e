package reconcile

import (
	"context"
	"fmt"
	"strings"

	"enrollment-manager/core/database"
	"enrollment-manager/core/schema"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	stagingSuffix = "__rebuild"
	retiredSuffix = "__retired"
)

// RebuildResult summarises the data impact of one rebuild.
type RebuildResult struct {
	Mode           Mode
	RowsBefore     int64
	RowsDiscarded  int64
	RowsPreserved  int64
	ColumnsDropped []string
	ArchiveKey     string
}

// DataDiscarded reports whether any stored value was lost.
func (r *RebuildResult) DataDiscarded() bool {
	if r.RowsDiscarded > 0 {
		return true
	}
	return r.RowsPreserved > 0 && len(r.ColumnsDropped) > 0
}

// Rebuilder recreates a table from a plan as one all-or-nothing unit.
// Stores with transactional DDL rebuild inside a transaction; others build a
// staging table and swap it in with a single atomic rename.
type Rebuilder struct {
	dialect  database.Dialect
	archiver Archiver
	logger   *zap.Logger
}

// NewRebuilder creates a rebuilder. archiver may be nil.
func NewRebuilder(d database.Dialect, archiver Archiver, logger *zap.Logger) *Rebuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rebuilder{dialect: d, archiver: archiver, logger: logger}
}

// Rebuild replaces the table described by plan. prior is the snapshot taken
// before the rebuild, nil when the table does not exist yet. Failures are
// wrapped in ErrRebuild and leave the store as it was.
func (r *Rebuilder) Rebuild(ctx context.Context, db *gorm.DB, plan *schema.Plan, prior *schema.Snapshot, mode Mode) (*RebuildResult, error) {
	switch {
	case prior == nil:
		mode = ModeCreate
	case mode != ModePreserve:
		mode = ModeReplace
	}

	var (
		res *RebuildResult
		err error
	)
	if r.dialect.TransactionalDDL() {
		res, err = r.rebuildInTransaction(ctx, db, plan, prior, mode)
	} else if swapper, ok := r.dialect.(database.AtomicSwapper); ok {
		res, err = r.rebuildBySwap(ctx, db, swapper, plan, prior, mode)
	} else {
		err = fmt.Errorf("%w: %s cannot replace tables atomically", database.ErrUnsupportedDialect, r.dialect.Name())
	}
	if err != nil {
		// res is non-nil only once the old table is gone.
		return res, fmt.Errorf("%w: %s: %w", ErrRebuild, plan.Table, err)
	}
	return res, nil
}

func (r *Rebuilder) rebuildInTransaction(ctx context.Context, db *gorm.DB, plan *schema.Plan, prior *schema.Snapshot, mode Mode) (*RebuildResult, error) {
	res := &RebuildResult{Mode: mode}
	staging := plan.Table + stagingSuffix

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch mode {
		case ModeCreate:
			if err := r.exec(ctx, tx, r.dialect.CreateTable(plan, plan.Table)); err != nil {
				return err
			}
		case ModeReplace:
			if err := r.release(ctx, tx, plan, prior, res); err != nil {
				return err
			}
			if err := r.exec(ctx, tx, r.dialect.DropTable(plan.Table)); err != nil {
				return err
			}
			if err := r.exec(ctx, tx, r.dialect.CreateTable(plan, plan.Table)); err != nil {
				return err
			}
		case ModePreserve:
			if err := r.release(ctx, tx, plan, prior, res); err != nil {
				return err
			}
			if err := r.exec(ctx, tx, r.dialect.DropTable(staging)); err != nil {
				return err
			}
			if err := r.exec(ctx, tx, r.dialect.CreateTable(plan, staging)); err != nil {
				return err
			}
			if err := r.copyRows(ctx, tx, plan, prior, staging, res); err != nil {
				return err
			}
			if err := r.exec(ctx, tx, r.dialect.DropTable(plan.Table)); err != nil {
				return err
			}
			if err := r.exec(ctx, tx, r.dialect.RenameTable(staging, plan.Table)); err != nil {
				return err
			}
		}
		if err := r.createIndexes(ctx, tx, plan, plan.Table); err != nil {
			return err
		}
		return r.ensureSequence(ctx, tx, plan.Sequence)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Rebuilder) rebuildBySwap(ctx context.Context, db *gorm.DB, swapper database.AtomicSwapper, plan *schema.Plan, prior *schema.Snapshot, mode Mode) (*RebuildResult, error) {
	res := &RebuildResult{Mode: mode}
	db = db.WithContext(ctx)

	if mode == ModeCreate {
		if err := r.exec(ctx, db, r.dialect.CreateTable(plan, plan.Table)); err != nil {
			return nil, err
		}
		created := func() error {
			if err := r.createIndexes(ctx, db, plan, plan.Table); err != nil {
				return err
			}
			return r.ensureSequence(ctx, db, plan.Sequence)
		}
		if err := created(); err != nil {
			r.discard(ctx, db, plan.Table)
			return nil, err
		}
		return res, nil
	}

	// InnoDB moves child foreign keys along with a renamed parent.
	children, err := swapper.ReferencingTables(ctx, db, plan.Table)
	if err != nil {
		return nil, err
	}
	if len(children) > 0 {
		return nil, fmt.Errorf("%w: %s (by %s)", ErrReferenced, plan.Table, strings.Join(children, ", "))
	}

	staging := plan.Table + stagingSuffix
	retired := plan.Table + retiredSuffix

	if err := r.release(ctx, db, plan, prior, res); err != nil {
		return nil, err
	}
	if err := r.exec(ctx, db, r.dialect.DropTable(staging)); err != nil {
		return nil, err
	}
	if err := r.exec(ctx, db, r.dialect.CreateTable(plan, staging)); err != nil {
		return nil, err
	}
	// Everything that can fail runs before the swap; the counter statements
	// are insert-if-absent, so running them early is harmless.
	staged := func() error {
		if err := r.createIndexes(ctx, db, plan, staging); err != nil {
			return err
		}
		if mode == ModePreserve {
			if err := r.copyRows(ctx, db, plan, prior, staging, res); err != nil {
				return err
			}
		}
		if err := r.ensureSequence(ctx, db, plan.Sequence); err != nil {
			return err
		}
		return r.exec(ctx, db, swapper.SwapTables(plan.Table, staging, retired))
	}
	if err := staged(); err != nil {
		r.discard(ctx, db, staging)
		return nil, err
	}

	if err := r.exec(ctx, db, r.dialect.DropTable(retired)); err != nil {
		r.logger.Warn("Failed to drop retired table", zap.String("retired", retired), zap.Error(err))
	}
	return res, nil
}

// release counts the rows about to be rewritten and archives whatever the
// rebuild is going to lose.
func (r *Rebuilder) release(ctx context.Context, db *gorm.DB, plan *schema.Plan, prior *schema.Snapshot, res *RebuildResult) error {
	n, err := database.CountRows(ctx, db, r.dialect, plan.Table)
	if err != nil {
		return err
	}
	res.RowsBefore = n

	if res.Mode == ModeReplace {
		res.RowsDiscarded = n
	} else {
		res.ColumnsDropped = droppedColumns(plan, prior)
	}
	if n == 0 || (res.Mode == ModePreserve && len(res.ColumnsDropped) == 0) {
		return nil
	}

	r.logger.Warn("Rebuild discards stored data",
		zap.String("mode", string(res.Mode)),
		zap.Int64("rows", n),
		zap.Strings("droppedColumns", res.ColumnsDropped))

	if r.archiver == nil {
		return nil
	}
	var rows []map[string]any
	if err := db.WithContext(ctx).Table(plan.Table).Find(&rows).Error; err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrArchive, plan.Table, err)
	}
	key, err := r.archiver.Archive(ctx, plan.Table, rows)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchive, err)
	}
	res.ArchiveKey = key
	r.logger.Info("Archived discarded rows", zap.String("key", key), zap.Int("rows", len(rows)))
	return nil
}

func (r *Rebuilder) copyRows(ctx context.Context, db *gorm.DB, plan *schema.Plan, prior *schema.Snapshot, staging string, res *RebuildResult) error {
	common := plan.CommonColumns(prior)
	if len(common) == 0 {
		res.RowsDiscarded = res.RowsBefore
		return nil
	}
	quoted := make([]string, len(common))
	for i, c := range common {
		quoted[i] = r.dialect.Quote(c)
	}
	cols := strings.Join(quoted, ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		r.dialect.Quote(staging), cols, cols, r.dialect.Quote(plan.Table))

	result := db.WithContext(ctx).Exec(stmt)
	if result.Error != nil {
		return fmt.Errorf("copy rows into %s: %w", staging, result.Error)
	}
	res.RowsPreserved = result.RowsAffected
	return nil
}

// createIndexes tolerates indexes that already exist.
func (r *Rebuilder) createIndexes(ctx context.Context, db *gorm.DB, plan *schema.Plan, table string) error {
	for _, idx := range plan.Indexes {
		if err := r.exec(ctx, db, r.dialect.CreateIndex(idx, table)); err != nil {
			if database.IsAlreadyExistsError(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// ensureSequence creates the counter table and seeds it only when empty, so an
// existing counter keeps its value across rebuilds.
func (r *Rebuilder) ensureSequence(ctx context.Context, db *gorm.DB, seq schema.Sequence) error {
	if err := r.exec(ctx, db, r.dialect.CreateSequence(seq)); err != nil {
		return err
	}
	return r.exec(ctx, db, r.dialect.SeedSequence(seq))
}

func (r *Rebuilder) discard(ctx context.Context, db *gorm.DB, table string) {
	if err := r.exec(ctx, db, r.dialect.DropTable(table)); err != nil {
		r.logger.Error("Failed to clean up table after aborted rebuild", zap.String("staging", table), zap.Error(err))
	}
}

func (r *Rebuilder) exec(ctx context.Context, db *gorm.DB, stmt string) error {
	if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("%s: %w", statementHead(stmt), err)
	}
	r.logger.Debug("Executed DDL", zap.String("sql", stmt))
	return nil
}

func droppedColumns(plan *schema.Plan, prior *schema.Snapshot) []string {
	if prior == nil {
		return nil
	}
	keep := make(map[string]struct{}, len(plan.Columns))
	for _, c := range plan.Columns {
		keep[c.Key()] = struct{}{}
	}
	var dropped []string
	for _, c := range prior.Columns() {
		if _, ok := keep[c.Key()]; !ok {
			dropped = append(dropped, c.Name)
		}
	}
	return dropped
}

func statementHead(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		stmt = stmt[:i]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), "("))
}
