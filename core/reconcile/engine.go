package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"enrollment-manager/core/database"
	"enrollment-manager/core/schema"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reconciler brings tables to their canonical schema.
// It holds no state between calls; every call inspects the store afresh.
type Reconciler struct {
	db     *gorm.DB
	logger *zap.Logger
	opts   Options
}

// NewReconciler creates a reconciler over db.
func NewReconciler(db *gorm.DB, logger *zap.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Mode == "" || opts.Mode == ModeCreate {
		opts.Mode = ModeReplace
	}
	return &Reconciler{db: db, logger: logger, opts: opts}
}

// Reconcile inspects one table, rebuilds it when it drifted or is missing,
// and verifies the result.
//
// Only ErrStoreUnavailable and ErrIntrospection are returned as errors.
// Rebuild and verification failures are reported through Report.Outcome.
func (r *Reconciler) Reconcile(ctx context.Context, canonical *schema.Canonical) (*Report, error) {
	start := time.Now()
	report, d, snap, err := r.observe(ctx, canonical)
	defer func() { report.Duration = time.Since(start) }()
	if err != nil || report.Outcome == OutcomeSkipped {
		return report, err
	}
	log := r.logger.With(
		zap.String("table", canonical.Table),
		zap.Int("version", canonical.Version),
		zap.String("dialect", d.Name()))

	mode := ModeCreate
	if snap != nil {
		report.Discrepancies = schema.Diff(snap, canonical, d.Matcher())
		report.DiscrepanciesFound = len(report.Discrepancies)
		if report.DiscrepanciesFound == 0 {
			report.Outcome = OutcomeNoop
			log.Debug("Table matches canonical schema")
			return report, nil
		}
		log.Warn("Table schema drift detected", zap.Strings("discrepancies", describe(report.Discrepancies)))
		mode = r.opts.Mode
	} else {
		log.Info("Table missing, creating it")
	}

	res, err := NewRebuilder(d, r.opts.Archiver, log).Rebuild(ctx, r.db, schema.NewPlan(canonical), snap, mode)
	if res != nil {
		report.Mode = res.Mode
		report.RowsBefore = res.RowsBefore
		report.RowsDiscarded = res.RowsDiscarded
		report.RowsPreserved = res.RowsPreserved
		report.DataDiscarded = res.DataDiscarded()
		report.ArchiveKey = res.ArchiveKey
	}
	if err != nil {
		if res == nil {
			log.Error("Rebuild failed, store left unchanged", zap.Error(err))
		} else {
			log.Error("Rebuild failed after the old table was replaced",
				zap.Int64("rowsDiscarded", res.RowsDiscarded), zap.Error(err))
		}
		report.fail(err)
		return report, nil
	}

	remaining, err := r.verify(ctx, d, canonical)
	if err != nil {
		report.fail(err)
		return report, err
	}
	if len(remaining) > 0 {
		report.Remaining = remaining
		report.fail(fmt.Errorf("%w: %s still has %d discrepancies", ErrVerification, canonical.Table, len(remaining)))
		log.Error("Rebuilt table still differs from canonical schema", zap.Strings("remaining", describe(remaining)))
		return report, nil
	}

	report.Outcome = OutcomeFixed
	if res.Mode == ModeCreate {
		report.Outcome = OutcomeCreated
	}
	log.Info("Table reconciled",
		zap.String("outcome", string(report.Outcome)),
		zap.String("mode", string(res.Mode)),
		zap.Int("discrepancies", report.DiscrepanciesFound),
		zap.Int64("rowsDiscarded", report.RowsDiscarded))
	return report, nil
}

// Check diagnoses one table without modifying the store.
func (r *Reconciler) Check(ctx context.Context, canonical *schema.Canonical) (*Report, error) {
	start := time.Now()
	report, d, snap, err := r.observe(ctx, canonical)
	defer func() { report.Duration = time.Since(start) }()
	if err != nil || report.Outcome == OutcomeSkipped {
		return report, err
	}

	if snap == nil {
		report.Outcome = OutcomeMissing
		return report, nil
	}
	report.Discrepancies = schema.Diff(snap, canonical, d.Matcher())
	report.DiscrepanciesFound = len(report.Discrepancies)
	if report.DiscrepanciesFound == 0 {
		report.Outcome = OutcomeNoop
		return report, nil
	}

	report.Outcome = OutcomeDirty
	report.Mode = r.opts.Mode
	n, err := database.NewInspector(r.db, d).RowCount(ctx, canonical.Table)
	if err != nil {
		report.fail(err)
		return report, err
	}
	report.RowsBefore = n
	report.DataDiscarded = n > 0 && (r.opts.Mode == ModeReplace ||
		len(droppedColumns(schema.NewPlan(canonical), snap)) > 0)
	return report, nil
}

// ReconcileAll reconciles tables in order and stops at the first error that
// leaves the store in an unknown state.
func (r *Reconciler) ReconcileAll(ctx context.Context, canonicals ...*schema.Canonical) ([]*Report, error) {
	return r.each(ctx, canonicals, r.Reconcile)
}

// CheckAll diagnoses tables in order.
func (r *Reconciler) CheckAll(ctx context.Context, canonicals ...*schema.Canonical) ([]*Report, error) {
	return r.each(ctx, canonicals, r.Check)
}

func (r *Reconciler) each(ctx context.Context, canonicals []*schema.Canonical, fn func(context.Context, *schema.Canonical) (*Report, error)) ([]*Report, error) {
	reports := make([]*Report, 0, len(canonicals))
	for _, c := range canonicals {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := fn(ctx, c)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// observe resolves the dialect, checks the store is reachable and takes the
// first snapshot. A skipped report carries no dialect.
func (r *Reconciler) observe(ctx context.Context, canonical *schema.Canonical) (*Report, database.Dialect, *schema.Snapshot, error) {
	report := &Report{Table: canonical.Table}
	if err := canonical.Validate(); err != nil {
		report.fail(err)
		return report, nil, nil, err
	}

	if r.db == nil {
		err := fmt.Errorf("%w: no connection", ErrStoreUnavailable)
		report.fail(err)
		return report, nil, nil, err
	}
	d, err := database.DialectFor(r.db)
	if errors.Is(err, database.ErrUnsupportedDialect) {
		report.Outcome = OutcomeSkipped
		report.Dialect = r.db.Dialector.Name()
		r.logger.Info("Skipping table on unsupported store", zap.String("table", canonical.Table), zap.String("dialect", report.Dialect))
		return report, nil, nil, nil
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		report.fail(err)
		return report, nil, nil, err
	}
	report.Dialect = d.Name()

	if err := ping(ctx, r.db); err != nil {
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		report.fail(err)
		return report, nil, nil, err
	}

	snap, err := database.NewInspector(r.db, d).Inspect(ctx, canonical.Table)
	if err != nil {
		report.fail(err)
		return report, nil, nil, err
	}
	return report, d, snap, nil
}

// verify re-inspects the table and returns what still differs.
func (r *Reconciler) verify(ctx context.Context, d database.Dialect, canonical *schema.Canonical) ([]schema.Discrepancy, error) {
	snap, err := database.NewInspector(r.db, d).Inspect(ctx, canonical.Table)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = schema.NewSnapshot(canonical.Table, nil, nil, nil)
	}
	return schema.Diff(snap, canonical, d.Matcher()), nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func describe(ds []schema.Discrepancy) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}
