package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"enrollment-manager/core/database"
	"enrollment-manager/core/database/dbtest"
	"enrollment-manager/core/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func assignments() *schema.Canonical {
	return &schema.Canonical{
		Table: "class_assignments",
		Columns: []schema.ColumnSpec{
			{Name: "id", DeclaredType: "INTEGER", PrimaryKey: true},
			{Name: "teacher_id", DeclaredType: "INTEGER", Nullable: true},
			{Name: "subject_id", DeclaredType: "INTEGER", Nullable: true},
			{Name: "section_id", DeclaredType: "INTEGER", Nullable: true},
			{Name: "created_at", DeclaredType: "TIMESTAMP", Nullable: true},
			{Name: "updated_at", DeclaredType: "TIMESTAMP", Nullable: true},
		},
		ForeignKeys: []schema.ForeignKey{
			{Column: "teacher_id", RefTable: "teachers", RefColumn: "id"},
		},
		Indexes: []schema.Index{
			{Name: "idx_class_assignments_teacher", Columns: []string{"teacher_id"}},
		},
		Forbidden: []schema.ForbiddenColumn{
			{Name: "teacher", Replacement: "teacher_id"},
			{Name: "subject", Replacement: "subject_id"},
			{Name: "section", Replacement: "section_id"},
			{Name: "grade_level"},
		},
	}
}

const legacyAssignments = `CREATE TABLE class_assignments (
	id INTEGER PRIMARY KEY,
	teacher TEXT,
	subject TEXT,
	section TEXT,
	grade_level TEXT,
	created_at TIMESTAMP
)`

func seedLegacy(t *testing.T, db *gorm.DB, rows int) {
	t.Helper()
	dbtest.Exec(t, db, legacyAssignments)
	for i := 1; i <= rows; i++ {
		dbtest.Exec(t, db, fmt.Sprintf(
			"INSERT INTO class_assignments (id, teacher, subject, section, grade_level, created_at) VALUES (%d, 'T%d', 'Math', 'A', '7', '2024-06-01 08:00:00')", i, i))
	}
}

func createCanonical(t *testing.T, db *gorm.DB, c *schema.Canonical) {
	t.Helper()
	d, err := database.DialectFor(db)
	require.NoError(t, err)
	dbtest.Exec(t, db, d.CreateTable(schema.NewPlan(c), c.Table))
}

func sequenceValue(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var v int64
	require.NoError(t, db.Raw(`SELECT "next_val" FROM "`+schema.SequenceTableName(table)+`"`).Scan(&v).Error)
	return v
}

func TestReconcile_LegacyTableIsRebuilt(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	seedLegacy(t, db, 3)

	report, err := NewReconciler(db, nil, Options{}).Reconcile(ctx, assignments())
	require.NoError(t, err)

	assert.Equal(t, OutcomeFixed, report.Outcome)
	assert.Equal(t, ModeReplace, report.Mode)
	assert.Equal(t, "sqlite", report.Dialect)
	assert.Equal(t, 5, report.DiscrepanciesFound)
	assert.Equal(t, int64(3), report.RowsDiscarded)
	assert.True(t, report.DataDiscarded)
	assert.Empty(t, report.Remaining)
	assert.Equal(t, int64(0), dbtest.Count(t, db, "class_assignments"))
	assert.Equal(t, int64(schema.SequenceSeed), sequenceValue(t, db, "class_assignments"))

	snap, err := database.NewInspector(db, &database.SQLiteDialect{}).Inspect(ctx, "class_assignments")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "teacher_id", "subject_id", "section_id", "created_at", "updated_at"}, snap.ColumnNames())
}

func TestReconcile_MatchingTableIsLeftAlone(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	createCanonical(t, db, assignments())
	for i := 1; i <= 10; i++ {
		dbtest.Exec(t, db, fmt.Sprintf("INSERT INTO class_assignments (id, teacher_id) VALUES (%d, %d)", i, i))
	}

	report, err := NewReconciler(db, nil, Options{}).Reconcile(ctx, assignments())
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoop, report.Outcome)
	assert.Zero(t, report.DiscrepanciesFound)
	assert.Empty(t, report.Mode)
	assert.Equal(t, int64(10), dbtest.Count(t, db, "class_assignments"))
}

func TestReconcile_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	seedLegacy(t, db, 1)
	r := NewReconciler(db, nil, Options{})

	first, err := r.Reconcile(ctx, assignments())
	require.NoError(t, err)
	require.Equal(t, OutcomeFixed, first.Outcome)

	seq := schema.SequenceTableName("class_assignments")
	require.Equal(t, int64(1), dbtest.Count(t, db, seq))
	require.Equal(t, int64(1), sequenceValue(t, db, "class_assignments"))

	second, err := r.Reconcile(ctx, assignments())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, second.Outcome)
	assert.Zero(t, second.DiscrepanciesFound)
	assert.Equal(t, int64(1), dbtest.Count(t, db, seq))
	assert.Equal(t, int64(1), sequenceValue(t, db, "class_assignments"))
}

func TestReconcile_MissingTableIsCreated(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)

	report, err := NewReconciler(db, nil, Options{}).Reconcile(ctx, assignments())
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, report.Outcome)
	assert.Equal(t, ModeCreate, report.Mode)
	assert.Zero(t, report.DiscrepanciesFound)
	assert.False(t, report.DataDiscarded)
	assert.Equal(t, int64(schema.SequenceSeed), sequenceValue(t, db, "class_assignments"))

	var indexes int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", "idx_class_assignments_teacher").Scan(&indexes).Error)
	assert.Equal(t, int64(1), indexes)
}

func TestReconcile_KeepsExistingSequenceValue(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	seedLegacy(t, db, 2)
	dbtest.Exec(t, db,
		`CREATE TABLE "class_assignments_seq" ("next_val" BIGINT)`,
		`INSERT INTO "class_assignments_seq" ("next_val") VALUES (42)`,
	)

	report, err := NewReconciler(db, nil, Options{}).Reconcile(ctx, assignments())
	require.NoError(t, err)
	require.Equal(t, OutcomeFixed, report.Outcome)

	assert.Equal(t, int64(42), sequenceValue(t, db, "class_assignments"))
	assert.Equal(t, int64(1), dbtest.Count(t, db, "class_assignments_seq"))
}

func TestReconcile_FailedRebuildLeavesTableUntouched(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	seedLegacy(t, db, 3)
	// A counter table without next_val makes seeding fail after the drop and create.
	dbtest.Exec(t, db, `CREATE TABLE "class_assignments_seq" ("counter" INTEGER)`)
	r := NewReconciler(db, nil, Options{})

	report, err := r.Reconcile(ctx, assignments())
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.ErrorIs(t, report.Err(), ErrRebuild)
	assert.NotEmpty(t, report.Error)
	assert.Equal(t, int64(3), dbtest.Count(t, db, "class_assignments"))

	after, err := r.Check(ctx, assignments())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDirty, after.Outcome)
	assert.Equal(t, 5, after.DiscrepanciesFound)
}

func TestReconcile_PreserveMode(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	seedLegacy(t, db, 3)

	report, err := NewReconciler(db, nil, Options{Mode: ModePreserve}).Reconcile(ctx, assignments())
	require.NoError(t, err)

	assert.Equal(t, OutcomeFixed, report.Outcome)
	assert.Equal(t, ModePreserve, report.Mode)
	assert.Equal(t, int64(3), report.RowsPreserved)
	assert.Zero(t, report.RowsDiscarded)
	assert.True(t, report.DataDiscarded, "forbidden columns were dropped")
	assert.Equal(t, int64(3), dbtest.Count(t, db, "class_assignments"))

	var kept int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM class_assignments WHERE id = 2 AND created_at IS NOT NULL AND teacher_id IS NULL`).Scan(&kept).Error)
	assert.Equal(t, int64(1), kept)
}

type recordingArchiver struct {
	table string
	rows  []map[string]any
	err   error
}

func (a *recordingArchiver) Archive(_ context.Context, table string, rows []map[string]any) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.table = table
	a.rows = rows
	return "archive/" + table + "/1.json", nil
}

func TestReconcile_ArchivesDiscardedRows(t *testing.T) {
	ctx := context.Background()

	t.Run("Archived", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		seedLegacy(t, db, 2)
		archiver := &recordingArchiver{}

		report, err := NewReconciler(db, nil, Options{Archiver: archiver}).Reconcile(ctx, assignments())
		require.NoError(t, err)

		assert.Equal(t, OutcomeFixed, report.Outcome)
		assert.Equal(t, "archive/class_assignments/1.json", report.ArchiveKey)
		assert.Equal(t, "class_assignments", archiver.table)
		require.Len(t, archiver.rows, 2)
		assert.Contains(t, archiver.rows[0], "subject")
		assert.Contains(t, archiver.rows[0], "grade_level")
	})

	t.Run("ArchiveFailureAbortsRebuild", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		seedLegacy(t, db, 2)
		archiver := &recordingArchiver{err: errors.New("bucket unreachable")}

		report, err := NewReconciler(db, nil, Options{Archiver: archiver}).Reconcile(ctx, assignments())
		require.NoError(t, err)

		assert.Equal(t, OutcomeFailed, report.Outcome)
		assert.ErrorIs(t, report.Err(), ErrArchive)
		assert.Equal(t, int64(2), dbtest.Count(t, db, "class_assignments"))
	})

	t.Run("EmptyTableIsNotArchived", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		seedLegacy(t, db, 0)
		archiver := &recordingArchiver{}

		report, err := NewReconciler(db, nil, Options{Archiver: archiver}).Reconcile(ctx, assignments())
		require.NoError(t, err)

		assert.Equal(t, OutcomeFixed, report.Outcome)
		assert.False(t, report.DataDiscarded)
		assert.Empty(t, report.ArchiveKey)
		assert.Empty(t, archiver.table)
	})
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		report, err := NewReconciler(db, nil, Options{}).Check(ctx, assignments())
		require.NoError(t, err)
		assert.Equal(t, OutcomeMissing, report.Outcome)
	})

	t.Run("DirtyDoesNotModify", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		seedLegacy(t, db, 4)

		report, err := NewReconciler(db, nil, Options{}).Check(ctx, assignments())
		require.NoError(t, err)

		assert.Equal(t, OutcomeDirty, report.Outcome)
		assert.True(t, report.Dirty())
		assert.Equal(t, 5, report.DiscrepanciesFound)
		assert.Equal(t, int64(4), report.RowsBefore)
		assert.True(t, report.DataDiscarded)
		assert.Equal(t, int64(4), dbtest.Count(t, db, "class_assignments"))
	})

	t.Run("PreserveDroppingColumns", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		seedLegacy(t, db, 2)

		report, err := NewReconciler(db, nil, Options{Mode: ModePreserve}).Check(ctx, assignments())
		require.NoError(t, err)

		assert.Equal(t, OutcomeDirty, report.Outcome)
		assert.Equal(t, ModePreserve, report.Mode)
		assert.True(t, report.DataDiscarded, "teacher, subject, section and grade_level would be dropped")

		fixed, err := NewReconciler(db, nil, Options{Mode: ModePreserve}).Reconcile(ctx, assignments())
		require.NoError(t, err)
		assert.Equal(t, report.DataDiscarded, fixed.DataDiscarded)
	})

	t.Run("PreserveKeepingColumns", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		dbtest.Exec(t, db,
			`CREATE TABLE class_assignments (id INTEGER PRIMARY KEY, teacher_id INTEGER, subject_id INTEGER, section_id INTEGER, created_at TIMESTAMP)`,
			`INSERT INTO class_assignments (id, teacher_id) VALUES (1, 9)`,
		)

		report, err := NewReconciler(db, nil, Options{Mode: ModePreserve}).Check(ctx, assignments())
		require.NoError(t, err)

		assert.Equal(t, OutcomeDirty, report.Outcome)
		assert.Equal(t, int64(1), report.RowsBefore)
		assert.False(t, report.DataDiscarded)
	})
}

func TestReconcileAll(t *testing.T) {
	ctx := context.Background()
	db := dbtest.OpenSQLite(t)
	seedLegacy(t, db, 1)

	users := &schema.Canonical{
		Table: "users",
		Columns: []schema.ColumnSpec{
			{Name: "id", DeclaredType: "INTEGER", PrimaryKey: true},
			{Name: "role", DeclaredType: "VARCHAR(20)"},
		},
		Enums: []schema.EnumConstraint{{Column: "role", Values: []string{"ADMIN", "TEACHER", "STUDENT"}}},
	}

	reports, err := NewReconciler(db, nil, Options{}).ReconcileAll(ctx, assignments(), users)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, OutcomeFixed, reports[0].Outcome)
	assert.Equal(t, OutcomeCreated, reports[1].Outcome)

	err = db.Exec("INSERT INTO users (id, role) VALUES (1, 'JANITOR')").Error
	assert.Error(t, err, "role check constraint should reject unknown values")

	checks, err := NewReconciler(db, nil, Options{}).CheckAll(ctx, assignments(), users)
	require.NoError(t, err)
	for _, c := range checks {
		assert.Equal(t, OutcomeNoop, c.Outcome, c.Table)
	}
}

func TestReconcile_StoreUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("NoConnection", func(t *testing.T) {
		report, err := NewReconciler(nil, nil, Options{}).Reconcile(ctx, assignments())
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, OutcomeFailed, report.Outcome)
	})

	t.Run("ClosedConnection", func(t *testing.T) {
		db := dbtest.OpenSQLite(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		_, err = NewReconciler(db, nil, Options{}).Reconcile(ctx, assignments())
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("ReconcileAllStops", func(t *testing.T) {
		reports, err := NewReconciler(nil, nil, Options{}).ReconcileAll(ctx, assignments(), assignments())
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Len(t, reports, 1)
	})
}

func TestReconcile_InvalidCanonical(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	c := assignments()
	c.Forbidden = append(c.Forbidden, schema.ForbiddenColumn{Name: "created_at"})

	_, err := NewReconciler(db, nil, Options{}).Reconcile(context.Background(), c)
	assert.ErrorContains(t, err, "both requires and forbids")
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModeReplace, true},
		{"replace", ModeReplace, true},
		{"preserve", ModePreserve, true},
		{"create", "", false},
		{"truncate", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMode(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
