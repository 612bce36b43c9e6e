package database_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"enrollment-manager/core/database"
	"enrollment-manager/core/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_SQLite(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	dbtest.Exec(t, db,
		`CREATE TABLE teachers (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE Class_Assignments (
			ID INTEGER NOT NULL,
			Teacher_ID INTEGER REFERENCES teachers(id),
			note TEXT,
			PRIMARY KEY (id)
		)`,
		`CREATE INDEX idx_assign_teacher ON Class_Assignments (Teacher_ID)`,
	)
	d, err := database.DialectFor(db)
	require.NoError(t, err)

	snap, err := database.NewInspector(db, d).Inspect(context.Background(), "Class_Assignments")
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, []string{"ID", "Teacher_ID", "note"}, snap.ColumnNames())

	id, ok := snap.Column("id")
	require.True(t, ok)
	assert.True(t, id.PrimaryKey)
	assert.False(t, id.Nullable)
	assert.Equal(t, "INTEGER", id.DeclaredType)

	note, ok := snap.Column("NOTE")
	require.True(t, ok)
	assert.False(t, note.PrimaryKey)
	assert.True(t, note.Nullable)

	fks, known := snap.ForeignKeys()
	assert.True(t, known)
	require.Len(t, fks, 1)
	assert.Equal(t, "Teacher_ID", fks[0].Column)
	assert.Equal(t, "teachers", fks[0].RefTable)
	assert.Equal(t, "id", fks[0].RefColumn)

	def, ok := snap.Definition()
	require.True(t, ok)
	assert.Contains(t, def, "CREATE TABLE Class_Assignments")
	assert.Contains(t, def, "idx_assign_teacher")
}

func TestInspect_SQLiteMissingTable(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	d, err := database.DialectFor(db)
	require.NoError(t, err)

	snap, err := database.NewInspector(db, d).Inspect(context.Background(), "non_existent")
	assert.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRowCount(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	dbtest.Exec(t, db,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`,
		`INSERT INTO users (name) VALUES ('a'), ('b'), ('c')`,
	)
	d, _ := database.DialectFor(db)

	n, err := database.NewInspector(db, d).RowCount(context.Background(), "users")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestInspect_MySQL(t *testing.T) {
	db, mock := dbtest.MockMySQL(t)
	d, err := database.DialectFor(db)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.TABLES")).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.COLUMNS")).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "nullable"}).
			AddRow("ID", "INT", "NO").
			AddRow("role", "varchar(20)", "YES"))
	mock.ExpectQuery(regexp.QuoteMeta("CONSTRAINT_NAME = 'PRIMARY'")).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME"}).AddRow("id"))
	mock.ExpectQuery(regexp.QuoteMeta("REFERENCED_TABLE_NAME IS NOT NULL")).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"col", "ref_table", "ref_col"}))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW CREATE TABLE `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"Table", "Create Table"}).
			AddRow("users", "CREATE TABLE `users` (`ID` int NOT NULL, `role` varchar(20))"))

	snap, err := database.NewInspector(db, d).Inspect(context.Background(), "users")
	require.NoError(t, err)
	require.NotNil(t, snap)

	id, ok := snap.Column("id")
	require.True(t, ok)
	assert.True(t, id.PrimaryKey, "primary key matched case-insensitively")
	assert.Equal(t, "int", id.DeclaredType)

	role, _ := snap.Column("role")
	assert.True(t, role.Nullable)

	fks, known := snap.ForeignKeys()
	assert.True(t, known)
	assert.Empty(t, fks)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspect_MySQLCatalogFailure(t *testing.T) {
	db, mock := dbtest.MockMySQL(t)
	d, _ := database.DialectFor(db)

	mock.ExpectQuery(".*").WillReturnError(assert.AnError)

	snap, err := database.NewInspector(db, d).Inspect(context.Background(), "users")
	assert.Nil(t, snap)
	assert.True(t, errors.Is(err, database.ErrIntrospection))
	assert.True(t, errors.Is(err, assert.AnError))
}

func TestMySQLReferencingTables(t *testing.T) {
	db, mock := dbtest.MockMySQL(t)
	d, err := database.DialectFor(db)
	require.NoError(t, err)
	swapper, ok := d.(database.AtomicSwapper)
	require.True(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta("REFERENCED_TABLE_NAME = ? AND TABLE_NAME <> ?")).
		WithArgs("teachers", "teachers").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("class_assignments"))

	children, err := swapper.ReferencingTables(context.Background(), db, "teachers")
	require.NoError(t, err)
	assert.Equal(t, []string{"class_assignments"}, children)
	assert.NoError(t, mock.ExpectationsWereMet())
}
