package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"enrollment-manager/core/schema"

	"gorm.io/gorm"
)

// ErrUnsupportedDialect is returned for stores whose DDL this package does not speak.
var ErrUnsupportedDialect = errors.New("unsupported store dialect")

// ErrIntrospection wraps any failure to read the store's catalog.
var ErrIntrospection = errors.New("catalog introspection failed")

// Dialect abstracts the store-specific catalog reads and DDL rendering used by
// schema reconciliation.
type Dialect interface {
	// Name matches gorm's Dialector.Name() for the store.
	Name() string
	// Quote quotes an identifier.
	Quote(ident string) string
	// TransactionalDDL reports whether CREATE/DROP participate in transactions.
	TransactionalDDL() bool
	// Matcher returns the raw-definition matcher for this store's DDL text.
	Matcher() schema.DefinitionMatcher

	// Catalog reads
	TableExists(ctx context.Context, db *gorm.DB, table string) (bool, error)
	Columns(ctx context.Context, db *gorm.DB, table string) ([]schema.ColumnSpec, error)
	PrimaryKeys(ctx context.Context, db *gorm.DB, table string) ([]string, error)
	// ForeignKeys returns nil when the store has no structured form for them.
	ForeignKeys(ctx context.Context, db *gorm.DB, table string) ([]schema.ForeignKey, error)
	// Definition returns nil when the store does not expose definition text.
	Definition(ctx context.Context, db *gorm.DB, table string) (*string, error)

	// DDL rendering
	CreateTable(plan *schema.Plan, name string) string
	CreateIndex(idx schema.Index, table string) string
	CreateSequence(seq schema.Sequence) string
	SeedSequence(seq schema.Sequence) string
	DropTable(name string) string
	RenameTable(from, to string) string
}

// AtomicSwapper is implemented by dialects without transactional DDL that can
// still rename several tables in one atomic statement.
type AtomicSwapper interface {
	// SwapTables renames table to retired and staging to table in one statement.
	SwapTables(table, staging, retired string) string
	// ReferencingTables lists other tables holding foreign keys to table. A
	// rename carries those keys along to the retired table.
	ReferencingTables(ctx context.Context, db *gorm.DB, table string) ([]string, error)
}

var dialects = map[string]Dialect{}

// Register makes a dialect available under its Name.
func Register(d Dialect) {
	dialects[d.Name()] = d
}

func init() {
	Register(&SQLiteDialect{})
	Register(&MySQLDialect{})
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}

// DialectFor resolves the dialect of a gorm connection.
func DialectFor(db *gorm.DB) (Dialect, error) {
	if db == nil || db.Dialector == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	name := db.Dialector.Name()
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, name)
	}
	return d, nil
}

// IsAlreadyExistsError reports whether err indicates idempotent DDL success.
func IsAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate key name")
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db *gorm.DB, d Dialect, table string) (int64, error) {
	var n int64
	if err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM " + d.Quote(table)).Scan(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return n, nil
}

// scanStrings collects a single-column result set.
func scanStrings(q *gorm.DB) ([]string, error) {
	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// columnList quotes and joins column names.
func columnList(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.Quote(n)
	}
	return strings.Join(quoted, ", ")
}

// quoteLiteral renders a SQL string literal.
func quoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// renderCreateTable is shared by the dialects; only quoting differs.
func renderCreateTable(d Dialect, plan *schema.Plan, name string) string {
	var defs []string
	for _, c := range plan.Columns {
		def := d.Quote(c.Name) + " " + c.DeclaredType
		if !c.Nullable || c.PrimaryKey {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if pk := plan.PrimaryKey(); len(pk) > 0 {
		defs = append(defs, "PRIMARY KEY ("+columnList(d, pk)+")")
	}
	for _, u := range plan.Uniques {
		defs = append(defs, "UNIQUE ("+columnList(d, u)+")")
	}
	for _, fk := range plan.ForeignKeys {
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.Quote(fk.Column), d.Quote(fk.RefTable), d.Quote(fk.RefColumn)))
	}
	for _, e := range plan.Enums {
		values := make([]string, len(e.Values))
		for i, v := range e.Values {
			values[i] = quoteLiteral(v)
		}
		defs = append(defs, fmt.Sprintf("CHECK (%s IN (%s))", d.Quote(e.Column), strings.Join(values, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", d.Quote(name), strings.Join(defs, ",\n  "))
}
