package database

import (
	"context"
	"fmt"
	"strings"

	"enrollment-manager/core/schema"

	"gorm.io/gorm"
)

// SQLiteDialect speaks to the embedded store used by desktop installs.
// SQLite runs DDL inside transactions, so rebuilds are a plain drop and recreate.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (d *SQLiteDialect) TransactionalDDL() bool { return true }

func (d *SQLiteDialect) Matcher() schema.DefinitionMatcher {
	return schema.NewTokenMatcher([2]rune{'"', '"'}, [2]rune{'`', '`'}, [2]rune{'[', ']'})
}

func (d *SQLiteDialect) TableExists(ctx context.Context, db *gorm.DB, table string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).
		Scan(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return n > 0, nil
}

func (d *SQLiteDialect) Columns(ctx context.Context, db *gorm.DB, table string) ([]schema.ColumnSpec, error) {
	type sqliteColumn struct {
		Cid     int    `gorm:"column:cid"`
		Name    string `gorm:"column:name"`
		Type    string `gorm:"column:type"`
		Notnull int    `gorm:"column:notnull"`
	}
	var rows []sqliteColumn
	if err := db.WithContext(ctx).Raw("SELECT cid, name, type, \"notnull\" FROM pragma_table_info(?) ORDER BY cid", table).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}
	columns := make([]schema.ColumnSpec, 0, len(rows))
	for _, r := range rows {
		columns = append(columns, schema.ColumnSpec{
			Name:         r.Name,
			DeclaredType: r.Type,
			Nullable:     r.Notnull == 0,
		})
	}
	return columns, nil
}

func (d *SQLiteDialect) PrimaryKeys(ctx context.Context, db *gorm.DB, table string) ([]string, error) {
	names, err := scanStrings(db.WithContext(ctx).Raw("SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk", table))
	if err != nil {
		return nil, fmt.Errorf("failed to get primary key of %s: %w", table, err)
	}
	return names, nil
}

func (d *SQLiteDialect) ForeignKeys(ctx context.Context, db *gorm.DB, table string) ([]schema.ForeignKey, error) {
	type sqliteForeignKey struct {
		From  string  `gorm:"column:from_col"`
		Table string  `gorm:"column:ref_table"`
		To    *string `gorm:"column:to_col"`
	}
	var rows []sqliteForeignKey
	err := db.WithContext(ctx).
		Raw(`SELECT "from" AS from_col, "table" AS ref_table, "to" AS to_col FROM pragma_foreign_key_list(?) ORDER BY id, seq`, table).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys of %s: %w", table, err)
	}
	fks := make([]schema.ForeignKey, 0, len(rows))
	for _, r := range rows {
		fk := schema.ForeignKey{Column: r.From, RefTable: r.Table}
		if r.To != nil {
			fk.RefColumn = *r.To
		}
		fks = append(fks, fk)
	}
	return fks, nil
}

// Definition returns the CREATE TABLE text followed by the table's index definitions.
func (d *SQLiteDialect) Definition(ctx context.Context, db *gorm.DB, table string) (*string, error) {
	parts, err := scanStrings(db.WithContext(ctx).
		Raw("SELECT sql FROM sqlite_master WHERE tbl_name = ? AND sql IS NOT NULL ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, name", table))
	if err != nil {
		return nil, fmt.Errorf("failed to get definition of %s: %w", table, err)
	}
	if len(parts) == 0 {
		return nil, nil
	}
	def := strings.Join(parts, ";\n")
	return &def, nil
}

func (d *SQLiteDialect) CreateTable(plan *schema.Plan, name string) string {
	return renderCreateTable(d, plan, name)
}

func (d *SQLiteDialect) CreateIndex(idx schema.Index, table string) string {
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s)", kind, d.Quote(idx.Name), d.Quote(table), columnList(d, idx.Columns))
}

func (d *SQLiteDialect) CreateSequence(seq schema.Sequence) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s BIGINT)", d.Quote(seq.Table), d.Quote(seq.Column))
}

func (d *SQLiteDialect) SeedSequence(seq schema.Sequence) string {
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %d WHERE NOT EXISTS (SELECT 1 FROM %s)",
		d.Quote(seq.Table), d.Quote(seq.Column), seq.Seed, d.Quote(seq.Table))
}

func (d *SQLiteDialect) DropTable(name string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(name)
}

func (d *SQLiteDialect) RenameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.Quote(from), d.Quote(to))
}
