package database

import (
	"context"
	"fmt"
	"strings"

	"enrollment-manager/core/schema"

	"gorm.io/gorm"
)

// MySQLDialect speaks to networked MySQL installs.
// MySQL commits implicitly around DDL, so rebuilds stage the new table under a
// temporary name and swap it in with a single RENAME TABLE.
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string { return "mysql" }

func (d *MySQLDialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (d *MySQLDialect) TransactionalDDL() bool { return false }

func (d *MySQLDialect) Matcher() schema.DefinitionMatcher {
	return schema.NewTokenMatcher([2]rune{'`', '`'})
}

func (d *MySQLDialect) TableExists(ctx context.Context, db *gorm.DB, table string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?", table).
		Scan(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return n > 0, nil
}

func (d *MySQLDialect) Columns(ctx context.Context, db *gorm.DB, table string) ([]schema.ColumnSpec, error) {
	type mysqlColumn struct {
		Name     string `gorm:"column:name"`
		Type     string `gorm:"column:type"`
		Nullable string `gorm:"column:nullable"`
	}
	var rows []mysqlColumn
	err := db.WithContext(ctx).
		Raw("SELECT COLUMN_NAME AS name, COLUMN_TYPE AS type, IS_NULLABLE AS nullable FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION", table).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}
	columns := make([]schema.ColumnSpec, 0, len(rows))
	for _, r := range rows {
		columns = append(columns, schema.ColumnSpec{
			Name:         r.Name,
			DeclaredType: strings.ToLower(r.Type),
			Nullable:     strings.EqualFold(r.Nullable, "YES"),
		})
	}
	return columns, nil
}

func (d *MySQLDialect) PrimaryKeys(ctx context.Context, db *gorm.DB, table string) ([]string, error) {
	names, err := scanStrings(db.WithContext(ctx).
		Raw("SELECT COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY' ORDER BY ORDINAL_POSITION", table))
	if err != nil {
		return nil, fmt.Errorf("failed to get primary key of %s: %w", table, err)
	}
	return names, nil
}

func (d *MySQLDialect) ForeignKeys(ctx context.Context, db *gorm.DB, table string) ([]schema.ForeignKey, error) {
	type mysqlForeignKey struct {
		Column    string `gorm:"column:col"`
		RefTable  string `gorm:"column:ref_table"`
		RefColumn string `gorm:"column:ref_col"`
	}
	var rows []mysqlForeignKey
	err := db.WithContext(ctx).
		Raw("SELECT COLUMN_NAME AS col, REFERENCED_TABLE_NAME AS ref_table, REFERENCED_COLUMN_NAME AS ref_col FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND REFERENCED_TABLE_NAME IS NOT NULL", table).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys of %s: %w", table, err)
	}
	fks := make([]schema.ForeignKey, 0, len(rows))
	for _, r := range rows {
		fks = append(fks, schema.ForeignKey{Column: r.Column, RefTable: r.RefTable, RefColumn: r.RefColumn})
	}
	return fks, nil
}

func (d *MySQLDialect) Definition(ctx context.Context, db *gorm.DB, table string) (*string, error) {
	rows, err := db.WithContext(ctx).Raw("SHOW CREATE TABLE " + d.Quote(table)).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to get definition of %s: %w", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var name, ddl string
	if err := rows.Scan(&name, &ddl); err != nil {
		return nil, fmt.Errorf("failed to scan definition of %s: %w", table, err)
	}
	return &ddl, nil
}

func (d *MySQLDialect) CreateTable(plan *schema.Plan, name string) string {
	return renderCreateTable(d, plan, name)
}

// CreateIndex has no IF NOT EXISTS form in MySQL; callers tolerate duplicate key names.
func (d *MySQLDialect) CreateIndex(idx schema.Index, table string) string {
	kind := "INDEX"
	if idx.Unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, d.Quote(idx.Name), d.Quote(table), columnList(d, idx.Columns))
}

func (d *MySQLDialect) CreateSequence(seq schema.Sequence) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s BIGINT)", d.Quote(seq.Table), d.Quote(seq.Column))
}

func (d *MySQLDialect) SeedSequence(seq schema.Sequence) string {
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %d FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM %s)",
		d.Quote(seq.Table), d.Quote(seq.Column), seq.Seed, d.Quote(seq.Table))
}

func (d *MySQLDialect) DropTable(name string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(name)
}

func (d *MySQLDialect) RenameTable(from, to string) string {
	return fmt.Sprintf("RENAME TABLE %s TO %s", d.Quote(from), d.Quote(to))
}

func (d *MySQLDialect) SwapTables(table, staging, retired string) string {
	return fmt.Sprintf("RENAME TABLE %s TO %s, %s TO %s",
		d.Quote(table), d.Quote(retired), d.Quote(staging), d.Quote(table))
}

func (d *MySQLDialect) ReferencingTables(ctx context.Context, db *gorm.DB, table string) ([]string, error) {
	names, err := scanStrings(db.WithContext(ctx).
		Raw("SELECT DISTINCT TABLE_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = DATABASE() AND REFERENCED_TABLE_NAME = ? AND TABLE_NAME <> ? ORDER BY TABLE_NAME", table, table))
	if err != nil {
		return nil, fmt.Errorf("failed to get tables referencing %s: %w", table, err)
	}
	return names, nil
}
