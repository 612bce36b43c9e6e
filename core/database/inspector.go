package database

import (
	"context"
	"fmt"
	"strings"

	"enrollment-manager/core/schema"

	"gorm.io/gorm"
)

// Inspector reads the live structure of tables through a store dialect.
// It only issues catalog queries and never mutates the store.
type Inspector struct {
	db      *gorm.DB
	dialect Dialect
}

// NewInspector creates an inspector for db using dialect d.
func NewInspector(db *gorm.DB, d Dialect) *Inspector {
	return &Inspector{db: db, dialect: d}
}

// Inspect captures a fresh snapshot of table. It returns (nil, nil) when the
// table does not exist. Catalog failures are wrapped in ErrIntrospection.
func (i *Inspector) Inspect(ctx context.Context, table string) (*schema.Snapshot, error) {
	exists, err := i.dialect.TableExists(ctx, i.db, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntrospection, err)
	}
	if !exists {
		return nil, nil
	}

	columns, err := i.dialect.Columns(ctx, i.db, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntrospection, err)
	}

	pks, err := i.dialect.PrimaryKeys(ctx, i.db, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntrospection, err)
	}
	pkSet := make(map[string]struct{}, len(pks))
	for _, name := range pks {
		pkSet[strings.ToLower(name)] = struct{}{}
	}
	for idx := range columns {
		_, columns[idx].PrimaryKey = pkSet[columns[idx].Key()]
	}

	fks, err := i.dialect.ForeignKeys(ctx, i.db, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntrospection, err)
	}

	def, err := i.dialect.Definition(ctx, i.db, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntrospection, err)
	}

	return schema.NewSnapshot(table, columns, def, fks), nil
}

// RowCount returns the number of rows currently in table.
func (i *Inspector) RowCount(ctx context.Context, table string) (int64, error) {
	n, err := CountRows(ctx, i.db, i.dialect, table)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIntrospection, err)
	}
	return n, nil
}
