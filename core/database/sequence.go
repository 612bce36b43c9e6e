package database

import (
	"context"
	"fmt"

	"enrollment-manager/core/schema"

	"gorm.io/gorm"
)

// NextID allocates the next identifier for table from its "<table>_seq" counter.
// The increment and the read happen in one transaction so concurrent callers
// never receive the same value.
func NextID(ctx context.Context, db *gorm.DB, table string) (int64, error) {
	d, err := DialectFor(db)
	if err != nil {
		return 0, err
	}
	seq := schema.SequenceTableName(table)
	col := d.Quote(schema.SequenceColumn)

	var id int64
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(fmt.Sprintf("UPDATE %s SET %s = %s + 1", d.Quote(seq), col, col))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("counter table %s holds %d rows, want 1", seq, res.RowsAffected)
		}
		return tx.Raw(fmt.Sprintf("SELECT %s - 1 FROM %s", col, d.Quote(seq))).Scan(&id).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id for %s: %w", table, err)
	}
	return id, nil
}
