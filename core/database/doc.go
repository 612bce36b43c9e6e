// Package database handles store connections and schema inspection.
//
// It wraps GORM to open either the embedded SQLite store used by desktop
// installs or a networked MySQL server, selected by the database driver setting.
//
// # Dialects
//
// Each supported store implements Dialect: catalog reads (table existence,
// columns, primary-key listing, foreign keys, raw definition text) and DDL
// rendering for rebuilds. DialectFor resolves the dialect of a connection and
// returns ErrUnsupportedDialect for anything else, so callers never guess at
// syntax for an unknown backend.
//
// # Schema Inspection
//
// Inspector captures an immutable schema.Snapshot of a table. Primary-key
// membership is taken from the dialect's primary-key listing and matched
// case-insensitively against the column names.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	d, _ := database.DialectFor(db)
//	snap, err := database.NewInspector(db, d).Inspect(ctx, "class_assignments")
package database
