// Package reconcile converges live tables onto their canonical schema.
//
// Each call walks the same path: inspect the table, diff it against the
// canonical schema, rebuild when it drifted or is missing, then inspect again
// to verify. A table that already matches is never touched.
//
// # Rebuilds
//
// A rebuild is all-or-nothing. On SQLite the drop, create, index and counter
// statements run in one transaction. MySQL commits around DDL, so the new table
// is built under "<table>__rebuild" and swapped in with a single RENAME TABLE;
// a failure before the swap drops the staging table and leaves the original.
//
// Rebuilds run in one of two modes:
//
//   - replace: every existing row is discarded
//   - preserve: rows are copied over for the columns both shapes share
//
// Rows about to be lost can be handed to an Archiver first. The
// StorageArchiver writes them to the object store as JSON.
//
// # Usage
//
//	r := reconcile.NewReconciler(db, logger, reconcile.Options{Mode: reconcile.ModeReplace})
//	report, err := r.Reconcile(ctx, enrollment.ClassAssignments())
//
// Errors are returned only when the store is unreachable or its catalog cannot
// be read. Rebuild and verification failures are carried in the Report.
package reconcile
