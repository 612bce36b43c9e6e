// Package schema describes table structure and compares live tables against
// their canonical definitions.
//
// # Types
//
//   - ColumnSpec: one column (name, declared type, nullability, primary-key flag).
//     Names compare case-insensitively.
//   - Snapshot: an immutable capture of a live table produced by the inspector.
//   - Canonical: the compiled-in expected structure of a governed table,
//     including legacy column names that must not appear.
//   - Plan: the literal structure a rebuild recreates, derived from a Canonical.
//
// # Diff
//
// Diff returns an ordered list of discrepancies: forbidden columns first,
// stale constraints second, missing columns last. Structured catalog facts
// (primary keys, foreign keys) are preferred; the raw definition text is only
// consulted through a DefinitionMatcher supplied by the store dialect.
//
//	snap, _ := inspector.Inspect(ctx, "class_assignments")
//	for _, d := range schema.Diff(snap, canonical, dialect.Matcher()) {
//	    log.Info("discrepancy", zap.Stringer("detail", d))
//	}
package schema
