// Package schemacheck exposes schema reconciliation over HTTP.
//
// # HTTP Endpoints
//
//   - GET /schema : Checks every governed table.
//   - GET /schema/:table : Checks one table.
//   - POST /schema/reconcile : Rebuilds drifted tables (supports ?tables=a,b).
//   - GET /schema/archives/:table : Lists archived rows of a table.
//   - GET /schema/archives/:table/:name : Returns one archive.
//
// Checks never modify the store. Concurrent reconcile requests over the same
// tables join one run.
package schemacheck
