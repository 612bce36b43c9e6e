// Package middleware groups the HTTP middleware of the schema health API.
//
//   - auth: API key validation (X-API-Key or Bearer token)
//   - rayid: assigns every request a ray id and exposes it to the logger
//
// rayid must be registered first so every later log line carries the id.
package middleware
