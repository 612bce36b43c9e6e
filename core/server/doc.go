// Package server holds the HTTP server configuration.
//
// The start command reads the port, API key and shutdown bound from here when
// it serves the schema health API.
package server
