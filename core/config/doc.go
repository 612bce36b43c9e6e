// Package config loads the Enrollment Manager configuration.
//
// Values come from environment variables, optionally seeded from a .env file,
// with defaults taken from the `default` struct tags of each section:
//   - Server: HTTP port, API key and shutdown timeout
//   - Database: driver (sqlite or mysql) and connection details
//   - Storage: S3/MinIO credentials and the archive bucket
//   - Log: level and format
//   - Schema: rebuild mode, archiving and startup reconciliation
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Schema.RebuildMode)
package config
