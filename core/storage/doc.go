// Package storage wraps the MinIO client used to archive rows that a
// destructive table rebuild is about to discard.
//
// The Client interface is narrowed to the calls the archiver and the HTTP
// archive listing need, so tests can substitute core/storage/mocks.
//
//	client, err := storage.NewClient(cfg)
//	err = storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region)
package storage
