package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"enrollment-manager/core/storage"
	"enrollment-manager/core/utils"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Archiver keeps a copy of rows that a rebuild is about to discard.
type Archiver interface {
	// Archive stores rows and returns the key they were stored under.
	Archive(ctx context.Context, table string, rows []map[string]any) (string, error)
}

// ArchiveDocument is the JSON body written for every archived table.
type ArchiveDocument struct {
	Table      string           `json:"table"`
	ArchivedAt time.Time        `json:"archivedAt"`
	RowCount   int              `json:"rowCount"`
	Rows       []map[string]any `json:"rows"`
}

// StorageArchiver writes archives as JSON objects into an object store bucket.
type StorageArchiver struct {
	client storage.Client
	bucket string
	region string
	prefix string
	now    func() time.Time

	mu    sync.Mutex
	ready bool
}

// NewStorageArchiver creates an archiver writing under prefix in bucket.
func NewStorageArchiver(client storage.Client, bucket, region, prefix string) *StorageArchiver {
	return &StorageArchiver{
		client: client,
		bucket: bucket,
		region: region,
		prefix: prefix,
		now:    time.Now,
	}
}

// Archive uploads rows as <prefix>/<table>/<timestamp>-<uuid>.json.
func (a *StorageArchiver) Archive(ctx context.Context, table string, rows []map[string]any) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}

	normalized := make([]map[string]any, len(rows))
	for i, row := range rows {
		normalized[i] = utils.NormalizeRow(row)
	}

	at := a.now().UTC()
	body, err := json.Marshal(ArchiveDocument{
		Table:      table,
		ArchivedAt: at,
		RowCount:   len(rows),
		Rows:       normalized,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode rows of %s: %w", table, err)
	}

	key := path.Join(a.prefix, table, fmt.Sprintf("%s-%s.json", at.Format("20060102T150405Z"), uuid.NewString()))
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive %s: %w", key, err)
	}
	return key, nil
}

func (a *StorageArchiver) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}
	if err := storage.EnsureBucket(ctx, a.client, a.bucket, a.region); err != nil {
		return err
	}
	a.ready = true
	return nil
}

// ArchivePrefix returns the object prefix holding archives of table.
func (a *StorageArchiver) ArchivePrefix(table string) string {
	return path.Join(a.prefix, table) + "/"
}

// ArchiveObject describes one stored archive.
type ArchiveObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// List returns the archives stored for table, oldest first.
func (a *StorageArchiver) List(ctx context.Context, table string) ([]ArchiveObject, error) {
	out := []ArchiveObject{}
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    a.ArchivePrefix(table),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archives of %s: %w", table, obj.Err)
		}
		out = append(out, ArchiveObject{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	// Keys start with their UTC timestamp.
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Open reads back the archive stored under key.
func (a *StorageArchiver) Open(ctx context.Context, key string) (*ArchiveDocument, error) {
	rc, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", key, err)
	}
	defer rc.Close()

	var doc ArchiveDocument
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode archive %s: %w", key, err)
	}
	return &doc, nil
}

// IsArchiveNotFound reports whether err means the archive key does not exist.
func IsArchiveNotFound(err error) bool {
	var resp minio.ErrorResponse
	return errors.As(err, &resp) && resp.Code == "NoSuchKey"
}
