// Package blobstore is an httpcache.Manager implementation that uses the
// Go Cloud Development Kit (CDK) blob abstraction for cloud-agnostic cache
// storage.
//
// Supports multiple cloud providers:
//   - Amazon S3
//   - Google Cloud Storage
//   - Azure Blob Storage
//   - In-memory (for testing)
//   - Local filesystem
//
// Example usage with S3:
//
//	import (
//	    "context"
//	    _ "gocloud.dev/blob/s3blob"
//	    "github.com/arcbridge/httpcache/store/blobstore"
//	)
//
//	ctx := context.Background()
//	manager, err := blobstore.New(ctx, blobstore.Config{
//	    BucketURL: "s3://my-bucket?region=us-west-2",
//	    KeyPrefix: "httpcache/",
//	})
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/arcbridge/httpcache"
)

// Config holds the configuration for a blob-backed Manager.
type Config struct {
	// BucketURL is the Go Cloud blob URL (e.g., "s3://bucket?region=us-west-2").
	BucketURL string

	// KeyPrefix is prepended to all cache keys (default: "cache/").
	KeyPrefix string

	// Timeout for blob operations (default: 30s).
	Timeout time.Duration

	// Bucket is an optional pre-opened bucket (if nil, BucketURL is used).
	Bucket *blob.Bucket
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "cache/",
		Timeout:   30 * time.Second,
	}
}

// Manager is an httpcache.Manager backed by a Go Cloud blob bucket.
type Manager struct {
	bucket     *blob.Bucket
	keyPrefix  string
	timeout    time.Duration
	ownsBucket bool
}

// New opens the bucket named by config.BucketURL (or uses config.Bucket
// directly) and returns a Manager backed by it. Call Close when done.
func New(ctx context.Context, config Config) (*Manager, error) {
	if config.BucketURL == "" && config.Bucket == nil {
		return nil, fmt.Errorf("either BucketURL or Bucket must be provided")
	}

	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultConfig().KeyPrefix
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	var bucket *blob.Bucket
	var ownsBucket bool
	var err error

	if config.Bucket != nil {
		bucket = config.Bucket
		ownsBucket = false
	} else {
		bucket, err = blob.OpenBucket(ctx, config.BucketURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open bucket: %w", err)
		}
		ownsBucket = true
	}

	return &Manager{
		bucket:     bucket,
		keyPrefix:  config.KeyPrefix,
		timeout:    config.Timeout,
		ownsBucket: ownsBucket,
	}, nil
}

// NewWithBucket returns a Manager using an already-opened bucket. The
// caller is responsible for closing the bucket.
func NewWithBucket(bucket *blob.Bucket, keyPrefix string, timeout time.Duration) *Manager {
	if keyPrefix == "" {
		keyPrefix = DefaultConfig().KeyPrefix
	}
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}

	return &Manager{
		bucket:     bucket,
		keyPrefix:  keyPrefix,
		timeout:    timeout,
		ownsBucket: false,
	}
}

// cacheKey hashes key to avoid issues with special characters in cloud
// storage object names.
func (m *Manager) cacheKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return m.keyPrefix + hex.EncodeToString(hash[:])
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

// Get implements httpcache.Manager.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	blobKey := m.cacheKey(key)

	reader, err := m.bucket.NewReader(ctx, blobKey, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("blobstore get failed for key %q: %w", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("blobstore read failed for key %q: %w", key, err)
	}

	return data, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(ctx context.Context, key string, entry []byte) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	blobKey := m.cacheKey(key)

	writer, err := m.bucket.NewWriter(ctx, blobKey, nil)
	if err != nil {
		return fmt.Errorf("blobstore put failed to create writer for key %q: %w", key, err)
	}

	_, writeErr := writer.Write(entry)
	closeErr := writer.Close()

	if writeErr != nil {
		return fmt.Errorf("blobstore put failed to write for key %q: %w", key, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("blobstore put failed to close writer for key %q: %w", key, closeErr)
	}
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(ctx context.Context, key string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	blobKey := m.cacheKey(key)

	if err := m.bucket.Delete(ctx, blobKey); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("blobstore delete failed for key %q: %w", key, err)
	}
	return nil
}

// Close closes the bucket if it was opened by New. A Manager built via
// NewWithBucket leaves the bucket open.
func (m *Manager) Close() error {
	if m.ownsBucket {
		if err := m.bucket.Close(); err != nil {
			return fmt.Errorf("failed to close blob bucket: %w", err)
		}
	}
	return nil
}

var _ httpcache.Manager = (*Manager)(nil)
