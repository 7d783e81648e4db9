package compressstore

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/arcbridge/httpcache"
)

// GzipConfig holds the configuration for a Gzip-compressing Manager.
type GzipConfig struct {
	// Manager is the underlying storage backend (required).
	Manager httpcache.Manager

	// Level is the compression level (gzip.HuffmanOnly..gzip.BestCompression).
	// Default: gzip.DefaultCompression.
	Level int
}

// NewGzip wraps config.Manager with Gzip compression.
func NewGzip(config GzipConfig) (*Manager, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("manager cannot be nil")
	}
	if config.Level == 0 {
		config.Level = gzip.DefaultCompression
	}
	if config.Level < gzip.HuffmanOnly || config.Level > gzip.BestCompression {
		return nil, fmt.Errorf("invalid gzip compression level: %d", config.Level)
	}

	decode := func(data []byte) ([]byte, error) {
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader creation failed: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)
	}

	encode := func(data []byte) ([]byte, error) {
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, config.Level)
		if err != nil {
			return nil, fmt.Errorf("gzip writer creation failed: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("gzip write failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip close failed: %w", err)
		}
		return buf.Bytes(), nil
	}

	return newManager(config.Manager, Gzip, encode, decode), nil
}
