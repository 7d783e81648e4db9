package compressstore

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/arcbridge/httpcache"
)

// BrotliConfig holds the configuration for a Brotli-compressing Manager.
type BrotliConfig struct {
	// Manager is the underlying storage backend (required).
	Manager httpcache.Manager

	// Level is the compression level (0 to 11). Default: 6.
	Level int
}

// NewBrotli wraps config.Manager with Brotli compression.
func NewBrotli(config BrotliConfig) (*Manager, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("manager cannot be nil")
	}
	if config.Level == 0 {
		config.Level = 6
	}
	if config.Level < 0 || config.Level > 11 {
		return nil, fmt.Errorf("invalid brotli compression level: %d", config.Level)
	}

	decode := func(data []byte) ([]byte, error) {
		r := brotli.NewReader(bytes.NewReader(data))
		return io.ReadAll(r)
	}

	encode := func(data []byte) ([]byte, error) {
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, config.Level)
		if _, err := w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("brotli write failed: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("brotli close failed: %w", err)
		}
		return buf.Bytes(), nil
	}

	return newManager(config.Manager, Brotli, encode, decode), nil
}
