package compressstore

import (
	"fmt"

	"github.com/golang/snappy"

	"github.com/arcbridge/httpcache"
)

// SnappyConfig holds the configuration for a Snappy-compressing Manager.
type SnappyConfig struct {
	// Manager is the underlying storage backend (required).
	Manager httpcache.Manager
}

// NewSnappy wraps config.Manager with Snappy compression.
func NewSnappy(config SnappyConfig) (*Manager, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("manager cannot be nil")
	}

	encode := func(data []byte) ([]byte, error) {
		return snappy.Encode(nil, data), nil
	}
	decode := func(data []byte) ([]byte, error) {
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("snappy decode failed: %w", err)
		}
		return decoded, nil
	}

	return newManager(config.Manager, Snappy, encode, decode), nil
}
