package httpcache

import "context"

// Manager is the Storage Contract: a narrow put/get/delete abstraction
// over a shared (cache_key -> (Response, CachePolicy)) key space.
// Implementations may be shared across concurrent requests and must be
// safe for concurrent use; the engine never holds a lock across a
// suspension point and performs at most one Put per request.
//
// Concrete implementations live in the store subpackages; they exchange
// the already-encoded []byte produced by EncodeEntry/DecodeEntry so
// that a Manager never needs to know about Response or CachePolicy
// directly, only about storing and retrieving bytes by key.
type Manager interface {
	// Get returns the stored bytes for key and whether they were
	// present. It must be consistent with the last successful Put or
	// Delete for that key as observed by the caller.
	Get(ctx context.Context, key string) (entry []byte, ok bool, err error)

	// Put persists entry under key, overwriting any previous value.
	Put(ctx context.Context, key string, entry []byte) error

	// Delete removes the entry stored under key. It is idempotent;
	// deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
