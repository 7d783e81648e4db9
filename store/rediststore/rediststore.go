// Package rediststore is an httpcache.Manager backed by a redigo connection pool.
package rediststore

import (
	"context"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/arcbridge/httpcache"
)

// Config holds the configuration for creating a Redis-backed Manager.
type Config struct {
	// Address is the Redis server address (e.g., "localhost:6379"). Required.
	Address string

	// Password is the Redis password for authentication. Optional.
	Password string

	// DB is the Redis database number to use. Optional - defaults to 0.
	DB int

	// MaxIdle is the maximum number of idle connections in the pool. Optional - defaults to 10.
	MaxIdle int

	// MaxActive is the maximum number of active connections in the pool.
	// Optional - a zero value selects the default of 100.
	MaxActive int

	// IdleTimeout is the duration after which idle connections are closed. Optional - defaults to 5 minutes.
	IdleTimeout time.Duration

	// ConnectTimeout is the timeout for connecting to Redis. Optional - defaults to 5 seconds.
	ConnectTimeout time.Duration

	// ReadTimeout is the timeout for reading from Redis. Optional - defaults to 5 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for writing to Redis. Optional - defaults to 5 seconds.
	WriteTimeout time.Duration
}

// Manager is an httpcache.Manager that stores entries in Redis.
type Manager struct {
	pool *redis.Pool
}

// cacheKey prefixes keys to avoid collision with other data stored in Redis.
func cacheKey(key string) string {
	return "httpcache:" + key
}

// Get implements httpcache.Manager. Context cancellation is not propagated
// to the underlying operation; redigo's connection-oriented API predates context support.
func (m *Manager) Get(_ context.Context, key string) (entry []byte, ok bool, err error) {
	conn := m.pool.Get()
	defer conn.Close() //nolint:errcheck // best effort cleanup

	item, err := redis.Bytes(conn.Do("GET", cacheKey(key)))
	if err != nil {
		if err == redis.ErrNil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("rediststore get failed for key %q: %w", key, err)
	}
	return item, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(_ context.Context, key string, entry []byte) error {
	conn := m.pool.Get()
	defer conn.Close() //nolint:errcheck // best effort cleanup

	if _, err := conn.Do("SET", cacheKey(key), entry); err != nil {
		return fmt.Errorf("rediststore put failed for key %q: %w", key, err)
	}
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(_ context.Context, key string) error {
	conn := m.pool.Get()
	defer conn.Close() //nolint:errcheck // best effort cleanup

	if _, err := conn.Do("DEL", cacheKey(key)); err != nil {
		return fmt.Errorf("rediststore delete failed for key %q: %w", key, err)
	}
	return nil
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	return m.pool.Close()
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxIdle:        10,
		MaxActive:      100,
		IdleTimeout:    5 * time.Minute,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		DB:             0,
	}
}

// New creates a new Manager with the given configuration, establishing a
// connection pool to Redis. The caller should call Close() when done.
func New(config Config) (*Manager, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	defaults := DefaultConfig()
	if config.MaxIdle == 0 {
		config.MaxIdle = defaults.MaxIdle
	}
	if config.MaxActive == 0 {
		config.MaxActive = defaults.MaxActive
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = defaults.IdleTimeout
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = defaults.ConnectTimeout
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}

	pool := &redis.Pool{
		MaxIdle:     config.MaxIdle,
		MaxActive:   config.MaxActive,
		IdleTimeout: config.IdleTimeout,
		Dial: func() (redis.Conn, error) {
			opts := []redis.DialOption{
				redis.DialConnectTimeout(config.ConnectTimeout),
				redis.DialReadTimeout(config.ReadTimeout),
				redis.DialWriteTimeout(config.WriteTimeout),
				redis.DialDatabase(config.DB),
			}
			if config.Password != "" {
				opts = append(opts, redis.DialPassword(config.Password))
			}
			return redis.Dial("tcp", config.Address, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	conn := pool.Get()
	defer conn.Close() //nolint:errcheck // best effort cleanup

	if _, err := conn.Do("PING"); err != nil {
		pool.Close() //nolint:errcheck // best effort cleanup after ping failure
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Manager{pool: pool}, nil
}

// NewWithClient returns a Manager wrapping a single existing connection.
// Prefer New for production use with real connection pooling.
func NewWithClient(client redis.Conn) *Manager {
	return &Manager{pool: &redis.Pool{
		MaxIdle:   1,
		MaxActive: 1,
		Dial:      func() (redis.Conn, error) { return client, nil },
	}}
}

var _ httpcache.Manager = (*Manager)(nil)
