// Package postgresstore is an httpcache.Manager backed by PostgreSQL, via pgx/v5.
package postgresstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcbridge/httpcache"
)

var (
	// ErrNilPool is returned when a nil pool is provided.
	ErrNilPool = errors.New("postgresstore: pool cannot be nil")
	// ErrNilConn is returned when a nil connection is provided.
	ErrNilConn = errors.New("postgresstore: connection cannot be nil")
)

const (
	// DefaultTableName is the default table name for cache storage.
	DefaultTableName = "httpcache"
	// DefaultKeyPrefix is the default prefix for cache keys.
	DefaultKeyPrefix = "cache:"
)

// Config holds the configuration for a PostgreSQL-backed Manager. The
// defaults named below are those of DefaultConfig, which the constructors
// use only when passed a nil *Config; the fields of a non-nil Config are
// used exactly as given, zero values included.
type Config struct {
	// TableName is the name of the table to store cache entries (default: "httpcache").
	TableName string
	// KeyPrefix is the prefix to add to all cache keys (default: "cache:").
	KeyPrefix string
	// Timeout is the maximum time to wait for database operations (default: 5s).
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		TableName: DefaultTableName,
		KeyPrefix: DefaultKeyPrefix,
		Timeout:   5 * time.Second,
	}
}

// Manager is an httpcache.Manager that stores entries in a PostgreSQL table.
type Manager struct {
	pool      *pgxpool.Pool
	conn      *pgx.Conn
	tableName string
	keyPrefix string
	timeout   time.Duration
}

func (m *Manager) cacheKey(key string) string {
	return m.keyPrefix + key
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

// Get implements httpcache.Manager.
func (m *Manager) Get(ctx context.Context, key string) (entry []byte, ok bool, err error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	query := `SELECT entry FROM ` + m.tableName + ` WHERE key = $1`

	var data []byte
	if m.pool != nil {
		err = m.pool.QueryRow(ctx, query, m.cacheKey(key)).Scan(&data)
	} else {
		err = m.conn.QueryRow(ctx, query, m.cacheKey(key)).Scan(&data)
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("postgresstore get failed for key %q: %w", key, err)
	}

	return data, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(ctx context.Context, key string, entry []byte) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO ` + m.tableName + ` (key, entry, stored_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET entry = $2, stored_at = $3
	`

	var err error
	if m.pool != nil {
		_, err = m.pool.Exec(ctx, query, m.cacheKey(key), entry, time.Now())
	} else {
		_, err = m.conn.Exec(ctx, query, m.cacheKey(key), entry, time.Now())
	}

	if err != nil {
		return fmt.Errorf("postgresstore put failed for key %q: %w", key, err)
	}
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(ctx context.Context, key string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	query := `DELETE FROM ` + m.tableName + ` WHERE key = $1`

	var err error
	if m.pool != nil {
		_, err = m.pool.Exec(ctx, query, m.cacheKey(key))
	} else {
		_, err = m.conn.Exec(ctx, query, m.cacheKey(key))
	}

	if err != nil {
		return fmt.Errorf("postgresstore delete failed for key %q: %w", key, err)
	}
	return nil
}

// CreateTable creates the cache table if it doesn't exist.
func (m *Manager) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + m.tableName + ` (
			key TEXT PRIMARY KEY,
			entry BYTEA NOT NULL,
			stored_at TIMESTAMP NOT NULL
		)
	`

	var err error
	if m.pool != nil {
		_, err = m.pool.Exec(ctx, query)
	} else {
		_, err = m.conn.Exec(ctx, query)
	}
	return err
}

// Close closes the connection pool or connection.
func (m *Manager) Close() {
	if m.pool != nil {
		m.pool.Close()
	} else if m.conn != nil {
		_ = m.conn.Close(context.Background())
	}
}

// NewWithPool returns a Manager using the provided connection pool.
func NewWithPool(pool *pgxpool.Pool, config *Config) (*Manager, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{
		pool:      pool,
		tableName: config.TableName,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}, nil
}

// NewWithConn returns a Manager using the provided connection.
func NewWithConn(conn *pgx.Conn, config *Config) (*Manager, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{
		conn:      conn,
		tableName: config.TableName,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}, nil
}

// New creates a Manager with a connection pool from the given connection string,
// creating the backing table if it does not already exist.
func New(ctx context.Context, connString string, config *Config) (*Manager, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if config == nil {
		config = DefaultConfig()
	}

	m := &Manager{
		pool:      pool,
		tableName: config.TableName,
		keyPrefix: config.KeyPrefix,
		timeout:   config.Timeout,
	}

	if err := m.CreateTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return m, nil
}

var _ httpcache.Manager = (*Manager)(nil)
