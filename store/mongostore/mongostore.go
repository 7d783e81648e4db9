// Package mongostore is an httpcache.Manager backed by MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arcbridge/httpcache"
)

// Config holds the configuration for creating a MongoDB-backed Manager.
type Config struct {
	// URI is the MongoDB connection URI (e.g., "mongodb://localhost:27017"). Required.
	URI string

	// Database is the name of the database to use for caching. Required.
	Database string

	// Collection is the name of the collection to use for caching. Optional - defaults to "httpcache".
	Collection string

	// KeyPrefix is a prefix added to all cache keys. Optional - defaults to "cache:".
	KeyPrefix string

	// Timeout is the timeout for database operations. Optional - defaults to 5 seconds.
	Timeout time.Duration

	// TTL is the time-to-live for cache entries. Optional - if set, creates a TTL index on storedAt.
	TTL time.Duration

	// ClientOptions are additional options to pass to mongo.Connect. Optional.
	ClientOptions *options.ClientOptions
}

// document represents one stored entry in MongoDB.
type document struct {
	Key      string    `bson:"_id"`
	Entry    []byte    `bson:"entry"`
	StoredAt time.Time `bson:"storedAt"`
}

// Manager is an httpcache.Manager that stores entries in a MongoDB collection.
type Manager struct {
	client     *mongo.Client
	collection *mongo.Collection
	keyPrefix  string
	timeout    time.Duration
}

func (m *Manager) cacheKey(key string) string {
	return m.keyPrefix + key
}

// Get implements httpcache.Manager.
func (m *Manager) Get(ctx context.Context, key string) (entry []byte, ok bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var doc document
	if err := m.collection.FindOne(ctx, bson.M{"_id": m.cacheKey(key)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("mongostore get failed for key %q: %w", key, err)
	}
	return doc.Entry, true, nil
}

// Put implements httpcache.Manager.
func (m *Manager) Put(ctx context.Context, key string, entry []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	doc := document{Key: m.cacheKey(key), Entry: entry, StoredAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, opts); err != nil {
		return fmt.Errorf("mongostore put failed for key %q: %w", key, err)
	}
	return nil
}

// Delete implements httpcache.Manager.
func (m *Manager) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": m.cacheKey(key)}); err != nil {
		return fmt.Errorf("mongostore delete failed for key %q: %w", key, err)
	}
	return nil
}

// Close disconnects from MongoDB. Only meaningful for a Manager created via New.
func (m *Manager) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Collection: "httpcache", KeyPrefix: "cache:", Timeout: 5 * time.Second}
}

// New creates a Manager with the given configuration, connecting to MongoDB
// and (if TTL is set) creating a TTL index. The caller should call Close when done.
func New(ctx context.Context, config Config) (*Manager, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("database name is required")
	}

	defaults := DefaultConfig()
	if config.Collection == "" {
		config.Collection = defaults.Collection
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = defaults.KeyPrefix
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	if config.ClientOptions != nil {
		clientOpts = config.ClientOptions.ApplyURI(config.URI)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		if disconnectErr := client.Disconnect(ctx); disconnectErr != nil {
			httpcache.GetLogger().Warn("failed to disconnect client after ping error", "error", disconnectErr)
		}
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m := &Manager{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		keyPrefix:  config.KeyPrefix,
		timeout:    config.Timeout,
	}

	if config.TTL > 0 {
		if err := m.createTTLIndex(ctx, config.TTL); err != nil {
			if disconnectErr := client.Disconnect(ctx); disconnectErr != nil {
				httpcache.GetLogger().Warn("failed to disconnect client after TTL index error", "error", disconnectErr)
			}
			return nil, fmt.Errorf("failed to create TTL index: %w", err)
		}
	}

	return m, nil
}

// NewWithClient returns a Manager using the given MongoDB client. The
// returned Manager does not close client when Close is called.
func NewWithClient(client *mongo.Client, database, collection string, config Config) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("mongodb client is required")
	}
	if database == "" {
		return nil, fmt.Errorf("database name is required")
	}

	defaults := DefaultConfig()
	if collection == "" {
		collection = defaults.Collection
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = defaults.KeyPrefix
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	return &Manager{
		collection: client.Database(database).Collection(collection),
		keyPrefix:  config.KeyPrefix,
		timeout:    config.Timeout,
	}, nil
}

func (m *Manager) createTTLIndex(ctx context.Context, ttl time.Duration) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "storedAt", Value: 1}},
		Options: options.Index().
			SetExpireAfterSeconds(int32(ttl.Seconds())).
			SetName("httpcache_ttl"),
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	_, err := m.collection.Indexes().CreateOne(ctx, indexModel)
	return err
}

var _ httpcache.Manager = (*Manager)(nil)
