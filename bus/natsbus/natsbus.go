// Package natsbus provides a distributed cache-bust fan-out broadcaster
// over NATS core pub/sub. It wraps an httpcache.Manager so that every
// Delete is also published on a shared subject, letting peer engine
// instances that each keep their own in-process tier (e.g. a
// wrapper/multistore front backed by store/memstore) invalidate that
// tier when a bust happens anywhere in the fleet.
package natsbus

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/arcbridge/httpcache"
)

// Config holds the configuration for a Broadcaster.
type Config struct {
	// NATSUrl is the URL of the NATS server. Defaults to nats.DefaultURL if empty.
	NATSUrl string

	// Subject is the pub/sub subject bust notifications are sent on.
	// Required.
	Subject string

	// NATSOptions are additional options passed to nats.Connect.
	NATSOptions []nats.Option
}

// Broadcaster wraps an httpcache.Manager, publishing the busted key on
// Config.Subject every time Delete is called, and (once Subscribe is
// called) invalidating a local Manager whenever a peer publishes a bust
// for a key.
type Broadcaster struct {
	next    httpcache.Manager
	nc      *nats.Conn
	subject string
	owns    bool
	sub     *nats.Subscription
}

// New connects to NATS per config and returns a Broadcaster wrapping next.
// The caller should call Close when done to release the connection.
func New(next httpcache.Manager, config Config) (*Broadcaster, error) {
	if next == nil {
		return nil, fmt.Errorf("natsbus: manager is required")
	}
	if config.Subject == "" {
		return nil, fmt.Errorf("natsbus: subject is required")
	}

	url := config.NATSUrl
	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url, config.NATSOptions...)
	if err != nil {
		return nil, fmt.Errorf("natsbus: failed to connect to NATS: %w", err)
	}

	return &Broadcaster{next: next, nc: nc, subject: config.Subject, owns: true}, nil
}

// NewWithConn returns a Broadcaster using an existing *nats.Conn. The
// connection is not closed by Close().
func NewWithConn(next httpcache.Manager, nc *nats.Conn, subject string) (*Broadcaster, error) {
	if next == nil {
		return nil, fmt.Errorf("natsbus: manager is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("natsbus: subject is required")
	}
	return &Broadcaster{next: next, nc: nc, subject: subject}, nil
}

// Subscribe starts listening for bust notifications from peers and
// deletes the busted key from local on each one. It is typically called
// with the fast in-process tier of a wrapper/multistore stack, so a
// bust issued by one instance's Delete reaches every other instance's
// local tier without waiting for it to also expire or be overwritten.
func (b *Broadcaster) Subscribe(local httpcache.Manager) error {
	if local == nil {
		return fmt.Errorf("natsbus: local manager is required")
	}

	sub, err := b.nc.Subscribe(b.subject, func(msg *nats.Msg) {
		key := string(msg.Data)
		if err := local.Delete(context.Background(), key); err != nil {
			httpcache.GetLogger().Warn("natsbus: failed to apply remote bust", "key", key, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("natsbus: failed to subscribe: %w", err)
	}

	b.sub = sub
	return nil
}

// Get implements httpcache.Manager by delegating to the wrapped manager.
func (b *Broadcaster) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.next.Get(ctx, key)
}

// Put implements httpcache.Manager by delegating to the wrapped manager.
func (b *Broadcaster) Put(ctx context.Context, key string, entry []byte) error {
	return b.next.Put(ctx, key, entry)
}

// Delete implements httpcache.Manager: it deletes from the wrapped
// manager, then publishes the key on Subject so peers can invalidate
// their own local tier. The publish is best-effort; a publish failure
// is logged, not returned, since the local delete already succeeded.
func (b *Broadcaster) Delete(ctx context.Context, key string) error {
	if err := b.next.Delete(ctx, key); err != nil {
		return err
	}

	if err := b.nc.Publish(b.subject, []byte(key)); err != nil {
		httpcache.GetLogger().Warn("natsbus: failed to publish bust", "key", key, "error", err)
	}
	return nil
}

// Close unsubscribes (if subscribed) and, for a Broadcaster created via
// New, closes the underlying NATS connection. It is a no-op for the
// connection when created via NewWithConn.
func (b *Broadcaster) Close() error {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			return err
		}
	}
	if b.owns && b.nc != nil {
		b.nc.Close()
	}
	return nil
}

var _ httpcache.Manager = (*Broadcaster)(nil)
