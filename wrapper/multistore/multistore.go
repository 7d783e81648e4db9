// Package multistore provides a multi-tiered httpcache.Manager that cascades
// through several backends with automatic fallback and promotion. This
// enables sophisticated caching strategies with different performance and
// persistence characteristics at each tier.
package multistore

import (
	"context"

	"github.com/arcbridge/httpcache"
)

// Manager implements a multi-tiered caching strategy where tiers are
// ordered from fastest/smallest (first) to slowest/largest (last). On
// reads, it searches each tier in order and promotes found values to
// faster tiers. On writes, it stores to all tiers. This allows hot data
// to naturally migrate to faster caches while maintaining persistence in
// slower tiers.
//
// Example tiering:
//   - Tier 1: in-process ristretto (fast, small, volatile)
//   - Tier 2: Redis (medium speed, larger, shared)
//   - Tier 3: PostgreSQL (slower, largest, durable)
type Manager struct {
	tiers []httpcache.Manager
}

// New creates a Manager with the given tiers, ordered from
// fastest/smallest to slowest/largest. Returns nil if no tiers are
// provided, any tier is nil, or a tier appears more than once.
func New(tiers ...httpcache.Manager) *Manager {
	if len(tiers) == 0 {
		return nil
	}

	seen := make(map[httpcache.Manager]bool, len(tiers))
	for _, tier := range tiers {
		if tier == nil || seen[tier] {
			return nil
		}
		seen[tier] = true
	}

	return &Manager{tiers: tiers}
}

// Get implements httpcache.Manager. It searches each tier in order,
// starting with the fastest, and promotes a value found in a slower tier
// to every faster tier ahead of it.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, tier := range m.tiers {
		value, ok, err := tier.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			_ = m.promoteToFasterTiers(ctx, key, value, i)
			return value, true, nil
		}
	}
	return nil, false, nil
}

// Put implements httpcache.Manager, storing entry in every tier.
func (m *Manager) Put(ctx context.Context, key string, entry []byte) error {
	for _, tier := range m.tiers {
		if err := tier.Put(ctx, key, entry); err != nil {
			return err
		}
	}
	return nil
}

// Delete implements httpcache.Manager, removing key from every tier.
func (m *Manager) Delete(ctx context.Context, key string) error {
	for _, tier := range m.tiers {
		if err := tier.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// promoteToFasterTiers writes entry to every tier faster than the one it
// was found in, so subsequent reads hit the fastest tier directly.
// Promotion errors are best-effort; the caller already has its value.
func (m *Manager) promoteToFasterTiers(ctx context.Context, key string, entry []byte, foundAtTier int) error {
	for i := 0; i < foundAtTier; i++ {
		if err := m.tiers[i].Put(ctx, key, entry); err != nil {
			return err
		}
	}
	return nil
}

var _ httpcache.Manager = (*Manager)(nil)
