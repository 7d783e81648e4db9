package httpcache

// CacheMode governs how the decision engine treats a request relative
// to the cache, analogous to the make-fetch-happen cache options. See
// spec.md section 6 for the full semantics of each variant.
type CacheMode int

const (
	// Default inspects the cache on the way to the network, serving a
	// fresh entry or conditionally revalidating a stale one, and writes
	// through after every network fetch.
	Default CacheMode = iota
	// NoStore behaves as if there were no cache at all.
	NoStore
	// Reload skips the cache lookup, always fetches fresh, and writes through.
	Reload
	// NoCache always contacts the origin with validators from any
	// cached entry and writes through.
	NoCache
	// ForceCache uses any matching entry regardless of freshness, else fetches and stores.
	ForceCache
	// OnlyIfCached uses any matching entry regardless of freshness, else
	// returns a synthesized 504 without touching the network.
	OnlyIfCached
	// IgnoreRules behaves like ForceCache but bypasses the storability
	// check for 200 responses: any 200 is stored regardless of policy verdict.
	IgnoreRules
)

func (m CacheMode) String() string {
	switch m {
	case Default:
		return "Default"
	case NoStore:
		return "NoStore"
	case Reload:
		return "Reload"
	case NoCache:
		return "NoCache"
	case ForceCache:
		return "ForceCache"
	case OnlyIfCached:
		return "OnlyIfCached"
	case IgnoreRules:
		return "IgnoreRules"
	default:
		return "Unknown"
	}
}
