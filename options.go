package httpcache

// CacheKeyFunc computes the cache key for a request, fully replacing
// the engine's default "{METHOD}:{URL}" derivation when configured.
type CacheKeyFunc func(parts RequestParts) string

// CacheModeFunc returns the CacheMode to use for a request, consulted
// when the Adapter has no per-request override (spec.md 4.5 Step 1.2).
type CacheModeFunc func(parts RequestParts) CacheMode

// CacheBustFunc returns additional cache keys to delete before lookup,
// given the request parts, the configured CacheKeyFunc (if any) and the
// already-computed cache key (the CacheKeyFunc result when one is
// configured). An empty return performs no busting.
type CacheBustFunc func(parts RequestParts, keyFn CacheKeyFunc, computedKey string) []string

// Options holds the caller-configurable behavior of an Engine: the
// cache-key override, the mode-resolution override, a cache-busting
// hook, the opaque options forwarded to the policy helper, a flag
// gating the x-cache/x-cache-lookup annotations, and the codec used to
// reload a stored CachePolicy. See spec.md section 3 "Configuration".
type Options struct {
	CacheOptions       any
	CacheKey           CacheKeyFunc
	CacheModeFunc      CacheModeFunc
	CacheBust          CacheBustFunc
	CacheStatusHeaders bool
	UnmarshalPolicy    PolicyCodec
}

// DefaultOptions returns an Options with CacheStatusHeaders enabled and
// every override unset, matching the engine's out-of-the-box behavior.
func DefaultOptions() Options {
	return Options{CacheStatusHeaders: true}
}

// createCacheKey implements the Cache-Key & Options component
// (spec.md section 4.4): the configured CacheKey fully replaces the
// default derivation; overrideMethod substitutes the method component
// of the default derivation only (used internally to address the GET
// entry when invalidating after an unsafe method).
func (o Options) createCacheKey(parts RequestParts, overrideMethod string) string {
	if o.CacheKey != nil {
		return o.CacheKey(parts)
	}
	method := parts.Method
	if overrideMethod != "" {
		method = overrideMethod
	}
	u := ""
	if parts.URL != nil {
		u = parts.URL.String()
	}
	return method + ":" + u
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithCacheKey overrides the default cache-key derivation.
func WithCacheKey(fn CacheKeyFunc) EngineOption {
	return func(e *Engine) { e.Options.CacheKey = fn }
}

// WithCacheModeFunc overrides the static Mode on a per-request basis.
func WithCacheModeFunc(fn CacheModeFunc) EngineOption {
	return func(e *Engine) { e.Options.CacheModeFunc = fn }
}

// WithCacheBust configures best-effort cache-busting deletions performed before lookup.
func WithCacheBust(fn CacheBustFunc) EngineOption {
	return func(e *Engine) { e.Options.CacheBust = fn }
}

// WithCacheOptions sets the opaque options forwarded to the policy
// helper's "with options" derivation after a network fetch.
func WithCacheOptions(opts any) EngineOption {
	return func(e *Engine) { e.Options.CacheOptions = opts }
}

// WithCacheStatusHeaders toggles the x-cache/x-cache-lookup annotations. Default: enabled.
func WithCacheStatusHeaders(enabled bool) EngineOption {
	return func(e *Engine) { e.Options.CacheStatusHeaders = enabled }
}

// WithPolicyCodec sets the function used to reconstitute a CachePolicy
// read back from a Manager. Required before Run is called against a
// populated store.
func WithPolicyCodec(codec PolicyCodec) EngineOption {
	return func(e *Engine) { e.Options.UnmarshalPolicy = codec }
}

// WithManager sets the Storage Contract implementation.
func WithManager(m Manager) EngineOption {
	return func(e *Engine) { e.Manager = m }
}
