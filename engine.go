package httpcache

import (
	"context"
	"time"
)

// Engine is the Decision Engine (spec.md section 4.5): given a static
// Mode, a Storage Contract Manager and the configured Options, it drives
// a single request's Adapter through mode resolution, cache-key
// derivation, lookup and the hit/miss/conditional branches, returning
// exactly the Response the caller should see.
//
// An Engine is safe for concurrent use across goroutines; it holds no
// mutable per-request state of its own and never locks across a
// suspension point.
type Engine struct {
	Mode    CacheMode
	Manager Manager
	Options Options
}

// NewEngine constructs an Engine with the given static mode and
// storage manager, applying opts in order.
func NewEngine(mode CacheMode, manager Manager, opts ...EngineOption) *Engine {
	e := &Engine{Mode: mode, Manager: manager, Options: DefaultOptions()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the decision engine for one request against adapter.
func (e *Engine) Run(ctx context.Context, adapter Adapter) (Response, error) {
	parts, err := adapter.Parts()
	if err != nil {
		return Response{}, newError(KindAdapterFailure, err)
	}

	mode := e.resolveMode(adapter, parts)

	if !e.cacheable(mode, adapter) {
		GetLogger().Debug("httpcache: bypass", "mode", mode.String(), "method", parts.Method)
		return e.remoteFetch(ctx, adapter, parts, "", mode)
	}

	key := e.Options.createCacheKey(parts, "")

	if e.Options.CacheBust != nil {
		for _, bustKey := range e.Options.CacheBust(parts, e.Options.CacheKey, key) {
			if err := e.Manager.Delete(ctx, bustKey); err != nil {
				GetLogger().Debug("httpcache: cache-bust delete failed", "key", bustKey, "error", err)
			}
		}
	}

	entry, found, err := e.Manager.Get(ctx, key)
	if err != nil {
		return Response{}, newError(KindStorageFailure, err)
	}

	if found {
		return e.hitPath(ctx, adapter, parts, key, entry, mode)
	}
	return e.missPath(ctx, adapter, parts, key, mode)
}

// resolveMode implements Step 1: adapter override, then cache_mode_fn, then the static Mode.
func (e *Engine) resolveMode(adapter Adapter, parts RequestParts) CacheMode {
	if mode, ok := adapter.OverriddenCacheMode(); ok {
		return mode
	}
	if e.Options.CacheModeFunc != nil {
		return e.Options.CacheModeFunc(parts)
	}
	return e.Mode
}

// cacheable implements Step 2.
func (e *Engine) cacheable(mode CacheMode, adapter Adapter) bool {
	if mode == IgnoreRules {
		return true
	}
	return adapter.IsMethodGetHead() && mode != NoStore
}

// hitPath implements Step 5a.
func (e *Engine) hitPath(ctx context.Context, adapter Adapter, parts RequestParts, key string, entry []byte, mode CacheMode) (Response, error) {
	resp, policy, err := DecodeEntry(entry, e.Options.UnmarshalPolicy)
	if err != nil {
		return Response{}, err
	}

	if e.Options.CacheStatusHeaders {
		resp.CacheLookupStatus(Hit)
	}
	if code, ok := resp.WarningCode(); ok && code >= 100 && code < 200 {
		resp.RemoveWarning()
	}

	switch mode {
	case Default:
		return e.conditionalFetch(ctx, adapter, parts, key, resp, policy)

	case NoCache:
		if err := adapter.ForceNoCache(); err != nil {
			return Response{}, newError(KindAdapterFailure, err)
		}
		out, err := e.remoteFetch(ctx, adapter, parts, key, mode)
		if err != nil {
			return Response{}, err
		}
		if e.Options.CacheStatusHeaders {
			out.CacheLookupStatus(Hit)
		}
		return out, nil

	case ForceCache, OnlyIfCached, IgnoreRules:
		resp.AddWarning(resp.Parts.URL, 112, "Disconnected operation")
		if e.Options.CacheStatusHeaders {
			resp.CacheStatus(Hit)
		}
		return resp, nil

	default: // NoStore, Reload
		return e.remoteFetch(ctx, adapter, parts, key, mode)
	}
}

// missPath implements Step 5b.
func (e *Engine) missPath(ctx context.Context, adapter Adapter, parts RequestParts, key string, mode CacheMode) (Response, error) {
	if mode == OnlyIfCached {
		return e.synthesizeGatewayTimeout(parts), nil
	}
	return e.remoteFetch(ctx, adapter, parts, key, mode)
}

// synthesizeGatewayTimeout builds the 504 response for an OnlyIfCached miss (spec.md section 6).
func (e *Engine) synthesizeGatewayTimeout(parts RequestParts) Response {
	resp := NewResponse(Parts{
		Headers: map[string]string{},
		Status:  504,
		URL:     parts.URL,
		Version: HTTP11,
	}, []byte("GatewayTimeout"))

	if e.Options.CacheStatusHeaders {
		resp.CacheStatus(Miss)
		resp.CacheLookupStatus(Miss)
	}
	return resp
}

// remoteFetch implements Step 6: network call, write-through, and
// best-effort GET-sibling invalidation for unstorable non-GET/HEAD results.
func (e *Engine) remoteFetch(ctx context.Context, adapter Adapter, parts RequestParts, key string, mode CacheMode) (Response, error) {
	resp, err := adapter.RemoteFetch(ctx)
	if err != nil {
		return Response{}, newError(KindAdapterFailure, err)
	}

	if e.Options.CacheStatusHeaders {
		resp.CacheStatus(Miss)
		resp.CacheLookupStatus(Miss)
	}

	var policy CachePolicy
	if e.Options.CacheOptions != nil {
		policy, err = adapter.PolicyWithOptions(resp, e.Options.CacheOptions)
	} else {
		policy, err = adapter.Policy(resp)
	}
	if err != nil {
		return Response{}, newError(KindPolicyFailure, err)
	}

	storable := adapter.IsMethodGetHead() && mode != NoStore && resp.Parts.Status == 200 && policy.IsStorable()
	if mode == IgnoreRules && resp.Parts.Status == 200 {
		storable = true
	}

	if storable {
		entry, err := EncodeEntry(resp, policy)
		if err != nil {
			return Response{}, err
		}
		if err := e.Manager.Put(ctx, key, entry); err != nil {
			return Response{}, newError(KindStorageFailure, err)
		}
		return resp, nil
	}

	if !adapter.IsMethodGetHead() {
		siblingKey := e.Options.createCacheKey(parts, "GET")
		if err := e.Manager.Delete(ctx, siblingKey); err != nil {
			GetLogger().Debug("httpcache: unsafe-method invalidation failed", "key", siblingKey, "error", err)
		}
	}
	return resp, nil
}

// conditionalFetch implements Step 7.
func (e *Engine) conditionalFetch(ctx context.Context, adapter Adapter, parts RequestParts, key string, cached Response, policy CachePolicy) (Response, error) {
	now := time.Now()

	before := policy.BeforeRequest(parts, now)
	if before.Fresh {
		cached.UpdateHeadersFromParts(before.FreshParts)
		if e.Options.CacheStatusHeaders {
			cached.CacheStatus(Hit)
			cached.CacheLookupStatus(Hit)
		}
		return cached, nil
	}
	if before.Matches {
		if err := adapter.UpdateHeaders(before.Parts); err != nil {
			return Response{}, newError(KindAdapterFailure, err)
		}
	}

	fresh, err := adapter.RemoteFetch(ctx)
	if err != nil {
		if cached.MustRevalidate() {
			return Response{}, newError(KindAdapterFailure, err)
		}
		cached.AddWarning(parts.URL, 111, "Revalidation failed")
		if e.Options.CacheStatusHeaders {
			cached.CacheStatus(Hit)
		}
		return cached, nil
	}

	status := fresh.Parts.Status
	switch {
	case status >= 500 && status < 600 && cached.MustRevalidate():
		cached.AddWarning(parts.URL, 111, "Revalidation failed")
		if e.Options.CacheStatusHeaders {
			cached.CacheStatus(Hit)
		}
		return cached, nil

	case status == 304:
		after := policy.AfterResponse(parts, fresh.Parts, now)
		cached.UpdateHeadersFromParts(after.Parts)
		if e.Options.CacheStatusHeaders {
			cached.CacheStatus(Hit)
			cached.CacheLookupStatus(Hit)
		}
		entry, err := EncodeEntry(cached, after.Policy)
		if err != nil {
			return Response{}, err
		}
		if err := e.Manager.Put(ctx, key, entry); err != nil {
			return Response{}, newError(KindStorageFailure, err)
		}
		return cached, nil

	case status == 200:
		var newPolicy CachePolicy
		if e.Options.CacheOptions != nil {
			newPolicy, err = adapter.PolicyWithOptions(fresh, e.Options.CacheOptions)
		} else {
			newPolicy, err = adapter.Policy(fresh)
		}
		if err != nil {
			return Response{}, newError(KindPolicyFailure, err)
		}
		if e.Options.CacheStatusHeaders {
			fresh.CacheStatus(Miss)
			fresh.CacheLookupStatus(Hit)
		}
		entry, err := EncodeEntry(fresh, newPolicy)
		if err != nil {
			return Response{}, err
		}
		if err := e.Manager.Put(ctx, key, entry); err != nil {
			return Response{}, newError(KindStorageFailure, err)
		}
		return fresh, nil

	default:
		if e.Options.CacheStatusHeaders {
			cached.CacheStatus(Hit)
		}
		return cached, nil
	}
}
