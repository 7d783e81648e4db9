package httpcache

import "time"

// CachePolicy is the opaque value produced by an external cache-semantics
// policy helper from a request/response pair (spec.md section 3 and
// section 9 "Policy helper"). The engine never introspects a
// CachePolicy's internal state; it only calls the three operations
// below and persists the value (via Marshal, reconstituted with the
// PolicyCodec configured on Options) alongside the Response it governs.
//
// A concrete implementation is provided by the policy subpackage; this
// interface exists so the engine stays decoupled from any one freshness
// algorithm.
type CachePolicy interface {
	// IsStorable reports whether the response this policy was derived
	// from may be written to the cache at all.
	IsStorable() bool

	// BeforeRequest decides what to do before issuing a request for a
	// resource this policy already governs.
	BeforeRequest(req RequestParts, now time.Time) BeforeRequestResult

	// AfterResponse reconciles a conditional response (e.g. 304) with
	// the policy, returning the policy and header parts to adopt going
	// forward.
	AfterResponse(req RequestParts, conditional Parts, now time.Time) AfterResponseResult

	// Marshal serializes the policy for storage alongside its Response.
	Marshal() ([]byte, error)
}

// BeforeRequestResult is the outcome of CachePolicy.BeforeRequest.
//
// When Fresh is true, FreshParts carries response-side header values
// (e.g. a refreshed Age) to merge into the cached response before
// serving it without contacting the origin.
//
// When Fresh is false the cached response is stale: if Matches is true,
// Parts carries request-side validator headers (If-None-Match,
// If-Modified-Since, ...) that should be merged into the outgoing
// request before it is issued.
type BeforeRequestResult struct {
	Fresh      bool
	Matches    bool
	FreshParts Parts
	Parts      RequestParts
}

// AfterResponseResult is the outcome of CachePolicy.AfterResponse. Modified
// distinguishes the two Rust http-cache-semantics outcomes
// (Modified/NotModified); in both cases Policy and Parts are adopted by
// the caller in the same way, so a single struct suffices.
type AfterResponseResult struct {
	Modified bool
	Policy   CachePolicy
	Parts    Parts
}

// PolicyFactory derives a CachePolicy from a request/response pair,
// optionally with caller-supplied options. This mirrors the Adapter's
// Policy/PolicyWithOptions methods but is expressed as a standalone
// function type so it can be composed independently of the Adapter
// interface; policy.Factory has this signature.
type PolicyFactory func(req RequestParts, resp Response) (CachePolicy, error)

// PolicyCodec reconstitutes a CachePolicy previously persisted via
// CachePolicy.Marshal. It must be supplied on Options so the engine can
// reload a stored entry's policy without knowing its concrete type.
type PolicyCodec func(data []byte) (CachePolicy, error)
