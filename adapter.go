package httpcache

import "context"

// Adapter is the Client Adapter Contract: a view of an in-flight
// request against a concrete HTTP client. The engine is polymorphic
// over this interface so it never depends on a specific client library;
// see the adapter subpackage for a net/http-backed implementation.
type Adapter interface {
	// OverriddenCacheMode returns a per-request cache mode override,
	// taking precedence over any other mode resolution (spec.md 4.5
	// Step 1). It returns (_, false) when no override applies.
	OverriddenCacheMode() (CacheMode, bool)

	// IsMethodGetHead reports whether the request method is GET or HEAD.
	IsMethodGetHead() bool

	// Method returns the request method.
	Method() string

	// Parts returns the outgoing request's serializable head.
	Parts() (RequestParts, error)

	// Policy derives a CachePolicy for response using this request,
	// with default policy options.
	Policy(response Response) (CachePolicy, error)

	// PolicyWithOptions derives a CachePolicy for response using this
	// request and caller-supplied options.
	PolicyWithOptions(response Response, options any) (CachePolicy, error)

	// UpdateHeaders merges revalidation header hints (validators) into
	// the outgoing request.
	UpdateHeaders(parts RequestParts) error

	// ForceNoCache mutates the outgoing request so that upstream
	// intermediaries will not serve a cached reply.
	ForceNoCache() error

	// RemoteFetch performs the network call and returns the result.
	RemoteFetch(ctx context.Context) (Response, error)
}
