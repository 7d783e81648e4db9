// Package httpcache implements a caching decision engine for HTTP
// requests. It is a reusable component inserted between an HTTP client
// and the network that decides, per request, whether to serve a stored
// response, conditionally revalidate it, fetch fresh, or refuse service,
// following the caching rules of RFC 7234/9111 as surfaced through a
// pluggable cache-semantics policy helper (see the policy subpackage).
//
// The engine is polymorphic over two small collaborators: a Manager
// that stores (Response, CachePolicy) pairs keyed by cache key, and an
// Adapter that represents an in-flight request against a concrete HTTP
// client. Neither transport nor storage backend is implemented here;
// see the store, adapter and policy subpackages for concrete
// implementations.
package httpcache
