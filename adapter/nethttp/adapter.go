// Package nethttp is the reference httpcache.Adapter implementation: it
// drives the decision engine from a *net/http.Request and performs the
// network leg through an underlying http.RoundTripper, the same
// arrangement the teacher's Transport uses directly.
package nethttp

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/arcbridge/httpcache"
	"github.com/arcbridge/httpcache/policy"
)

type ctxKey int

const modeOverrideKey ctxKey = iota

// WithMode returns a context carrying a cache-mode override, honored by
// Adapter.OverriddenCacheMode ahead of any cache_mode_fn or static mode.
func WithMode(ctx context.Context, mode httpcache.CacheMode) context.Context {
	return context.WithValue(ctx, modeOverrideKey, mode)
}

// Adapter is an httpcache.Adapter bound to a single *http.Request,
// forwarded over transport when the engine calls RemoteFetch.
type Adapter struct {
	Request   *http.Request
	Transport http.RoundTripper
}

// New returns an Adapter for req, forwarded over transport (http.DefaultTransport if nil).
func New(req *http.Request, transport http.RoundTripper) *Adapter {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Adapter{Request: req, Transport: transport}
}

// OverriddenCacheMode implements httpcache.Adapter. It honors a
// WithMode-tagged context first, then the only-if-cached Cache-Control
// request directive (RFC 9111 section 5.2.1.7).
func (a *Adapter) OverriddenCacheMode() (httpcache.CacheMode, bool) {
	if mode, ok := a.Request.Context().Value(modeOverrideKey).(httpcache.CacheMode); ok {
		return mode, true
	}
	if strings.Contains(strings.ToLower(a.Request.Header.Get("Cache-Control")), "only-if-cached") {
		return httpcache.OnlyIfCached, true
	}
	return 0, false
}

// IsMethodGetHead implements httpcache.Adapter.
func (a *Adapter) IsMethodGetHead() bool {
	return a.Request.Method == http.MethodGet || a.Request.Method == http.MethodHead
}

// Method implements httpcache.Adapter.
func (a *Adapter) Method() string { return a.Request.Method }

// Parts implements httpcache.Adapter.
func (a *Adapter) Parts() (httpcache.RequestParts, error) {
	return httpcache.RequestParts{
		Method:  a.Request.Method,
		URL:     a.Request.URL,
		Headers: lowerHeader(a.Request.Header),
	}, nil
}

// Policy implements httpcache.Adapter using the default policy subpackage.
func (a *Adapter) Policy(resp httpcache.Response) (httpcache.CachePolicy, error) {
	parts, err := a.Parts()
	if err != nil {
		return nil, err
	}
	return policy.Factory(parts, resp)
}

// PolicyWithOptions implements httpcache.Adapter. The default policy has
// no caller-tunable options, so options is accepted for contract
// compliance and otherwise ignored.
func (a *Adapter) PolicyWithOptions(resp httpcache.Response, _ any) (httpcache.CachePolicy, error) {
	return a.Policy(resp)
}

// UpdateHeaders implements httpcache.Adapter, merging validator headers into the outgoing request.
func (a *Adapter) UpdateHeaders(parts httpcache.RequestParts) error {
	for k, v := range parts.Headers {
		a.Request.Header.Set(k, v)
	}
	return nil
}

// ForceNoCache implements httpcache.Adapter.
func (a *Adapter) ForceNoCache() error {
	a.Request.Header.Set("Cache-Control", "no-cache")
	return nil
}

// RemoteFetch implements httpcache.Adapter.
func (a *Adapter) RemoteFetch(ctx context.Context) (httpcache.Response, error) {
	req := a.Request.Clone(ctx)
	resp, err := a.Transport.RoundTrip(req)
	if err != nil {
		return httpcache.Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return httpcache.Response{}, err
	}

	version, err := httpcache.ParseHttpVersion(resp.Proto)
	if err != nil {
		version = httpcache.HTTP11
	}

	parts := httpcache.Parts{
		Headers: lowerHeader(resp.Header),
		Status:  uint16(resp.StatusCode),
		URL:     resp.Request.URL,
		Version: version,
	}
	return httpcache.NewResponse(parts, body), nil
}

func lowerHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[strings.ToLower(k)] = h.Get(k)
	}
	return out
}
