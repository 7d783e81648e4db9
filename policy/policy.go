// Package policy is the default CachePolicy implementation: it derives
// freshness and validator rules from the request/response Cache-Control
// directives using go.rtnl.ai/x/httpcc, the same directive parser the
// rest of the example pack's net/http-based caches rely on.
package policy

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.rtnl.ai/x/httpcc"

	"github.com/arcbridge/httpcache"
)

// understoodStatusCodes mirrors RFC 9111 section 5.2.2.3's definition of
// "understood" status codes for the must-understand directive.
var understoodStatusCodes = map[uint16]bool{
	200: true, 203: true, 204: true, 300: true, 301: true,
	308: true, 404: true, 405: true, 410: true, 414: true, 501: true,
}

// Policy is the default httpcache.CachePolicy: a snapshot of the request
// and response headers involved in a cache write, plus the time it was
// stored, re-parsed into httpcc directives on every load.
type Policy struct {
	Status      uint16
	RespHeaders map[string]string
	ReqHeaders  map[string]string
	ReqMethod   string
	StoredAt    time.Time

	respcc *httpcc.ResponseDirective
	reqcc  *httpcc.RequestDirective
}

// New derives a Policy from the request that produced resp, stamped with now.
func New(req httpcache.RequestParts, resp httpcache.Response, now time.Time) (*Policy, error) {
	return newPolicy(req, resp.Parts, now)
}

func newPolicy(req httpcache.RequestParts, respParts httpcache.Parts, now time.Time) (*Policy, error) {
	p := &Policy{
		Status:      respParts.Status,
		RespHeaders: cloneLower(respParts.Headers),
		ReqHeaders:  cloneLower(req.Headers),
		ReqMethod:   req.Method,
		StoredAt:    now,
	}
	p.parse()
	return p, nil
}

// parse (re)derives the httpcc directives from the stored header snapshot.
// httpcc only accepts concrete net/http types, so a minimal synthetic
// *http.Request/*http.Response carries the snapshot through its parser.
func (p *Policy) parse() {
	httpResp := &http.Response{Header: toHTTPHeader(p.RespHeaders)}
	httpReq := &http.Request{Header: toHTTPHeader(p.ReqHeaders), Method: p.ReqMethod}

	if cc, err := httpcc.Response(httpResp); err == nil {
		p.respcc = cc
	} else {
		p.respcc = &httpcc.ResponseDirective{}
	}
	if cc, err := httpcc.Request(httpReq); err == nil {
		p.reqcc = cc
	} else {
		p.reqcc = &httpcc.RequestDirective{}
	}
}

func toHTTPHeader(h map[string]string) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		out.Set(k, v)
	}
	return out
}

func cloneLower(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = v
	}
	return out
}

// IsStorable implements httpcache.CachePolicy.
func (p *Policy) IsStorable() bool {
	if p.respcc.NoStore() || p.reqcc.NoStore() {
		return false
	}
	if p.Status != 200 {
		return false
	}
	if p.respcc.MustUnderstand() && !understoodStatusCodes[p.Status] {
		return false
	}
	if p.respcc.Private() {
		return false
	}
	_, hasSMaxAge := p.respcc.SMaxAge()
	_, hasMaxAge := p.respcc.MaxAge()
	return p.respcc.Public() || p.respcc.MustRevalidate() || hasSMaxAge || hasMaxAge
}

// freshnessRemaining returns how long the response remains fresh as of
// now, or a negative duration if it has no explicit freshness lifetime.
func (p *Policy) freshnessRemaining(now time.Time) time.Duration {
	maxAge, ok := p.respcc.MaxAge()
	if sMaxAge, hasS := p.respcc.SMaxAge(); hasS {
		maxAge, ok = sMaxAge, true
	}
	if !ok {
		return -1
	}
	age := now.Sub(p.StoredAt)
	return maxAge - age
}

// BeforeRequest implements httpcache.CachePolicy. A no-cache directive in
// the stored response's or the incoming request's Cache-Control header
// makes the entry stale regardless of its remaining lifetime.
func (p *Policy) BeforeRequest(req httpcache.RequestParts, now time.Time) httpcache.BeforeRequestResult {
	respCC := strings.ToLower(p.RespHeaders["cache-control"])
	reqCC := strings.ToLower(req.Headers["cache-control"])
	noCache := strings.Contains(respCC, "no-cache") || strings.Contains(reqCC, "no-cache")
	if !noCache && p.freshnessRemaining(now) > 0 {
		age := now.Sub(p.StoredAt)
		if age < 0 {
			age = 0
		}
		freshParts := httpcache.Parts{Headers: map[string]string{
			"age": strconv.Itoa(int(age.Seconds())),
		}}
		return httpcache.BeforeRequestResult{Fresh: true, FreshParts: freshParts}
	}

	validators := httpcache.RequestParts{Headers: map[string]string{}}
	if etag, ok := p.RespHeaders["etag"]; ok {
		validators.Headers["if-none-match"] = etag
	}
	if lm, ok := p.RespHeaders["last-modified"]; ok {
		validators.Headers["if-modified-since"] = lm
	}
	return httpcache.BeforeRequestResult{Fresh: false, Matches: len(validators.Headers) > 0, Parts: validators}
}

// AfterResponse implements httpcache.CachePolicy. It merges the
// conditional response's headers over the stored snapshot and
// re-derives a Policy stamped at now, regardless of whether the
// upstream status was 304 or 200 (the engine already decided which
// response body to keep; this only refreshes validators and lifetime).
func (p *Policy) AfterResponse(req httpcache.RequestParts, conditional httpcache.Parts, now time.Time) httpcache.AfterResponseResult {
	merged := cloneLower(p.RespHeaders)
	for k, v := range conditional.Headers {
		merged[strings.ToLower(k)] = v
	}

	refreshed, err := newPolicy(req, httpcache.Parts{Headers: merged, Status: p.Status}, now)
	if err != nil {
		refreshed = p
	}
	return httpcache.AfterResponseResult{
		Modified: conditional.Status != 304,
		Policy:   refreshed,
		Parts:    httpcache.Parts{Headers: merged},
	}
}

// wirePolicy is the JSON-stable encoding of a Policy's snapshot.
type wirePolicy struct {
	Status      uint16            `json:"status"`
	RespHeaders map[string]string `json:"resp_headers"`
	ReqHeaders  map[string]string `json:"req_headers"`
	ReqMethod   string            `json:"req_method"`
	StoredAt    time.Time         `json:"stored_at"`
}

// Marshal implements httpcache.CachePolicy.
func (p *Policy) Marshal() ([]byte, error) {
	return json.Marshal(wirePolicy{
		Status:      p.Status,
		RespHeaders: p.RespHeaders,
		ReqHeaders:  p.ReqHeaders,
		ReqMethod:   p.ReqMethod,
		StoredAt:    p.StoredAt,
	})
}

// Unmarshal reconstitutes a Policy previously persisted via Marshal. It
// satisfies httpcache.PolicyCodec and is the codec most callers pass to
// httpcache.WithPolicyCodec.
func Unmarshal(data []byte) (httpcache.CachePolicy, error) {
	var w wirePolicy
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	p := &Policy{
		Status:      w.Status,
		RespHeaders: w.RespHeaders,
		ReqHeaders:  w.ReqHeaders,
		ReqMethod:   w.ReqMethod,
		StoredAt:    w.StoredAt,
	}
	p.parse()
	return p, nil
}

// Factory adapts New to the httpcache.PolicyFactory signature, stamping
// the policy at the moment it is called.
func Factory(req httpcache.RequestParts, resp httpcache.Response) (httpcache.CachePolicy, error) {
	return New(req, resp, time.Now())
}
