package httpcache

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HitOrMiss is the value written into the x-cache and x-cache-lookup
// headers. See XCache and XCacheLookup.
type HitOrMiss int

const (
	// Miss indicates the response did not come from (or was not present in) the cache.
	Miss HitOrMiss = iota
	// Hit indicates the response came from (or was present in) the cache.
	Hit
)

func (h HitOrMiss) String() string {
	if h == Hit {
		return "HIT"
	}
	return "MISS"
}

// Header names the engine reads or writes directly.
const (
	XCache       = "x-cache"
	XCacheLookup = "x-cache-lookup"
	headerWarning       = "warning"
	headerCacheControl  = "cache-control"
)

// HttpVersion enumerates the HTTP protocol versions a Response may report.
type HttpVersion int

const (
	HTTP09 HttpVersion = iota
	HTTP10
	HTTP11
	HTTP2
	HTTP3
)

func (v HttpVersion) String() string {
	switch v {
	case HTTP09:
		return "HTTP/0.9"
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2.0"
	case HTTP3:
		return "HTTP/3.0"
	default:
		return "HTTP/unknown"
	}
}

// ParseHttpVersion parses one of the five supported version strings,
// returning a BadVersion error for anything else.
func ParseHttpVersion(s string) (HttpVersion, error) {
	switch s {
	case "HTTP/0.9":
		return HTTP09, nil
	case "HTTP/1.0":
		return HTTP10, nil
	case "HTTP/1.1":
		return HTTP11, nil
	case "HTTP/2.0":
		return HTTP2, nil
	case "HTTP/3.0":
		return HTTP3, nil
	default:
		return 0, newError(KindBadVersion, fmt.Errorf("unsupported http version %q", s))
	}
}

// Parts is the serializable head of a Response: status, version, the
// response URL and a case-sensitive header map (names lowercased on
// store). Its persisted JSON form, with the URL and version written as
// strings, is produced by EncodeEntry (see wireParts in entry.go).
type Parts struct {
	Headers map[string]string `json:"headers"`
	Status  uint16            `json:"status"`
	URL     *url.URL          `json:"url"`
	Version HttpVersion       `json:"version"`
}

// NewParts returns an empty Parts for u with the given status and version.
func NewParts(u *url.URL, status uint16, version HttpVersion) Parts {
	return Parts{Headers: map[string]string{}, Status: status, URL: u, Version: version}
}

// Header returns the value of name (case-insensitive) and whether it was present.
func (p Parts) Header(name string) (string, bool) {
	v, ok := p.Headers[strings.ToLower(name)]
	return v, ok
}

// SetHeader stores value under the lowercased form of name.
func (p Parts) SetHeader(name, value string) {
	p.Headers[strings.ToLower(name)] = value
}

// RequestParts is the serializable head of an outgoing request: method,
// URL and headers. It is what Adapter.Parts and the cache_key/cache_bust
// configuration hooks operate over.
type RequestParts struct {
	Method  string            `json:"method"`
	URL     *url.URL          `json:"url"`
	Headers map[string]string `json:"headers"`
}

// Header returns the value of name (case-insensitive) and whether it was present.
func (p RequestParts) Header(name string) (string, bool) {
	v, ok := p.Headers[strings.ToLower(name)]
	return v, ok
}

// SetHeader stores value under the lowercased form of name.
func (p RequestParts) SetHeader(name, value string) {
	p.Headers[strings.ToLower(name)] = value
}

// Body is the response body: either a fully materialized byte buffer or
// a lazy byte stream. The engine treats it as opaque bytes; a Manager
// must materialize it before persisting an entry.
type Body struct {
	data   []byte
	stream io.Reader
}

// NewBody wraps an already-materialized byte slice.
func NewBody(data []byte) Body {
	return Body{data: data}
}

// NewStreamingBody wraps a lazy reader. Bytes are not read until Bytes is called.
func NewStreamingBody(r io.Reader) Body {
	return Body{stream: r}
}

// Streaming reports whether the body has not yet been materialized.
func (b Body) Streaming() bool {
	return b.stream != nil
}

// Bytes materializes the body, reading the wrapped stream exactly once
// and caching the result for subsequent calls.
func (b *Body) Bytes() ([]byte, error) {
	if b.stream != nil {
		data, err := io.ReadAll(b.stream)
		if err != nil {
			return nil, newError(KindAdapterFailure, err)
		}
		b.data = data
		b.stream = nil
	}
	return b.data, nil
}

// Response is a response head (Parts) paired with its Body.
type Response struct {
	Parts Parts
	Body  Body
}

// NewResponse constructs a Response from parts and a materialized body.
func NewResponse(parts Parts, body []byte) Response {
	return Response{Parts: parts, Body: NewBody(body)}
}

// WarningCode parses the first three characters of the warning header as
// a decimal integer. It returns (0, false) if the header is absent or
// the prefix does not parse.
func (r Response) WarningCode() (int, bool) {
	v, ok := r.Parts.Header(headerWarning)
	if !ok || len(v) < 3 {
		return 0, false
	}
	code, err := strconv.Atoi(v[:3])
	if err != nil {
		return 0, false
	}
	return code, true
}

// AddWarning writes a warning header of the form
// `"{code} {host} \"{message}\" \"{http-date-now}\""`, per RFC 7234 section 5.5.
func (r *Response) AddWarning(u *url.URL, code int, message string) {
	host := u.Hostname()
	if host == "" {
		host = u.Host
	}
	value := fmt.Sprintf("%d %s %q %q", code, host, message, time.Now().UTC().Format(http.TimeFormat))
	r.Parts.SetHeader(headerWarning, value)
}

// RemoveWarning deletes the warning header.
func (r *Response) RemoveWarning() {
	delete(r.Parts.Headers, headerWarning)
}

// UpdateHeaders merges foreign header parts into the response's own
// header map, overwriting any existing keys.
func (r *Response) UpdateHeaders(parts RequestParts) {
	for k, v := range parts.Headers {
		r.Parts.Headers[strings.ToLower(k)] = v
	}
}

// UpdateHeadersFromParts merges another Response's header parts in the
// same way as UpdateHeaders, used when adopting headers returned by the
// policy helper's after_response outcome.
func (r *Response) UpdateHeadersFromParts(parts Parts) {
	for k, v := range parts.Headers {
		r.Parts.Headers[strings.ToLower(k)] = v
	}
}

// MustRevalidate reports whether the cache-control header (lowercased)
// contains the must-revalidate directive.
func (r Response) MustRevalidate() bool {
	v, ok := r.Parts.Header(headerCacheControl)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(v), "must-revalidate")
}

// CacheStatus sets the x-cache header to "HIT" or "MISS".
func (r *Response) CacheStatus(h HitOrMiss) {
	r.Parts.SetHeader(XCache, h.String())
}

// CacheLookupStatus sets the x-cache-lookup header to "HIT" or "MISS".
func (r *Response) CacheLookupStatus(h HitOrMiss) {
	r.Parts.SetHeader(XCacheLookup, h.String())
}
