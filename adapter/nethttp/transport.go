package nethttp

import (
	"bytes"
	"io"
	"net/http"

	"github.com/arcbridge/httpcache"
	"github.com/arcbridge/httpcache/policy"
)

// Transport is an http.RoundTripper that drives an httpcache.Engine for
// every request, the net/http equivalent of wiring a Manager and Mode
// directly into client code. It is the convenience counterpart to
// Adapter: where Adapter binds the engine to a single *http.Request,
// Transport binds it to every request issued through an *http.Client.
type Transport struct {
	// Engine drives the cache decision for each request. Required.
	Engine *httpcache.Engine

	// Transport is the underlying RoundTripper used for the network
	// leg. If nil, http.DefaultTransport is used.
	Transport http.RoundTripper
}

// NewTransport returns a Transport running engine over the default
// underlying RoundTripper. If engine has no policy codec configured,
// NewTransport sets it to policy.Unmarshal, the codec matching the
// policies Adapter derives.
func NewTransport(engine *httpcache.Engine) *Transport {
	if engine.Options.UnmarshalPolicy == nil {
		engine.Options.UnmarshalPolicy = policy.Unmarshal
	}
	return &Transport{Engine: engine}
}

// Client returns an *http.Client that routes every request through t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper by running the request through
// the engine and converting the resulting Response back to an
// *http.Response.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	adapter := New(req, t.Transport)

	resp, err := t.Engine.Run(req.Context(), adapter)
	if err != nil {
		return nil, err
	}

	return toHTTPResponse(resp, req)
}

// toHTTPResponse renders an httpcache.Response as an *http.Response
// suitable for returning from RoundTrip.
func toHTTPResponse(resp httpcache.Response, req *http.Request) (*http.Response, error) {
	body, err := resp.Body.Bytes()
	if err != nil {
		return nil, err
	}

	header := make(http.Header, len(resp.Parts.Headers))
	for k, v := range resp.Parts.Headers {
		header.Set(k, v)
	}

	major, minor := 1, 1
	if resp.Parts.Version == httpcache.HTTP2 {
		major, minor = 2, 0
	}

	return &http.Response{
		Status:        http.StatusText(int(resp.Parts.Status)),
		StatusCode:    int(resp.Parts.Status),
		Proto:         resp.Parts.Version.String(),
		ProtoMajor:    major,
		ProtoMinor:    minor,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
