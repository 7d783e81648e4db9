package httpcache

import (
	"encoding/json"
	"net/url"
)

// wireParts is the JSON-stable encoding of Parts (url.URL does not
// round-trip through encoding/json cleanly because of its unexported
// Userinfo fields, so it is carried as a string).
type wireParts struct {
	Headers map[string]string `json:"headers"`
	Status  uint16            `json:"status"`
	URL     string            `json:"url"`
	Version string            `json:"version"`
}

// wireEntry is what a Manager actually stores: a Response's head and
// materialized body, plus the policy's own serialized form.
type wireEntry struct {
	Parts  wireParts `json:"parts"`
	Body   []byte    `json:"body"`
	Policy []byte    `json:"policy"`
}

// EncodeEntry materializes resp's body and serializes (resp, policy)
// into the byte form a Manager persists. Storage implementations never
// need to know the shape of Response or CachePolicy; they only ever
// handle the result of EncodeEntry and the input to DecodeEntry.
func EncodeEntry(resp Response, policy CachePolicy) ([]byte, error) {
	body, err := resp.Body.Bytes()
	if err != nil {
		return nil, err
	}
	policyBytes, err := policy.Marshal()
	if err != nil {
		return nil, newError(KindPolicyFailure, err)
	}

	u := ""
	if resp.Parts.URL != nil {
		u = resp.Parts.URL.String()
	}

	entry := wireEntry{
		Parts: wireParts{
			Headers: resp.Parts.Headers,
			Status:  resp.Parts.Status,
			URL:     u,
			Version: resp.Parts.Version.String(),
		},
		Body:   body,
		Policy: policyBytes,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, newError(KindStorageFailure, err)
	}
	return data, nil
}

// DecodeEntry is the inverse of EncodeEntry. codec reconstitutes the
// opaque CachePolicy from its persisted bytes.
func DecodeEntry(data []byte, codec PolicyCodec) (Response, CachePolicy, error) {
	var entry wireEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Response{}, nil, newError(KindStorageFailure, err)
	}

	var parsedURL *url.URL
	var err error
	if entry.Parts.URL != "" {
		if parsedURL, err = url.Parse(entry.Parts.URL); err != nil {
			return Response{}, nil, newError(KindBadHeader, err)
		}
	}

	version, err := ParseHttpVersion(entry.Parts.Version)
	if err != nil {
		return Response{}, nil, err
	}

	resp := Response{
		Parts: Parts{
			Headers: entry.Parts.Headers,
			Status:  entry.Parts.Status,
			URL:     parsedURL,
			Version: version,
		},
		Body: NewBody(entry.Body),
	}

	policy, err := codec(entry.Policy)
	if err != nil {
		return Response{}, nil, newError(KindPolicyFailure, err)
	}

	return resp, policy, nil
}
