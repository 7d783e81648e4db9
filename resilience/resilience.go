// Package resilience wraps the network leg of an httpcache Adapter with
// retry and circuit-breaker policies from failsafe-go, so a transient
// origin failure or a 5xx run doesn't have to be handled by every caller
// of Adapter.RemoteFetch individually.
package resilience

import (
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Config holds the resilience policies applied to each round trip.
// Both fields are optional; a nil policy is simply not installed.
type Config struct {
	// RetryPolicy configures retry behavior. If nil, retry is disabled.
	RetryPolicy retrypolicy.RetryPolicy[*http.Response]

	// CircuitBreaker configures circuit-breaker behavior. If nil, the
	// circuit breaker is disabled.
	CircuitBreaker circuitbreaker.CircuitBreaker[*http.Response]
}

// RetryPolicyBuilder returns a retry policy builder pre-configured with
// sensible defaults for HTTP requests: retry on transport errors and 5xx
// status codes, up to 3 retries, exponential backoff from 100ms to 10s.
// Callers may further tune the builder before calling Build().
func RetryPolicyBuilder() retrypolicy.Builder[*http.Response] {
	return retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(r *http.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode >= 500
		}).
		WithMaxRetries(3).
		WithBackoff(100*time.Millisecond, 10*time.Second)
}

// CircuitBreakerBuilder returns a circuit breaker builder pre-configured
// with sensible defaults for HTTP requests: open after 5 consecutive
// transport errors or 5xx responses, close after 2 consecutive
// successes in the half-open state, with a 60s open delay.
func CircuitBreakerBuilder() circuitbreaker.Builder[*http.Response] {
	return circuitbreaker.NewBuilder[*http.Response]().
		HandleIf(func(r *http.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode >= 500
		}).
		WithFailureThreshold(5).
		WithSuccessThreshold(2).
		WithDelay(60 * time.Second)
}

// Transport wraps Next with the policies in Config, for use as the
// underlying http.RoundTripper behind an adapter/nethttp.Adapter (or
// directly as the Transport field of an adapter/nethttp.Transport).
// Policies compose outermost-first: the retry policy wraps the circuit
// breaker, so every retry attempt passes through (and is counted by)
// the circuit breaker.
type Transport struct {
	Next   http.RoundTripper
	Config Config
}

// New wraps next (http.DefaultTransport if nil) with config's policies.
func New(next http.RoundTripper, config Config) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{Next: next, Config: config}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	do := func() (*http.Response, error) {
		return t.Next.RoundTrip(req)
	}

	var policies []failsafe.Policy[*http.Response]
	if t.Config.RetryPolicy != nil {
		policies = append(policies, t.Config.RetryPolicy)
	}
	if t.Config.CircuitBreaker != nil {
		policies = append(policies, t.Config.CircuitBreaker)
	}
	if len(policies) == 0 {
		return do()
	}

	return failsafe.With(policies...).Get(do)
}

var _ http.RoundTripper = (*Transport)(nil)
