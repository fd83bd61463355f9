package common

import (
	"net/http"

	"golang.org/x/time/rate"
)

// NewRateLimitMiddleware blocks every request until the limiter allows it or the
// request context is done.
func NewRateLimitMiddleware(requestsPerSecond float64, burst int) Middleware {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)

	return func(req *http.Request, next http.RoundTripper) (*http.Response, error) {
		if err := limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
		return next.RoundTrip(req)
	}
}
