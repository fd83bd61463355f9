package common

import (
	"net/http"
	"strconv"
	"time"

	"github.com/l3montree-dev/repoinvite/monitoring"
)

// NewMetricsMiddleware counts the requests which reach the network. Failed round trips
// are recorded with the code "error".
func NewMetricsMiddleware() Middleware {
	return func(req *http.Request, next http.RoundTripper) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)
		monitoring.APIRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

		code := "error"
		if err == nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		monitoring.APIRequestsTotal.WithLabelValues(req.Method, code).Inc()
		return resp, err
	}
}
