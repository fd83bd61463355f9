package client

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/l3montree-dev/repoinvite/common"
	"github.com/pkg/errors"
)

type Option func(c *Client) error

// WithBaseURL sets the api root, e.g. https://api.github.com or the url of a fake server.
func WithBaseURL(apiURL string) Option {
	return func(c *Client) error {
		if apiURL == "" {
			return nil
		}
		if !strings.Contains(apiURL, "://") {
			apiURL = "https://" + apiURL
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return errors.Wrap(err, "invalid api url")
		}
		// go-github resolves relative paths against the base url
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.apiURL = u
		return nil
	}
}

// WithEnterpriseURL targets a GitHub Enterprise Server instance. The /api/v3/ suffix
// is added if missing.
func WithEnterpriseURL(hostURL string) Option {
	return func(c *Client) error {
		c.enterpriseURL = hostURL
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		if userAgent != "" {
			c.userAgent = userAgent
		}
		return nil
	}
}

// WithTimeouts sets the connect timeout (dial and tls handshake) and the overall
// request timeout. Zero keeps the default.
func WithTimeouts(connect, request time.Duration) Option {
	return func(c *Client) error {
		if connect < 0 || request < 0 {
			return errors.New("timeouts must not be negative")
		}
		if connect > 0 {
			c.connectTimeout = connect
		}
		if request > 0 {
			c.requestTimeout = request
		}
		return nil
	}
}

// WithRateLimit limits the number of requests this client sends per second.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) error {
		if requestsPerSecond < 0 {
			return errors.New("rate limit must not be negative")
		}
		c.rateLimit = requestsPerSecond
		c.rateLimitBurst = burst
		return nil
	}
}

// WithCache caches GET responses for ttl. Any mutating request purges the cache.
// Clients of different users in one process should share a cache through
// WithSharedCache, otherwise a mutation by one user leaves the listings of the
// other user stale.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) error {
		if size <= 0 {
			return nil
		}
		if ttl <= 0 {
			return errors.New("cache ttl must be positive")
		}
		c.cache = common.NewCacheTransport(size, ttl)
		return nil
	}
}

// WithSharedCache uses a cache which other clients of the same api use as well.
// A mutation through any of them purges the listings of all of them.
func WithSharedCache(cache *common.CacheTransport) Option {
	return func(c *Client) error {
		c.cache = cache
		return nil
	}
}

// WithTracing wraps the transport with an otel http instrumentation.
func WithTracing() Option {
	return func(c *Client) error {
		c.tracing = true
		return nil
	}
}

// WithTransport replaces the default transport - mostly used by tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) error {
		c.baseTransport = rt
		return nil
	}
}
