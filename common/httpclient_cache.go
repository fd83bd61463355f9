package common

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Middleware wraps a round tripper. Middlewares are applied with Chain.
type Middleware func(req *http.Request, next http.RoundTripper) (*http.Response, error)

// Chain returns a round tripper which passes every request through the middlewares
// in the given order before it reaches base.
func Chain(base http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		next := rt
		wrap := middlewares[i]
		rt = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return wrap(req, next)
		})
	}
	return rt
}

func WrapHTTPClient(client *http.Client, wrap Middleware) {
	if client == nil {
		return
	}
	client.Transport = Chain(client.Transport, wrap)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// CacheTransport caches successful GET responses per url and credential.
// Every other method purges the whole cache: invitation and collaborator listings
// have to reflect a mutation right away.
type CacheTransport struct {
	cache *expirable.LRU[string, []byte]
}

func NewCacheTransport(cacheSize int, expiration time.Duration) *CacheTransport {
	cache := expirable.NewLRU[string, []byte](cacheSize, nil, expiration)
	return &CacheTransport{
		cache: cache,
	}
}

func (c *CacheTransport) Len() int {
	return c.cache.Len()
}

func (c *CacheTransport) Handler() Middleware {
	return func(req *http.Request, next http.RoundTripper) (*http.Response, error) {
		if req.Method != http.MethodGet {
			c.purge(req)
			resp, err := next.RoundTrip(req)
			// a listing which ran while the mutation was in flight may be stale
			c.purge(req)
			return resp, err
		}

		key := cacheKey(req)

		if val, ok := c.cache.Get(key); ok {
			slog.Debug("cache hit", "url", req.URL.String())
			resp, err := responseFromBytes(val, req)
			if err != nil {
				slog.Error("failed to read response from cache", "err", err)
				return nil, err
			}
			return resp, nil
		}

		resp, err := next.RoundTrip(req)
		if err != nil {
			return resp, err
		}

		// only cache successful responses
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return resp, nil
		}

		v, err := httputil.DumpResponse(resp, true)
		if err != nil {
			slog.Error("failed to dump response", "err", err)
			return resp, nil
		}

		c.cache.Add(key, v)

		return responseFromBytes(v, req)
	}
}

func (c *CacheTransport) purge(req *http.Request) {
	if c.cache.Len() > 0 {
		slog.Debug("purging response cache", "method", req.Method, "url", req.URL.String())
		c.cache.Purge()
	}
}

func responseFromBytes(v []byte, req *http.Request) (*http.Response, error) {
	r := bufio.NewReader(bytes.NewReader(v))
	resp, err := http.ReadResponse(r, req)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, nil
}

func cacheKey(req *http.Request) string {
	key := req.URL.String()

	// Include Authorization and Cookie headers if present
	auth := req.Header.Get("Authorization")
	cookie := req.Header.Get("Cookie")

	if auth != "" || cookie != "" {
		h := sha256.New()
		h.Write([]byte(key))
		h.Write([]byte(auth))
		h.Write([]byte(cookie))
		return fmt.Sprintf("%x", h.Sum(nil))
	}

	return key
}
