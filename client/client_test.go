package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/l3montree-dev/repoinvite/common"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingServer struct {
	*httptest.Server
	mu      sync.Mutex
	headers []http.Header
	hits    atomic.Int32
}

func (r *recordingServer) lastHeader() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.headers) == 0 {
		return nil
	}
	return r.headers[len(r.headers)-1]
}

func newRecordingServer(t *testing.T) *recordingServer {
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rs.hits.Add(1)
		rs.mu.Lock()
		rs.headers = append(rs.headers, req.Header.Clone())
		rs.mu.Unlock()

		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func TestNew(t *testing.T) {
	t.Run("should default to the public api", func(t *testing.T) {
		c, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultAPIURL, c.BaseURL())
		assert.Empty(t, c.Identity())
	})

	t.Run("should normalize the base url", func(t *testing.T) {
		c, err := New(WithBaseURL("localhost:8080/api"))
		require.NoError(t, err)
		assert.Equal(t, "https://localhost:8080/api/", c.BaseURL())
	})

	t.Run("should add the enterprise api path", func(t *testing.T) {
		c, err := New(WithEnterpriseURL("https://git.example.com"))
		require.NoError(t, err)
		assert.Equal(t, "https://git.example.com/api/v3/", c.BaseURL())
	})

	t.Run("should reject negative timeouts", func(t *testing.T) {
		_, err := New(WithTimeouts(-time.Second, 0))
		assert.Error(t, err)
	})

	t.Run("should keep the defaults for zero timeouts", func(t *testing.T) {
		c, err := New(WithTimeouts(0, 0))
		require.NoError(t, err)
		assert.Equal(t, DefaultConnectTimeout, c.connectTimeout)
		assert.Equal(t, DefaultRequestTimeout, c.requestTimeout)
	})
}

func TestCredentials(t *testing.T) {
	t.Run("should reject empty credentials", func(t *testing.T) {
		c, err := New()
		require.NoError(t, err)

		assert.ErrorIs(t, c.SetCredentials("", "secret"), shared.ErrValidation)
		assert.ErrorIs(t, c.SetCredentials("bob", ""), shared.ErrValidation)
		assert.ErrorIs(t, c.SetOAuth2Token(""), shared.ErrValidation)
		assert.ErrorIs(t, c.SetAppInstallation(0, 1, []byte("key")), shared.ErrValidation)
		assert.Empty(t, c.Identity())
	})

	t.Run("should send basic auth", func(t *testing.T) {
		srv := newRecordingServer(t)
		c, err := New(WithBaseURL(srv.URL), WithUserAgent("repoinvite-test"))
		require.NoError(t, err)
		require.NoError(t, c.SetCredentials("bob", "secret"))

		_, _, err = c.ListUserInvitations(context.Background(), nil)
		require.NoError(t, err)

		req := &http.Request{Header: srv.lastHeader()}
		username, password, ok := req.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bob", username)
		assert.Equal(t, "secret", password)
		assert.Equal(t, "repoinvite-test", req.Header.Get("User-Agent"))
		assert.Equal(t, "bob", c.Identity())
	})

	t.Run("should send the token as bearer", func(t *testing.T) {
		srv := newRecordingServer(t)
		c, err := New(WithBaseURL(srv.URL))
		require.NoError(t, err)
		require.NoError(t, c.SetOAuth2Token("ghp_abc"))

		_, err = c.AcceptInvitation(context.Background(), 1)
		require.NoError(t, err)

		assert.Equal(t, "Bearer ghp_abc", srv.lastHeader().Get("Authorization"))
		assert.Equal(t, "token", c.Identity())
	})

	t.Run("should replace the previous credential", func(t *testing.T) {
		srv := newRecordingServer(t)
		c, err := New(WithBaseURL(srv.URL))
		require.NoError(t, err)
		require.NoError(t, c.SetOAuth2Token("ghp_abc"))
		require.NoError(t, c.SetCredentials("alice", "secret"))

		_, err = c.DeclineInvitation(context.Background(), 1)
		require.NoError(t, err)

		req := &http.Request{Header: srv.lastHeader()}
		username, _, ok := req.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", username)
	})
}

func TestCache(t *testing.T) {
	t.Run("should serve repeated listings from the cache until a mutation happens", func(t *testing.T) {
		srv := newRecordingServer(t)
		c, err := New(WithBaseURL(srv.URL), WithCache(10, time.Minute))
		require.NoError(t, err)
		require.NoError(t, c.SetCredentials("bob", "secret"))
		ctx := context.Background()

		_, _, err = c.ListUserInvitations(ctx, nil)
		require.NoError(t, err)
		_, _, err = c.ListUserInvitations(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(1), srv.hits.Load())

		_, err = c.AcceptInvitation(ctx, 1)
		require.NoError(t, err)

		_, _, err = c.ListUserInvitations(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(3), srv.hits.Load())
	})

	t.Run("should drop the listings of every client sharing the cache on a mutation", func(t *testing.T) {
		srv := newRecordingServer(t)
		cache := common.NewCacheTransport(10, time.Minute)
		owner, err := New(WithBaseURL(srv.URL), WithSharedCache(cache))
		require.NoError(t, err)
		require.NoError(t, owner.SetCredentials("alice", "secret"))
		invitee, err := New(WithBaseURL(srv.URL), WithSharedCache(cache))
		require.NoError(t, err)
		require.NoError(t, invitee.SetCredentials("bob", "secret"))
		ctx := context.Background()

		_, _, err = invitee.ListUserInvitations(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.Len())

		_, err = owner.DeleteRepositoryInvitation(ctx, "alice", "demo", 1)
		require.NoError(t, err)
		assert.Equal(t, 0, cache.Len())

		_, _, err = invitee.ListUserInvitations(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(3), srv.hits.Load())
	})

	t.Run("should require a positive ttl", func(t *testing.T) {
		_, err := New(WithCache(10, 0))
		assert.Error(t, err)

		c, err := New(WithCache(0, 0))
		require.NoError(t, err)
		assert.Nil(t, c.cache)
	})
}

func TestTimeouts(t *testing.T) {
	t.Run("should abort requests which take longer than the request timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			select {
			case <-req.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)

		c, err := New(WithBaseURL(srv.URL), WithTimeouts(time.Second, 50*time.Millisecond))
		require.NoError(t, err)
		require.NoError(t, c.SetCredentials("bob", "secret"))

		start := time.Now()
		_, _, err = c.ListUserInvitations(context.Background(), nil)
		assert.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestTracing(t *testing.T) {
	t.Run("should pass requests through the instrumented transport", func(t *testing.T) {
		srv := newRecordingServer(t)
		c, err := New(WithBaseURL(srv.URL), WithTracing(), WithRateLimit(100, 1))
		require.NoError(t, err)
		require.NoError(t, c.SetCredentials("bob", "secret"))

		_, _, err = c.ListRepositoryInvitations(context.Background(), "alice", "demo", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(1), srv.hits.Load())
	})
}
