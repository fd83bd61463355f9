// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package client

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v62/github"
	"github.com/l3montree-dev/repoinvite/common"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	DefaultAPIURL         = "https://api.github.com/"
	DefaultConnectTimeout = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	UserAgent             = "repoinvite"
)

// Client holds the api endpoint and the credential used for every request.
// A client carries exactly one identity - use one client per user.
type Client struct {
	apiURL         *url.URL
	enterpriseURL  string
	userAgent      string
	connectTimeout time.Duration
	requestTimeout time.Duration

	rateLimit      float64
	rateLimitBurst int
	cache          *common.CacheTransport
	tracing        bool
	baseTransport  http.RoundTripper

	// transport is the shared chain below the authentication layer
	transport http.RoundTripper

	mu       sync.RWMutex
	gh       *github.Client
	identity string
}

var _ shared.GithubClientFacade = &Client{}

// New creates an unauthenticated client. Use SetCredentials, SetOAuth2Token or
// SetAppInstallation to attach a credential.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		userAgent:      UserAgent,
		connectTimeout: DefaultConnectTimeout,
		requestTimeout: DefaultRequestTimeout,
	}
	apiURL, err := url.Parse(DefaultAPIURL)
	if err != nil {
		return nil, err
	}
	c.apiURL = apiURL

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.transport = c.buildTransport()

	gh, err := c.newGithubClient(c.transport)
	if err != nil {
		return nil, err
	}
	c.gh = gh
	return c, nil
}

func (c *Client) buildTransport() http.RoundTripper {
	base := c.baseTransport
	if base == nil {
		dialer := &net.Dialer{
			Timeout:   c.connectTimeout,
			KeepAlive: 30 * time.Second,
		}
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   c.connectTimeout,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}

	if c.tracing {
		base = common.NewTracingTransport(base)
	}

	middlewares := make([]common.Middleware, 0, 3)
	if c.cache != nil {
		middlewares = append(middlewares, c.cache.Handler())
	}
	if c.rateLimit > 0 {
		middlewares = append(middlewares, common.NewRateLimitMiddleware(c.rateLimit, c.rateLimitBurst))
	}
	// cache hits never reach the metrics
	middlewares = append(middlewares, common.NewMetricsMiddleware())

	return common.Chain(base, middlewares...)
}

func (c *Client) newGithubClient(transport http.RoundTripper) (*github.Client, error) {
	gh := github.NewClient(&http.Client{
		Transport: transport,
		Timeout:   c.requestTimeout,
	})
	gh.UserAgent = c.userAgent

	if c.enterpriseURL != "" {
		return gh.WithEnterpriseURLs(c.enterpriseURL, c.enterpriseURL)
	}

	u := *c.apiURL
	gh.BaseURL = &u
	return gh, nil
}

func (c *Client) swap(transport http.RoundTripper, identity string) error {
	gh, err := c.newGithubClient(transport)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gh = gh
	c.identity = identity
	return nil
}

// SetCredentials attaches HTTP basic authentication to all subsequent requests.
func (c *Client) SetCredentials(username, password string) error {
	if username == "" || password == "" {
		return shared.NewValidationError("username and password must be provided")
	}

	tp := &github.BasicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: c.transport,
	}
	slog.Debug("using basic authentication", "username", username)
	return c.swap(tp, username)
}

// SetOAuth2Token attaches a bearer token (personal access token or oauth token) to all
// subsequent requests.
func (c *Client) SetOAuth2Token(token string) error {
	if token == "" {
		return shared.NewValidationError("token must be provided")
	}

	tp := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		Base:   c.transport,
	}
	slog.Debug("using token authentication")
	return c.swap(tp, "token")
}

// SetAppInstallation authenticates as a github app installation. Only owner side
// operations are available with this credential.
func (c *Client) SetAppInstallation(appID, installationID int64, privateKeyPEM []byte) error {
	if appID <= 0 || installationID <= 0 || len(privateKeyPEM) == 0 {
		return shared.NewValidationError("app id, installation id and private key must be provided")
	}

	itr, err := ghinstallation.New(c.transport, appID, installationID, privateKeyPEM)
	if err != nil {
		return errors.Wrap(err, "could not create installation transport")
	}
	if c.enterpriseURL != "" {
		itr.BaseURL = strings.TrimSuffix(c.BaseURL(), "/")
	} else if c.apiURL.String() != DefaultAPIURL {
		itr.BaseURL = strings.TrimSuffix(c.apiURL.String(), "/")
	}

	slog.Debug("using github app installation", "appId", appID, "installationId", installationID)
	return c.swap(itr, "app")
}

// Identity returns the username of the basic auth credential, "token", "app" or an
// empty string for anonymous clients.
func (c *Client) Identity() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// BaseURL returns the api root all requests are sent to.
func (c *Client) BaseURL() string {
	return c.github().BaseURL.String()
}

func (c *Client) github() *github.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gh
}

func (c *Client) AddCollaborator(ctx context.Context, owner string, repo string, user string, opts *github.RepositoryAddCollaboratorOptions) (*github.CollaboratorInvitation, *github.Response, error) {
	return c.github().Repositories.AddCollaborator(ctx, owner, repo, user, opts)
}

func (c *Client) RemoveCollaborator(ctx context.Context, owner string, repo string, user string) (*github.Response, error) {
	return c.github().Repositories.RemoveCollaborator(ctx, owner, repo, user)
}

func (c *Client) ListCollaborators(ctx context.Context, owner string, repo string, opts *github.ListCollaboratorsOptions) ([]*github.User, *github.Response, error) {
	return c.github().Repositories.ListCollaborators(ctx, owner, repo, opts)
}

func (c *Client) IsCollaborator(ctx context.Context, owner string, repo string, user string) (bool, *github.Response, error) {
	return c.github().Repositories.IsCollaborator(ctx, owner, repo, user)
}

func (c *Client) ListUserInvitations(ctx context.Context, opts *github.ListOptions) ([]*github.RepositoryInvitation, *github.Response, error) {
	return c.github().Users.ListInvitations(ctx, opts)
}

func (c *Client) AcceptInvitation(ctx context.Context, invitationID int64) (*github.Response, error) {
	return c.github().Users.AcceptInvitation(ctx, invitationID)
}

func (c *Client) DeclineInvitation(ctx context.Context, invitationID int64) (*github.Response, error) {
	return c.github().Users.DeclineInvitation(ctx, invitationID)
}

func (c *Client) ListRepositoryInvitations(ctx context.Context, owner string, repo string, opts *github.ListOptions) ([]*github.RepositoryInvitation, *github.Response, error) {
	return c.github().Repositories.ListInvitations(ctx, owner, repo, opts)
}

func (c *Client) DeleteRepositoryInvitation(ctx context.Context, owner string, repo string, invitationID int64) (*github.Response, error) {
	return c.github().Repositories.DeleteInvitation(ctx, owner, repo, invitationID)
}

func (c *Client) UpdateRepositoryInvitation(ctx context.Context, owner string, repo string, invitationID int64, permissions string) (*github.RepositoryInvitation, *github.Response, error) {
	return c.github().Repositories.UpdateInvitation(ctx, owner, repo, invitationID, permissions)
}
