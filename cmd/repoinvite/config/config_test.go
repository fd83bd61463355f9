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

package config

import (
	"context"
	"testing"
	"time"

	"github.com/l3montree-dev/repoinvite/githubtest"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/scenario"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestParseBaseConfig(t *testing.T) {
	t.Run("should sanitize the provided apiUrl like adding the protocol", func(t *testing.T) {
		viper.Reset()
		viper.Set("apiUrl", "git.example.com/api/v3/")

		require.NoError(t, ParseBaseConfig())
		assert.Equal(t, "https://git.example.com/api/v3", RuntimeBaseConfig.APIURL)
	})

	t.Run("should parse durations", func(t *testing.T) {
		viper.Reset()
		viper.Set("timeout", "45s")
		viper.Set("connectTimeout", "2s")

		require.NoError(t, ParseBaseConfig())
		assert.Equal(t, 45*time.Second, RuntimeBaseConfig.Timeout)
		assert.Equal(t, 2*time.Second, RuntimeBaseConfig.ConnectTimeout)
	})

	t.Run("should reject negative values", func(t *testing.T) {
		viper.Reset()
		viper.Set("rateLimit", -1)

		assert.ErrorIs(t, ParseBaseConfig(), shared.ErrValidation)
	})

	t.Run("should only accept known output formats", func(t *testing.T) {
		viper.Reset()
		viper.Set("output", "yaml")
		require.NoError(t, ParseBaseConfig())

		viper.Set("output", "xml")
		assert.ErrorIs(t, ParseBaseConfig(), shared.ErrValidation)
	})

	t.Run("should require a cache ttl together with a cache size", func(t *testing.T) {
		viper.Reset()
		viper.Set("cacheSize", 100)
		assert.ErrorIs(t, ParseBaseConfig(), shared.ErrValidation)

		viper.Set("cacheTtl", "1m")
		require.NoError(t, ParseBaseConfig())
		assert.Equal(t, time.Minute, RuntimeBaseConfig.CacheTTL)
	})

	t.Run("should require a valid otlp endpoint", func(t *testing.T) {
		viper.Reset()
		viper.Set("otlpEndpoint", "not an url")

		assert.ErrorIs(t, ParseBaseConfig(), shared.ErrValidation)
	})
}

func TestScenarioConfig(t *testing.T) {
	t.Run("should read the variables of the live test", func(t *testing.T) {
		viper.Reset()
		t.Setenv("GITHUB_TEST_USER", "bob")
		t.Setenv("GITHUB_TEST_PASSWORD", "secret")
		t.Setenv("GITHUB_TEST_COLLAB_USER", "alice")
		t.Setenv("GITHUB_TEST_COLLAB_PASSWORD", "secret")
		t.Setenv("GITHUB_TEST_COLLAB_REPOSITORY", "demo")
		require.NoError(t, BindScenarioEnv())

		ParseScenarioConfig()
		assert.Empty(t, RuntimeScenarioConfig.Missing())

		repo, err := RuntimeScenarioConfig.RepositoryID()
		require.NoError(t, err)
		assert.Equal(t, models.NewRepositoryID("alice", "demo"), repo)
	})

	t.Run("should prefer the prefixed variables", func(t *testing.T) {
		viper.Reset()
		t.Setenv("GITHUB_TEST_COLLAB_REPOSITORY", "demo")
		t.Setenv("REPOINVITE_SCENARIO_REPOSITORY", "org/other")
		require.NoError(t, BindScenarioEnv())

		ParseScenarioConfig()
		repo, err := RuntimeScenarioConfig.RepositoryID()
		require.NoError(t, err)
		assert.Equal(t, models.NewRepositoryID("org", "other"), repo)
	})

	t.Run("should name the missing keys", func(t *testing.T) {
		cfg := ScenarioConfig{InviteeUser: "bob", OwnerUser: "alice"}
		assert.Equal(t, []string{
			"scenario.inviteePassword (GITHUB_TEST_PASSWORD)",
			"scenario.ownerPassword (GITHUB_TEST_COLLAB_PASSWORD)",
			"scenario.repository (GITHUB_TEST_COLLAB_REPOSITORY)",
		}, cfg.Missing())
	})
}

func TestNewClient(t *testing.T) {
	keyring.MockInit()

	fake, srv := githubtest.NewTestServer(t)
	fake.SeedDemo()
	require.NoError(t, fake.AddToken("bob", "ghp_bob"))

	listInvitations := func(t *testing.T) error {
		c, err := NewClient()
		require.NoError(t, err)
		_, _, err = c.ListUserInvitations(context.Background(), nil)
		return shared.FromGithubError(err)
	}

	t.Run("should use the configured password", func(t *testing.T) {
		RuntimeBaseConfig = baseConfig{APIURL: srv.URL, Username: "bob", Password: "secret"}
		assert.NoError(t, listInvitations(t))
	})

	t.Run("should use the configured token", func(t *testing.T) {
		RuntimeBaseConfig = baseConfig{APIURL: srv.URL, Token: "ghp_bob"}
		assert.NoError(t, listInvitations(t))
	})

	t.Run("should fall back to the keyring", func(t *testing.T) {
		RuntimeBaseConfig = baseConfig{APIURL: srv.URL, Username: "alice"}

		_, err := NewClient()
		assert.Error(t, err)

		require.NoError(t, StoreSecretInKeyring(srv.URL+"/", "alice", "secret"))
		assert.NoError(t, listInvitations(t))
		require.NoError(t, DeleteSecretFromKeyring(srv.URL, "alice"))
	})

	t.Run("should use a stored token without username", func(t *testing.T) {
		RuntimeBaseConfig = baseConfig{APIURL: srv.URL}
		require.NoError(t, StoreSecretInKeyring(srv.URL, TokenKeyringUser, "ghp_bob"))
		t.Cleanup(func() { _ = DeleteSecretFromKeyring(srv.URL, TokenKeyringUser) })

		assert.NoError(t, listInvitations(t))
	})

	t.Run("should stay anonymous without credentials", func(t *testing.T) {
		RuntimeBaseConfig = baseConfig{APIURL: srv.URL}
		assert.ErrorIs(t, listInvitations(t), shared.ErrAuthentication)
	})
}

func TestNewBasicAuthClient(t *testing.T) {
	t.Run("should let both scenario accounts share the response cache", func(t *testing.T) {
		fake, srv := githubtest.NewTestServer(t)
		fake.SeedDemo()
		RuntimeBaseConfig = baseConfig{APIURL: srv.URL, CacheSize: 100, CacheTTL: time.Minute}
		t.Cleanup(func() { RuntimeBaseConfig = baseConfig{} })

		owner, err := NewBasicAuthClient("alice", "secret")
		require.NoError(t, err)
		invitee, err := NewBasicAuthClient("bob", "secret")
		require.NoError(t, err)
		assert.Same(t, RuntimeBaseConfig.sharedResponseCache(), RuntimeBaseConfig.sharedResponseCache())

		report, err := scenario.Run(context.Background(), scenario.Config{
			Repository: models.NewRepositoryID("alice", "demo"),
			Invitee:    "bob",
		}, owner, invitee)
		require.NoError(t, err)
		assert.True(t, report.Passed())
	})

	t.Run("should not cache without a ttl", func(t *testing.T) {
		assert.Nil(t, baseConfig{CacheSize: 100}.sharedResponseCache())
	})
}
