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

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/l3montree-dev/repoinvite/cmd/repoinvite/config"
	"github.com/l3montree-dev/repoinvite/githubtest"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/scenario"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/l3montree-dev/repoinvite/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// useAccount points the runtime config at the fake server.
func useAccount(t *testing.T, srv *httptest.Server, username, password string) {
	t.Helper()
	prev := config.RuntimeBaseConfig
	t.Cleanup(func() { config.RuntimeBaseConfig = prev })

	config.RuntimeBaseConfig.APIURL = srv.URL
	config.RuntimeBaseConfig.Username = username
	config.RuntimeBaseConfig.Password = password
	config.RuntimeBaseConfig.Token = ""
	config.RuntimeBaseConfig.Output = outputJSON
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestInvitationCommands(t *testing.T) {
	fake, srv := githubtest.NewTestServer(t)
	fake.SeedDemo()

	var invitationID int64

	t.Run("should invite the user with the given permission", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")

		out, err := execute(t, NewInviteCommand(), "alice/demo", "bob", "--permission", "read")
		require.NoError(t, err)

		inv := decode[models.RepositoryInvitation](t, out)
		assert.Equal(t, "bob", inv.Invitee.Login)
		assert.Equal(t, "alice/demo", inv.Repository.FullName)
		assert.Equal(t, models.PermissionRead, inv.Permissions)
		invitationID = inv.ID
	})

	t.Run("should reject an unknown permission before calling the api", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")

		_, err := execute(t, NewInviteCommand(), "alice/demo", "bob", "--permission", "owner")
		assert.Error(t, err)
		assert.Len(t, fake.PendingInvitations(), 1)
	})

	t.Run("should list the invitation for the invitee", func(t *testing.T) {
		useAccount(t, srv, "bob", "secret")

		out, err := execute(t, NewInvitationsCommand())
		require.NoError(t, err)

		invitations := decode[[]models.RepositoryInvitation](t, out)
		require.Len(t, invitations, 1)
		assert.Equal(t, invitationID, invitations[0].ID)
	})

	t.Run("should list the invitations of multiple repositories for the owner", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")
		require.NoError(t, fake.AddRepository("alice", "other", true))

		out, err := execute(t, NewInvitationsCommand(), "--repo", "alice/demo", "--repo", "alice/other")
		require.NoError(t, err)

		byRepo := decode[map[string][]models.RepositoryInvitation](t, out)
		assert.Len(t, byRepo["alice/demo"], 1)
		assert.Empty(t, byRepo["alice/other"])
	})

	t.Run("should update the permission", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")

		out, err := execute(t, NewUpdateCommand(), "alice/demo", strconv.FormatInt(invitationID, 10), "--permission", "maintain")
		require.NoError(t, err)
		assert.Equal(t, models.PermissionMaintain, decode[models.RepositoryInvitation](t, out).Permissions)
	})

	t.Run("should require the permission flag for updates", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")

		_, err := execute(t, NewUpdateCommand(), "alice/demo", strconv.FormatInt(invitationID, 10))
		assert.Error(t, err)
	})

	t.Run("should reject invalid invitation ids", func(t *testing.T) {
		useAccount(t, srv, "bob", "secret")

		for _, id := range []string{"abc", "0", "99999999999999999999"} {
			_, err := execute(t, NewAcceptCommand(), id)
			assert.ErrorIs(t, err, shared.ErrValidation, id)
		}
	})

	t.Run("should accept the invitation", func(t *testing.T) {
		useAccount(t, srv, "bob", "secret")

		out, err := execute(t, NewAcceptCommand(), strconv.FormatInt(invitationID, 10))
		require.NoError(t, err)
		assert.Contains(t, out, "accepted invitation")
		assert.Empty(t, fake.PendingInvitations())
	})

	t.Run("should list bob as collaborator", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")

		out, err := execute(t, NewCollaboratorsCommand(), "alice/demo")
		require.NoError(t, err)

		users := decode[[]models.User](t, out)
		assert.Contains(t, utils.Map(users, func(u models.User) string { return u.Login }), "bob")
	})

	t.Run("should not create an invitation for an existing collaborator", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")

		out, err := execute(t, NewInviteCommand(), "alice/demo", "bob")
		require.NoError(t, err)
		assert.Contains(t, out, "already is a collaborator")
	})

	t.Run("should remove the collaborator", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")

		_, err := execute(t, NewRemoveCommand(), "alice/demo", "bob")
		require.NoError(t, err)
		_, ok := fake.Collaborator("alice/demo", "bob")
		assert.False(t, ok)
	})

	t.Run("should decline and revoke invitations", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")
		_, err := execute(t, NewInviteCommand(), "alice/demo", "bob")
		require.NoError(t, err)
		_, err = execute(t, NewInviteCommand(), "alice/other", "bob")
		require.NoError(t, err)
		ids := fake.PendingInvitations()
		require.Len(t, ids, 2)

		_, err = execute(t, NewRevokeCommand(), "alice/demo", strconv.FormatInt(ids[0], 10))
		require.NoError(t, err)

		useAccount(t, srv, "bob", "secret")
		_, err = execute(t, NewDeclineCommand(), strconv.FormatInt(ids[1], 10))
		require.NoError(t, err)

		assert.Empty(t, fake.PendingInvitations())
	})

	t.Run("should surface typed errors", func(t *testing.T) {
		useAccount(t, srv, "bob", "wrong")

		_, err := execute(t, NewInvitationsCommand())
		assert.ErrorIs(t, err, shared.ErrAuthentication)
	})
}

func TestScenarioCommand(t *testing.T) {
	fake, srv := githubtest.NewTestServer(t)
	fake.SeedDemo()
	useAccount(t, srv, "", "")

	t.Run("should name the missing configuration", func(t *testing.T) {
		viper.Reset()
		require.NoError(t, config.BindScenarioEnv())
		t.Setenv("GITHUB_TEST_USER", "")
		t.Setenv("GITHUB_TEST_COLLAB_REPOSITORY", "")

		_, err := execute(t, NewScenarioCommand())
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Contains(t, err.Error(), "GITHUB_TEST_COLLAB_REPOSITORY")
	})

	t.Run("should run the lifecycle against the configured accounts", func(t *testing.T) {
		viper.Reset()
		t.Setenv("GITHUB_TEST_USER", "bob")
		t.Setenv("GITHUB_TEST_PASSWORD", "secret")
		t.Setenv("GITHUB_TEST_COLLAB_USER", "alice")
		t.Setenv("GITHUB_TEST_COLLAB_PASSWORD", "secret")
		t.Setenv("GITHUB_TEST_COLLAB_REPOSITORY", "demo")
		require.NoError(t, config.BindScenarioEnv())

		metricsFile := filepath.Join(t.TempDir(), "repoinvite.prom")
		out, err := execute(t, NewScenarioCommand(), "--metricsFile", metricsFile)
		require.NoError(t, err)

		report := decode[scenario.Report](t, out)
		assert.True(t, report.Passed())
		assert.Equal(t, "alice/demo", report.Repository)

		metrics, err := os.ReadFile(metricsFile)
		require.NoError(t, err)
		assert.Contains(t, string(metrics), `repoinvite_scenario_runs_total{status="passed"}`)
		assert.Contains(t, string(metrics), "repoinvite_api_requests_total")
	})
}

func TestLoginCommand(t *testing.T) {
	keyring.MockInit()

	fake, srv := githubtest.NewTestServer(t)
	fake.SeedDemo()
	require.NoError(t, fake.AddToken("bob", "ghp_bob"))

	t.Run("should store a verified password", func(t *testing.T) {
		useAccount(t, srv, "alice", "secret")

		_, err := execute(t, NewLoginCommand())
		require.NoError(t, err)

		secret, err := config.GetSecretFromKeyring(srv.URL, "alice")
		require.NoError(t, err)
		assert.Equal(t, "secret", secret)
	})

	t.Run("should read the token from stdin", func(t *testing.T) {
		useAccount(t, srv, "", "")

		cmd := NewLoginCommand()
		cmd.SetIn(strings.NewReader("ghp_bob\n"))
		cmd.SetArgs([]string{"--password-stdin"})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		require.NoError(t, cmd.ExecuteContext(context.Background()))

		secret, err := config.GetSecretFromKeyring(srv.URL, config.TokenKeyringUser)
		require.NoError(t, err)
		assert.Equal(t, "ghp_bob", secret)
	})

	t.Run("should not store wrong credentials", func(t *testing.T) {
		useAccount(t, srv, "bob", "wrong")

		_, err := execute(t, NewLoginCommand())
		assert.ErrorIs(t, err, shared.ErrAuthentication)

		_, err = config.GetSecretFromKeyring(srv.URL, "bob")
		assert.ErrorIs(t, err, keyring.ErrNotFound)
	})

	t.Run("should require credentials", func(t *testing.T) {
		useAccount(t, srv, "", "")

		_, err := execute(t, NewLoginCommand())
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("should remove the stored secret", func(t *testing.T) {
		useAccount(t, srv, "alice", "")

		_, err := execute(t, NewLoginCommand(), "--remove")
		require.NoError(t, err)

		_, err = config.GetSecretFromKeyring(srv.URL, "alice")
		assert.ErrorIs(t, err, keyring.ErrNotFound)
	})
}

func TestSeedSandbox(t *testing.T) {
	t.Run("should seed the demo data without arguments", func(t *testing.T) {
		s := githubtest.NewServer()
		require.NoError(t, seedSandbox(s, nil, nil))

		require.NoError(t, s.AddToken("alice", "t"))
		require.NoError(t, s.AddToken("bob", "t2"))
	})

	t.Run("should create the given users and repositories", func(t *testing.T) {
		s := githubtest.NewServer()
		require.NoError(t, seedSandbox(s, []string{"carol:pw", "dave:pw"}, []string{"carol/project"}))

		assert.Error(t, s.AddToken("alice", "t"))
		assert.NoError(t, s.AddToken("dave", "t"))
	})

	t.Run("should reject malformed input", func(t *testing.T) {
		s := githubtest.NewServer()
		assert.ErrorIs(t, seedSandbox(s, []string{"carol"}, nil), shared.ErrValidation)
		assert.Error(t, seedSandbox(s, []string{"carol:pw"}, []string{"dave/project"}))
	})
}

func TestPrintTables(t *testing.T) {
	t.Run("should render a failed report with the error", func(t *testing.T) {
		out := &bytes.Buffer{}
		report := &scenario.Report{
			Repository: "alice/demo",
			Invitee:    "bob",
			Steps: []scenario.Step{
				{Name: "check preconditions", Status: scenario.StatusPassed},
				{Name: "invite", Status: scenario.StatusFailed, Error: "could not add collaborator"},
			},
		}

		require.NoError(t, printReport(out, outputTable, report))
		assert.Contains(t, out.String(), "alice/demo invites bob")
		assert.Contains(t, out.String(), "check preconditions")
		assert.Contains(t, out.String(), "could not add collaborator")
	})

	t.Run("should say so if there are no invitations", func(t *testing.T) {
		out := &bytes.Buffer{}
		require.NoError(t, printInvitations(out, outputTable, nil))
		assert.Equal(t, "No pending invitations\n", out.String())
	})

	t.Run("should render one section per repository", func(t *testing.T) {
		out := &bytes.Buffer{}
		inv := models.RepositoryInvitation{ID: 7, Repository: models.Repository{FullName: "alice/demo"}}
		require.NoError(t, printRepositoriesInvitations(out, outputTable, map[string][]models.RepositoryInvitation{
			"alice/other": nil,
			"alice/demo":  {inv},
		}))

		s := out.String()
		assert.Less(t, strings.Index(s, "alice/demo"), strings.Index(s, "alice/other"))
		assert.Contains(t, s, "No pending invitations")
	})

	t.Run("should print yaml", func(t *testing.T) {
		out := &bytes.Buffer{}
		require.NoError(t, printCollaborators(out, outputYAML, []models.User{{ID: 1, Login: "bob"}}))
		assert.Contains(t, out.String(), "- id: 1\n")
		assert.Contains(t, out.String(), "  login: bob\n")
	})
}
