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
	"log/slog"
	"strings"

	"github.com/l3montree-dev/repoinvite/cmd/repoinvite/config"
	"github.com/l3montree-dev/repoinvite/monitoring"
	"github.com/l3montree-dev/repoinvite/scenario"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func NewScenarioCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run the invitation lifecycle between two accounts",
		Long: `Run the invitation lifecycle between two accounts.

The owner invites the invitee to the repository. The invitee declines the first
invitation, the owner revokes the second one and the invitee accepts the third one.
Both listings are checked after every transition and the invitee is removed from the
repository at the end.

The accounts are read from the scenario section of the config file or from the
environment:
  GITHUB_TEST_USER, GITHUB_TEST_PASSWORD                  the invitee
  GITHUB_TEST_COLLAB_USER, GITHUB_TEST_COLLAB_PASSWORD    the owner
  GITHUB_TEST_COLLAB_REPOSITORY                           owner/repo or a repository of the owner`,
		Example: `  repoinvite sandbox &
  GITHUB_TEST_USER=bob GITHUB_TEST_PASSWORD=secret \
  GITHUB_TEST_COLLAB_USER=alice GITHUB_TEST_COLLAB_PASSWORD=secret \
  GITHUB_TEST_COLLAB_REPOSITORY=demo \
  repoinvite --apiUrl http://localhost:8080 scenario`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.ParseScenarioConfig()
			cfg := config.RuntimeScenarioConfig
			if missing := cfg.Missing(); len(missing) > 0 {
				return shared.NewValidationError("missing scenario configuration: %s", strings.Join(missing, ", "))
			}

			repo, err := cfg.RepositoryID()
			if err != nil {
				return err
			}

			owner, err := config.NewBasicAuthClient(cfg.OwnerUser, cfg.OwnerPassword)
			if err != nil {
				return err
			}
			invitee, err := config.NewBasicAuthClient(cfg.InviteeUser, cfg.InviteePassword)
			if err != nil {
				return err
			}

			report, runErr := scenario.Run(cmd.Context(), scenario.Config{Repository: repo, Invitee: cfg.InviteeUser}, owner, invitee)
			if runErr != nil {
				monitoring.Alert("invitation lifecycle failed", runErr, map[string]string{
					"repository": repo.String(),
					"apiUrl":     owner.BaseURL(),
				})
			}

			if metricsFile, _ := cmd.Flags().GetString("metricsFile"); metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
					slog.Error("could not write metrics", "file", metricsFile, "err", err)
				}
			}

			if report != nil {
				if err := printReport(cmd.OutOrStdout(), config.RuntimeBaseConfig.Output, report); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().String("metricsFile", "", "Write the request and step metrics to this file (prometheus text format)")
	return cmd
}
