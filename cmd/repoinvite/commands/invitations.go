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
	"fmt"
	"strconv"

	"github.com/l3montree-dev/repoinvite/cmd/repoinvite/config"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/services"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/spf13/cobra"
)

func newInvitationService() (*services.InvitationService, error) {
	c, err := config.NewClient()
	if err != nil {
		return nil, err
	}
	return services.NewInvitationService(c), nil
}

func parseInvitationID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewValidationError("invalid invitation id %q", s)
	}
	return id, nil
}

func NewInvitationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invitations",
		Short: "List pending repository invitations",
		Long: `List pending repository invitations.
Without --repo the invitations addressed to the authenticated user are listed.
With --repo the invitations of the given repositories are listed, which requires
admin access to them.`,
		Example: `  repoinvite invitations
  repoinvite invitations --repo alice/demo --repo alice/other`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoArgs, err := cmd.Flags().GetStringArray("repo")
			if err != nil {
				return err
			}

			s, err := newInvitationService()
			if err != nil {
				return err
			}

			if len(repoArgs) == 0 {
				invitations, err := s.GetUserRepositoryInvitations(cmd.Context())
				if err != nil {
					return err
				}
				return printInvitations(cmd.OutOrStdout(), config.RuntimeBaseConfig.Output, invitations)
			}

			repos := make([]models.RepositoryID, 0, len(repoArgs))
			for _, r := range repoArgs {
				repo, err := models.ParseRepositoryID(r)
				if err != nil {
					return err
				}
				repos = append(repos, repo)
			}

			if len(repos) == 1 {
				invitations, err := s.GetRepositoryInvitations(cmd.Context(), repos[0].Owner, repos[0].Name)
				if err != nil {
					return err
				}
				return printInvitations(cmd.OutOrStdout(), config.RuntimeBaseConfig.Output, invitations)
			}

			byRepo, err := s.GetRepositoriesInvitations(cmd.Context(), repos)
			if err != nil {
				return err
			}
			return printRepositoriesInvitations(cmd.OutOrStdout(), config.RuntimeBaseConfig.Output, byRepo)
		},
	}

	cmd.Flags().StringArray("repo", nil, "List the invitations of this repository (owner/repo). Can be repeated")
	return cmd
}

func NewAcceptCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "accept <id>",
		Short:   "Accept a repository invitation addressed to you",
		Example: `  repoinvite accept 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInvitationID(args[0])
			if err != nil {
				return err
			}

			s, err := newInvitationService()
			if err != nil {
				return err
			}

			if err := s.AcceptRepositoryInvitation(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "accepted invitation %d\n", id)
			return err
		},
	}
}

func NewDeclineCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "decline <id>",
		Short:   "Decline a repository invitation addressed to you",
		Example: `  repoinvite decline 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInvitationID(args[0])
			if err != nil {
				return err
			}

			s, err := newInvitationService()
			if err != nil {
				return err
			}

			if err := s.DeclineRepositoryInvitation(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "declined invitation %d\n", id)
			return err
		},
	}
}

func NewRevokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "revoke <owner/repo> <id>",
		Short:   "Revoke a pending invitation of a repository",
		Example: `  repoinvite revoke alice/demo 42`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := models.ParseRepositoryID(args[0])
			if err != nil {
				return err
			}
			id, err := parseInvitationID(args[1])
			if err != nil {
				return err
			}

			s, err := newInvitationService()
			if err != nil {
				return err
			}

			if err := s.DeleteRepositoryInvitation(cmd.Context(), repo.Owner, repo.Name, id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "revoked invitation %d of %s\n", id, repo)
			return err
		},
	}
}

func NewUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update <owner/repo> <id>",
		Short:   "Change the permission of a pending invitation",
		Example: `  repoinvite update alice/demo 42 --permission maintain`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := models.ParseRepositoryID(args[0])
			if err != nil {
				return err
			}
			id, err := parseInvitationID(args[1])
			if err != nil {
				return err
			}
			permission, err := cmd.Flags().GetString("permission")
			if err != nil {
				return err
			}

			s, err := newInvitationService()
			if err != nil {
				return err
			}

			invitation, err := s.UpdateRepositoryInvitation(cmd.Context(), repo.Owner, repo.Name, id, models.Permission(permission))
			if err != nil {
				return err
			}
			return printInvitation(cmd.OutOrStdout(), config.RuntimeBaseConfig.Output, *invitation)
		},
	}

	cmd.Flags().String("permission", "", "The new permission. Options: read, triage, write, maintain, admin")
	_ = cmd.MarkFlagRequired("permission")
	return cmd
}
