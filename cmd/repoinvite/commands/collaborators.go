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

	"github.com/l3montree-dev/repoinvite/cmd/repoinvite/config"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/services"
	"github.com/spf13/cobra"
)

func newCollaboratorService() (*services.CollaboratorService, error) {
	c, err := config.NewClient()
	if err != nil {
		return nil, err
	}
	return services.NewCollaboratorService(c), nil
}

func NewInviteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite <owner/repo> <user>",
		Short: "Invite a user to collaborate on a repository",
		Long: `Invite a user to collaborate on a repository.
If the user already is a collaborator, no invitation is created.`,
		Example: `  repoinvite invite alice/demo bob
  repoinvite invite alice/demo bob --permission maintain`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := models.ParseRepositoryID(args[0])
			if err != nil {
				return err
			}

			var permission models.Permission
			if p, _ := cmd.Flags().GetString("permission"); p != "" {
				if permission, err = models.ParsePermission(p); err != nil {
					return err
				}
			}

			s, err := newCollaboratorService()
			if err != nil {
				return err
			}

			invitation, err := s.AddCollaboratorWithPermission(cmd.Context(), repo, args[1], permission)
			if err != nil {
				return err
			}
			if invitation == nil {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s already is a collaborator of %s\n", args[1], repo)
				return err
			}
			return printInvitation(cmd.OutOrStdout(), config.RuntimeBaseConfig.Output, *invitation)
		},
	}

	cmd.Flags().String("permission", "", "The permission to grant. Options: read, triage, write, maintain, admin (default write)")
	return cmd
}

func NewRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <owner/repo> <user>",
		Short:   "Remove a collaborator from a repository",
		Example: `  repoinvite remove alice/demo bob`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := models.ParseRepositoryID(args[0])
			if err != nil {
				return err
			}

			s, err := newCollaboratorService()
			if err != nil {
				return err
			}

			if err := s.RemoveCollaborator(cmd.Context(), repo, args[1]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s\n", args[1], repo)
			return err
		},
	}
}

func NewCollaboratorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "collaborators <owner/repo>",
		Short:   "List the collaborators of a repository",
		Example: `  repoinvite collaborators alice/demo -o json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := models.ParseRepositoryID(args[0])
			if err != nil {
				return err
			}

			s, err := newCollaboratorService()
			if err != nil {
				return err
			}

			users, err := s.ListCollaborators(cmd.Context(), repo)
			if err != nil {
				return err
			}
			return printCollaborators(cmd.OutOrStdout(), config.RuntimeBaseConfig.Output, users)
		},
	}
}
