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

package services

import (
	"context"
	"log/slog"

	"github.com/google/go-github/v62/github"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/l3montree-dev/repoinvite/utils"
	"github.com/pkg/errors"
)

const perPage = 100

type CollaboratorService struct {
	client shared.GithubClientFacade
}

func NewCollaboratorService(client shared.GithubClientFacade) *CollaboratorService {
	return &CollaboratorService{client: client}
}

type collaboratorInput struct {
	Repository models.RepositoryID
	Username   string `validate:"required,excludesall=/ "`
}

// AddCollaborator invites the user to the repository. The server creates a pending
// invitation for the user.
func (s *CollaboratorService) AddCollaborator(ctx context.Context, repo models.RepositoryID, username string) error {
	_, err := s.AddCollaboratorWithPermission(ctx, repo, username, "")
	return err
}

// AddCollaboratorWithPermission invites the user with the given permission. An empty
// permission uses the server default (write). The created invitation is returned - it
// is nil if the user already was a collaborator.
func (s *CollaboratorService) AddCollaboratorWithPermission(ctx context.Context, repo models.RepositoryID, username string, permission models.Permission) (*models.RepositoryInvitation, error) {
	if err := shared.ValidateStruct(collaboratorInput{Repository: repo, Username: username}); err != nil {
		return nil, err
	}

	var opts *github.RepositoryAddCollaboratorOptions
	if permission != "" {
		parsed, err := models.ParsePermission(string(permission))
		if err != nil {
			return nil, shared.NewValidationError("%s", err.Error())
		}
		opts = &github.RepositoryAddCollaboratorOptions{Permission: parsed.CollaboratorValue()}
	}

	invitation, _, err := s.client.AddCollaborator(ctx, repo.Owner, repo.Name, username, opts)
	if err != nil {
		slog.Error("could not add collaborator", "repository", repo.String(), "username", username, "err", err)
		return nil, errors.Wrap(shared.FromGithubError(err), "could not add collaborator")
	}

	// 204 leaves the decoded invitation empty
	if invitation == nil || invitation.ID == nil {
		slog.Info("user already is a collaborator", "repository", repo.String(), "username", username)
		return nil, nil
	}

	res := convertCollaboratorInvitation(invitation)
	slog.Info("invited collaborator", "repository", repo.String(), "username", username, "invitationId", res.ID)
	return &res, nil
}

// RemoveCollaborator revokes the access of the user. Removing a user which is not a
// collaborator is not an error.
func (s *CollaboratorService) RemoveCollaborator(ctx context.Context, repo models.RepositoryID, username string) error {
	if err := shared.ValidateStruct(collaboratorInput{Repository: repo, Username: username}); err != nil {
		return err
	}

	_, err := s.client.RemoveCollaborator(ctx, repo.Owner, repo.Name, username)
	if err != nil {
		err = shared.FromGithubError(err)
		if errors.Is(err, shared.ErrNotFound) {
			slog.Debug("collaborator already removed", "repository", repo.String(), "username", username)
			return nil
		}
		slog.Error("could not remove collaborator", "repository", repo.String(), "username", username, "err", err)
		return errors.Wrap(err, "could not remove collaborator")
	}

	slog.Info("removed collaborator", "repository", repo.String(), "username", username)
	return nil
}

// ListCollaborators fetches all pages of the collaborator listing.
func (s *CollaboratorService) ListCollaborators(ctx context.Context, repo models.RepositoryID) ([]models.User, error) {
	if err := shared.ValidateStruct(repo); err != nil {
		return nil, err
	}

	opts := &github.ListCollaboratorsOptions{
		ListOptions: github.ListOptions{Page: 1, PerPage: perPage},
	}

	result := make([]*github.User, 0)
	for {
		users, resp, err := s.client.ListCollaborators(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, errors.Wrap(shared.FromGithubError(err), "could not list collaborators")
		}
		result = append(result, users...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return utils.Map(result, convertUser), nil
}

func (s *CollaboratorService) IsCollaborator(ctx context.Context, repo models.RepositoryID, username string) (bool, error) {
	if err := shared.ValidateStruct(collaboratorInput{Repository: repo, Username: username}); err != nil {
		return false, err
	}

	ok, _, err := s.client.IsCollaborator(ctx, repo.Owner, repo.Name, username)
	if err != nil {
		return false, errors.Wrap(shared.FromGithubError(err), "could not check collaborator")
	}
	return ok, nil
}
