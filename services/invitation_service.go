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
	"sync"

	"github.com/google/go-github/v62/github"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/l3montree-dev/repoinvite/utils"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// maximum number of repository listings fetched at the same time
const maxConcurrentListings = 5

type InvitationService struct {
	client shared.GithubClientFacade
}

func NewInvitationService(client shared.GithubClientFacade) *InvitationService {
	return &InvitationService{client: client}
}

func validateInvitationID(id int64) error {
	if id <= 0 {
		return shared.NewValidationError("invalid invitation id %d", id)
	}
	return nil
}

// fetches all pages
func collectInvitations(fetch func(opts *github.ListOptions) ([]*github.RepositoryInvitation, *github.Response, error)) ([]models.RepositoryInvitation, error) {
	opts := &github.ListOptions{Page: 1, PerPage: perPage}

	result := make([]*github.RepositoryInvitation, 0)
	for {
		invitations, resp, err := fetch(opts)
		if err != nil {
			return nil, shared.FromGithubError(err)
		}
		result = append(result, invitations...)
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return utils.Map(result, convertInvitation), nil
}

// GetUserRepositoryInvitations returns the pending invitations addressed to the
// authenticated user.
func (s *InvitationService) GetUserRepositoryInvitations(ctx context.Context) ([]models.RepositoryInvitation, error) {
	invitations, err := collectInvitations(func(opts *github.ListOptions) ([]*github.RepositoryInvitation, *github.Response, error) {
		return s.client.ListUserInvitations(ctx, opts)
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not list user repository invitations")
	}

	slog.Debug("fetched user repository invitations", "count", len(invitations))
	return invitations, nil
}

// GetRepositoryInvitations returns the pending invitations of a repository. Only
// visible to users with admin access to the repository.
func (s *InvitationService) GetRepositoryInvitations(ctx context.Context, owner, repoName string) ([]models.RepositoryInvitation, error) {
	repo := models.NewRepositoryID(owner, repoName)
	if err := shared.ValidateStruct(repo); err != nil {
		return nil, err
	}

	invitations, err := collectInvitations(func(opts *github.ListOptions) ([]*github.RepositoryInvitation, *github.Response, error) {
		return s.client.ListRepositoryInvitations(ctx, owner, repoName, opts)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not list invitations of %s", repo)
	}

	slog.Debug("fetched repository invitations", "repository", repo.String(), "count", len(invitations))
	return invitations, nil
}

// GetRepositoriesInvitations fetches the owner side listings of multiple repositories
// concurrently. The result is keyed by owner/name.
func (s *InvitationService) GetRepositoriesInvitations(ctx context.Context, repos []models.RepositoryID) (map[string][]models.RepositoryInvitation, error) {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentListings)

	var mu sync.Mutex
	result := make(map[string][]models.RepositoryInvitation, len(repos))

	for _, repo := range repos {
		group.Go(func() error {
			invitations, err := s.GetRepositoryInvitations(ctx, repo.Owner, repo.Name)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			result[repo.String()] = invitations
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *InvitationService) AcceptRepositoryInvitation(ctx context.Context, id int64) error {
	if err := validateInvitationID(id); err != nil {
		return err
	}

	if _, err := s.client.AcceptInvitation(ctx, id); err != nil {
		slog.Error("could not accept invitation", "invitationId", id, "err", err)
		return errors.Wrap(shared.FromGithubError(err), "could not accept invitation")
	}

	slog.Info("accepted invitation", "invitationId", id)
	return nil
}

func (s *InvitationService) DeclineRepositoryInvitation(ctx context.Context, id int64) error {
	if err := validateInvitationID(id); err != nil {
		return err
	}

	if _, err := s.client.DeclineInvitation(ctx, id); err != nil {
		slog.Error("could not decline invitation", "invitationId", id, "err", err)
		return errors.Wrap(shared.FromGithubError(err), "could not decline invitation")
	}

	slog.Info("declined invitation", "invitationId", id)
	return nil
}

// DeleteRepositoryInvitation revokes a pending invitation on the owner side.
func (s *InvitationService) DeleteRepositoryInvitation(ctx context.Context, owner, repoName string, id int64) error {
	repo := models.NewRepositoryID(owner, repoName)
	if err := shared.ValidateStruct(repo); err != nil {
		return err
	}
	if err := validateInvitationID(id); err != nil {
		return err
	}

	if _, err := s.client.DeleteRepositoryInvitation(ctx, owner, repoName, id); err != nil {
		slog.Error("could not delete invitation", "repository", repo.String(), "invitationId", id, "err", err)
		return errors.Wrap(shared.FromGithubError(err), "could not delete invitation")
	}

	slog.Info("deleted invitation", "repository", repo.String(), "invitationId", id)
	return nil
}

// UpdateRepositoryInvitation changes the permission a pending invitation grants.
func (s *InvitationService) UpdateRepositoryInvitation(ctx context.Context, owner, repoName string, id int64, permission models.Permission) (*models.RepositoryInvitation, error) {
	repo := models.NewRepositoryID(owner, repoName)
	if err := shared.ValidateStruct(repo); err != nil {
		return nil, err
	}
	if err := validateInvitationID(id); err != nil {
		return nil, err
	}
	permission, err := models.ParsePermission(string(permission))
	if err != nil {
		return nil, shared.NewValidationError("%s", err.Error())
	}

	invitation, _, err := s.client.UpdateRepositoryInvitation(ctx, owner, repoName, id, permission.InvitationValue())
	if err != nil {
		slog.Error("could not update invitation", "repository", repo.String(), "invitationId", id, "err", err)
		return nil, errors.Wrap(shared.FromGithubError(err), "could not update invitation")
	}

	res := convertInvitation(invitation)
	slog.Info("updated invitation", "repository", repo.String(), "invitationId", id, "permission", res.Permissions)
	return &res, nil
}
