package shared

import (
	"context"

	"github.com/google/go-github/v62/github"
)

// wrapper around the github package - which provides only the methods
// we need
type GithubClientFacade interface {
	AddCollaborator(ctx context.Context, owner string, repo string, user string, opts *github.RepositoryAddCollaboratorOptions) (*github.CollaboratorInvitation, *github.Response, error)
	RemoveCollaborator(ctx context.Context, owner string, repo string, user string) (*github.Response, error)
	ListCollaborators(ctx context.Context, owner string, repo string, opts *github.ListCollaboratorsOptions) ([]*github.User, *github.Response, error)
	IsCollaborator(ctx context.Context, owner string, repo string, user string) (bool, *github.Response, error)

	ListUserInvitations(ctx context.Context, opts *github.ListOptions) ([]*github.RepositoryInvitation, *github.Response, error)
	AcceptInvitation(ctx context.Context, invitationID int64) (*github.Response, error)
	DeclineInvitation(ctx context.Context, invitationID int64) (*github.Response, error)

	ListRepositoryInvitations(ctx context.Context, owner string, repo string, opts *github.ListOptions) ([]*github.RepositoryInvitation, *github.Response, error)
	DeleteRepositoryInvitation(ctx context.Context, owner string, repo string, invitationID int64) (*github.Response, error)
	UpdateRepositoryInvitation(ctx context.Context, owner string, repo string, invitationID int64, permissions string) (*github.RepositoryInvitation, *github.Response, error)
}
