package githubtest

import (
	"fmt"

	"github.com/google/go-github/v62/github"
)

// the caller has to hold the lock
func (s *Server) toUser(base string, u *user) *github.User {
	if u == nil {
		return nil
	}
	apiUser := base + "users/" + u.login
	return &github.User{
		Login:             github.String(u.login),
		ID:                github.Int64(u.id),
		NodeID:            github.String(u.nodeID),
		AvatarURL:         github.String(fmt.Sprintf("%savatars/u/%d", base, u.id)),
		HTMLURL:           github.String(base + u.login),
		URL:               github.String(apiUser),
		EventsURL:         github.String(apiUser + "/events{/privacy}"),
		FollowersURL:      github.String(apiUser + "/followers"),
		FollowingURL:      github.String(apiUser + "/following{/other_user}"),
		GistsURL:          github.String(apiUser + "/gists{/gist_id}"),
		OrganizationsURL:  github.String(apiUser + "/orgs"),
		ReceivedEventsURL: github.String(apiUser + "/received_events"),
		ReposURL:          github.String(apiUser + "/repos"),
		StarredURL:        github.String(apiUser + "/starred{/owner}{/repo}"),
		SubscriptionsURL:  github.String(apiUser + "/subscriptions"),
		Type:              github.String("User"),
		SiteAdmin:         github.Bool(false),
	}
}

// the caller has to hold the lock
func (s *Server) toRepository(base string, r *repository) *github.Repository {
	if r == nil {
		return nil
	}
	return &github.Repository{
		ID:       github.Int64(r.id),
		NodeID:   github.String(r.nodeID),
		Name:     github.String(r.name),
		FullName: github.String(r.fullName()),
		Owner:    s.toUser(base, s.users[r.owner]),
		Private:  github.Bool(r.private),
		HTMLURL:  github.String(base + r.fullName()),
		URL:      github.String(base + "repos/" + r.fullName()),
	}
}

// the caller has to hold the lock
func (s *Server) toInvitation(base string, inv *invitation) *github.RepositoryInvitation {
	return &github.RepositoryInvitation{
		ID:          github.Int64(inv.id),
		Repo:        s.toRepository(base, s.repos[inv.repo]),
		Invitee:     s.toUser(base, s.users[inv.invitee]),
		Inviter:     s.toUser(base, s.users[inv.inviter]),
		Permissions: github.String(inv.permissions),
		CreatedAt:   &github.Timestamp{Time: inv.createdAt},
		URL:         github.String(fmt.Sprintf("%suser/repository_invitations/%d", base, inv.id)),
		HTMLURL:     github.String(fmt.Sprintf("%s%s/invitations", base, inv.repo)),
	}
}
