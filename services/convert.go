package services

import (
	"github.com/google/go-github/v62/github"
	"github.com/l3montree-dev/repoinvite/models"
)

func convertUser(u *github.User) models.User {
	if u == nil {
		return models.User{}
	}
	return models.User{
		ID:                u.GetID(),
		Login:             u.GetLogin(),
		NodeID:            u.GetNodeID(),
		AvatarURL:         u.GetAvatarURL(),
		EventsURL:         u.GetEventsURL(),
		FollowersURL:      u.GetFollowersURL(),
		FollowingURL:      u.GetFollowingURL(),
		GistsURL:          u.GetGistsURL(),
		HTMLURL:           u.GetHTMLURL(),
		OrganizationsURL:  u.GetOrganizationsURL(),
		ReceivedEventsURL: u.GetReceivedEventsURL(),
		ReposURL:          u.GetReposURL(),
		StarredURL:        u.GetStarredURL(),
		SubscriptionsURL:  u.GetSubscriptionsURL(),
		Type:              u.GetType(),
		URL:               u.GetURL(),
		SiteAdmin:         u.GetSiteAdmin(),
	}
}

func convertRepository(r *github.Repository) models.Repository {
	if r == nil {
		return models.Repository{}
	}
	return models.Repository{
		ID:       r.GetID(),
		NodeID:   r.GetNodeID(),
		Name:     r.GetName(),
		FullName: r.GetFullName(),
		Owner:    convertUser(r.GetOwner()),
		Private:  r.GetPrivate(),
		HTMLURL:  r.GetHTMLURL(),
		URL:      r.GetURL(),
	}
}

func convertPermission(p string) models.Permission {
	if parsed, err := models.ParsePermission(p); err == nil {
		return parsed
	}
	// keep whatever the server sent
	return models.Permission(p)
}

func convertInvitation(inv *github.RepositoryInvitation) models.RepositoryInvitation {
	return models.RepositoryInvitation{
		ID:          inv.GetID(),
		CreatedAt:   inv.GetCreatedAt().Time,
		HTMLURL:     inv.GetHTMLURL(),
		URL:         inv.GetURL(),
		Invitee:     convertUser(inv.GetInvitee()),
		Inviter:     convertUser(inv.GetInviter()),
		Repository:  convertRepository(inv.GetRepo()),
		Permissions: convertPermission(inv.GetPermissions()),
	}
}

func convertCollaboratorInvitation(inv *github.CollaboratorInvitation) models.RepositoryInvitation {
	return models.RepositoryInvitation{
		ID:          inv.GetID(),
		CreatedAt:   inv.GetCreatedAt().Time,
		HTMLURL:     inv.GetHTMLURL(),
		URL:         inv.GetURL(),
		Invitee:     convertUser(inv.GetInvitee()),
		Inviter:     convertUser(inv.GetInviter()),
		Repository:  convertRepository(inv.GetRepo()),
		Permissions: convertPermission(inv.GetPermissions()),
	}
}
