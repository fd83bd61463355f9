package scenario

import (
	"strings"

	"github.com/l3montree-dev/repoinvite/models"
	"github.com/pkg/errors"
)

// CheckInvitation verifies that the invitation is fully populated, targets repo and
// is addressed to invitee.
func CheckInvitation(inv models.RepositoryInvitation, repo models.RepositoryID, invitee string) error {
	problems := make([]string, 0)
	check := func(ok bool, problem string) {
		if !ok {
			problems = append(problems, problem)
		}
	}

	check(inv.ID > 0, "id is not positive")
	check(!inv.CreatedAt.IsZero(), "createdAt is missing")
	check(inv.HTMLURL != "", "htmlUrl is missing")
	check(inv.URL != "", "url is missing")
	check(inv.Permissions != "", "permissions are missing")

	u := inv.Invitee
	check(u.ID > 0, "invitee id is not positive")
	check(strings.EqualFold(u.Login, invitee), "invitee is "+u.Login+", expected "+invitee)
	check(u.NodeID != "", "invitee nodeId is missing")
	check(u.AvatarURL != "", "invitee avatarUrl is missing")
	check(u.EventsURL != "", "invitee eventsUrl is missing")
	check(u.FollowersURL != "", "invitee followersUrl is missing")
	check(u.FollowingURL != "", "invitee followingUrl is missing")
	check(u.GistsURL != "", "invitee gistsUrl is missing")
	check(u.HTMLURL != "", "invitee htmlUrl is missing")
	check(u.OrganizationsURL != "", "invitee organizationsUrl is missing")
	check(u.ReceivedEventsURL != "", "invitee receivedEventsUrl is missing")
	check(u.ReposURL != "", "invitee reposUrl is missing")
	check(u.StarredURL != "", "invitee starredUrl is missing")
	check(u.SubscriptionsURL != "", "invitee subscriptionsUrl is missing")
	check(u.Type != "", "invitee type is missing")
	check(u.URL != "", "invitee url is missing")
	check(!u.SiteAdmin, "invitee is a site admin")

	check(inv.Inviter.Login != "", "inviter is missing")
	check(inv.Repository.ID > 0, "repository is missing")
	check(inv.Repository.RepositoryID().Equal(repo), "repository is "+inv.Repository.FullName+", expected "+repo.String())

	if len(problems) > 0 {
		return errors.Errorf("invalid invitation %d: %s", inv.ID, strings.Join(problems, ", "))
	}
	return nil
}
