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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package models

import (
	"time"
)

// User is the user reference embedded in invitations and collaborator listings.
type User struct {
	ID                int64  `json:"id"`
	Login             string `json:"login"`
	NodeID            string `json:"nodeId"`
	AvatarURL         string `json:"avatarUrl"`
	EventsURL         string `json:"eventsUrl"`
	FollowersURL      string `json:"followersUrl"`
	FollowingURL      string `json:"followingUrl"`
	GistsURL          string `json:"gistsUrl"`
	HTMLURL           string `json:"htmlUrl"`
	OrganizationsURL  string `json:"organizationsUrl"`
	ReceivedEventsURL string `json:"receivedEventsUrl"`
	ReposURL          string `json:"reposUrl"`
	StarredURL        string `json:"starredUrl"`
	SubscriptionsURL  string `json:"subscriptionsUrl"`
	Type              string `json:"type"`
	URL               string `json:"url"`
	SiteAdmin         bool   `json:"siteAdmin"`
}

type Repository struct {
	ID       int64  `json:"id"`
	NodeID   string `json:"nodeId"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Owner    User   `json:"owner"`
	Private  bool   `json:"private"`
	HTMLURL  string `json:"htmlUrl"`
	URL      string `json:"url"`
}

// RepositoryID returns the owner/name pair of the repository.
// FullName is preferred since the owner record is not always populated.
func (r Repository) RepositoryID() RepositoryID {
	if id, err := ParseRepositoryID(r.FullName); err == nil {
		return id
	}
	return RepositoryID{Owner: r.Owner.Login, Name: r.Name}
}

// RepositoryInvitation is a pending offer of repository access to a user.
// Accepted, declined and deleted invitations are never returned by the api.
type RepositoryInvitation struct {
	ID          int64      `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	HTMLURL     string     `json:"htmlUrl"`
	URL         string     `json:"url"`
	Invitee     User       `json:"invitee"`
	Inviter     User       `json:"inviter"`
	Repository  Repository `json:"repository"`
	Permissions Permission `json:"permissions"`
}
