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
	"fmt"
	"net/url"
	"strings"
)

type RepositoryID struct {
	Owner string `json:"owner" validate:"required,excludesall=/ "`
	Name  string `json:"name" validate:"required,excludesall=/ "`
}

func NewRepositoryID(owner, name string) RepositoryID {
	return RepositoryID{Owner: owner, Name: name}
}

// ParseRepositoryID accepts "owner/name" as well as repository urls like
// https://github.com/owner/name or https://github.com/owner/name.git
func ParseRepositoryID(s string) (RepositoryID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RepositoryID{}, fmt.Errorf("empty repository id")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return RepositoryID{}, fmt.Errorf("invalid repository url %q: %w", s, err)
		}
		s = u.Path
	}

	s = strings.TrimSuffix(strings.Trim(s, "/"), ".git")
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryID{}, fmt.Errorf("invalid repository id %q, expected owner/name", s)
	}

	return RepositoryID{Owner: parts[0], Name: parts[1]}, nil
}

// ResolveRepositoryID parses s like ParseRepositoryID. A plain repository name
// belongs to defaultOwner.
func ResolveRepositoryID(defaultOwner, s string) (RepositoryID, error) {
	s = strings.TrimSpace(s)
	if s != "" && !strings.Contains(s, "/") {
		return NewRepositoryID(defaultOwner, s), nil
	}
	return ParseRepositoryID(s)
}

func (r RepositoryID) String() string {
	return r.Owner + "/" + r.Name
}

func (r RepositoryID) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// Equal compares case insensitively, owner and repository names are not case sensitive.
func (r RepositoryID) Equal(other RepositoryID) bool {
	return strings.EqualFold(r.Owner, other.Owner) && strings.EqualFold(r.Name, other.Name)
}
