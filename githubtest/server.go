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

// Package githubtest provides an in-memory implementation of the collaborator and
// repository invitation endpoints of the GitHub REST api.
package githubtest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type user struct {
	id       int64
	nodeID   string
	login    string
	password string
}

type repository struct {
	id            int64
	nodeID        string
	owner         string
	name          string
	private       bool
	collaborators map[string]string // login -> permission
}

func (r *repository) fullName() string {
	return r.owner + "/" + r.name
}

type invitation struct {
	id          int64
	repo        string
	invitee     string
	inviter     string
	permissions string
	createdAt   time.Time
}

type Server struct {
	mu          sync.Mutex
	users       map[string]*user
	tokens      map[string]string
	repos       map[string]*repository
	invitations map[int64]*invitation

	nextUserID       int64
	nextRepoID       int64
	nextInvitationID int64

	now func() time.Time
	e   *echo.Echo
}

func NewServer() *Server {
	s := &Server{
		users:            make(map[string]*user),
		tokens:           make(map[string]string),
		repos:            make(map[string]*repository),
		invitations:      make(map[int64]*invitation),
		nextUserID:       1,
		nextRepoID:       1,
		nextInvitationID: 1,
		now:              time.Now,
	}
	s.e = s.newEcho()
	return s
}

// NewTestServer starts the fake api on a random local port. The server is closed when
// the test finishes.
func NewTestServer(t testing.TB) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Start blocks and serves the fake api on the given address.
func (s *Server) Start(address string) error {
	slog.Info("starting fake github api", "address", address)
	return s.e.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// AddUser registers a user which can authenticate with basic auth.
func (s *Server) AddUser(login, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[login] = &user{
		id:       s.nextUserID,
		nodeID:   nodeID("U", uuid.New()),
		login:    login,
		password: password,
	}
	s.nextUserID++
}

// AddToken registers a bearer token for an existing user.
func (s *Server) AddToken(login, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[login]; !ok {
		return fmt.Errorf("unknown user %s", login)
	}
	s.tokens[token] = login
	return nil
}

// AddRepository creates a repository owned by an existing user.
func (s *Server) AddRepository(owner, name string, private bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[owner]; !ok {
		return fmt.Errorf("unknown user %s", owner)
	}
	repo := &repository{
		id:            s.nextRepoID,
		nodeID:        nodeID("R", uuid.New()),
		owner:         owner,
		name:          name,
		private:       private,
		collaborators: make(map[string]string),
	}
	s.repos[repo.fullName()] = repo
	s.nextRepoID++
	return nil
}

// PendingInvitations returns the ids of all pending invitations, sorted.
func (s *Server) PendingInvitations() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.invitations))
	for id := range s.invitations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Collaborator returns the permission of the user in the repository.
func (s *Server) Collaborator(fullName, login string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repo, ok := s.repos[fullName]
	if !ok {
		return "", false
	}
	perm, ok := repo.collaborators[login]
	return perm, ok
}

// SeedDemo creates the accounts alice and bob (password "secret") and the repository
// alice/demo.
func (s *Server) SeedDemo() {
	s.AddUser("alice", "secret")
	s.AddUser("bob", "secret")
	_ = s.AddRepository("alice", "demo", false)
}

func nodeID(prefix string, id uuid.UUID) string {
	return fmt.Sprintf("%s_%s", prefix, id.String()[:13])
}
