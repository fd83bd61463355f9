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
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l3montree-dev/repoinvite/githubtest"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewSandboxCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Serve a local in-memory fake of the invitation api",
		Long: `Serve a local in-memory fake of the invitation api.

The fake implements the collaborator and invitation endpoints with basic and token
authentication. Without --user and --repo the accounts alice and bob (password
"secret") and the repository alice/demo are created. All state is lost on exit.`,
		Example: `  repoinvite sandbox
  repoinvite sandbox --address 127.0.0.1:9000 --user carol:pw --user dave:pw --repo carol/project`,
		Args: cobra.NoArgs,
		RunE: runSandbox,
	}

	cmd.Flags().String("address", "127.0.0.1:8080", "The address to listen on")
	cmd.Flags().StringArray("user", nil, "Create a user (login:password). Can be repeated")
	cmd.Flags().StringArray("repo", nil, "Create a repository (owner/name) of an existing user. Can be repeated")
	return cmd
}

// seedSandbox creates the requested users and repositories or the demo data.
func seedSandbox(s *githubtest.Server, users, repos []string) error {
	if len(users) == 0 && len(repos) == 0 {
		s.SeedDemo()
		return nil
	}

	for _, u := range users {
		login, password, ok := strings.Cut(u, ":")
		if !ok || login == "" || password == "" {
			return shared.NewValidationError("invalid user %q, expected login:password", u)
		}
		s.AddUser(login, password)
	}

	for _, r := range repos {
		repo, err := models.ParseRepositoryID(r)
		if err != nil {
			return err
		}
		if err := s.AddRepository(repo.Owner, repo.Name, false); err != nil {
			return errors.Wrapf(err, "could not create repository %s", repo)
		}
	}
	return nil
}

func runSandbox(cmd *cobra.Command, args []string) error {
	address, _ := cmd.Flags().GetString("address")
	users, _ := cmd.Flags().GetStringArray("user")
	repos, _ := cmd.Flags().GetStringArray("repo")

	s := githubtest.NewServer()
	if err := seedSandbox(s, users, repos); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start(address)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down fake github api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
