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

// Package scenario drives a complete invitation lifecycle between a repository owner
// and an invitee and reports every step.
package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/monitoring"
	"github.com/l3montree-dev/repoinvite/services"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/l3montree-dev/repoinvite/utils"
	"github.com/pkg/errors"
)

type Config struct {
	// repository owned (or administered) by the inviter
	Repository models.RepositoryID
	// login of the invitee account
	Invitee string `validate:"required,excludesall=/ "`
}

// CleanupTimeout bounds the cleanup after a failed run.
const CleanupTimeout = 30 * time.Second

type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

type Step struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

type Report struct {
	Repository string        `json:"repository"`
	Invitee    string        `json:"invitee"`
	Steps      []Step        `json:"steps"`
	Duration   time.Duration `json:"duration"`
}

func (r *Report) Passed() bool {
	return !utils.Any(r.Steps, func(s Step) bool { return s.Status == StatusFailed })
}

// StepError is returned by Run for the first step which failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %s", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

type runner struct {
	cfg                Config
	collaborators      *services.CollaboratorService
	ownerInvitations   *services.InvitationService
	inviteeInvitations *services.InvitationService

	// the invitation seen by the invitee in the last listing
	current models.RepositoryInvitation
}

// Run invites the invitee three times and resolves the invitation by declining,
// revoking and accepting it. After each transition both listings are checked.
// The invitee is removed from the repository at the end.
//
// The returned report contains every executed step, even if the run failed. A failed
// run leaves no pending invitation and no collaborator behind if the cleanup succeeds.
func Run(ctx context.Context, cfg Config, inviter, invitee shared.GithubClientFacade) (*Report, error) {
	if err := shared.ValidateStruct(cfg); err != nil {
		return nil, err
	}

	r := &runner{
		cfg:                cfg,
		collaborators:      services.NewCollaboratorService(inviter),
		ownerInvitations:   services.NewInvitationService(inviter),
		inviteeInvitations: services.NewInvitationService(invitee),
	}

	steps := []step{
		{"check preconditions", r.checkPreconditions},
		{"invite", r.invite},
		{"invitee lists the invitation", r.expectInviteeInvitations(1)},
		{"invitee declines", r.decline},
		{"invitee lists no invitation", r.expectInviteeInvitations(0)},
		{"invite again", r.invite},
		{"owner lists the invitation", r.expectOwnerInvitations(1)},
		{"invitee lists the invitation", r.expectInviteeInvitations(1)},
		{"owner revokes the invitation", r.revoke},
		{"invitee lists no invitation", r.expectInviteeInvitations(0)},
		{"invite a last time", r.invite},
		{"invitee lists the invitation", r.expectInviteeInvitations(1)},
		{"invitee accepts", r.accept},
		{"invitee lists no invitation", r.expectInviteeInvitations(0)},
		{"owner lists no invitation", r.expectOwnerInvitations(0)},
		{"remove collaborator", r.removeCollaborator},
	}

	report := &Report{
		Repository: cfg.Repository.String(),
		Invitee:    cfg.Invitee,
		Steps:      make([]Step, 0, len(steps)),
	}

	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	for i, s := range steps {
		stepStart := time.Now()
		err := s.run(ctx)
		res := Step{Name: s.name, Status: StatusPassed, Duration: time.Since(stepStart)}
		if err != nil {
			res.Status = StatusFailed
			res.Error = err.Error()
		}
		report.Steps = append(report.Steps, res)
		monitoring.ScenarioStepDuration.WithLabelValues(s.name, string(res.Status)).Observe(res.Duration.Seconds())

		if err != nil {
			slog.Error("scenario step failed", "step", s.name, "err", err)
			// nothing to clean up if the preconditions do not hold
			if i > 0 {
				r.cleanup(ctx)
			}
			monitoring.ScenarioRunsTotal.WithLabelValues(string(StatusFailed)).Inc()
			return report, &StepError{Step: s.name, Err: err}
		}
		slog.Info("scenario step passed", "step", s.name, "duration", res.Duration)
	}

	monitoring.ScenarioRunsTotal.WithLabelValues(string(StatusPassed)).Inc()
	return report, nil
}

func (r *runner) forRepository(invitations []models.RepositoryInvitation) []models.RepositoryInvitation {
	return utils.Filter(invitations, func(inv models.RepositoryInvitation) bool {
		return inv.Repository.RepositoryID().Equal(r.cfg.Repository)
	})
}

func (r *runner) checkPreconditions(ctx context.Context) error {
	invitations, err := r.inviteeInvitations.GetUserRepositoryInvitations(ctx)
	if err != nil {
		return err
	}
	if n := len(r.forRepository(invitations)); n != 0 {
		return errors.Errorf("%s already has %d pending invitation(s) to %s", r.cfg.Invitee, n, r.cfg.Repository)
	}

	isCollaborator, err := r.collaborators.IsCollaborator(ctx, r.cfg.Repository, r.cfg.Invitee)
	if err != nil {
		return err
	}
	if isCollaborator {
		return errors.Errorf("%s already is a collaborator of %s", r.cfg.Invitee, r.cfg.Repository)
	}
	return nil
}

func (r *runner) invite(ctx context.Context) error {
	return r.collaborators.AddCollaborator(ctx, r.cfg.Repository, r.cfg.Invitee)
}

func (r *runner) expectInviteeInvitations(expected int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		invitations, err := r.inviteeInvitations.GetUserRepositoryInvitations(ctx)
		if err != nil {
			return err
		}
		invitations = r.forRepository(invitations)
		if len(invitations) != expected {
			return errors.Errorf("expected %d invitation(s) for %s, got %d", expected, r.cfg.Invitee, len(invitations))
		}
		for _, inv := range invitations {
			if err := CheckInvitation(inv, r.cfg.Repository, r.cfg.Invitee); err != nil {
				return err
			}
		}
		if expected > 0 {
			r.current = invitations[0]
		}
		return nil
	}
}

func (r *runner) expectOwnerInvitations(expected int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		invitations, err := r.ownerInvitations.GetRepositoryInvitations(ctx, r.cfg.Repository.Owner, r.cfg.Repository.Name)
		if err != nil {
			return err
		}
		invitations = utils.Filter(invitations, func(inv models.RepositoryInvitation) bool {
			return strings.EqualFold(inv.Invitee.Login, r.cfg.Invitee)
		})
		if len(invitations) != expected {
			return errors.Errorf("expected %d invitation(s) on %s, got %d", expected, r.cfg.Repository, len(invitations))
		}
		for _, inv := range invitations {
			if err := CheckInvitation(inv, r.cfg.Repository, r.cfg.Invitee); err != nil {
				return err
			}
		}
		return nil
	}
}

func (r *runner) decline(ctx context.Context) error {
	return r.inviteeInvitations.DeclineRepositoryInvitation(ctx, r.current.ID)
}

func (r *runner) accept(ctx context.Context) error {
	return r.inviteeInvitations.AcceptRepositoryInvitation(ctx, r.current.ID)
}

func (r *runner) revoke(ctx context.Context) error {
	return r.ownerInvitations.DeleteRepositoryInvitation(ctx, r.cfg.Repository.Owner, r.cfg.Repository.Name, r.current.ID)
}

func (r *runner) removeCollaborator(ctx context.Context) error {
	return r.collaborators.RemoveCollaborator(ctx, r.cfg.Repository, r.cfg.Invitee)
}

// cleanup revokes the pending invitations of the invitee and removes the collaborator.
// Errors are only logged.
// cleanup runs detached from ctx: a run which failed because ctx expired still
// has to revoke its invitations.
func (r *runner) cleanup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CleanupTimeout)
	defer cancel()

	slog.Info("cleaning up after failed scenario", "repository", r.cfg.Repository.String(), "invitee", r.cfg.Invitee)

	invitations, err := r.ownerInvitations.GetRepositoryInvitations(ctx, r.cfg.Repository.Owner, r.cfg.Repository.Name)
	if err != nil {
		slog.Warn("could not list invitations during cleanup", "err", err)
	}
	for _, inv := range invitations {
		if !strings.EqualFold(inv.Invitee.Login, r.cfg.Invitee) {
			continue
		}
		if err := r.ownerInvitations.DeleteRepositoryInvitation(ctx, r.cfg.Repository.Owner, r.cfg.Repository.Name, inv.ID); err != nil {
			slog.Warn("could not revoke invitation during cleanup", "invitationId", inv.ID, "err", err)
		}
	}

	if err := r.removeCollaborator(ctx); err != nil {
		slog.Warn("could not remove collaborator during cleanup", "err", err)
	}
}
