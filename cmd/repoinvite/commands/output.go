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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/l3montree-dev/repoinvite/models"
	"github.com/l3montree-dev/repoinvite/scenario"
	"github.com/l3montree-dev/repoinvite/utils"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// printStructured writes v as json or yaml. It reports false for table output.
func printStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func invitationRow(inv models.RepositoryInvitation) table.Row {
	return table.Row{
		inv.ID,
		inv.Repository.FullName,
		inv.Inviter.Login,
		inv.Invitee.Login,
		inv.Permissions,
		inv.CreatedAt.Format(time.DateTime),
	}
}

func printInvitations(w io.Writer, format string, invitations []models.RepositoryInvitation) error {
	if ok, err := printStructured(w, format, invitations); ok {
		return err
	}
	if len(invitations) == 0 {
		_, err := fmt.Fprintln(w, "No pending invitations")
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Repository", "Inviter", "Invitee", "Permission", "Created"})
	tw.AppendRows(utils.Map(invitations, invitationRow))
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

// printRepositoriesInvitations renders one section per repository, sorted by name.
func printRepositoriesInvitations(w io.Writer, format string, byRepo map[string][]models.RepositoryInvitation) error {
	if ok, err := printStructured(w, format, byRepo); ok {
		return err
	}

	names := make([]string, 0, len(byRepo))
	for name := range byRepo {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintln(w, text.FgHiCyan.Sprint(name)); err != nil {
			return err
		}
		if err := printInvitations(w, outputTable, byRepo[name]); err != nil {
			return err
		}
	}
	return nil
}

func printInvitation(w io.Writer, format string, inv models.RepositoryInvitation) error {
	if ok, err := printStructured(w, format, inv); ok {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendRows([]table.Row{
		{"ID", inv.ID},
		{"Repository", inv.Repository.FullName},
		{"Inviter", inv.Inviter.Login},
		{"Invitee", inv.Invitee.Login},
		{"Permission", inv.Permissions},
		{"Created", inv.CreatedAt.Format(time.DateTime)},
		{"URL", inv.HTMLURL},
	})
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func printCollaborators(w io.Writer, format string, users []models.User) error {
	if ok, err := printStructured(w, format, users); ok {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Login", "Type", "URL"})
	tw.AppendRows(utils.Map(users, func(u models.User) table.Row {
		return table.Row{u.ID, u.Login, u.Type, u.HTMLURL}
	}))
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func printReport(w io.Writer, format string, report *scenario.Report) error {
	if ok, err := printStructured(w, format, report); ok {
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("%s invites %s", report.Repository, report.Invitee)
	tw.AppendHeader(table.Row{"#", "Step", "Status", "Duration", "Error"})
	for i, step := range report.Steps {
		status := text.FgGreen.Sprint(step.Status)
		if step.Status == scenario.StatusFailed {
			status = text.FgRed.Sprint(step.Status)
		}
		tw.AppendRow(table.Row{i + 1, step.Name, status, step.Duration.Round(time.Millisecond), text.WrapText(step.Error, 80)})
	}
	tw.AppendFooter(table.Row{"", "", "", report.Duration.Round(time.Millisecond), ""})
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
