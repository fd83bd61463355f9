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
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/l3montree-dev/repoinvite/cmd/repoinvite/config"
	"github.com/l3montree-dev/repoinvite/services"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/l3montree-dev/repoinvite/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "login [flags]",
		Args:              cobra.NoArgs,
		Short:             "Store credentials in the OS keyring",
		DisableAutoGenTag: true,
		Long: `Store credentials in the OS keyring.

Either --username and --password or --token are required. The credentials are
checked against the api before they are stored. Later invocations only need
--username (or nothing at all for a stored token).`,
		Example: `  # Store a password
  repoinvite login -u alice -p secret

  # Read the password from stdin
  echo "$PASSWORD" | repoinvite login -u alice --password-stdin

  # Store a personal access token
  repoinvite login --token ghp_xxx

  # Remove the stored password of alice
  repoinvite login -u alice --remove`,
		RunE: runLogin,
	}

	cmd.Flags().Bool("password-stdin", false, "Read the password or token from stdin")
	cmd.Flags().Bool("remove", false, "Remove the stored secret instead of storing it")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg := &config.RuntimeBaseConfig

	keyringUser := cfg.Username
	if keyringUser == "" {
		keyringUser = config.TokenKeyringUser
	}

	if remove, _ := cmd.Flags().GetBool("remove"); remove {
		// the keyring entry is keyed by host only
		apiURL := cfg.APIURL
		if cfg.EnterpriseURL != "" {
			apiURL = cfg.EnterpriseURL
		}
		if err := config.DeleteSecretFromKeyring(apiURL, keyringUser); err != nil {
			return errors.Wrap(err, "could not remove secret from keyring")
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed stored secret of %s\n", keyringUser)
		return err
	}

	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
		secret, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && secret == "" {
			return errors.Wrap(err, "could not read secret from stdin")
		}
		secret = strings.TrimSpace(secret)
		if cfg.Username != "" {
			cfg.Password = secret
		} else {
			cfg.Token = secret
		}
	}

	var secret string
	switch {
	case cfg.Username != "" && cfg.Password != "":
		secret = cfg.Password
	case cfg.Username == "" && cfg.Token != "":
		secret = cfg.Token
	default:
		return shared.NewValidationError("either --username and --password or --token are required")
	}

	c, err := config.NewClient()
	if err != nil {
		return err
	}

	// any authenticated endpoint is fine to check the credentials
	if _, err := services.NewInvitationService(c).GetUserRepositoryInvitations(cmd.Context()); err != nil {
		return errors.Wrap(err, "could not verify credentials")
	}

	if err := config.StoreSecretInKeyring(c.BaseURL(), keyringUser, secret); err != nil {
		return errors.Wrap(err, "could not store secret in keyring")
	}

	slog.Debug("login successful", "identity", c.Identity())
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored credentials of %s (%s) for %s\n", keyringUser, utils.MaskSecret(secret), c.BaseURL())
	return err
}
