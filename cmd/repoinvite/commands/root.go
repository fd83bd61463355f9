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
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/l3montree-dev/repoinvite/client"
	"github.com/l3montree-dev/repoinvite/cmd/repoinvite/config"
	"github.com/l3montree-dev/repoinvite/common"
	"github.com/l3montree-dev/repoinvite/monitoring"
	"github.com/l3montree-dev/repoinvite/shared"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

const (
	defaultConfigFilename = ".repoinvite"
)

// set if --trace is given, flushes the spans
var shutdownTracing func(context.Context) error

var RootCmd = &cobra.Command{
	SilenceUsage:      true,
	Use:               "repoinvite",
	Short:             "Manage repository collaborator invitations",
	Version:           version,
	DisableAutoGenTag: true,
	Long: `Manage repository collaborator invitations

repoinvite invites collaborators to GitHub repositories and lets the invitee list,
accept and decline the invitations. Repository owners can list, update and revoke
pending invitations. Configuration can be provided via a ./.repoinvite config file
or environment variables (prefix REPOINVITE_).`,
	Example: `  # Invite bob to alice/demo with read access
  repoinvite -u alice invite alice/demo bob --permission read

  # List the invitations of the authenticated user
  repoinvite -u bob invitations

  # Accept an invitation
  repoinvite -u bob accept 42

  # Run the invitation lifecycle against a local fake api
  repoinvite sandbox &
  repoinvite --apiUrl http://localhost:8080 scenario`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := cmd.Flags().GetString("logLevel")
		if err != nil {
			return err
		}
		shared.InitLogger(shared.ParseLogLevel(level))

		if err := shared.LoadConfig(); err != nil {
			slog.Debug("no .env file loaded", "err", err)
		}

		if err := initializeConfig(cmd); err != nil {
			return err
		}

		if err := monitoring.InitErrorTracking(config.RuntimeBaseConfig.SentryDSN, version); err != nil {
			return err
		}

		switch {
		case config.RuntimeBaseConfig.OTLPEndpoint != "":
			shutdownTracing, err = common.InitOTLPTracing(cmd.Context(), config.RuntimeBaseConfig.OTLPEndpoint, "repoinvite")
		case config.RuntimeBaseConfig.Trace:
			shutdownTracing, err = common.InitTracing(os.Stderr)
		}
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if shutdownTracing == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdownTracing(ctx)
	},
}

func Execute() {
	err := RootCmd.Execute()
	monitoring.Flush()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("repoinvite\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Built:      %s\n", date)
			fmt.Printf("Built by:   %s\n", builtBy)
		},
	}

	RootCmd.AddCommand(
		versionCmd,
		NewInviteCommand(),
		NewRemoveCommand(),
		NewCollaboratorsCommand(),
		NewInvitationsCommand(),
		NewAcceptCommand(),
		NewDeclineCommand(),
		NewRevokeCommand(),
		NewUpdateCommand(),
		NewLoginCommand(),
		NewScenarioCommand(),
		NewSandboxCommand(),
	)

	flags := RootCmd.PersistentFlags()
	flags.StringP("logLevel", "l", "info", "Set the log level. Options: debug, info, warn, error")
	flags.StringVar(&cfgFile, "config", "", "Config file (default is ./.repoinvite or /etc/repoinvite/.repoinvite)")
	flags.String("apiUrl", client.DefaultAPIURL, "The url of the api")
	flags.String("enterpriseUrl", "", "The url of a GitHub Enterprise Server, the api path is added")
	flags.StringP("username", "u", "", "The username for basic authentication")
	flags.StringP("password", "p", "", "The password for basic authentication. Read from the keyring if omitted")
	flags.String("token", "", "A personal access token, used instead of username and password")
	flags.Duration("timeout", client.DefaultRequestTimeout, "Overall timeout of a single request")
	flags.Duration("connectTimeout", client.DefaultConnectTimeout, "Timeout for establishing a connection")
	flags.Float64("rateLimit", 0, "Maximum number of requests per second, 0 disables the limit")
	flags.Bool("trace", false, "Print an opentelemetry span for every request to stderr")
	flags.String("otlpEndpoint", "", "Send the request spans to this otlp http endpoint instead of stderr, e.g. http://localhost:4318")
	flags.StringP("output", "o", "table", "Output format. Options: table, json, yaml")
	flags.String("sentryDsn", "", "Report failed scenario runs to sentry")
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(defaultConfigFilename)
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/repoinvite/")

	// a missing config file is fine, an unparsable one is not
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		slog.Debug("no config file found")
	}

	viper.SetEnvPrefix("REPOINVITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := config.BindScenarioEnv(); err != nil {
		return err
	}

	bindFlags(cmd)

	return config.ParseBaseConfig()
}

// Bind each cobra flag to its associated viper configuration (config file and environment variable)
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		configName := f.Name

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && viper.IsSet(configName) {
			val := viper.Get(configName)
			cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)) // nolint: errcheck
		}

		if err := viper.BindPFlag(configName, f); err != nil {
			slog.Error("could not bind flag to viper", "err", err)
		}
	})
}
