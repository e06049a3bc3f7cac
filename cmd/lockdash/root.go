package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/lockdash/internal/app"
)

type globalFlags struct {
	configPath string
	prefsPath  string
	apiURL     string
	poll       int
	logLevel   string
}

func (g *globalFlags) options(quiet bool) app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		APIBaseURL: g.apiURL,
		PollEvery:  g.poll,
		LogLevel:   g.logLevel,
		Quiet:      quiet,
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "lockdash",
		Short: "Terminal dashboard for the smart door lock",
		Long: `lockdash shows door state, access statistics and live enrollment and
scan events from the lock backend, and lets an operator lock, unlock and
switch modes from the terminal.

Run without a subcommand to open the dashboard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options(true))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/lockdash/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "prefs file (default ~/.config/lockdash/prefs.toml)")
	pf.StringVar(&flags.apiURL, "api", "", "lock backend base URL, overrides prefs and config")
	pf.IntVar(&flags.poll, "poll", 0, "refresh interval in seconds (default from config, 5s)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newStatusCmd(flags),
		newWatchCmd(flags),
		newDoorCmd(flags),
		newModeCmd(flags),
		newEndpointCmd(flags),
		newConfigCmd(flags),
		newLogsCmd(flags),
		newUsersCmd(flags),
		newCardsCmd(flags),
		newPrintsCmd(flags),
		newFacesCmd(flags),
		newKeypadCmd(flags),
	)
	return root
}
