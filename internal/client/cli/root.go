package cli

import (
	"github.com/dmitrijs2005/notesync/internal/buildinfo"
	"github.com/dmitrijs2005/notesync/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the notesync command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "notesync",
		Short:         "Offline-first notes synchronised with a notes server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.setLogger(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	config.BindFlags(pf, app.config)
	// read before flag parsing by config.LoadConfig
	pf.StringP("config", "c", "", "path to a JSON or YAML config file")
	pf.BoolVarP(&app.verbose, "verbose", "v", false, "log debug details to stderr")

	root.AddCommand(
		newAddCommand(app),
		newEditCommand(app),
		newDeleteCommand(app),
		newShowCommand(app),
		newListCommand(app),
		newPushCommand(app),
		newPullCommand(app),
		newConflictsCommand(app),
		newResolveCommand(app),
		newSnapshotCommand(app),
		newStatusCommand(app),
		newTokenCommand(),
		newVersionCommand(),
	)

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}
