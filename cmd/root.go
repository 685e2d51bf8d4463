package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute wires the production app and runs the CLI
func Execute(ctx context.Context) error {
	app, err := wireApp(ctx)
	return newRootCmd(app, err).ExecuteContext(ctx)
}

// newRootCmd builds the command tree. A wiring error (unsupported
// platform, unresolvable home) turns every verb into that error so
// nothing runs with half-built collaborators.
func newRootCmd(app *app, wireErr error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "minerctl",
		Short:         "Install and supervise the XMRig miner",
		Long:          "minerctl installs the XMRig miner, manages its configuration and keeps it running in the background via screen, launchd or systemd.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	if wireErr != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return wireErr
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newInstallCmd(app),
		newConfigCmd(app),
		newStartCmd(app),
		newStatusCmd(app),
		newStopCmd(app),
		newCoreCmd(app),
		newNoDonateCmd(app),
		newUninstallCmd(app),
		newSystemCmd(app),
		newLogCmd(app),
		newVersionCmd(),
	)

	rootCmd.SetHelpCommand(&cobra.Command{
		Use:     "help [command]",
		Aliases: []string{"h"},
		Short:   "Help about any command",
		Run: func(c *cobra.Command, args []string) {
			target, _, err := c.Root().Find(args)
			if target == nil || err != nil {
				_ = c.Root().Usage()
				return
			}
			_ = target.Help()
		},
	})

	return rootCmd
}
