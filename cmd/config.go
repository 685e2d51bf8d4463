package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"c"},
		Short:   "Write the miner config from the template or a remote URL",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if remote != "" {
				if err := app.fs.MkdirAll(app.layout.InstallDir, 0o755); err != nil {
					return fmt.Errorf("creating %s: %w", app.layout.InstallDir, err)
				}
				if err := app.dl.Download(cmd.Context(), remote, app.layout.ConfigFile); err != nil {
					return err
				}
				if s, err := app.settings(); err == nil {
					s.RemoteURL = remote
					if err := app.saveSettings(s); err != nil {
						app.log.Warn().Err(err).Msg("could not remember remote URL")
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "config downloaded from %s\n", remote)
			} else {
				if err := app.writeDefaultConfig(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", app.layout.ConfigFile)
			}

			// pick the new config up immediately, but only when the
			// miner is actually being supervised
			return app.restartIfActive(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "URL to download the config from")
	return cmd
}
