package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInstallCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Aliases: []string{"i"},
		Short:   "Install the miner binary and its dependencies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.settings()
			if err != nil {
				return err
			}

			if err := app.installer.Install(cmd.Context(), s.Wallet); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "miner installed to %s\n", app.layout.MinerBinary)
			return nil
		},
	}
}
