package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStartCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Aliases: []string{"st"},
		Short:   "Start supervising the miner",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := app.ctrl.Start(cmd.Context())
			if err != nil {
				return err
			}
			if res.AlreadyRunning {
				fmt.Fprintf(cmd.OutOrStdout(), "miner already running under %s\n", res.Backend)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "miner started under %s\n", res.Backend)
			return nil
		},
	}
}
