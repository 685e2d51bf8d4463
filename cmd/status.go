package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"stat"},
		Short:   "Report which backend is supervising the miner",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := app.ctrl.Status(cmd.Context())
			if err != nil {
				return err
			}
			if !info.Running {
				fmt.Fprintln(cmd.OutOrStdout(), "miner not running")
				return nil
			}
			if info.Health != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "miner running under %s (%s)\n", info.Backend, info.Health)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "miner running under %s\n", info.Backend)
			return nil
		},
	}
}
