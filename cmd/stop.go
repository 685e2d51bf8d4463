package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minerops/minerctl/internal/supervise"
)

func newStopCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "stop",
		Aliases: []string{"sp"},
		Short:   "Stop supervising the miner",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := app.ctrl.Stop(cmd.Context())
			if err != nil {
				// lingering evidence after the termination call is a
				// warning, not a failure
				if errors.Is(err, supervise.ErrStopVerification) {
					fmt.Fprintf(cmd.OutOrStdout(), "stop issued, but %s still shows evidence of running\n", res.Backend)
					return nil
				}
				return err
			}
			if !res.Stopped {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to stop")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "miner stopped (%s)\n", res.Backend)
			return nil
		},
	}
}
