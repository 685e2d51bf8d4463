package cmd

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/minerops/minerctl/internal/supervise"
)

func newUninstallCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Aliases: []string{"u"},
		Short:   "Stop the miner and remove everything this tool installed",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var merr *multierror.Error

			if _, err := app.ctrl.Stop(ctx); err != nil {
				if errors.Is(err, supervise.ErrStopVerification) {
					app.log.Warn().Err(err).Msg("continuing uninstall despite stop verification failure")
				} else {
					merr = multierror.Append(merr, err)
				}
			}

			// every backend's artifacts go, not just the active one:
			// stale definitions left behind would be re-detected later
			for _, d := range app.detector.Drivers() {
				if !d.Available(ctx) {
					continue
				}
				if err := d.Remove(ctx); err != nil {
					merr = multierror.Append(merr, err)
				}
			}

			if err := app.installer.RemoveFiles(); err != nil {
				merr = multierror.Append(merr, err)
			}

			if err := merr.ErrorOrNil(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "miner uninstalled")
			return nil
		},
	}
}
