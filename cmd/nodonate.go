package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minerops/minerctl/internal/supervise"
)

func newNoDonateCmd(app *app) *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:     "no-donate",
		Aliases: []string{"nd"},
		Short:   "Replace the miner with a donation-free build",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := app.settings()
			if err != nil {
				return err
			}
			url := remote
			if url == "" {
				url = s.RemoteURL
			}
			if url == "" {
				return errors.New("no build URL known; pass --remote=URL")
			}

			// the running binary cannot be replaced in place
			info, err := app.ctrl.Status(ctx)
			if err != nil {
				return err
			}
			if info.Running {
				if _, err := app.ctrl.Stop(ctx); err != nil && !errors.Is(err, supervise.ErrStopVerification) {
					return err
				}
			}

			if err := app.installer.FetchBinary(ctx, url); err != nil {
				return err
			}

			s.RemoteURL = url
			if err := app.saveSettings(s); err != nil {
				app.log.Warn().Err(err).Msg("could not remember remote URL")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "donation-free build installed")

			if info.Running {
				if _, err := app.ctrl.Start(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "URL of the donation-free miner tarball")
	return cmd
}
