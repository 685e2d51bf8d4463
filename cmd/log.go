package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minerops/minerctl/internal/logtail"
)

func newLogCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "log",
		Aliases: []string{"lg"},
		Short:   "Follow the miner log (Ctrl-C to exit)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ch, cleanup, err := logtail.Follow(ctx, app.layout.LogFile)
			if err != nil {
				return fmt.Errorf("following %s: %w", app.layout.LogFile, err)
			}
			defer func() { _ = cleanup() }()

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-ch:
					if !ok {
						return nil
					}
					if ev.Err != nil {
						app.log.Warn().Err(ev.Err).Msg("log watch error")
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), ev.Line)
				}
			}
		},
	}
}
