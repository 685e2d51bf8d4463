package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/minerops/minerctl/internal/config"
)

func newCoreCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "core [percentage]",
		Aliases: []string{"co"},
		Short:   "Show or set the CPU core budget (1-100%)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				hint, err := config.GetThreadsHint(app.fs, app.layout.ConfigFile)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "core budget: %d%%\n", hint)
				return nil
			}

			pct, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid percentage %q", args[0])
			}

			written, err := config.SetThreadsHint(app.fs, app.layout.ConfigFile, pct)
			if errors.Is(err, config.ErrFieldNotFound) {
				// config is missing the field or the file entirely;
				// regenerate from the canonical template and retry once
				app.log.Warn().Msg("config missing threads hint; regenerating from template")
				if err := app.writeDefaultConfig(); err != nil {
					return err
				}
				written, err = config.SetThreadsHint(app.fs, app.layout.ConfigFile, pct)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "core budget set to %d%%\n", written)
			return app.restartIfActive(cmd.Context())
		},
	}
}
