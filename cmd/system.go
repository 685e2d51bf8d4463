package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minerops/minerctl/internal/platform"
)

func newSystemCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "system",
		Aliases: []string{"sys"},
		Short:   "Show host facts and supervision state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			info := platform.Describe(cmd.Context())

			fmt.Fprintf(out, "os:             %s %s (%s)\n", info.OS, info.OSVersion, app.facts.Family)
			fmt.Fprintf(out, "arch:           %s\n", app.facts.Arch)
			if info.KernelVersion != "" {
				fmt.Fprintf(out, "kernel:         %s\n", info.KernelVersion)
			}
			if info.CPUModel != "" {
				fmt.Fprintf(out, "cpu:            %s\n", info.CPUModel)
			}
			fmt.Fprintf(out, "cores:          %d logical / %d physical\n", app.facts.LogicalCores, app.facts.PhysicalCores)
			if info.TotalMemoryMB > 0 {
				fmt.Fprintf(out, "memory:         %d MB\n", info.TotalMemoryMB)
			}

			status, err := app.ctrl.Status(cmd.Context())
			if err != nil {
				return err
			}
			if status.Running {
				fmt.Fprintf(out, "supervision:    %s\n", status.Backend)
				if status.Health != "" {
					fmt.Fprintf(out, "health:         %s\n", status.Health)
				}
			} else {
				fmt.Fprintf(out, "supervision:    not running\n")
			}
			return nil
		},
	}
}
