package main

import (
	"screen-agent/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
)

func (a *app) describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE...",
		Short: "Ask the vision model for a free-text description of each screenshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shots, err := a.describeAll(cmd.Context(), args)
			if err != nil {
				return a.fail(err)
			}

			if a.format != userinteraction.FormatTree {
				if err := userinteraction.Encode(a.out, shots, a.format); err != nil {
					return a.fail(err)
				}
				return nil
			}
			for _, s := range shots {
				a.console.ShowDescription(s)
			}
			return nil
		},
	}
}
