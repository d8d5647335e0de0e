package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hesmodel/replay"
)

func newReplayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "replay one chunk per variant on the event engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig(opts)
			if err != nil {
				return err
			}

			model, err := buildModel(c)
			if err != nil {
				return err
			}

			report, err := model.Run()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "variant\truntime\treplayed\tbandwidth\treplayed\toperations")

			for _, row := range report.Rows {
				res, err := replay.Play(row.Schedule, model.Costs)
				if err != nil {
					return err
				}

				fmt.Fprintf(tw, "%s\t%.10g\t%.10g\t%.10g\t%.10g\t%d\n",
					row.Variant.DisplayName(),
					row.Raw.Runtime, res.Runtime,
					row.Raw.Bandwidth, res.Bandwidth,
					res.Operations)
			}

			return tw.Flush()
		},
	}
}
