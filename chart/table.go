package chart

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/hesmodel"
	"github.com/sarchlab/hesmodel/accounting"
)

// WriteTable prints the raw per-chunk totals and the normalized ratios of
// every variant, one block per dimension.
func WriteTable(w io.Writer, report *accounting.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "chunk length:\t%d iterations\n", report.ChunkLength)
	fmt.Fprintf(tw, "workers:\t%d\n", report.Workers)
	fmt.Fprintf(tw, "baseline:\t%s\n", report.Baseline.DisplayName())

	for _, d := range hesmodel.Dimensions() {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "%s\tper chunk\tnormalized\n", d)
		for _, row := range report.Rows {
			fmt.Fprintf(tw, "  %s\t%.10g\t%.6f\n",
				row.Variant.DisplayName(), row.Raw.Get(d), row.Normalized.Get(d))
		}
	}

	return tw.Flush()
}
