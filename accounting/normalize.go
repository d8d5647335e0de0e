package accounting

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/hesmodel"
)

// Normalize divides the totals of a variant by the baseline totals, one
// dimension at a time. The variant name only appears in errors.
func Normalize(
	variant string,
	totals, baseline hesmodel.ResourceTotals,
) (hesmodel.NormalizedOverhead, error) {
	var ratios [3]float64

	for i, d := range hesmodel.Dimensions() {
		b := baseline.Get(d)
		if b == 0 {
			return hesmodel.NormalizedOverhead{}, errors.Wrapf(
				hesmodel.ErrDivisionByZero,
				"normalizing variant %s: baseline %s total is zero",
				variant, d)
		}

		ratios[i] = totals.Get(d) / b
	}

	return hesmodel.NormalizedOverhead{
		Runtime:   ratios[0],
		Memory:    ratios[1],
		Bandwidth: ratios[2],
	}, nil
}
