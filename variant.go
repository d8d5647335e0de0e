package hesmodel

import (
	"strconv"

	"github.com/pkg/errors"
)

// A Variant is one training strategy under comparison.
type Variant struct {
	// Name identifies the variant.
	Name string

	// Label is the human readable name used in charts and tables.
	Label string

	// Period is the number of iterations after which the variant's operation
	// pattern repeats.
	Period int

	// FullGradientRounds is the number of full-gradient iterations within one
	// period. The rest of the period is made of stochastic iterations.
	FullGradientRounds int

	// Baseline marks the variant every other variant is normalized against.
	Baseline bool
}

// StochasticRounds returns the number of stochastic iterations within one
// period.
func (v Variant) StochasticRounds() int {
	return v.Period - v.FullGradientRounds
}

// DisplayName returns the label if set, or the name otherwise.
func (v Variant) DisplayName() string {
	if v.Label != "" {
		return v.Label
	}

	return v.Name
}

// Validate checks that the variant can produce a schedule.
func (v Variant) Validate() error {
	if v.Name == "" {
		return errors.Wrap(ErrInvalidVariant, "variant without a name")
	}

	if v.Period <= 0 {
		return errors.Wrapf(ErrIncompatiblePeriod,
			"variant %s has non-positive period %d", v.Name, v.Period)
	}

	if v.FullGradientRounds < 0 || v.FullGradientRounds > v.Period {
		return errors.Wrapf(ErrInvalidVariant,
			"variant %s has %d full-gradient rounds in a period of %d",
			v.Name, v.FullGradientRounds, v.Period)
	}

	return nil
}

// Baseline is synchronous parallel batch gradient descent. It exchanges the
// full gradient on every iteration.
var Baseline = Variant{
	Name:               "Baseline",
	Label:              "Baseline",
	Period:             1,
	FullGradientRounds: 1,
	Baseline:           true,
}

// HybridES returns the hybrid evolutionary strategy variant with recompute
// factor r: one full-gradient iteration followed by r-1 stochastic ones.
func HybridES(r int) Variant {
	return Variant{
		Name:               "H-ES-r" + strconv.Itoa(r),
		Label:              "H-ES, r = " + strconv.Itoa(r),
		Period:             r,
		FullGradientRounds: 1,
	}
}

// DefaultVariants returns Baseline, H-ES r=2 and H-ES r=3.
func DefaultVariants() []Variant {
	return []Variant{Baseline, HybridES(2), HybridES(3)}
}

// FindBaseline returns the only baseline variant in the list.
func FindBaseline(variants []Variant) (Variant, error) {
	var (
		found Variant
		count int
	)

	for _, v := range variants {
		if v.Baseline {
			found = v
			count++
		}
	}

	switch count {
	case 0:
		return Variant{}, errors.Wrap(ErrInvalidVariant, "no baseline variant")
	case 1:
		return found, nil
	default:
		return Variant{}, errors.Wrapf(ErrInvalidVariant,
			"%d baseline variants, expected exactly one", count)
	}
}
