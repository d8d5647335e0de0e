// Package accounting turns schedules into resource totals and normalizes
// them against the baseline.
package accounting

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/hesmodel"
	"github.com/sarchlab/hesmodel/costmodel"
	"github.com/sarchlab/hesmodel/schedule"
)

// Aggregate sums the costs of a chunk schedule.
//
// Runtime is wall-clock time, so work that the workers do in parallel counts
// once. Bandwidth counts bytes moved between workers, not local working set:
// every round moves the payload of its kind, whatever its operations are.
func Aggregate(
	s *schedule.Schedule,
	costs costmodel.Lookup,
) (hesmodel.ResourceTotals, error) {
	if s == nil || s.IsEmpty() {
		name := ""
		if s != nil {
			name = s.Variant.Name
		}
		return hesmodel.ResourceTotals{}, errors.Wrapf(hesmodel.ErrEmptySchedule,
			"variant %s", name)
	}

	var totals hesmodel.ResourceTotals

	for _, e := range s.Entries {
		runtime, err := costs.Cost(e.Op, hesmodel.Runtime)
		if err != nil {
			return hesmodel.ResourceTotals{}, errors.Wrapf(err,
				"variant %s, runtime", s.Variant.Name)
		}

		memory, err := costs.Cost(e.Op, hesmodel.Memory)
		if err != nil {
			return hesmodel.ResourceTotals{}, errors.Wrapf(err,
				"variant %s, memory", s.Variant.Name)
		}

		totals.Runtime += float64(e.Count) * runtime
		totals.Memory += float64(e.Count) * memory
	}

	for _, kind := range hesmodel.RoundKinds() {
		n := s.RoundCount(kind)
		if n == 0 {
			continue
		}

		payload, err := costs.Payload(kind)
		if err != nil {
			return hesmodel.ResourceTotals{}, errors.Wrapf(err,
				"variant %s, bandwidth", s.Variant.Name)
		}

		totals.Bandwidth += float64(n) * payload
	}

	return totals, nil
}
