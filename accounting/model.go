package accounting

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/hesmodel"
	"github.com/sarchlab/hesmodel/costmodel"
	"github.com/sarchlab/hesmodel/schedule"
)

// A Row is the outcome of the model for one variant.
type Row struct {
	Variant    hesmodel.Variant
	Schedule   *schedule.Schedule
	Raw        hesmodel.ResourceTotals
	Normalized hesmodel.NormalizedOverhead
}

// A Report holds the outcome of one run of the model. Rows keep the order in
// which the variants were given.
type Report struct {
	Workers     int
	ChunkLength int
	Baseline    hesmodel.Variant
	Rows        []Row
}

// RawTotals returns the totals of every variant by name.
func (r *Report) RawTotals() map[string]hesmodel.ResourceTotals {
	m := make(map[string]hesmodel.ResourceTotals, len(r.Rows))
	for _, row := range r.Rows {
		m[row.Variant.Name] = row.Raw
	}

	return m
}

// NormalizedOverheads returns the ratios of every variant by name.
func (r *Report) NormalizedOverheads() map[string]hesmodel.NormalizedOverhead {
	m := make(map[string]hesmodel.NormalizedOverhead, len(r.Rows))
	for _, row := range r.Rows {
		m[row.Variant.Name] = row.Normalized
	}

	return m
}

// Row returns the row of the named variant.
func (r *Report) Row(name string) (Row, bool) {
	for _, row := range r.Rows {
		if row.Variant.Name == name {
			return row, true
		}
	}

	return Row{}, false
}

// A Model evaluates the overheads of a set of variants against one cost
// table.
type Model struct {
	Costs    costmodel.Lookup
	Variants []hesmodel.Variant

	// Workers is the assumed degree of parallelism. The model is wall-clock
	// based and assumes all workers run in parallel, so it does not enter the
	// arithmetic.
	Workers int
}

// Run builds the schedules, aggregates and normalizes them. It fails before
// producing anything if any step fails.
func (m *Model) Run() (*Report, error) {
	if m.Costs == nil {
		return nil, errors.New("model has no cost table")
	}

	baseline, err := hesmodel.FindBaseline(m.Variants)
	if err != nil {
		return nil, err
	}

	if err := checkUniqueNames(m.Variants); err != nil {
		return nil, err
	}

	schedules, err := schedule.BuildAll(m.Variants)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Workers:     m.Workers,
		ChunkLength: schedules[0].ChunkLength,
		Baseline:    baseline,
		Rows:        make([]Row, len(schedules)),
	}

	var baselineTotals hesmodel.ResourceTotals
	for i, s := range schedules {
		totals, err := Aggregate(s, m.Costs)
		if err != nil {
			return nil, err
		}

		report.Rows[i] = Row{Variant: s.Variant, Schedule: s, Raw: totals}
		if s.Variant.Baseline {
			baselineTotals = totals
		}

		log.WithFields(log.Fields{
			"variant":   s.Variant.Name,
			"runtime":   totals.Runtime,
			"memory":    totals.Memory,
			"bandwidth": totals.Bandwidth,
		}).Debug("aggregated")
	}

	for i := range report.Rows {
		row := &report.Rows[i]

		row.Normalized, err = Normalize(row.Variant.Name, row.Raw, baselineTotals)
		if err != nil {
			return nil, err
		}

		if row.Variant.Baseline && !row.Normalized.IsUnit() {
			return nil, errors.Errorf(
				"baseline %s normalizes to %+v instead of all ones",
				row.Variant.Name, row.Normalized)
		}
	}

	return report, nil
}

func checkUniqueNames(variants []hesmodel.Variant) error {
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if seen[v.Name] {
			return errors.Wrapf(hesmodel.ErrInvalidVariant,
				"duplicated variant name %s", v.Name)
		}
		seen[v.Name] = true
	}

	return nil
}
