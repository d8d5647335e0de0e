package hesmodel

// ResourceTotals holds the raw per-chunk totals of one variant.
type ResourceTotals struct {
	Runtime   float64
	Memory    float64
	Bandwidth float64
}

// Get returns the total of the given dimension.
func (t ResourceTotals) Get(d Dimension) float64 {
	switch d {
	case Runtime:
		return t.Runtime
	case Memory:
		return t.Memory
	case Bandwidth:
		return t.Bandwidth
	}

	panic("unknown dimension " + d.String())
}

// NormalizedOverhead is a variant's totals divided by the baseline totals,
// dimension by dimension.
type NormalizedOverhead struct {
	Runtime   float64
	Memory    float64
	Bandwidth float64
}

// Get returns the ratio of the given dimension.
func (o NormalizedOverhead) Get(d Dimension) float64 {
	switch d {
	case Runtime:
		return o.Runtime
	case Memory:
		return o.Memory
	case Bandwidth:
		return o.Bandwidth
	}

	panic("unknown dimension " + d.String())
}

// IsUnit tells whether all the ratios are exactly one.
func (o NormalizedOverhead) IsUnit() bool {
	return o.Runtime == 1 && o.Memory == 1 && o.Bandwidth == 1
}
