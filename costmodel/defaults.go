package costmodel

import "github.com/sarchlab/hesmodel"

// Runtimes in seconds, measured on the MNIST classifier.
const (
	ForwardPropRuntime     = 0.0164
	BackPropRuntime        = 0.0055
	RandomShiftRuntime     = 0.0151
	ParameterUpdateRuntime = 0.001196
)

// StochasticPayload is the payload of a stochastic round: one random seed and
// one scalar cost.
const StochasticPayload = 2

// DefaultRuntimes returns the measured runtime of every operation.
//
// Transmit, Receive and Combine were not measured and are taken as zero. This
// can only make the hybrid strategy look worse, since the baseline moves far
// more data in each of them, so any reported saving is a lower bound.
func DefaultRuntimes() map[hesmodel.Operation]float64 {
	return map[hesmodel.Operation]float64{
		hesmodel.ForwardProp:     ForwardPropRuntime,
		hesmodel.BackProp:        BackPropRuntime,
		hesmodel.RandomShift:     RandomShiftRuntime,
		hesmodel.ParameterUpdate: ParameterUpdateRuntime,
		hesmodel.Transmit:        0,
		hesmodel.Receive:         0,
		hesmodel.Combine:         0,
	}
}

// MemoryFromNetwork derives the working memory of every operation from the
// shape of the trained network. The update reuses data that is already cached
// and the random shift is applied in place. Network operations are assumed
// to need about the same buffers in all strategies and count as zero.
func MemoryFromNetwork(n hesmodel.Network) map[hesmodel.Operation]int64 {
	return map[hesmodel.Operation]int64{
		hesmodel.ForwardProp:     n.ForwardMemory(),
		hesmodel.BackProp:        n.BackpropMemory(),
		hesmodel.RandomShift:     0,
		hesmodel.ParameterUpdate: 0,
		hesmodel.Transmit:        0,
		hesmodel.Receive:         0,
		hesmodel.Combine:         0,
	}
}

// PayloadsFromNetwork returns the payload of each round kind for the given
// network.
func PayloadsFromNetwork(n hesmodel.Network) map[hesmodel.RoundKind]int64 {
	return map[hesmodel.RoundKind]int64{
		hesmodel.FullGradient: n.ParameterCount(),
		hesmodel.Stochastic:   StochasticPayload,
	}
}

// Assemble builds a table from per-dimension maps. Operations missing from
// either map get a zero cost in that dimension.
func Assemble(
	runtimes map[hesmodel.Operation]float64,
	memory map[hesmodel.Operation]int64,
	payloads map[hesmodel.RoundKind]int64,
) (*Table, error) {
	entries := make(map[hesmodel.Operation]Entry)

	for op, r := range runtimes {
		e := entries[op]
		e.Runtime = r
		entries[op] = e
	}

	for op, m := range memory {
		e := entries[op]
		e.Memory = m
		entries[op] = e
	}

	return NewTable(entries, payloads)
}

// Default returns the table of measured runtimes with memory and payloads
// derived from the default network.
func Default() *Table {
	n := hesmodel.DefaultNetwork()

	t, err := Assemble(DefaultRuntimes(), MemoryFromNetwork(n), PayloadsFromNetwork(n))
	if err != nil {
		panic(err)
	}

	return t
}
