// Package hesmodel provides a resource-overhead model that compares
// synchronous parallel batch gradient descent with the hybrid evolutionary
// strategy family.
package hesmodel

import (
	"strconv"

	"github.com/pkg/errors"
)

// An Operation is a primitive unit of work with a fixed cost.
type Operation int

// Operation constants
const (
	ForwardProp Operation = iota
	BackProp
	RandomShift
	ParameterUpdate
	Transmit
	Receive
	Combine
)

var operationNames = map[Operation]string{
	ForwardProp:     "ForwardProp",
	BackProp:        "BackProp",
	RandomShift:     "RandomShift",
	ParameterUpdate: "ParameterUpdate",
	Transmit:        "Transmit",
	Receive:         "Receive",
	Combine:         "Combine",
}

// Operations returns every primitive operation in canonical order. Sums over
// operations always walk this order so that results are reproducible bit for
// bit.
func Operations() []Operation {
	return []Operation{
		ForwardProp,
		BackProp,
		RandomShift,
		ParameterUpdate,
		Transmit,
		Receive,
		Combine,
	}
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}

	return "Operation(" + strconv.Itoa(int(o)) + ")"
}

// ParseOperation returns the operation with the given name.
func ParseOperation(name string) (Operation, error) {
	for op, n := range operationNames {
		if n == name {
			return op, nil
		}
	}

	return 0, errors.Wrapf(ErrUnknownOperation, "operation %q", name)
}

// A Dimension is one of the resources the model accounts for.
type Dimension int

// Dimension constants
const (
	Runtime Dimension = iota
	Memory
	Bandwidth
)

// Dimensions returns all the dimensions in report order.
func Dimensions() []Dimension {
	return []Dimension{Runtime, Memory, Bandwidth}
}

func (d Dimension) String() string {
	switch d {
	case Runtime:
		return "runtime"
	case Memory:
		return "memory"
	case Bandwidth:
		return "bandwidth"
	}

	return "Dimension(" + strconv.Itoa(int(d)) + ")"
}

// A RoundKind tells what an iteration exchanges with the other workers.
type RoundKind int

// RoundKind constants
const (
	// FullGradient rounds compute and exchange the whole parameter set.
	FullGradient RoundKind = iota
	// Stochastic rounds perturb the parameters with a random shift and only
	// exchange a seed and a scalar cost.
	Stochastic
)

// RoundKinds returns all round kinds.
func RoundKinds() []RoundKind {
	return []RoundKind{FullGradient, Stochastic}
}

func (k RoundKind) String() string {
	switch k {
	case FullGradient:
		return "full-gradient"
	case Stochastic:
		return "stochastic"
	}

	return "RoundKind(" + strconv.Itoa(int(k)) + ")"
}
