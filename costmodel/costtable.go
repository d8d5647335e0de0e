// Package costmodel provides the per-operation cost table that the overhead
// model is evaluated against.
package costmodel

import (
	"math"

	"github.com/pkg/errors"

	"github.com/sarchlab/hesmodel"
)

// Lookup provides read-only access to operation costs.
type Lookup interface {
	// Cost returns the cost of one execution of the operation in the given
	// dimension. Only Runtime and Memory are held per operation.
	Cost(op hesmodel.Operation, dim hesmodel.Dimension) (float64, error)

	// Payload returns the number of elements a round of the given kind moves
	// between workers.
	Payload(kind hesmodel.RoundKind) (float64, error)
}

// An Entry holds the costs of one operation.
type Entry struct {
	// Runtime in seconds.
	Runtime float64
	// Memory as a number of elements.
	Memory int64
}

// A Table is an immutable cost table. The zero value holds no operation.
type Table struct {
	entries  map[hesmodel.Operation]Entry
	payloads map[hesmodel.RoundKind]int64
}

// NewTable creates a table from the given entries and payload sizes. The
// inputs are copied.
func NewTable(
	entries map[hesmodel.Operation]Entry,
	payloads map[hesmodel.RoundKind]int64,
) (*Table, error) {
	t := &Table{
		entries:  make(map[hesmodel.Operation]Entry, len(entries)),
		payloads: make(map[hesmodel.RoundKind]int64, len(payloads)),
	}

	for op, e := range entries {
		if err := checkEntry(op, e); err != nil {
			return nil, err
		}
		t.entries[op] = e
	}

	for kind, size := range payloads {
		if size < 0 {
			return nil, errors.Wrapf(hesmodel.ErrNegativeCost,
				"%s payload is %d", kind, size)
		}
		t.payloads[kind] = size
	}

	return t, nil
}

func checkEntry(op hesmodel.Operation, e Entry) error {
	if math.IsNaN(e.Runtime) || math.IsInf(e.Runtime, 0) {
		return errors.Wrapf(hesmodel.ErrInvalidCost,
			"%s runtime is %v", op, e.Runtime)
	}

	if e.Runtime < 0 {
		return errors.Wrapf(hesmodel.ErrNegativeCost,
			"%s runtime is %v", op, e.Runtime)
	}

	if e.Memory < 0 {
		return errors.Wrapf(hesmodel.ErrNegativeCost,
			"%s memory is %d", op, e.Memory)
	}

	return nil
}

// Cost returns the cost of one execution of the operation.
func (t *Table) Cost(
	op hesmodel.Operation,
	dim hesmodel.Dimension,
) (float64, error) {
	e, err := t.Entry(op)
	if err != nil {
		return 0, err
	}

	switch dim {
	case hesmodel.Runtime:
		return e.Runtime, nil
	case hesmodel.Memory:
		return float64(e.Memory), nil
	}

	return 0, errors.Errorf("%s cost is not held per operation", dim)
}

// Entry returns all the costs of the operation.
func (t *Table) Entry(op hesmodel.Operation) (Entry, error) {
	e, ok := t.entries[op]
	if !ok {
		return Entry{}, errors.Wrapf(hesmodel.ErrUnknownOperation,
			"no cost for %s", op)
	}

	return e, nil
}

// Payload returns the number of elements moved by a round.
func (t *Table) Payload(kind hesmodel.RoundKind) (float64, error) {
	size, ok := t.payloads[kind]
	if !ok {
		return 0, errors.Wrapf(hesmodel.ErrUnknownOperation,
			"no payload for %s rounds", kind)
	}

	return float64(size), nil
}

// With returns a copy of the table where the operation has the given costs.
func (t *Table) With(op hesmodel.Operation, e Entry) (*Table, error) {
	if err := checkEntry(op, e); err != nil {
		return nil, err
	}

	c := t.clone()
	c.entries[op] = e

	return c, nil
}

// WithPayload returns a copy of the table where rounds of the given kind move
// size elements.
func (t *Table) WithPayload(kind hesmodel.RoundKind, size int64) (*Table, error) {
	if size < 0 {
		return nil, errors.Wrapf(hesmodel.ErrNegativeCost,
			"%s payload is %d", kind, size)
	}

	c := t.clone()
	c.payloads[kind] = size

	return c, nil
}

func (t *Table) clone() *Table {
	c := &Table{
		entries:  make(map[hesmodel.Operation]Entry, len(t.entries)),
		payloads: make(map[hesmodel.RoundKind]int64, len(t.payloads)),
	}

	for op, e := range t.entries {
		c.entries[op] = e
	}

	for kind, size := range t.payloads {
		c.payloads[kind] = size
	}

	return c
}
