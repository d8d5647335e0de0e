// Package schedule lays out how many times each primitive operation runs
// within one comparison chunk for every variant.
package schedule

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/sarchlab/hesmodel"
)

// IterationOps returns the operations one iteration of the given kind runs,
// in execution order.
func IterationOps(kind hesmodel.RoundKind) []hesmodel.Operation {
	switch kind {
	case hesmodel.FullGradient:
		return []hesmodel.Operation{
			hesmodel.ForwardProp,
			hesmodel.BackProp,
			hesmodel.ParameterUpdate,
			hesmodel.Transmit,
			hesmodel.Receive,
			hesmodel.Combine,
		}
	case hesmodel.Stochastic:
		return []hesmodel.Operation{
			hesmodel.ForwardProp,
			hesmodel.RandomShift,
			hesmodel.ParameterUpdate,
			hesmodel.Transmit,
			hesmodel.Receive,
			hesmodel.Combine,
		}
	}

	panic("unknown round kind " + kind.String())
}

// An Entry tells how many times an operation runs in a chunk.
type Entry struct {
	Op    hesmodel.Operation
	Count int
}

// A Schedule is the per-chunk operation multiset of one variant. The chunk
// repeats the variant's period Multiplier times, so the iterations are never
// materialized.
type Schedule struct {
	Variant     hesmodel.Variant
	ChunkLength int
	Multiplier  int

	// Entries holds the operations that run at least once, in canonical
	// operation order.
	Entries []Entry
}

// Count returns how many times the operation runs in the chunk.
func (s *Schedule) Count(op hesmodel.Operation) int {
	for _, e := range s.Entries {
		if e.Op == op {
			return e.Count
		}
	}

	return 0
}

// RoundCount returns the number of iterations of the given kind in the chunk.
func (s *Schedule) RoundCount(kind hesmodel.RoundKind) int {
	return s.Multiplier * periodRounds(s.Variant, kind)
}

func periodRounds(v hesmodel.Variant, kind hesmodel.RoundKind) int {
	switch kind {
	case hesmodel.FullGradient:
		return v.FullGradientRounds
	case hesmodel.Stochastic:
		return v.StochasticRounds()
	}

	return 0
}

// RoundKindAt returns the kind of the i-th iteration of the chunk, counting
// from zero. Within each period the full-gradient iterations run first.
func (s *Schedule) RoundKindAt(i int) hesmodel.RoundKind {
	if i%s.Variant.Period < s.Variant.FullGradientRounds {
		return hesmodel.FullGradient
	}

	return hesmodel.Stochastic
}

// IsEmpty tells whether no operation runs in the chunk.
func (s *Schedule) IsEmpty() bool {
	return len(s.Entries) == 0
}

// GCD returns the greatest common divisor of two positive integers.
func GCD(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// LCM returns the least common multiple of two positive integers. It fails
// with ErrIncompatiblePeriod if the result does not fit in an int.
func LCM(a, b int) (int, error) {
	if a <= 0 || b <= 0 {
		return 0, errors.Wrapf(hesmodel.ErrIncompatiblePeriod,
			"lcm of %d and %d", a, b)
	}

	q := a / GCD(a, b)
	if q > math.MaxInt/b {
		return 0, errors.Wrapf(hesmodel.ErrIncompatiblePeriod,
			"lcm of %d and %d overflows", a, b)
	}

	return q * b, nil
}

// ChunkLength returns the least common multiple of the periods of the
// variants, the shortest window over which every pattern repeats a whole
// number of times.
func ChunkLength(variants []hesmodel.Variant) (int, error) {
	if len(variants) == 0 {
		return 0, errors.Wrap(hesmodel.ErrInvalidVariant, "no variants")
	}

	chunk := 1
	for _, v := range variants {
		if err := v.Validate(); err != nil {
			return 0, err
		}

		next, err := LCM(chunk, v.Period)
		if err != nil {
			return 0, errors.Wrapf(err, "chunk length at variant %s", v.Name)
		}
		chunk = next
	}

	return chunk, nil
}

// A Builder builds the schedules of the variants over a common chunk.
type Builder struct {
	chunkLength int
}

// NewBuilder creates a builder whose chunk spans all the given variants.
func NewBuilder(variants []hesmodel.Variant) (*Builder, error) {
	chunk, err := ChunkLength(variants)
	if err != nil {
		return nil, err
	}

	return &Builder{chunkLength: chunk}, nil
}

// NewBuilderWithChunkLength creates a builder with a fixed chunk length.
// Variants whose period does not divide it cannot be built.
func NewBuilderWithChunkLength(chunkLength int) (*Builder, error) {
	if chunkLength <= 0 {
		return nil, errors.Wrapf(hesmodel.ErrIncompatiblePeriod,
			"chunk length %d", chunkLength)
	}

	return &Builder{chunkLength: chunkLength}, nil
}

// ChunkLength returns the number of iterations in a chunk.
func (b *Builder) ChunkLength() int {
	return b.chunkLength
}

// Build returns the schedule of the variant over one chunk. Within each
// period the full-gradient iterations run first.
func (b *Builder) Build(v hesmodel.Variant) (*Schedule, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if b.chunkLength%v.Period != 0 {
		return nil, errors.Wrapf(hesmodel.ErrIncompatiblePeriod,
			"variant %s has period %d, which does not divide chunk length %d",
			v.Name, v.Period, b.chunkLength)
	}

	multiplier := b.chunkLength / v.Period

	s := &Schedule{
		Variant:     v,
		ChunkLength: b.chunkLength,
		Multiplier:  multiplier,
	}

	perPeriod := make(map[hesmodel.Operation]int)
	for _, kind := range hesmodel.RoundKinds() {
		for _, op := range IterationOps(kind) {
			perPeriod[op] += periodRounds(v, kind)
		}
	}

	for _, op := range hesmodel.Operations() {
		if perPeriod[op] > 0 {
			s.Entries = append(s.Entries, Entry{Op: op, Count: multiplier * perPeriod[op]})
		}
	}

	log.WithFields(log.Fields{
		"variant":      v.Name,
		"chunk":        b.chunkLength,
		"multiplier":   multiplier,
		"fullGradient": s.RoundCount(hesmodel.FullGradient),
		"stochastic":   s.RoundCount(hesmodel.Stochastic),
	}).Debug("schedule built")

	return s, nil
}

// BuildAll builds the schedules of all the variants over their common chunk,
// keeping the order of the input.
func BuildAll(variants []hesmodel.Variant) ([]*Schedule, error) {
	b, err := NewBuilder(variants)
	if err != nil {
		return nil, err
	}

	schedules := make([]*Schedule, 0, len(variants))
	for _, v := range variants {
		s, err := b.Build(v)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}

	return schedules, nil
}
