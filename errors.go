package hesmodel

import "github.com/pkg/errors"

// Errors reported by the model. All of them are construction errors that are
// detected before any output is produced; none of them is transient.
var (
	// ErrUnknownOperation is returned when a cost is looked up for an
	// operation that the cost table does not hold.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrIncompatiblePeriod is returned when a variant's period does not
	// divide the comparison chunk length.
	ErrIncompatiblePeriod = errors.New("incompatible period")

	// ErrEmptySchedule is returned when a schedule holds no operations.
	ErrEmptySchedule = errors.New("empty schedule")

	// ErrDivisionByZero is returned when a baseline total is zero in some
	// dimension.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidVariant is returned for variants whose definition cannot
	// produce a schedule, or when the set of variants has no single baseline.
	ErrInvalidVariant = errors.New("invalid variant")

	// ErrNegativeCost is returned when a cost table is built with a negative
	// cost.
	ErrNegativeCost = errors.New("negative cost")

	// ErrInvalidCost is returned when a cost table is built with a runtime
	// that is NaN or infinite.
	ErrInvalidCost = errors.New("invalid cost")
)
