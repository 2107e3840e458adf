package arbor

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidState marks operations on an inactive TrailPointer, or on a
	// FittedBlock whose instance or trail invariants do not hold.
	ErrInvalidState = errors.New("arbor: invalid state")

	// ErrOutOfOrder marks traversals whose endpoints are not in nested order
	// or do not share a root.
	ErrOutOfOrder = errors.New("arbor: endpoints out of order")
)

// invalidStatef returns an assertion failure marked with ErrInvalidState.
func invalidStatef(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedWithDepthf(1, format, args...), ErrInvalidState)
}

// outOfOrderf returns an assertion failure marked with ErrOutOfOrder.
func outOfOrderf(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedWithDepthf(1, format, args...), ErrOutOfOrder)
}
