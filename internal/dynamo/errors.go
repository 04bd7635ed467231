package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration on homogeneous manifolds.
var (
	// ErrNotConvertible indicates an initial value that cannot be turned into a State.
	ErrNotConvertible = errors.New("liesim: value not convertible to a state vector")

	// ErrGroupElementType indicates a group element of the wrong representation for an action.
	ErrGroupElementType = errors.New("liesim: group element has wrong type for this action")

	// ErrDimensionMismatch indicates mismatched vector or matrix dimensions.
	ErrDimensionMismatch = errors.New("liesim: dimension mismatch")

	// ErrConstraintViolation indicates a state that does not lie on its manifold.
	ErrConstraintViolation = errors.New("liesim: manifold constraint violated")

	// ErrUnsupportedOrder indicates a dexpinv truncation order that is not implemented.
	ErrUnsupportedOrder = errors.New("liesim: dexpinv not implemented for order >= 6")

	// ErrUnsupportedOperation indicates an operation undefined for the given operands.
	ErrUnsupportedOperation = errors.New("liesim: unsupported operation")

	// ErrUnknownManifold indicates an unrecognized manifold selector.
	ErrUnknownManifold = errors.New("liesim: unknown manifold")

	// ErrUnknownMethod indicates an unrecognized method selector.
	ErrUnknownMethod = errors.New("liesim: unknown method")

	// ErrUnknownProblem indicates an unrecognized problem name.
	ErrUnknownProblem = errors.New("liesim: unknown problem")

	// ErrUnknownParam indicates a parameter name a problem does not define.
	ErrUnknownParam = errors.New("liesim: unknown parameter")

	// ErrInvalidStep indicates a non-positive step size.
	ErrInvalidStep = errors.New("liesim: step size must be positive")

	// ErrInvalidInterval indicates an end time before the start time.
	ErrInvalidInterval = errors.New("liesim: t_end must not precede t_start")
)

// ConstraintError reports the observed value of a manifold's defining quantity.
type ConstraintError struct {
	Manifold string
	Quantity string
	Got      float64
	Want     float64
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: y does not lie on the %s, %s should be %g, was %.17g",
		ErrConstraintViolation, e.Manifold, e.Quantity, e.Want, e.Got)
}

func (e *ConstraintError) Unwrap() error {
	return ErrConstraintViolation
}

// StepError wraps an error with integration context.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
