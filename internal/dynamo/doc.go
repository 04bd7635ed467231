// Package dynamo provides the primitives shared by every layer of the
// integrator: the [State] vector and the error taxonomy.
//
// Errors are sentinel values matched with [errors.Is]:
//
//   - type errors: [ErrNotConvertible], [ErrGroupElementType]
//   - value errors: [ErrConstraintViolation] (carried by [ConstraintError]),
//     [ErrDimensionMismatch], [ErrInvalidStep], [ErrInvalidInterval]
//   - unsupported operations: [ErrUnsupportedOrder], [ErrUnsupportedOperation],
//     [ErrUnknownManifold], [ErrUnknownMethod], [ErrUnknownProblem],
//     [ErrUnknownParam]
//
// A failure during a run is wrapped in a [StepError] carrying the step index
// and time. Nothing is retried: a state off its manifold ends the run.
package dynamo
