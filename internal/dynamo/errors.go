package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors raised by the outer layers. The numerical core never
// returns errors; these wrap what drivers detect when inspecting results.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrMaxIterations indicates the driver gave up before reaching its target.
	ErrMaxIterations = errors.New("dynamo: iteration limit reached before target")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the propagation was interrupted.
	ErrContextCanceled = errors.New("dynamo: propagation canceled by context")

	// ErrUnknownChart indicates a chart name missing from the registry.
	ErrUnknownChart = errors.New("dynamo: unknown chart")

	// ErrNoConversion indicates no transition is registered between two charts.
	ErrNoConversion = errors.New("dynamo: no conversion between charts")

	// ErrDimensionMismatch indicates mismatched state lengths.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and body")
)

// SimulationError wraps an error with propagation context.
type SimulationError struct {
	Step    int
	Param   float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (lambda=%.6g): %v", e.Step, e.Param, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
