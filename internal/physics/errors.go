package physics

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for layout and simulation operations.
var (
	// ErrInvalidDimension indicates a dimension count that is not a positive integer.
	ErrInvalidDimension = errors.New("forcelayout: dimension must be a positive integer")

	// ErrInvalidParameter indicates a numeric setting that is NaN, infinite or out of range.
	ErrInvalidParameter = errors.New("forcelayout: invalid numeric parameter")

	// ErrMissingGraph indicates a layout was created without a graph.
	ErrMissingGraph = errors.New("forcelayout: graph is required")

	// ErrUnknownNode indicates an operation addressed a node the graph does not contain.
	ErrUnknownNode = errors.New("forcelayout: unknown node")

	// ErrDuplicateForce indicates a force name is already registered with the simulator.
	ErrDuplicateForce = errors.New("forcelayout: force already registered")

	// ErrLegacySetting indicates a configuration key that was renamed.
	ErrLegacySetting = errors.New("forcelayout: legacy setting name")
)

// ParameterError names the offending setting of an ErrInvalidParameter.
type ParameterError struct {
	Name  string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s = %v", ErrInvalidParameter, e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// NodeError carries the id of a node that could not be found.
type NodeError struct {
	ID string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownNode, e.ID)
}

func (e *NodeError) Unwrap() error {
	return ErrUnknownNode
}

// CheckFinite returns a *ParameterError when v is NaN or infinite.
func CheckFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParameterError{Name: name, Value: v}
	}
	return nil
}

// CheckDimensions reports ErrInvalidDimension for d < 1.
func CheckDimensions(d int) error {
	if d < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDimension, d)
	}
	return nil
}
