package physics

import "fmt"

// Body is a point mass taking part in the simulation.
//
// Pos, Velocity and Force always have the same length: the simulator's
// dimension count. Force is rebuilt from scratch on every step.
type Body struct {
	// ID is the graph node the body stands for, if any.
	ID string

	Pos      Vector
	Velocity Vector
	Force    Vector
	Mass     float64

	// SpringCount and SpringLength accumulate the number and total length of
	// springs touching the body during the current step. The adaptive time
	// step reads them.
	SpringCount  int
	SpringLength float64

	// Pinned bodies keep their position during integration.
	Pinned bool

	// Debug enables range checks in SetPosition and SetAxis.
	Debug bool
}

// NewBody allocates a unit-mass body with the given position. Missing
// coordinates are 0 and extra ones are ignored.
func NewBody(dims int, coords ...float64) *Body {
	b := &Body{
		Pos:      make(Vector, dims),
		Velocity: make(Vector, dims),
		Force:    make(Vector, dims),
		Mass:     1,
	}
	copy(b.Pos, coords)
	return b
}

// Dimensions returns the axis count of the body.
func (b *Body) Dimensions() int {
	return len(b.Pos)
}

// Reset clears the force and spring accumulators before a step.
func (b *Body) Reset() {
	for i := range b.Force {
		b.Force[i] = 0
	}
	b.SpringCount = 0
	b.SpringLength = 0
}

// SetPosition moves the body. Missing coordinates become 0 and extra ones
// are ignored. With Debug set, non-finite coordinates are rejected and
// nothing is modified.
func (b *Body) SetPosition(coords ...float64) error {
	n := min(len(coords), len(b.Pos))
	if b.Debug {
		for i := 0; i < n; i++ {
			if err := CheckFinite(AxisName(i), coords[i]); err != nil {
				return err
			}
		}
	}
	copy(b.Pos, coords[:n])
	clear(b.Pos[n:])
	return nil
}

// SetAxis sets a single coordinate.
func (b *Body) SetAxis(axis int, v float64) error {
	if axis < 0 || axis >= len(b.Pos) {
		return fmt.Errorf("%w: axis %d outside %d dimensions", ErrInvalidDimension, axis, len(b.Pos))
	}
	if b.Debug {
		if err := CheckFinite(AxisName(axis), v); err != nil {
			return err
		}
	}
	b.Pos[axis] = v
	return nil
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vector
	Max Vector
}

// Center returns the midpoint of the box.
func (b Box) Center() Vector {
	c := make(Vector, len(b.Min))
	for i := range c {
		c[i] = (b.Min[i] + b.Max[i]) / 2
	}
	return c
}

// Size returns the extent of the box on each axis.
func (b Box) Size() Vector {
	s := make(Vector, len(b.Min))
	for i := range s {
		s[i] = b.Max[i] - b.Min[i]
	}
	return s
}
