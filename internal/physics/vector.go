package physics

import "math"

// Vector is a point or direction with one coordinate per axis.
type Vector []float64

// NewVector returns a zero vector of the given dimension.
func NewVector(dims int) Vector {
	return make(Vector, dims)
}

// Dimensions returns the number of axes.
func (v Vector) Dimensions() int {
	return len(v)
}

// Clone returns a copy that shares no storage with v.
func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Zero sets every coordinate to 0.
func (v Vector) Zero() {
	for i := range v {
		v[i] = 0
	}
}

// IsValid reports whether every coordinate is finite.
func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean length.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Axis returns the coordinate on axis i, or 0 when v has fewer axes.
func (v Vector) Axis(i int) float64 {
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}
