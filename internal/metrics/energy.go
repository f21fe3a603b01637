package metrics

import (
	"math"

	"github.com/san-kum/forcelayout/internal/physics"
)

// Energy tracks the total kinetic energy of a body set.
type Energy struct {
	name    string
	bodies  func() []*physics.Body
	current float64
	peak    float64
	samples int
}

// NewEnergy reads the bodies through fn after every step.
func NewEnergy(fn func() []*physics.Body) *Energy {
	return &Energy{
		name:   "energy",
		bodies: fn,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnStep(int, float64) {
	e.current = KineticEnergy(e.bodies())
	e.peak = math.Max(e.peak, e.current)
	e.samples++
}

// Value is the energy after the latest step.
func (e *Energy) Value() float64 { return e.current }

// Peak is the largest energy seen since the last Reset.
func (e *Energy) Peak() float64 { return e.peak }

func (e *Energy) Reset() {
	e.current = 0
	e.peak = 0
	e.samples = 0
}

// KineticEnergy sums m|v|^2/2 over bodies.
func KineticEnergy(bodies []*physics.Body) float64 {
	total := 0.0
	for _, b := range bodies {
		v2 := 0.0
		for _, v := range b.Velocity {
			v2 += v * v
		}
		total += 0.5 * b.Mass * v2
	}
	return total
}
