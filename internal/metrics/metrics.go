// Package metrics collects per-step measurements of a simulation. Every
// metric is a sim.Observer.
package metrics

// Metric is a named measurement updated after each step.
type Metric interface {
	Name() string
	OnStep(iteration int, movement float64)
	Value() float64
	Reset()
}
