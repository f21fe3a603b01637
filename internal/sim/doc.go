// Package sim runs the force-directed simulation.
//
// A [Simulator] owns bodies, springs, a Barnes-Hut tree and an ordered list
// of named forces. Each [Simulator.Step] applies the forces in registration
// order and then integrates every unpinned body:
//
//   - nbody: rebuild the tree, then reset, repel and drag each unpinned body
//   - spring: apply Hooke's law to every spring
//
// Further forces can be added with [Simulator.AddForce].
//
// # Example
//
//	s, _ := sim.New(physics.DefaultSettings())
//	a, _ := s.AddBodyAt(physics.Vector{0, 0})
//	b, _ := s.AddBodyAt(physics.Vector{1, 0})
//	s.AddSpring(a, b, physics.Unset, physics.Unset)
//	for s.Step() > 0.01 {
//	}
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Independent simulators may run
// in parallel; they may share a [kernel.Cache].
package sim
