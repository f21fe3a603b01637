// Package kernel provides the per-dimension numeric units of the simulator.
//
// [Specialize] maps a dimension count to a [Kernel]: [Plane] and [Space]
// are written out axis by axis, every other count uses a loop-based
// implementation that evaluates the same expressions in the same order.
// [Generic] returns the loop-based kernel for any count so the two can be
// compared directly.
//
// A [Kernel] creates bodies, bounds trackers, drag and spring forces and
// Barnes-Hut trees, and integrates bodies. Kernels carry no state and may be
// shared; [Cache] keeps one per dimension count for the simulators that
// share it.
package kernel
