package sim

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/bhtree"
	"github.com/san-kum/forcelayout/internal/kernel"
	"github.com/san-kum/forcelayout/internal/physics"
)

// Simulator owns a set of bodies and springs and advances them one step at
// a time. It is not safe for concurrent use.
type Simulator struct {
	settings physics.Settings
	kernel   kernel.Kernel
	rng      physics.Random
	logger   *log.Logger

	bodies  []*physics.Body
	springs []*physics.Spring

	tree   *bhtree.Tree
	bounds kernel.Bounds
	drag   kernel.DragForce
	spring kernel.SpringForce

	forces    []namedForce
	observers []Observer

	iteration int
	lastMove  float64
}

// New validates s and creates a simulator with the nbody and spring forces
// registered.
func New(s physics.Settings, opts ...Option) (*Simulator, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = physics.NewRandom(physics.DefaultSeed)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	var (
		k   kernel.Kernel
		err error
	)
	switch {
	case o.generic:
		k, err = kernel.Generic(s.Dimensions)
	case o.cache != nil:
		k, err = o.cache.Get(s.Dimensions)
	default:
		k, err = kernel.Specialize(s.Dimensions)
	}
	if err != nil {
		return nil, err
	}

	sim := &Simulator{
		settings: s,
		kernel:   k,
		rng:      o.rng,
		logger:   o.logger,
	}
	if sim.drag, err = k.NewDragForce(&sim.settings); err != nil {
		return nil, err
	}
	if sim.spring, err = k.NewSpringForce(&sim.settings, sim.rng); err != nil {
		return nil, err
	}
	sim.tree = k.NewTree(&sim.settings, sim.rng)
	sim.bounds = k.NewBounds(&sim.settings, sim.rng)

	sim.forces = []namedForce{
		{ForceNBody, ForceFunc(sim.applyNBody)},
		{ForceSpring, ForceFunc(sim.applySprings)},
	}
	return sim, nil
}

// Step applies every registered force, integrates the bodies and returns
// the movement metric of the step.
func (s *Simulator) Step() float64 {
	for _, f := range s.forces {
		f.force.Apply(s.iteration)
	}
	s.iteration++
	s.lastMove = s.kernel.Integrate(s.bodies, s.settings.TimeStep, s.settings.AdaptiveTimeStepWeight)

	for _, obs := range s.observers {
		obs.OnStep(s.iteration, s.lastMove)
	}
	return s.lastMove
}

func (s *Simulator) applyNBody(int) {
	s.tree.Insert(s.bodies)
	if n := s.tree.Dropped(); n > 0 {
		s.logger.Debug("coincident bodies skipped", "count", n, "iteration", s.iteration)
	}
	for _, b := range s.bodies {
		if b.Pinned {
			continue
		}
		b.Reset()
		s.tree.UpdateBodyForce(b)
		s.drag.Update(b)
	}
}

func (s *Simulator) applySprings(int) {
	for _, sp := range s.springs {
		s.spring.Update(sp)
	}
}

// AddForce registers a force after the existing ones.
func (s *Simulator) AddForce(name string, f Force) error {
	if s.hasForce(name) {
		return fmt.Errorf("%w: %q", physics.ErrDuplicateForce, name)
	}
	s.forces = append(s.forces, namedForce{name, f})
	s.logger.Debug("force registered", "name", name)
	return nil
}

// RemoveForce unregisters a force and reports whether it was present.
func (s *Simulator) RemoveForce(name string) bool {
	i := slices.IndexFunc(s.forces, func(f namedForce) bool { return f.name == name })
	if i < 0 {
		return false
	}
	s.forces = slices.Delete(s.forces, i, i+1)
	s.logger.Debug("force removed", "name", name)
	return true
}

// Forces lists the registered force names in application order.
func (s *Simulator) Forces() []string {
	names := make([]string, len(s.forces))
	for i, f := range s.forces {
		names[i] = f.name
	}
	return names
}

func (s *Simulator) hasForce(name string) bool {
	for _, f := range s.forces {
		if f.name == name {
			return true
		}
	}
	return false
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// AddBody adds an existing body. Its vectors must match the simulator's
// dimension count and its mass must be positive and finite.
func (s *Simulator) AddBody(b *physics.Body) error {
	if b == nil {
		return fmt.Errorf("%w: nil body", physics.ErrInvalidParameter)
	}
	d := s.settings.Dimensions
	if len(b.Pos) != d || len(b.Velocity) != d || len(b.Force) != d {
		return fmt.Errorf("%w: body has %d axes, simulator %d", physics.ErrInvalidDimension, len(b.Pos), d)
	}
	if err := physics.CheckFinite("mass", b.Mass); err != nil {
		return err
	}
	if b.Mass <= 0 {
		return &physics.ParameterError{Name: "mass", Value: b.Mass}
	}
	if !b.Pos.IsValid() {
		return fmt.Errorf("%w: body position %v", physics.ErrInvalidParameter, b.Pos)
	}
	s.bodies = append(s.bodies, b)
	return nil
}

// AddBodyAt creates a unit-mass body at pos and adds it.
func (s *Simulator) AddBodyAt(pos physics.Vector) (*physics.Body, error) {
	for i, x := range pos {
		if err := physics.CheckFinite(physics.AxisName(i), x); err != nil {
			return nil, err
		}
	}
	b := s.kernel.NewBody(pos...)
	b.Debug = s.settings.Debug
	s.bodies = append(s.bodies, b)
	return b, nil
}

// RemoveBody removes b and reports whether it was present. Removing the
// last body resets the bounds.
func (s *Simulator) RemoveBody(b *physics.Body) bool {
	i := slices.Index(s.bodies, b)
	if i < 0 {
		return false
	}
	s.bodies = slices.Delete(s.bodies, i, i+1)
	if len(s.bodies) == 0 {
		s.bounds.Reset()
	}
	return true
}

// AddSpring connects two bodies. Negative length or coefficient use the
// simulator defaults.
func (s *Simulator) AddSpring(from, to *physics.Body, length, coefficient float64) (*physics.Spring, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("%w: spring needs two bodies", physics.ErrInvalidParameter)
	}
	if err := physics.CheckFinite("springLength", length); err != nil {
		return nil, err
	}
	if err := physics.CheckFinite("springCoefficient", coefficient); err != nil {
		return nil, err
	}
	sp := physics.NewSpring(from, to, length, coefficient)
	s.springs = append(s.springs, sp)
	return sp, nil
}

// RemoveSpring removes sp and reports whether it was present.
func (s *Simulator) RemoveSpring(sp *physics.Spring) bool {
	i := slices.Index(s.springs, sp)
	if i < 0 {
		return false
	}
	s.springs = slices.Delete(s.springs, i, i+1)
	return true
}

// Bodies returns the body slice. Callers must not modify it.
func (s *Simulator) Bodies() []*physics.Body { return s.bodies }

// Springs returns the spring slice. Callers must not modify it.
func (s *Simulator) Springs() []*physics.Spring { return s.springs }

// BestNewBodyPosition suggests a position for a new body near neighbors, or
// near the center of the last computed bounding box when there are none.
func (s *Simulator) BestNewBodyPosition(neighbors []*physics.Body) physics.Vector {
	return s.bounds.BestNewPosition(neighbors)
}

// BoundingBox recomputes the box around all bodies.
func (s *Simulator) BoundingBox() physics.Box {
	s.bounds.Update(s.bodies)
	return s.bounds.Box()
}

// ForceVectorLength is the length of the vector whose components are the
// summed absolute forces on each axis.
func (s *Simulator) ForceVectorLength() float64 {
	total := make(physics.Vector, s.settings.Dimensions)
	for _, b := range s.bodies {
		for i, f := range b.Force {
			if f < 0 {
				f = -f
			}
			total[i] += f
		}
	}
	return total.Norm()
}

// Iteration is the number of completed steps.
func (s *Simulator) Iteration() int { return s.iteration }

// LastMovement is the movement returned by the last Step.
func (s *Simulator) LastMovement() float64 { return s.lastMove }

// Tree exposes the Barnes-Hut tree for inspection.
func (s *Simulator) Tree() *bhtree.Tree { return s.tree }

// Kernel returns the kernel the simulator was built with.
func (s *Simulator) Kernel() kernel.Kernel { return s.kernel }

// Random returns the simulator's random source.
func (s *Simulator) Random() physics.Random { return s.rng }
