package layout

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/physics"
)

// StableThreshold is the per-body movement at or below which a step counts
// as stable.
const StableThreshold = 0.01

// Graph is what a Layout needs from the graph it follows. *graph.Graph
// implements it.
type Graph interface {
	ForEachNode(fn func(*graph.Node))
	ForEachLink(fn func(*graph.Link))
	NodeCount() int
	LinkCount() int
	Node(id string) *graph.Node
	Link(id string) *graph.Link
	HasLink(from, to string) *graph.Link
	Links(id string) []*graph.Link
	Subscribe(fn func([]graph.Change)) (unsubscribe func())
}

// Simulator is the physics engine behind a Layout. *sim.Simulator
// implements it.
type Simulator interface {
	Step() float64
	Dimensions() int
	AddBodyAt(pos physics.Vector) (*physics.Body, error)
	RemoveBody(b *physics.Body) bool
	AddSpring(from, to *physics.Body, length, coefficient float64) (*physics.Spring, error)
	RemoveSpring(s *physics.Spring) bool
	BestNewBodyPosition(neighbors []*physics.Body) physics.Vector
	BoundingBox() physics.Box
	ForceVectorLength() float64
}

// Layout keeps a simulator in sync with a graph. It is not safe for
// concurrent use, and the graph must not be mutated concurrently with it.
type Layout struct {
	graph     Graph
	sim       Simulator
	logger    *log.Logger
	mass      MassFunc
	transform SpringTransform

	bodies  map[string]*physics.Body
	order   []string
	springs map[string]*physics.Spring

	unsubscribe func()
	subscribers []subscriber
	nextSub     int

	wasStable bool
	disposed  bool
	lastMove  float64
}

// New creates a layout for g and starts following its changes. Every node
// gets a body and every link a spring before New returns.
func New(g Graph, opts ...Option) (*Layout, error) {
	if g == nil {
		return nil, physics.ErrMissingGraph
	}
	if gg, ok := g.(*graph.Graph); ok && gg == nil {
		return nil, physics.ErrMissingGraph
	}
	o := options{settings: physics.DefaultSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.factory == nil {
		o.factory = o.defaultFactory()
	}

	s, err := o.factory(o.settings)
	if err != nil {
		return nil, fmt.Errorf("create simulator: %w", err)
	}
	l := &Layout{
		graph:     g,
		sim:       s,
		logger:    o.logger,
		mass:      o.mass,
		transform: o.transform,
		bodies:    make(map[string]*physics.Body),
		springs:   make(map[string]*physics.Spring),
	}
	if l.mass == nil {
		l.mass = l.defaultMass
	}

	var initErr error
	g.ForEachNode(func(n *graph.Node) {
		if initErr == nil {
			_, initErr = l.initBody(n.ID)
		}
	})
	g.ForEachLink(func(lk *graph.Link) {
		if initErr == nil {
			initErr = l.initLink(lk)
		}
	})
	if initErr != nil {
		return nil, initErr
	}

	l.unsubscribe = g.Subscribe(l.onGraphChanged)
	return l, nil
}

// Step advances the simulation once and reports whether the layout is
// stable. A layout without bodies is stable without stepping, and a
// disposed layout does nothing and reports true.
func (l *Layout) Step() bool {
	if l.disposed {
		return true
	}
	if len(l.bodies) == 0 {
		l.updateStable(true, 0)
		return true
	}
	l.lastMove = l.sim.Step()
	l.fire(Event{Type: EventStep, Move: l.lastMove})

	stable := l.lastMove/float64(len(l.bodies)) <= StableThreshold
	l.updateStable(stable, l.lastMove)
	return stable
}

func (l *Layout) updateStable(stable bool, move float64) {
	if stable == l.wasStable {
		return
	}
	l.wasStable = stable
	l.logger.Debug("stability changed", "stable", stable, "move", move)
	if stable {
		l.fire(Event{Type: EventStable, Move: move})
	} else {
		l.fire(Event{Type: EventUnstable, Move: move})
	}
}

// NodePosition returns the live position of a node's body. The slice is
// owned by the body and changes as the layout steps.
func (l *Layout) NodePosition(id string) (physics.Vector, error) {
	b, err := l.initializedBody(id)
	if err != nil {
		return nil, err
	}
	return b.Pos, nil
}

// SetNodePosition moves a node. Missing coordinates become 0.
func (l *Layout) SetNodePosition(id string, coords ...float64) error {
	b, err := l.initializedBody(id)
	if err != nil {
		return err
	}
	return b.SetPosition(coords...)
}

// LinkPosition returns the positions of a link's endpoints.
func (l *Layout) LinkPosition(linkID string) (from, to physics.Vector, ok bool) {
	s, ok := l.springs[linkID]
	if !ok {
		return nil, nil, false
	}
	return s.From.Pos, s.To.Pos, true
}

// GraphRect returns the bounding box of all bodies.
func (l *Layout) GraphRect() physics.Box { return l.sim.BoundingBox() }

// ForEachBody calls fn for every body in the order nodes were first seen.
func (l *Layout) ForEachBody(fn func(id string, b *physics.Body)) {
	for _, id := range slices.Clone(l.order) {
		if b, ok := l.bodies[id]; ok {
			fn(id, b)
		}
	}
}

// PinNode pins or releases a node.
func (l *Layout) PinNode(id string, pinned bool) error {
	b, err := l.initializedBody(id)
	if err != nil {
		return err
	}
	b.Pinned = pinned
	return nil
}

func (l *Layout) IsNodePinned(id string) (bool, error) {
	b, err := l.initializedBody(id)
	if err != nil {
		return false, err
	}
	return b.Pinned, nil
}

// Body returns the body of a node, or nil if the node has none.
func (l *Layout) Body(id string) *physics.Body { return l.bodies[id] }

// Spring returns the spring of a link, or nil.
func (l *Layout) Spring(linkID string) *physics.Spring { return l.springs[linkID] }

// SpringBetween returns the spring of the first link from one node to
// another, or nil.
func (l *Layout) SpringBetween(from, to string) *physics.Spring {
	lk := l.graph.HasLink(from, to)
	if lk == nil {
		return nil
	}
	return l.springs[lk.ID]
}

// ForceVectorLength is the length of the per-axis sum of absolute forces.
func (l *Layout) ForceVectorLength() float64 { return l.sim.ForceVectorLength() }

// LastMove is the movement of the last step.
func (l *Layout) LastMove() float64 { return l.lastMove }

// BodyCount is the number of tracked bodies.
func (l *Layout) BodyCount() int { return len(l.bodies) }

func (l *Layout) Simulator() Simulator { return l.sim }
func (l *Layout) Graph() Graph         { return l.graph }

// Disposed reports whether Dispose has been called.
func (l *Layout) Disposed() bool { return l.disposed }

// Dispose stops following the graph and fires EventDisposed. Later calls do
// nothing. Bodies stay readable.
func (l *Layout) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	l.unsubscribe()
	l.fire(Event{Type: EventDisposed})
	l.subscribers = nil
}

func (l *Layout) onGraphChanged(changes []graph.Change) {
	for _, c := range changes {
		var err error
		switch {
		case c.Type == graph.Added && c.Node != nil:
			_, err = l.initBody(c.Node.ID)
		case c.Type == graph.Added && c.Link != nil:
			err = l.initLink(c.Link)
		case c.Type == graph.Removed && c.Node != nil:
			l.releaseNode(c.Node.ID)
		case c.Type == graph.Removed && c.Link != nil:
			err = l.releaseLink(c.Link)
		}
		if err != nil {
			l.logger.Error("graph change not applied", "change", c.Type, "err", err)
		}
	}
}

func (l *Layout) initializedBody(id string) (*physics.Body, error) {
	if b, ok := l.bodies[id]; ok {
		return b, nil
	}
	return l.initBody(id)
}

func (l *Layout) initBody(id string) (*physics.Body, error) {
	if b, ok := l.bodies[id]; ok {
		return b, nil
	}
	n := l.graph.Node(id)
	if n == nil {
		return nil, &physics.NodeError{ID: id}
	}

	mass, err := l.nodeMass(id)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", id, err)
	}
	pos := physics.Vector(n.Position)
	if pos == nil {
		pos = l.sim.BestNewBodyPosition(l.neighborBodies(id))
	}
	b, err := l.sim.AddBodyAt(pos)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", id, err)
	}
	b.ID = id
	b.Mass = mass
	if n.Pinned {
		b.Pinned = true
	}
	l.bodies[id] = b
	l.order = append(l.order, id)
	l.logger.Debug("body initialized", "node", id, "pos", b.Pos)
	return b, nil
}

func (l *Layout) releaseNode(id string) {
	b, ok := l.bodies[id]
	if !ok {
		return
	}
	delete(l.bodies, id)
	if i := slices.Index(l.order, id); i >= 0 {
		l.order = slices.Delete(l.order, i, i+1)
	}
	l.sim.RemoveBody(b)
	l.logger.Debug("body released", "node", id)
}

// initLink validates the link and both endpoint masses before adding the
// spring, so a rejected link leaves spring state and masses untouched.
func (l *Layout) initLink(lk *graph.Link) error {
	length := physics.Unset
	if lk.Length > 0 {
		length = lk.Length
	}
	if err := physics.CheckFinite("springLength", length); err != nil {
		return fmt.Errorf("link %s: %w", lk.ID, err)
	}
	from, err := l.initializedBody(lk.From)
	if err != nil {
		return err
	}
	to, err := l.initializedBody(lk.To)
	if err != nil {
		return err
	}
	fromMass, err := l.nodeMass(lk.From)
	if err != nil {
		return fmt.Errorf("link %s: %w", lk.ID, err)
	}
	toMass, err := l.nodeMass(lk.To)
	if err != nil {
		return fmt.Errorf("link %s: %w", lk.ID, err)
	}

	s, err := l.sim.AddSpring(from, to, length, physics.Unset)
	if err != nil {
		return fmt.Errorf("link %s: %w", lk.ID, err)
	}
	from.Mass = fromMass
	to.Mass = toMass
	if lk.Weight != 0 {
		s.Weight = lk.Weight
	}
	if l.transform != nil {
		l.transform(lk, s)
	}
	l.springs[lk.ID] = s
	l.logger.Debug("spring created", "link", lk.ID)
	return nil
}

func (l *Layout) releaseLink(lk *graph.Link) error {
	s, ok := l.springs[lk.ID]
	if !ok {
		return nil
	}
	delete(l.springs, lk.ID)
	l.sim.RemoveSpring(s)
	l.logger.Debug("spring released", "link", lk.ID)

	for _, id := range []string{lk.From, lk.To} {
		if _, ok := l.bodies[id]; !ok || l.graph.Node(id) == nil {
			continue
		}
		if err := l.updateMass(id); err != nil {
			return err
		}
	}
	return nil
}

func (l *Layout) updateMass(id string) error {
	b, ok := l.bodies[id]
	if !ok {
		return nil
	}
	m, err := l.nodeMass(id)
	if err != nil {
		return err
	}
	b.Mass = m
	return nil
}

// nodeMass returns the mass a node's body should have, rejecting values the
// simulator cannot use.
func (l *Layout) nodeMass(id string) (float64, error) {
	m := l.mass(id)
	if math.IsNaN(m) || math.IsInf(m, 0) || m <= 0 {
		return 0, &physics.ParameterError{Name: "mass", Value: m}
	}
	return m, nil
}

func (l *Layout) defaultMass(id string) float64 {
	return 1 + float64(len(l.graph.Links(id)))/3
}

// neighborBodies returns the bodies already placed for a node's neighbors.
func (l *Layout) neighborBodies(id string) []*physics.Body {
	var out []*physics.Body
	for _, lk := range l.graph.Links(id) {
		other := lk.From
		if other == id {
			other = lk.To
		}
		if b, ok := l.bodies[other]; ok {
			out = append(out, b)
		}
	}
	return out
}
