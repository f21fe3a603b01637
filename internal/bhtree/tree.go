package bhtree

import (
	"math"

	"github.com/san-kum/forcelayout/internal/physics"
)

// Epsilon is the per-axis distance below which two bodies are treated as
// coincident during insertion.
const Epsilon = 1e-8

// maxJitterRetries bounds how often a coincident body is moved before the
// insertion is dropped.
const maxJitterRetries = 3

const none int32 = -1

type geometry uint8

const (
	generic geometry = iota
	plane
	space
)

// node is either a leaf (body != nil) or an internal node. Leaves carry
// their body's mass so that a parent sees one accumulator type.
type node struct {
	body     *physics.Body
	mass     float64
	massPos  []float64
	min, max []float64
	children []int32
}

// Tree is a 2^D-ary Barnes-Hut tree over a set of bodies.
//
// Nodes live in an arena that keeps its high-water size across rebuilds, so
// calling Insert every step does not allocate once the arena is large enough.
// A Tree is not safe for concurrent use.
type Tree struct {
	dims    int
	quads   int
	kind    geometry
	gravity float64
	theta   float64
	rng     physics.Random

	nodes []node
	used  int
	root  int32

	stack insertStack
	queue []int32

	// per-call scratch, length dims
	lo, hi []float64
	delta  []float64
	force  []float64
	prev   []float64

	visits  int
	dropped int
}

// New creates an empty tree for dims axes, taking gravity and theta from s.
// With specialized set, two and three dimensional trees use unrolled code
// paths; otherwise every dimension goes through the generic loops. Both give
// identical results.
func New(dims int, s physics.Settings, rng physics.Random, specialized bool) *Tree {
	t := &Tree{
		dims:    dims,
		quads:   1 << dims,
		gravity: s.Gravity,
		theta:   s.Theta,
		rng:     rng,
		root:    none,
		lo:      make([]float64, dims),
		hi:      make([]float64, dims),
		delta:   make([]float64, dims),
		force:   make([]float64, dims),
		prev:    make([]float64, dims),
	}
	if specialized {
		switch dims {
		case 2:
			t.kind = plane
		case 3:
			t.kind = space
		}
	}
	return t
}

// Dimensions returns the axis count.
func (t *Tree) Dimensions() int { return t.dims }

// Gravity returns the tree's copy of the gravity constant.
func (t *Tree) Gravity() float64 { return t.gravity }

// SetGravity updates the gravity constant used by UpdateBodyForce.
func (t *Tree) SetGravity(g float64) { t.gravity = g }

// Theta returns the opening criterion.
func (t *Tree) Theta() float64 { return t.theta }

// SetTheta updates the opening criterion.
func (t *Tree) SetTheta(theta float64) { t.theta = theta }

// NodeCount is the number of nodes in the current tree.
func (t *Tree) NodeCount() int { return t.used }

// Capacity is the number of pooled nodes, the largest tree built so far.
func (t *Tree) Capacity() int { return len(t.nodes) }

// Visits is the number of nodes examined by the last UpdateBodyForce.
func (t *Tree) Visits() int { return t.visits }

// Dropped is the number of coincident insertions skipped by the last Insert.
func (t *Tree) Dropped() int { return t.dropped }

// Root returns the total mass and center of mass of the tree. The center is
// nil for an empty tree.
func (t *Tree) Root() (float64, physics.Vector) {
	if t.root == none {
		return 0, nil
	}
	n := &t.nodes[t.root]
	if n.mass == 0 {
		return 0, nil
	}
	c := make(physics.Vector, t.dims)
	for i := range c {
		c[i] = n.massPos[i] / n.mass
	}
	return n.mass, c
}

// Insert rebuilds the tree from bodies, reusing the node pool.
func (t *Tree) Insert(bodies []*physics.Body) {
	t.used = 0
	t.root = none
	t.dropped = 0
	if len(bodies) == 0 {
		return
	}

	for i := range t.lo {
		t.lo[i] = math.Inf(1)
		t.hi[i] = math.Inf(-1)
	}
	for _, b := range bodies {
		for i, x := range b.Pos {
			if x < t.lo[i] {
				t.lo[i] = x
			}
			if x > t.hi[i] {
				t.hi[i] = x
			}
		}
	}
	side := 0.0
	for i := range t.lo {
		if w := t.hi[i] - t.lo[i]; w > side {
			side = w
		}
	}

	t.root = t.newNode()
	r := &t.nodes[t.root]
	for i := range r.min {
		r.min[i] = t.lo[i]
		r.max[i] = t.lo[i] + side
	}
	t.setLeaf(r, bodies[len(bodies)-1])

	for i := len(bodies) - 2; i >= 0; i-- {
		t.insert(bodies[i])
	}
}

func (t *Tree) insert(b *physics.Body) {
	t.stack.reset()
	t.stack.push(t.root, b)

	for !t.stack.empty() {
		idx, body := t.stack.pop()
		n := &t.nodes[idx]

		if n.body == nil {
			t.addMass(n, body)
			q := t.quadrant(n, body.Pos)
			if child := n.children[q]; child != none {
				t.stack.push(child, body)
				continue
			}
			c := t.newNode()
			cn := &t.nodes[c]
			copy(cn.min, t.lo)
			copy(cn.max, t.hi)
			t.setLeaf(cn, body)
			t.nodes[idx].children[q] = c
			continue
		}

		old := n.body
		n.body = nil
		n.mass = 0
		clear(n.massPos)

		if t.samePosition(old.Pos, body.Pos) {
			copy(t.prev, old.Pos)
			for retries := maxJitterRetries; retries > 0; retries-- {
				for i := range old.Pos {
					old.Pos[i] = n.min[i] + (n.max[i]-n.min[i])*t.rng.Float64()
				}
				if !t.samePosition(old.Pos, body.Pos) {
					break
				}
			}
			t.moveMass(idx, old.Mass, t.prev, old.Pos)
		}
		if t.samePosition(old.Pos, body.Pos) || !t.divisible(n) {
			t.setLeaf(n, old)
			t.moveMass(idx, -body.Mass, body.Pos, nil)
			t.dropped++
			return
		}

		t.stack.push(idx, old)
		t.stack.push(idx, body)
	}
}

// moveMass updates the internal nodes on the path from the root down to
// stop, exclusive, for a point mass m that was accumulated at from. It is
// moved to to, or, with to nil, its mass m is added at from; a negative m
// removes it. The path is found by routing from, as insertion did.
func (t *Tree) moveMass(stop int32, m float64, from, to physics.Vector) {
	for idx := t.root; idx != stop && idx != none; {
		n := &t.nodes[idx]
		if n.body != nil {
			return
		}
		if to == nil {
			n.mass += m
			for i, x := range from {
				n.massPos[i] += m * x
			}
		} else {
			for i := range from {
				n.massPos[i] += m * (to[i] - from[i])
			}
		}
		idx = n.children[t.quadrant(n, from)]
	}
}

// newNode takes the next node from the pool and resets it. It may grow
// t.nodes, so callers must not hold node pointers across the call.
func (t *Tree) newNode() int32 {
	if t.used == len(t.nodes) {
		t.nodes = append(t.nodes, node{
			massPos:  make([]float64, t.dims),
			min:      make([]float64, t.dims),
			max:      make([]float64, t.dims),
			children: make([]int32, t.quads),
		})
	}
	idx := t.used
	t.used++

	n := &t.nodes[idx]
	n.body = nil
	n.mass = 0
	clear(n.massPos)
	for i := range n.children {
		n.children[i] = none
	}
	return int32(idx)
}

func (t *Tree) setLeaf(n *node, b *physics.Body) {
	n.body = b
	n.mass = b.Mass
	for i, x := range b.Pos {
		n.massPos[i] = b.Mass * x
	}
}

func (t *Tree) addMass(n *node, b *physics.Body) {
	n.mass += b.Mass
	switch t.kind {
	case plane:
		n.massPos[0] += b.Mass * b.Pos[0]
		n.massPos[1] += b.Mass * b.Pos[1]
	case space:
		n.massPos[0] += b.Mass * b.Pos[0]
		n.massPos[1] += b.Mass * b.Pos[1]
		n.massPos[2] += b.Mass * b.Pos[2]
	default:
		for i, x := range b.Pos {
			n.massPos[i] += b.Mass * x
		}
	}
}

// quadrant returns the child index of pos inside n and leaves the child's
// region in t.lo and t.hi. Bit i of the index is set when pos lies above the
// midpoint on axis i.
func (t *Tree) quadrant(n *node, pos physics.Vector) int {
	switch t.kind {
	case plane:
		q := 0
		q |= t.split(n, pos, 0, 1)
		q |= t.split(n, pos, 1, 2)
		return q
	case space:
		q := 0
		q |= t.split(n, pos, 0, 1)
		q |= t.split(n, pos, 1, 2)
		q |= t.split(n, pos, 2, 4)
		return q
	}
	q := 0
	for i := 0; i < t.dims; i++ {
		q |= t.split(n, pos, i, 1<<i)
	}
	return q
}

func (t *Tree) split(n *node, pos physics.Vector, axis, bit int) int {
	mid := (n.min[axis] + n.max[axis]) / 2
	if pos[axis] > mid {
		t.lo[axis] = mid
		t.hi[axis] = n.max[axis]
		return bit
	}
	t.lo[axis] = n.min[axis]
	t.hi[axis] = mid
	return 0
}

func (t *Tree) samePosition(a, b physics.Vector) bool {
	switch t.kind {
	case plane:
		return math.Abs(a[0]-b[0]) < Epsilon && math.Abs(a[1]-b[1]) < Epsilon
	case space:
		return math.Abs(a[0]-b[0]) < Epsilon && math.Abs(a[1]-b[1]) < Epsilon &&
			math.Abs(a[2]-b[2]) < Epsilon
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) >= Epsilon {
			return false
		}
	}
	return true
}

// divisible reports whether halving n still shrinks its region on every
// axis. Float rounding stops this long before depth becomes a problem for
// bodies further apart than Epsilon.
func (t *Tree) divisible(n *node) bool {
	for i := range n.min {
		mid := (n.min[i] + n.max[i]) / 2
		if !(mid > n.min[i] && mid < n.max[i]) {
			return false
		}
	}
	return true
}

type insertItem struct {
	node int32
	body *physics.Body
}

// insertStack replaces recursion during insertion. Its backing slice is
// kept between calls.
type insertStack struct {
	items []insertItem
	top   int
}

func (s *insertStack) reset() { s.top = 0 }

func (s *insertStack) empty() bool { return s.top == 0 }

func (s *insertStack) push(n int32, b *physics.Body) {
	if s.top == len(s.items) {
		s.items = append(s.items, insertItem{})
	}
	s.items[s.top] = insertItem{node: n, body: b}
	s.top++
}

func (s *insertStack) pop() (int32, *physics.Body) {
	s.top--
	it := s.items[s.top]
	s.items[s.top].body = nil
	return it.node, it.body
}
