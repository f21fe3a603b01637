package bhtree

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/forcelayout/internal/physics"
)

func settings(theta float64) physics.Settings {
	s := physics.DefaultSettings()
	s.Theta = theta
	return s
}

func randomBodies(n, dims int, seed uint64) []*physics.Body {
	rng := physics.NewRandom(seed)
	bodies := make([]*physics.Body, n)
	for i := range bodies {
		b := physics.NewBody(dims)
		for a := range b.Pos {
			b.Pos[a] = rng.Float64()*200 - 100
		}
		b.Mass = 1 + rng.Float64()*3
		bodies[i] = b
	}
	return bodies
}

func naiveForce(bodies []*physics.Body, source *physics.Body, gravity float64) physics.Vector {
	f := physics.NewVector(source.Dimensions())
	d := physics.NewVector(source.Dimensions())
	for _, b := range bodies {
		if b == source {
			continue
		}
		for i := range d {
			d[i] = b.Pos[i] - source.Pos[i]
		}
		r := d.Norm()
		v := gravity * b.Mass * source.Mass / (r * r * r)
		for i := range f {
			f[i] += v * d[i]
		}
	}
	return f
}

func treeForce(tree *Tree, b *physics.Body) physics.Vector {
	b.Force.Zero()
	tree.UpdateBodyForce(b)
	return b.Force.Clone()
}

func closeTo(got, want physics.Vector, tol float64) bool {
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol*math.Max(1, math.Abs(want[i])) {
			return false
		}
	}
	return true
}

type particle2 struct{ b *physics.Body }

func (p particle2) Coord2() r2.Vec { return r2.Vec{X: p.b.Pos[0], Y: p.b.Pos[1]} }
func (p particle2) Mass() float64  { return p.b.Mass }

type particle3 struct{ b *physics.Body }

func (p particle3) Coord3() r3.Vec {
	return r3.Vec{X: p.b.Pos[0], Y: p.b.Pos[1], Z: p.b.Pos[2]}
}
func (p particle3) Mass() float64 { return p.b.Mass }

func TestExactForceMatchesGonumPlane(t *testing.T) {
	const gravity = physics.DefaultGravity
	bodies := randomBodies(60, 2, 7)
	particles := make([]barneshut.Particle2, len(bodies))
	for i, b := range bodies {
		particles[i] = particle2{b}
	}
	ref, err := barneshut.NewPlane(particles)
	if err != nil {
		t.Fatalf("NewPlane: %v", err)
	}
	inverseSquare := func(p1, p2 barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
		r := r2.Norm(v)
		if r == 0 {
			return r2.Vec{}
		}
		return r2.Scale(gravity*m1*m2/(r*r*r), v)
	}

	tree := New(2, settings(0), physics.NewRandom(1), true)
	tree.Insert(bodies)
	for i, b := range bodies {
		want := ref.ForceOn(particles[i], 0, inverseSquare)
		got := treeForce(tree, b)
		if !closeTo(got, physics.Vector{want.X, want.Y}, 1e-9) {
			t.Fatalf("body %d: force = %v, want %v", i, got, want)
		}
	}
}

func TestExactForceMatchesGonumVolume(t *testing.T) {
	const gravity = physics.DefaultGravity
	bodies := randomBodies(40, 3, 11)
	particles := make([]barneshut.Particle3, len(bodies))
	for i, b := range bodies {
		particles[i] = particle3{b}
	}
	ref, err := barneshut.NewVolume(particles)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	inverseSquare := func(p1, p2 barneshut.Particle3, m1, m2 float64, v r3.Vec) r3.Vec {
		r := r3.Norm(v)
		if r == 0 {
			return r3.Vec{}
		}
		return r3.Scale(gravity*m1*m2/(r*r*r), v)
	}

	tree := New(3, settings(0), physics.NewRandom(1), true)
	tree.Insert(bodies)
	for i, b := range bodies {
		want := ref.ForceOn(particles[i], 0, inverseSquare)
		got := treeForce(tree, b)
		if !closeTo(got, physics.Vector{want.X, want.Y, want.Z}, 1e-9) {
			t.Fatalf("body %d: force = %v, want %v", i, got, want)
		}
	}
}

func TestExactForceAnyDimension(t *testing.T) {
	for _, dims := range []int{1, 2, 3, 4, 6} {
		bodies := randomBodies(30, dims, uint64(dims))
		tree := New(dims, settings(0), physics.NewRandom(1), false)
		tree.Insert(bodies)
		for i, b := range bodies {
			want := naiveForce(bodies, b, physics.DefaultGravity)
			if got := treeForce(tree, b); !closeTo(got, want, 1e-9) {
				t.Fatalf("dims=%d body %d: force = %v, want %v", dims, i, got, want)
			}
		}
	}
}

func TestSpecializedMatchesGeneric(t *testing.T) {
	for _, dims := range []int{2, 3} {
		for _, theta := range []float64{0, 0.5, 1.2} {
			bodies := randomBodies(80, dims, 3)
			fast := New(dims, settings(theta), physics.NewRandom(1), true)
			slow := New(dims, settings(theta), physics.NewRandom(1), false)
			fast.Insert(bodies)
			slow.Insert(bodies)
			if fast.NodeCount() != slow.NodeCount() {
				t.Fatalf("dims=%d NodeCount = %d, generic %d", dims, fast.NodeCount(), slow.NodeCount())
			}
			for i, b := range bodies {
				a := treeForce(fast, b)
				g := treeForce(slow, b)
				for axis := range a {
					if a[axis] != g[axis] {
						t.Fatalf("dims=%d theta=%v body %d axis %d: %v != %v", dims, theta, i, axis, a[axis], g[axis])
					}
				}
			}
		}
	}
}

func TestThetaTradesAccuracyForVisits(t *testing.T) {
	bodies := randomBodies(300, 2, 5)

	prevVisits := math.MaxInt
	for _, theta := range []float64{0, 0.3, 0.8, 1.5} {
		tree := New(2, settings(theta), physics.NewRandom(1), true)
		tree.Insert(bodies)
		visits := 0
		worst := 0.0
		for _, b := range bodies {
			got := treeForce(tree, b)
			visits += tree.Visits()
			want := naiveForce(bodies, b, physics.DefaultGravity)
			for i := range got {
				worst = math.Max(worst, math.Abs(got[i]-want[i])/math.Max(1, math.Abs(want[i])))
			}
		}
		if visits > prevVisits {
			t.Errorf("theta=%v visits = %d, more than %d at lower theta", theta, visits, prevVisits)
		}
		if theta == 0 && worst > 1e-9 {
			t.Errorf("theta=0 worst error = %v, want exact", worst)
		}
		prevVisits = visits
	}
}

func TestRepulsionDirection(t *testing.T) {
	a := physics.NewBody(2, 0, 0)
	b := physics.NewBody(2, 1, 0)
	tree := New(2, settings(0.8), physics.NewRandom(1), true)
	tree.Insert([]*physics.Body{a, b})

	if f := treeForce(tree, a); f[0] >= 0 {
		t.Errorf("force on a = %v, want pushed towards -x", f)
	}
	if f := treeForce(tree, b); f[0] <= 0 {
		t.Errorf("force on b = %v, want pushed towards +x", f)
	}
}

func TestEmptyAndSingleBody(t *testing.T) {
	tree := New(2, settings(0.8), physics.NewRandom(1), true)
	tree.Insert(nil)
	if tree.NodeCount() != 0 {
		t.Errorf("empty NodeCount = %d, want 0", tree.NodeCount())
	}
	lone := physics.NewBody(2, 3, 4)
	if f := treeForce(tree, lone); f.Norm() != 0 || tree.Visits() != 0 {
		t.Errorf("empty tree force = %v visits = %d, want none", f, tree.Visits())
	}

	tree.Insert([]*physics.Body{lone})
	if tree.NodeCount() != 1 {
		t.Errorf("single NodeCount = %d, want 1", tree.NodeCount())
	}
	if f := treeForce(tree, lone); f.Norm() != 0 {
		t.Errorf("single body force = %v, want zero", f)
	}
	mass, center := tree.Root()
	if mass != 1 || center[0] != 3 || center[1] != 4 {
		t.Errorf("Root() = %v %v, want 1 [3 4]", mass, center)
	}
}

func TestRootAggregatesMass(t *testing.T) {
	bodies := []*physics.Body{
		physics.NewBody(2, 0, 0),
		physics.NewBody(2, 4, 0),
		physics.NewBody(2, 0, 4),
		physics.NewBody(2, 4, 4),
	}
	bodies[0].Mass = 2
	tree := New(2, settings(0.8), physics.NewRandom(1), true)
	tree.Insert(bodies)

	mass, center := tree.Root()
	if mass != 5 {
		t.Errorf("mass = %v, want 5", mass)
	}
	want := physics.Vector{8.0 / 5, 8.0 / 5}
	if !closeTo(center, want, 1e-12) {
		t.Errorf("center = %v, want %v", center, want)
	}
}

func TestCoincidentBodiesAreSeparated(t *testing.T) {
	a := physics.NewBody(2, 1, 1)
	b := physics.NewBody(2, 1, 1)
	c := physics.NewBody(2, 10, 10)
	tree := New(2, settings(0.8), physics.NewRandom(1), true)
	tree.Insert([]*physics.Body{a, b, c})

	if tree.Dropped() != 0 {
		t.Errorf("Dropped = %d, want 0", tree.Dropped())
	}
	if a.Pos[0] == b.Pos[0] && a.Pos[1] == b.Pos[1] {
		t.Errorf("coincident bodies not jittered: %v %v", a.Pos, b.Pos)
	}
	mass, _ := tree.Root()
	if mass != 3 {
		t.Errorf("mass = %v, want 3", mass)
	}
}

func TestFullyCoincidentInsertionsAreDropped(t *testing.T) {
	bodies := []*physics.Body{
		physics.NewBody(3, 2, 2, 2),
		physics.NewBody(3, 2, 2, 2),
		physics.NewBody(3, 2, 2, 2),
	}
	tree := New(3, settings(0.8), physics.NewRandom(1), true)
	tree.Insert(bodies)

	if tree.Dropped() != 2 {
		t.Errorf("Dropped = %d, want 2", tree.Dropped())
	}
	if tree.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", tree.NodeCount())
	}
}

// heldBodies returns the bodies stored in the leaves of tree.
func heldBodies(tree *Tree) []*physics.Body {
	var held []*physics.Body
	var walk func(idx int32)
	walk = func(idx int32) {
		if idx == none {
			return
		}
		n := &tree.nodes[idx]
		if n.body != nil {
			held = append(held, n.body)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(tree.root)
	return held
}

func TestJitteredCenterOfMass(t *testing.T) {
	bodies := []*physics.Body{
		physics.NewBody(2, 1, 1),
		physics.NewBody(2, 1, 1),
		physics.NewBody(2, 1, 1),
		physics.NewBody(2, 10, 10),
	}
	for i, b := range bodies {
		b.Mass = float64(i + 1)
	}
	tree := New(2, settings(0.8), physics.NewRandom(3), true)
	tree.Insert(bodies)

	held := heldBodies(tree)
	if len(held)+tree.Dropped() != len(bodies) {
		t.Fatalf("held %d + dropped %d != %d", len(held), tree.Dropped(), len(bodies))
	}
	var total float64
	want := physics.NewVector(2)
	for _, b := range held {
		total += b.Mass
		for i, x := range b.Pos {
			want[i] += b.Mass * x
		}
	}
	for i := range want {
		want[i] /= total
	}

	mass, center := tree.Root()
	if math.Abs(mass-total) > 1e-12 {
		t.Errorf("mass = %v, want %v", mass, total)
	}
	if !closeTo(center, want, 1e-9) {
		t.Errorf("center = %v, want %v", center, want)
	}
}

func TestJitterUsesEveryAxis(t *testing.T) {
	a := physics.NewBody(2, 1, 1)
	b := physics.NewBody(2, 1, 1)
	c := physics.NewBody(2, 10, 10)
	tree := New(2, settings(0.8), physics.NewRandom(1), true)
	tree.Insert([]*physics.Body{a, b, c})

	// The shared region starts at (1, 1) on both axes, so one offset for all
	// axes would leave the moved body on the diagonal.
	if a.Pos[0] == a.Pos[1] && b.Pos[0] == b.Pos[1] {
		t.Errorf("jittered body on the diagonal: %v %v", a.Pos, b.Pos)
	}
}

func TestDroppedInsertionLeavesNoMass(t *testing.T) {
	// Spacing 16 is one ulp at 1e17, so the cell holding a and b cannot be
	// halved and one of them is dropped below four internal ancestors.
	a := physics.NewBody(2, 1e17, 0)
	b := physics.NewBody(2, 1e17+16, 0)
	c := physics.NewBody(2, 1e17+256, 256)
	tree := New(2, settings(0.8), physics.NewRandom(1), true)
	tree.Insert([]*physics.Body{a, b, c})

	if tree.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", tree.Dropped())
	}
	mass, center := tree.Root()
	if mass != 2 {
		t.Errorf("mass = %v, want 2", mass)
	}
	if math.Abs(center[1]-128) > 1e-9 {
		t.Errorf("center y = %v, want 128", center[1])
	}
}

func TestRebuildReusesPool(t *testing.T) {
	bodies := randomBodies(500, 2, 9)
	tree := New(2, settings(0.8), physics.NewRandom(1), true)
	tree.Insert(bodies)
	capacity := tree.Capacity()
	count := tree.NodeCount()
	for _, b := range bodies {
		tree.UpdateBodyForce(b)
	}

	allocs := testing.AllocsPerRun(20, func() {
		tree.Insert(bodies)
		for _, b := range bodies[:50] {
			tree.UpdateBodyForce(b)
		}
	})
	if allocs != 0 {
		t.Errorf("rebuild allocated %v times, want 0", allocs)
	}
	if tree.Capacity() != capacity || tree.NodeCount() != count {
		t.Errorf("Capacity/NodeCount = %d/%d, want %d/%d", tree.Capacity(), tree.NodeCount(), capacity, count)
	}

	tree.Insert(bodies[:10])
	if tree.Capacity() != capacity {
		t.Errorf("smaller rebuild Capacity = %d, want %d", tree.Capacity(), capacity)
	}
	if tree.NodeCount() >= count {
		t.Errorf("smaller rebuild NodeCount = %d, want < %d", tree.NodeCount(), count)
	}
}

func TestSetGravityAndTheta(t *testing.T) {
	a := physics.NewBody(2, 0, 0)
	b := physics.NewBody(2, 2, 0)
	tree := New(2, settings(0.8), physics.NewRandom(1), true)
	tree.Insert([]*physics.Body{a, b})
	before := treeForce(tree, a)[0]

	tree.SetGravity(2 * tree.Gravity())
	after := treeForce(tree, a)[0]
	if math.Abs(after-2*before) > 1e-12 {
		t.Errorf("force after doubling gravity = %v, want %v", after, 2*before)
	}
	tree.SetTheta(0.1)
	if tree.Theta() != 0.1 {
		t.Errorf("Theta = %v, want 0.1", tree.Theta())
	}
}
