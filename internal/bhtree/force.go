package bhtree

import (
	"math"

	"github.com/san-kum/forcelayout/internal/physics"
)

// UpdateBodyForce adds the approximate n-body force exerted on source by the
// bodies in the tree to source.Force.
//
// Leaves contribute the exact pairwise force. An internal node whose
// width/distance ratio is below theta contributes its total mass at its
// center of mass; otherwise its children are examined. With theta 0 every
// leaf is visited and the result is the exact sum.
func (t *Tree) UpdateBodyForce(source *physics.Body) {
	t.visits = 0
	if t.root == none {
		return
	}
	clear(t.force)

	q := append(t.queue[:0], t.root)
	for head := 0; head < len(q); head++ {
		n := &t.nodes[q[head]]
		t.visits++

		if n.body != nil {
			if n.body != source {
				t.pull(source, n.body.Pos, n.body.Mass)
			}
			continue
		}
		if n.mass == 0 {
			continue
		}

		r := t.distanceToCenter(source, n)
		if r > 0 && (n.max[0]-n.min[0])/r < t.theta {
			t.pullCenter(source, n)
			continue
		}
		for _, c := range n.children {
			if c != none {
				q = append(q, c)
			}
		}
	}
	t.queue = q

	for i := range t.force {
		source.Force[i] += t.force[i]
	}
}

// pull accumulates the exact force between source and a point mass at pos.
// A zero distance is replaced by a small random separation.
func (t *Tree) pull(source *physics.Body, pos physics.Vector, mass float64) {
	switch t.kind {
	case plane:
		dx := pos[0] - source.Pos[0]
		dy := pos[1] - source.Pos[1]
		r := math.Sqrt(dx*dx + dy*dy)
		if r == 0 {
			dx = (t.rng.Float64() - 0.5) / 50
			dy = (t.rng.Float64() - 0.5) / 50
			r = math.Sqrt(dx*dx + dy*dy)
		}
		v := t.gravity * mass * source.Mass / (r * r * r)
		t.force[0] += v * dx
		t.force[1] += v * dy
		return
	case space:
		dx := pos[0] - source.Pos[0]
		dy := pos[1] - source.Pos[1]
		dz := pos[2] - source.Pos[2]
		r := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if r == 0 {
			dx = (t.rng.Float64() - 0.5) / 50
			dy = (t.rng.Float64() - 0.5) / 50
			dz = (t.rng.Float64() - 0.5) / 50
			r = math.Sqrt(dx*dx + dy*dy + dz*dz)
		}
		v := t.gravity * mass * source.Mass / (r * r * r)
		t.force[0] += v * dx
		t.force[1] += v * dy
		t.force[2] += v * dz
		return
	}

	d := t.delta
	for i := range d {
		d[i] = pos[i] - source.Pos[i]
	}
	r := norm(d)
	if r == 0 {
		for i := range d {
			d[i] = (t.rng.Float64() - 0.5) / 50
		}
		r = norm(d)
	}
	v := t.gravity * mass * source.Mass / (r * r * r)
	for i := range d {
		t.force[i] += v * d[i]
	}
}

// pullCenter treats n as a single mass at its center of mass.
func (t *Tree) pullCenter(source *physics.Body, n *node) {
	switch t.kind {
	case plane:
		dx := n.massPos[0]/n.mass - source.Pos[0]
		dy := n.massPos[1]/n.mass - source.Pos[1]
		r := math.Sqrt(dx*dx + dy*dy)
		v := t.gravity * n.mass * source.Mass / (r * r * r)
		t.force[0] += v * dx
		t.force[1] += v * dy
		return
	case space:
		dx := n.massPos[0]/n.mass - source.Pos[0]
		dy := n.massPos[1]/n.mass - source.Pos[1]
		dz := n.massPos[2]/n.mass - source.Pos[2]
		r := math.Sqrt(dx*dx + dy*dy + dz*dz)
		v := t.gravity * n.mass * source.Mass / (r * r * r)
		t.force[0] += v * dx
		t.force[1] += v * dy
		t.force[2] += v * dz
		return
	}

	d := t.delta
	for i := range d {
		d[i] = n.massPos[i]/n.mass - source.Pos[i]
	}
	r := norm(d)
	v := t.gravity * n.mass * source.Mass / (r * r * r)
	for i := range d {
		t.force[i] += v * d[i]
	}
}

func (t *Tree) distanceToCenter(source *physics.Body, n *node) float64 {
	switch t.kind {
	case plane:
		dx := n.massPos[0]/n.mass - source.Pos[0]
		dy := n.massPos[1]/n.mass - source.Pos[1]
		return math.Sqrt(dx*dx + dy*dy)
	case space:
		dx := n.massPos[0]/n.mass - source.Pos[0]
		dy := n.massPos[1]/n.mass - source.Pos[1]
		dz := n.massPos[2]/n.mass - source.Pos[2]
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	sum := 0.0
	for i, x := range n.massPos {
		d := x/n.mass - source.Pos[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// norm sums squares in axis order so the generic path rounds exactly like
// the unrolled ones.
func norm(d []float64) float64 {
	if len(d) == 0 {
		return 0
	}
	sum := d[0] * d[0]
	for _, x := range d[1:] {
		sum += x * x
	}
	return math.Sqrt(sum)
}
