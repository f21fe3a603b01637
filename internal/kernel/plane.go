package kernel

import (
	"math"

	"github.com/san-kum/forcelayout/internal/bhtree"
	"github.com/san-kum/forcelayout/internal/physics"
)

// Plane is the two-dimensional kernel.
type Plane struct{}

// planeBody keeps a body and its three vectors in one allocation.
type planeBody struct {
	body physics.Body
	buf  [6]float64
}

func (Plane) Dimensions() int { return 2 }

func (Plane) NewBody(coords ...float64) *physics.Body {
	pb := &planeBody{}
	pb.body.Pos = pb.buf[0:2:2]
	pb.body.Velocity = pb.buf[2:4:4]
	pb.body.Force = pb.buf[4:6:6]
	pb.body.Mass = 1
	copy(pb.body.Pos, coords)
	return &pb.body
}

func (Plane) NewBounds(s *physics.Settings, rng physics.Random) Bounds {
	return &planeBounds{settings: s, rng: rng}
}

func (Plane) NewDragForce(s *physics.Settings) (DragForce, error) {
	if err := checkDrag(s); err != nil {
		return nil, err
	}
	return planeDrag{settings: s}, nil
}

func (Plane) NewSpringForce(s *physics.Settings, rng physics.Random) (SpringForce, error) {
	if err := checkSpring(s); err != nil {
		return nil, err
	}
	return planeSpring{settings: s, rng: rng}, nil
}

func (Plane) NewTree(s *physics.Settings, rng physics.Random) *bhtree.Tree {
	return bhtree.New(2, *s, rng, true)
}

func (Plane) Integrate(bodies []*physics.Body, timeStep, adaptiveWeight float64) float64 {
	if len(bodies) == 0 {
		return 0
	}
	var tx, ty float64
	for _, b := range bodies {
		if b.Pinned {
			continue
		}
		dt := timeStep
		if adaptiveWeight > 0 && b.SpringCount > 0 {
			dt = adaptiveWeight * b.SpringLength / float64(b.SpringCount)
		}
		coeff := dt / b.Mass

		b.Velocity[0] += coeff * b.Force[0]
		b.Velocity[1] += coeff * b.Force[1]
		vx, vy := b.Velocity[0], b.Velocity[1]
		if v := math.Sqrt(vx*vx + vy*vy); v > 1 {
			b.Velocity[0] = vx / v
			b.Velocity[1] = vy / v
		}

		dx := dt * b.Velocity[0]
		dy := dt * b.Velocity[1]
		b.Pos[0] += dx
		b.Pos[1] += dy
		tx += math.Abs(dx)
		ty += math.Abs(dy)
	}
	return (tx*tx + ty*ty) / float64(len(bodies))
}

type planeBounds struct {
	settings               *physics.Settings
	rng                    physics.Random
	minX, minY, maxX, maxY float64
}

func (pb *planeBounds) Update(bodies []*physics.Body) {
	if len(bodies) == 0 {
		return
	}
	pb.minX, pb.maxX = bodies[0].Pos[0], bodies[0].Pos[0]
	pb.minY, pb.maxY = bodies[0].Pos[1], bodies[0].Pos[1]
	for _, b := range bodies[1:] {
		x, y := b.Pos[0], b.Pos[1]
		if x < pb.minX {
			pb.minX = x
		}
		if x > pb.maxX {
			pb.maxX = x
		}
		if y < pb.minY {
			pb.minY = y
		}
		if y > pb.maxY {
			pb.maxY = y
		}
	}
}

func (pb *planeBounds) Reset() {
	pb.minX, pb.minY, pb.maxX, pb.maxY = 0, 0, 0, 0
}

func (pb *planeBounds) Box() physics.Box {
	return physics.Box{
		Min: physics.Vector{pb.minX, pb.minY},
		Max: physics.Vector{pb.maxX, pb.maxY},
	}
}

func (pb *planeBounds) BestNewPosition(neighbors []*physics.Body) physics.Vector {
	var x, y float64
	if len(neighbors) > 0 {
		for _, n := range neighbors {
			x += n.Pos[0]
			y += n.Pos[1]
		}
		x /= float64(len(neighbors))
		y /= float64(len(neighbors))
	} else {
		x = (pb.minX + pb.maxX) / 2
		y = (pb.minY + pb.maxY) / 2
	}
	l := pb.settings.SpringLength
	return physics.Vector{
		x + (pb.rng.Float64()-0.5)*l,
		y + (pb.rng.Float64()-0.5)*l,
	}
}

type planeDrag struct {
	settings *physics.Settings
}

func (d planeDrag) Update(b *physics.Body) {
	c := d.settings.DragCoefficient
	b.Force[0] -= c * b.Velocity[0]
	b.Force[1] -= c * b.Velocity[1]
}

type planeSpring struct {
	settings *physics.Settings
	rng      physics.Random
}

func (f planeSpring) Update(sp *physics.Spring) {
	from, to := sp.From, sp.To
	length := sp.RestLength(f.settings.SpringLength)

	dx := to.Pos[0] - from.Pos[0]
	dy := to.Pos[1] - from.Pos[1]
	r := math.Sqrt(dx*dx + dy*dy)
	if r == 0 {
		dx = (f.rng.Float64() - 0.5) / 50
		dy = (f.rng.Float64() - 0.5) / 50
		r = math.Sqrt(dx*dx + dy*dy)
	}

	coeff := sp.Stiffness(f.settings.SpringCoefficient) * (r - length) / r

	from.SpringCount++
	from.SpringLength += r
	to.SpringCount++
	to.SpringLength += r

	from.Force[0] += coeff * dx
	from.Force[1] += coeff * dy
	to.Force[0] -= coeff * dx
	to.Force[1] -= coeff * dy
}
