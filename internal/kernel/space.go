package kernel

import (
	"math"

	"github.com/san-kum/forcelayout/internal/bhtree"
	"github.com/san-kum/forcelayout/internal/physics"
)

// Space is the three-dimensional kernel.
type Space struct{}

type spaceBody struct {
	body physics.Body
	buf  [9]float64
}

func (Space) Dimensions() int { return 3 }

func (Space) NewBody(coords ...float64) *physics.Body {
	sb := &spaceBody{}
	sb.body.Pos = sb.buf[0:3:3]
	sb.body.Velocity = sb.buf[3:6:6]
	sb.body.Force = sb.buf[6:9:9]
	sb.body.Mass = 1
	copy(sb.body.Pos, coords)
	return &sb.body
}

func (Space) NewBounds(s *physics.Settings, rng physics.Random) Bounds {
	return &spaceBounds{settings: s, rng: rng}
}

func (Space) NewDragForce(s *physics.Settings) (DragForce, error) {
	if err := checkDrag(s); err != nil {
		return nil, err
	}
	return spaceDrag{settings: s}, nil
}

func (Space) NewSpringForce(s *physics.Settings, rng physics.Random) (SpringForce, error) {
	if err := checkSpring(s); err != nil {
		return nil, err
	}
	return spaceSpring{settings: s, rng: rng}, nil
}

func (Space) NewTree(s *physics.Settings, rng physics.Random) *bhtree.Tree {
	return bhtree.New(3, *s, rng, true)
}

func (Space) Integrate(bodies []*physics.Body, timeStep, adaptiveWeight float64) float64 {
	if len(bodies) == 0 {
		return 0
	}
	var tx, ty, tz float64
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
		b.Velocity[2] += coeff * b.Force[2]
		vx, vy, vz := b.Velocity[0], b.Velocity[1], b.Velocity[2]
		if v := math.Sqrt(vx*vx + vy*vy + vz*vz); v > 1 {
			b.Velocity[0] = vx / v
			b.Velocity[1] = vy / v
			b.Velocity[2] = vz / v
		}

		dx := dt * b.Velocity[0]
		dy := dt * b.Velocity[1]
		dz := dt * b.Velocity[2]
		b.Pos[0] += dx
		b.Pos[1] += dy
		b.Pos[2] += dz
		tx += math.Abs(dx)
		ty += math.Abs(dy)
		tz += math.Abs(dz)
	}
	return (tx*tx + ty*ty + tz*tz) / float64(len(bodies))
}

type spaceBounds struct {
	settings         *physics.Settings
	rng              physics.Random
	minX, minY, minZ float64
	maxX, maxY, maxZ float64
}

func (sb *spaceBounds) Update(bodies []*physics.Body) {
	if len(bodies) == 0 {
		return
	}
	p := bodies[0].Pos
	sb.minX, sb.maxX = p[0], p[0]
	sb.minY, sb.maxY = p[1], p[1]
	sb.minZ, sb.maxZ = p[2], p[2]
	for _, b := range bodies[1:] {
		x, y, z := b.Pos[0], b.Pos[1], b.Pos[2]
		if x < sb.minX {
			sb.minX = x
		}
		if x > sb.maxX {
			sb.maxX = x
		}
		if y < sb.minY {
			sb.minY = y
		}
		if y > sb.maxY {
			sb.maxY = y
		}
		if z < sb.minZ {
			sb.minZ = z
		}
		if z > sb.maxZ {
			sb.maxZ = z
		}
	}
}

func (sb *spaceBounds) Reset() {
	sb.minX, sb.minY, sb.minZ = 0, 0, 0
	sb.maxX, sb.maxY, sb.maxZ = 0, 0, 0
}

func (sb *spaceBounds) Box() physics.Box {
	return physics.Box{
		Min: physics.Vector{sb.minX, sb.minY, sb.minZ},
		Max: physics.Vector{sb.maxX, sb.maxY, sb.maxZ},
	}
}

func (sb *spaceBounds) BestNewPosition(neighbors []*physics.Body) physics.Vector {
	var x, y, z float64
	if len(neighbors) > 0 {
		for _, n := range neighbors {
			x += n.Pos[0]
			y += n.Pos[1]
			z += n.Pos[2]
		}
		x /= float64(len(neighbors))
		y /= float64(len(neighbors))
		z /= float64(len(neighbors))
	} else {
		x = (sb.minX + sb.maxX) / 2
		y = (sb.minY + sb.maxY) / 2
		z = (sb.minZ + sb.maxZ) / 2
	}
	l := sb.settings.SpringLength
	return physics.Vector{
		x + (sb.rng.Float64()-0.5)*l,
		y + (sb.rng.Float64()-0.5)*l,
		z + (sb.rng.Float64()-0.5)*l,
	}
}

type spaceDrag struct {
	settings *physics.Settings
}

func (d spaceDrag) Update(b *physics.Body) {
	c := d.settings.DragCoefficient
	b.Force[0] -= c * b.Velocity[0]
	b.Force[1] -= c * b.Velocity[1]
	b.Force[2] -= c * b.Velocity[2]
}

type spaceSpring struct {
	settings *physics.Settings
	rng      physics.Random
}

func (f spaceSpring) Update(sp *physics.Spring) {
	from, to := sp.From, sp.To
	length := sp.RestLength(f.settings.SpringLength)

	dx := to.Pos[0] - from.Pos[0]
	dy := to.Pos[1] - from.Pos[1]
	dz := to.Pos[2] - from.Pos[2]
	r := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if r == 0 {
		dx = (f.rng.Float64() - 0.5) / 50
		dy = (f.rng.Float64() - 0.5) / 50
		dz = (f.rng.Float64() - 0.5) / 50
		r = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	coeff := sp.Stiffness(f.settings.SpringCoefficient) * (r - length) / r

	from.SpringCount++
	from.SpringLength += r
	to.SpringCount++
	to.SpringLength += r

	from.Force[0] += coeff * dx
	from.Force[1] += coeff * dy
	from.Force[2] += coeff * dz
	to.Force[0] -= coeff * dx
	to.Force[1] -= coeff * dy
	to.Force[2] -= coeff * dz
}
