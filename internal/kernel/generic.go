package kernel

import (
	"math"

	"github.com/san-kum/forcelayout/internal/bhtree"
	"github.com/san-kum/forcelayout/internal/physics"
)

// genericKernel loops over axes. Every expression is evaluated in the same
// order as the unrolled kernels so that results match bit for bit.
type genericKernel struct {
	dims int
}

func (k genericKernel) Dimensions() int { return k.dims }

func (k genericKernel) NewBody(coords ...float64) *physics.Body {
	buf := make([]float64, 3*k.dims)
	d := k.dims
	b := &physics.Body{
		Pos:      buf[0:d:d],
		Velocity: buf[d : 2*d : 2*d],
		Force:    buf[2*d : 3*d : 3*d],
		Mass:     1,
	}
	copy(b.Pos, coords)
	return b
}

func (k genericKernel) NewBounds(s *physics.Settings, rng physics.Random) Bounds {
	return &genericBounds{
		settings: s,
		rng:      rng,
		min:      make([]float64, k.dims),
		max:      make([]float64, k.dims),
	}
}

func (k genericKernel) NewDragForce(s *physics.Settings) (DragForce, error) {
	if err := checkDrag(s); err != nil {
		return nil, err
	}
	return genericDrag{settings: s}, nil
}

func (k genericKernel) NewSpringForce(s *physics.Settings, rng physics.Random) (SpringForce, error) {
	if err := checkSpring(s); err != nil {
		return nil, err
	}
	return &genericSpring{settings: s, rng: rng, d: make([]float64, k.dims)}, nil
}

func (k genericKernel) NewTree(s *physics.Settings, rng physics.Random) *bhtree.Tree {
	return bhtree.New(k.dims, *s, rng, false)
}

// Integrate moves every body first and sums the per-axis movement in a second
// pass, so the kernel keeps no scratch state and can be shared.
func (k genericKernel) Integrate(bodies []*physics.Body, timeStep, adaptiveWeight float64) float64 {
	if len(bodies) == 0 {
		return 0
	}
	for _, b := range bodies {
		if b.Pinned {
			continue
		}
		dt := stepFor(b, timeStep, adaptiveWeight)
		coeff := dt / b.Mass

		for i := range b.Velocity {
			b.Velocity[i] += coeff * b.Force[i]
		}
		if v := norm(b.Velocity); v > 1 {
			for i := range b.Velocity {
				b.Velocity[i] /= v
			}
		}
		for i := range b.Pos {
			b.Pos[i] += dt * b.Velocity[i]
		}
	}

	var sum float64
	for i := 0; i < k.dims; i++ {
		var total float64
		for _, b := range bodies {
			if b.Pinned {
				continue
			}
			total += math.Abs(stepFor(b, timeStep, adaptiveWeight) * b.Velocity[i])
		}
		if i == 0 {
			sum = total * total
		} else {
			sum += total * total
		}
	}
	return sum / float64(len(bodies))
}

func stepFor(b *physics.Body, timeStep, adaptiveWeight float64) float64 {
	if adaptiveWeight > 0 && b.SpringCount > 0 {
		return adaptiveWeight * b.SpringLength / float64(b.SpringCount)
	}
	return timeStep
}

type genericBounds struct {
	settings *physics.Settings
	rng      physics.Random
	min, max []float64
}

func (gb *genericBounds) Update(bodies []*physics.Body) {
	if len(bodies) == 0 {
		return
	}
	copy(gb.min, bodies[0].Pos)
	copy(gb.max, bodies[0].Pos)
	for _, b := range bodies[1:] {
		for i, x := range b.Pos {
			if x < gb.min[i] {
				gb.min[i] = x
			}
			if x > gb.max[i] {
				gb.max[i] = x
			}
		}
	}
}

func (gb *genericBounds) Reset() {
	clear(gb.min)
	clear(gb.max)
}

func (gb *genericBounds) Box() physics.Box {
	return physics.Box{
		Min: physics.Vector(gb.min).Clone(),
		Max: physics.Vector(gb.max).Clone(),
	}
}

func (gb *genericBounds) BestNewPosition(neighbors []*physics.Body) physics.Vector {
	pos := make(physics.Vector, len(gb.min))
	if len(neighbors) > 0 {
		for _, n := range neighbors {
			for i := range pos {
				pos[i] += n.Pos[i]
			}
		}
		for i := range pos {
			pos[i] /= float64(len(neighbors))
		}
	} else {
		for i := range pos {
			pos[i] = (gb.min[i] + gb.max[i]) / 2
		}
	}
	l := gb.settings.SpringLength
	for i := range pos {
		pos[i] += (gb.rng.Float64() - 0.5) * l
	}
	return pos
}

type genericDrag struct {
	settings *physics.Settings
}

func (d genericDrag) Update(b *physics.Body) {
	c := d.settings.DragCoefficient
	for i := range b.Force {
		b.Force[i] -= c * b.Velocity[i]
	}
}

type genericSpring struct {
	settings *physics.Settings
	rng      physics.Random
	d        []float64
}

func (f *genericSpring) Update(sp *physics.Spring) {
	from, to := sp.From, sp.To
	length := sp.RestLength(f.settings.SpringLength)

	d := f.d
	for i := range d {
		d[i] = to.Pos[i] - from.Pos[i]
	}
	r := norm(d)
	if r == 0 {
		for i := range d {
			d[i] = (f.rng.Float64() - 0.5) / 50
		}
		r = norm(d)
	}

	coeff := sp.Stiffness(f.settings.SpringCoefficient) * (r - length) / r

	from.SpringCount++
	from.SpringLength += r
	to.SpringCount++
	to.SpringLength += r

	for i, x := range d {
		from.Force[i] += coeff * x
	}
	for i, x := range d {
		to.Force[i] -= coeff * x
	}
}

func sumSquares(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := v[0] * v[0]
	for _, x := range v[1:] {
		sum += x * x
	}
	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(sumSquares(v))
}
