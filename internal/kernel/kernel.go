package kernel

import (
	"sync"

	"github.com/san-kum/forcelayout/internal/bhtree"
	"github.com/san-kum/forcelayout/internal/physics"
)

// Kernel bundles the per-body units of a simulation for one dimension count.
//
// Forces and bounds returned by a Kernel keep a pointer to the settings they
// were built with and read them on every call, so simulator setters take
// effect immediately.
type Kernel interface {
	// Dimensions is the axis count every unit operates on.
	Dimensions() int

	// NewBody allocates a unit-mass body. Missing coordinates are 0.
	NewBody(coords ...float64) *physics.Body

	NewBounds(s *physics.Settings, rng physics.Random) Bounds
	NewDragForce(s *physics.Settings) (DragForce, error)
	NewSpringForce(s *physics.Settings, rng physics.Random) (SpringForce, error)

	// Integrate advances every unpinned body by one semi-implicit Euler step
	// and returns the movement metric. It returns 0 for no bodies.
	Integrate(bodies []*physics.Body, timeStep, adaptiveWeight float64) float64

	NewTree(s *physics.Settings, rng physics.Random) *bhtree.Tree
}

// Bounds tracks the axis-aligned box around a set of bodies.
type Bounds interface {
	// Update recomputes the box from bodies. An empty slice keeps the
	// previous box.
	Update(bodies []*physics.Body)
	Reset()
	Box() physics.Box

	// BestNewPosition returns the centroid of neighbors, or the box center
	// when there are none, jittered by up to half a spring length per axis.
	BestNewPosition(neighbors []*physics.Body) physics.Vector
}

// DragForce damps a body's velocity.
type DragForce interface {
	Update(b *physics.Body)
}

// SpringForce applies Hooke's law to both ends of a spring.
type SpringForce interface {
	Update(s *physics.Spring)
}

// Specialize returns the kernel for dims axes. Two and three dimensions get
// unrolled implementations; any other positive count gets the generic one.
func Specialize(dims int) (Kernel, error) {
	if err := physics.CheckDimensions(dims); err != nil {
		return nil, err
	}
	switch dims {
	case 2:
		return Plane{}, nil
	case 3:
		return Space{}, nil
	}
	return Generic(dims)
}

// Generic returns the loop-based kernel for dims axes. It produces the same
// numbers as the specialized kernels and exists mainly to check them.
func Generic(dims int) (Kernel, error) {
	if err := physics.CheckDimensions(dims); err != nil {
		return nil, err
	}
	return genericKernel{dims: dims}, nil
}

// Cache holds one specialized kernel per dimension count. It is safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	kernels map[int]Kernel
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{kernels: make(map[int]Kernel)}
}

// Get returns the kernel for dims, specializing it on first use.
func (c *Cache) Get(dims int) (Kernel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.kernels[dims]; ok {
		return k, nil
	}
	k, err := Specialize(dims)
	if err != nil {
		return nil, err
	}
	c.kernels[dims] = k
	return k, nil
}

// Len reports how many dimension counts have been specialized.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.kernels)
}

func checkDrag(s *physics.Settings) error {
	return physics.CheckFinite("dragCoefficient", s.DragCoefficient)
}

func checkSpring(s *physics.Settings) error {
	if err := physics.CheckFinite("springLength", s.SpringLength); err != nil {
		return err
	}
	return physics.CheckFinite("springCoefficient", s.SpringCoefficient)
}
