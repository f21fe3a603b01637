package sim

import (
	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/kernel"
	"github.com/san-kum/forcelayout/internal/physics"
)

// Names of the forces every simulator starts with.
const (
	ForceNBody  = "nbody"
	ForceSpring = "spring"
)

// Force is applied once per step, in registration order, before bodies are
// integrated.
type Force interface {
	Apply(iteration int)
}

// ForceFunc adapts a function to the Force interface.
type ForceFunc func(iteration int)

func (f ForceFunc) Apply(iteration int) { f(iteration) }

// Observer is notified after every step.
type Observer interface {
	OnStep(iteration int, movement float64)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(iteration int, movement float64)

func (f ObserverFunc) OnStep(iteration int, movement float64) { f(iteration, movement) }

type namedForce struct {
	name  string
	force Force
}

type options struct {
	cache   *kernel.Cache
	rng     physics.Random
	logger  *log.Logger
	generic bool
}

// Option configures a Simulator.
type Option func(*options)

// WithKernelCache shares specialized kernels between simulators.
func WithKernelCache(c *kernel.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithRandom replaces the default seeded random source.
func WithRandom(r physics.Random) Option {
	return func(o *options) { o.rng = r }
}

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithGenericKernel forces the loop-based kernel regardless of dimension.
func WithGenericKernel() Option {
	return func(o *options) { o.generic = true }
}
