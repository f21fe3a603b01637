package layout

import (
	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/kernel"
	"github.com/san-kum/forcelayout/internal/physics"
	"github.com/san-kum/forcelayout/internal/sim"
)

// SimulatorFactory builds the simulator behind a layout.
type SimulatorFactory func(s physics.Settings) (Simulator, error)

// MassFunc returns the mass of the body for a node.
type MassFunc func(id string) float64

// SpringTransform runs after the spring for a link is created.
type SpringTransform func(l *graph.Link, s *physics.Spring)

type options struct {
	settings  physics.Settings
	factory   SimulatorFactory
	mass      MassFunc
	transform SpringTransform
	logger    *log.Logger
	cache     *kernel.Cache
	rng       physics.Random
}

// Option configures a Layout.
type Option func(*options)

// WithSettings replaces the default physics settings.
func WithSettings(s physics.Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithSimulatorFactory replaces the default simulator. Random, logger and
// kernel cache options do not reach a custom simulator.
func WithSimulatorFactory(f SimulatorFactory) Option {
	return func(o *options) { o.factory = f }
}

// WithNodeMass replaces the default mass of 1 + links/3.
func WithNodeMass(f MassFunc) Option {
	return func(o *options) { o.mass = f }
}

// WithSpringTransform sets a hook that can adjust each new spring.
func WithSpringTransform(f SpringTransform) Option {
	return func(o *options) { o.transform = f }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithKernelCache shares specialized kernels between layouts.
func WithKernelCache(c *kernel.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithRandom sets the random source of the default simulator.
func WithRandom(r physics.Random) Option {
	return func(o *options) { o.rng = r }
}

func (o *options) defaultFactory() SimulatorFactory {
	return func(s physics.Settings) (Simulator, error) {
		opts := []sim.Option{sim.WithLogger(o.logger)}
		if o.cache != nil {
			opts = append(opts, sim.WithKernelCache(o.cache))
		}
		if o.rng != nil {
			opts = append(opts, sim.WithRandom(o.rng))
		}
		sm, err := sim.New(s, opts...)
		if err != nil {
			return nil, err
		}
		return sm, nil
	}
}
