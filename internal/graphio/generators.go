package graphio

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/physics"
)

// Params configures a generator. Fields a generator does not use are
// ignored.
type Params struct {
	N      int     `yaml:"n" toml:"n"`
	Fanout int     `yaml:"fanout" toml:"fanout"`
	P      float64 `yaml:"p" toml:"p"`
	Seed   uint64  `yaml:"seed" toml:"seed"`
}

// Generator builds a graph from params.
type Generator func(Params) (*graph.Graph, error)

type Registry struct {
	generators map[string]Generator
}

func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]Generator)}

	r.generators["path"] = deterministic(2, gen.Path)
	r.generators["cycle"] = deterministic(3, gen.Cycle)
	r.generators["complete"] = deterministic(1, gen.Complete)
	r.generators["star"] = func(p Params) (*graph.Graph, error) {
		if p.N < 2 {
			return nil, paramError("n", p.N)
		}
		g := simple.NewUndirectedGraph()
		gen.Star(g, 0, gen.IDRange{First: 1, Last: int64(p.N - 1)})
		return graph.FromGonum(g), nil
	}
	r.generators["tree"] = func(p Params) (*graph.Graph, error) {
		fanout := p.Fanout
		if fanout == 0 {
			fanout = 2
		}
		if p.N < 1 {
			return nil, paramError("n", p.N)
		}
		if p.N > 1 && (fanout < 1 || fanout >= p.N) {
			return nil, paramError("fanout", fanout)
		}
		g := simple.NewUndirectedGraph()
		gen.Tree(g, fanout, gen.IDRange{First: 0, Last: int64(p.N - 1)})
		return graph.FromGonum(g), nil
	}
	r.generators["grid"] = grid
	r.generators["gnp"] = func(p Params) (*graph.Graph, error) {
		if p.N < 1 {
			return nil, paramError("n", p.N)
		}
		if !(p.P >= 0 && p.P <= 1) {
			return nil, paramError("p", p.P)
		}
		g := simple.NewUndirectedGraph()
		if err := gen.Gnp(g, p.N, p.P, physics.NewRandom(p.seed())); err != nil {
			return nil, fmt.Errorf("gnp: %w", err)
		}
		return graph.FromGonum(g), nil
	}
	r.generators["smallworld"] = func(p Params) (*graph.Graph, error) {
		degree := p.Fanout
		if degree == 0 {
			degree = 2
		}
		rewire := p.P
		if rewire == 0 {
			rewire = 0.1
		}
		g := simple.NewUndirectedGraph()
		if err := gen.SmallWorldsBB(g, p.N, degree, rewire, physics.NewRandom(p.seed())); err != nil {
			return nil, fmt.Errorf("smallworld: %w", err)
		}
		return graph.FromGonum(g), nil
	}
	return r
}

// Generate builds the named graph.
func (r *Registry) Generate(name string, p Params) (*graph.Graph, error) {
	fn, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
	return fn(p)
}

// Register adds or replaces a generator.
func (r *Registry) Register(name string, g Generator) {
	r.generators[name] = g
}

// List returns the generator names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (p Params) seed() uint64 {
	if p.Seed == 0 {
		return physics.DefaultSeed
	}
	return p.Seed
}

func deterministic(minN int, build func(gen.NodeIDGraphBuilder, gen.IDer)) Generator {
	return func(p Params) (*graph.Graph, error) {
		if p.N < minN {
			return nil, paramError("n", p.N)
		}
		g := simple.NewUndirectedGraph()
		build(g, gen.IDRange{First: 0, Last: int64(p.N - 1)})
		return graph.FromGonum(g), nil
	}
}

// grid lays N nodes out on a near-square lattice, row by row.
func grid(p Params) (*graph.Graph, error) {
	if p.N < 1 {
		return nil, paramError("n", p.N)
	}
	cols := int(math.Ceil(math.Sqrt(float64(p.N))))
	g := simple.NewUndirectedGraph()
	for i := 0; i < p.N; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < p.N; i++ {
		if (i+1)%cols != 0 && i+1 < p.N {
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+1)))
		}
		if i+cols < p.N {
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(i+cols)))
		}
	}
	return graph.FromGonum(g), nil
}

func paramError(name string, v any) error {
	return fmt.Errorf("%w: %s = %v", physics.ErrInvalidParameter, name, v)
}
