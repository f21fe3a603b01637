package layout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/kernel"
	"github.com/san-kum/forcelayout/internal/physics"
)

// RunResult describes one member of an ensemble.
type RunResult struct {
	Seed   uint64
	Steps  int
	Stable bool
	Move   float64
	Rect   physics.Box
}

// Ensemble lays out copies of one graph with consecutive seeds, running the
// copies concurrently. Each copy has its own graph, simulator and random
// source; only the kernel cache is shared.
type Ensemble struct {
	graph     *graph.Graph
	numRuns   int
	seedStart uint64
	maxSteps  int
	opts      []Option

	// Limit caps the number of concurrent runs; 0 means no limit.
	Limit int
}

func NewEnsemble(g *graph.Graph, numRuns int, seedStart uint64, maxSteps int, opts ...Option) *Ensemble {
	return &Ensemble{graph: g, numRuns: numRuns, seedStart: seedStart, maxSteps: maxSteps, opts: opts}
}

// Run steps every copy until it is stable or maxSteps is reached. Results
// are ordered by seed. The first error cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context) ([]RunResult, error) {
	if e.graph == nil {
		return nil, physics.ErrMissingGraph
	}
	results := make([]RunResult, e.numRuns)
	cache := kernel.NewCache()

	eg, ctx := errgroup.WithContext(ctx)
	if e.Limit > 0 {
		eg.SetLimit(e.Limit)
	}
	for i := 0; i < e.numRuns; i++ {
		g := e.graph.Clone()
		seed := e.seedStart + uint64(i)
		eg.Go(func() error {
			opts := append([]Option{WithKernelCache(cache)}, e.opts...)
			opts = append(opts, WithRandom(physics.NewRandom(seed)))
			l, err := New(g, opts...)
			if err != nil {
				return err
			}
			defer l.Dispose()

			r := RunResult{Seed: seed}
			for r.Steps < e.maxSteps && !r.Stable {
				if r.Steps%64 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				r.Stable = l.Step()
				r.Steps++
			}
			r.Move = l.LastMove()
			r.Rect = l.GraphRect()
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
