package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Evaluator scores one combination of parameter values. Lower is better.
type Evaluator func(ctx context.Context, params map[string]float64) (float64, error)

// GridSearch evaluates every combination of the candidate values of a set
// of named parameters.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d parameters but %d value lists", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of combinations Search evaluates.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Trial is one evaluated combination.
type Trial struct {
	Params map[string]float64
	Score  float64
}

// Search evaluates every combination in order, returning the best trial and
// all trials. Ties keep the earlier combination. An evaluation error or a
// cancelled context stops the search.
func (g *GridSearch) Search(ctx context.Context, eval Evaluator) (Trial, []Trial, error) {
	best := Trial{Score: math.Inf(1)}
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, func(t Trial) {
		trials = append(trials, t)
		if best.Params == nil || t.Score < best.Score {
			best = t
		}
	})
	if err != nil {
		return Trial{}, trials, err
	}
	return best, trials, nil
}

var errNoParams = errors.New("grid search: no parameters")

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluator,
	record func(Trial),
) error {
	if len(g.paramNames) == 0 {
		return errNoParams
	}
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		score, err := eval(ctx, current)
		if err != nil {
			return fmt.Errorf("evaluate %v: %w", current, err)
		}
		record(Trial{Params: current, Score: score})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, depth+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval, record); err != nil {
			return err
		}
	}
	return nil
}
