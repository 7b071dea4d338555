package pagerank

import (
	"fmt"

	"github.com/credforge/credgraph/internal/address"
)

// Normalized returns a copy of the result rescaled by a single factor
// so that the scores of nodes matching prefix sum to total. A pure
// scalar rescale: relative ordering is unchanged everywhere, and every
// contribution amount is scaled by the same factor so decompositions
// stay consistent with their scores.
func Normalized(r *Result, prefix address.NodeAddress, total float64) (*Result, error) {
	if total <= 0 {
		return nil, fmt.Errorf("normalize: target total %v must be positive", total)
	}
	matched := 0
	sum := 0.0
	for a, ns := range r.Scores {
		if a.HasPrefix(prefix) {
			matched++
			sum += ns.Score
		}
	}
	if matched == 0 {
		return nil, fmt.Errorf("normalize: no nodes match prefix %s", prefix)
	}
	if sum == 0 {
		return nil, fmt.Errorf("normalize: selected nodes have zero total score")
	}
	factor := total / sum

	out := &Result{
		State:      r.State,
		Iterations: r.Iterations,
		Scores:     make(map[address.NodeAddress]NodeScore, len(r.Scores)),
	}
	for a, ns := range r.Scores {
		contribs := make([]Contribution, len(ns.Contributions))
		for i, c := range ns.Contributions {
			c.Amount *= factor
			contribs[i] = c
		}
		out.Scores[a] = NodeScore{Score: ns.Score * factor, Contributions: contribs}
	}
	return out, nil
}
