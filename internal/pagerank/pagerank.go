// Package pagerank runs the weighted, bidirectional PageRank variant
// that turns a cred graph plus an edge evaluator into per-node scores
// with a per-edge contribution breakdown.
package pagerank

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/credforge/credgraph/internal/address"
	"github.com/credforge/credgraph/internal/graph"
	"github.com/credforge/credgraph/internal/weights"
)

// TerminalState reports how a run ended. Stopping at the iteration
// budget is reported, not treated as an error: an approximate fixed
// point still ranks.
type TerminalState string

const (
	StateConverged            TerminalState = "CONVERGED"
	StateMaxIterationsReached TerminalState = "MAX_ITERATIONS_REACHED"
)

// Options tunes a rank run.
type Options struct {
	// Alpha is the probability of following an edge; 1-Alpha is the
	// uniform teleport share of every score.
	Alpha float64
	// Tolerance bounds the maximum absolute per-node score change
	// between consecutive iterations at convergence.
	Tolerance float64
	// MaxIterations caps the run.
	MaxIterations int
	// SyntheticLoopWeight is a small self-loop weight given to every
	// node so that every node has positive out-weight. Mass is then
	// conserved exactly without any dangling-node redistribution, and
	// isolated nodes keep their score instead of leaking it.
	SyntheticLoopWeight float64
}

// DefaultOptions returns the options used when a caller passes zeroes.
func DefaultOptions() Options {
	return Options{
		Alpha:               0.85,
		Tolerance:           1e-7,
		MaxIterations:       255,
		SyntheticLoopWeight: 1e-3,
	}
}

func (o Options) withDefaults() (Options, error) {
	d := DefaultOptions()
	if o.Alpha == 0 {
		o.Alpha = d.Alpha
	}
	if o.Tolerance == 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.SyntheticLoopWeight == 0 {
		o.SyntheticLoopWeight = d.SyntheticLoopWeight
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		return o, fmt.Errorf("invalid options: alpha %v must be in (0, 1)", o.Alpha)
	}
	if o.Tolerance < 0 {
		return o, fmt.Errorf("invalid options: tolerance %v is negative", o.Tolerance)
	}
	if o.MaxIterations < 1 {
		return o, fmt.Errorf("invalid options: max iterations %d", o.MaxIterations)
	}
	if o.SyntheticLoopWeight < 0 {
		return o, fmt.Errorf("invalid options: synthetic loop weight %v is negative", o.SyntheticLoopWeight)
	}
	return o, nil
}

// ContributionKind tags where a score contribution came from.
type ContributionKind string

const (
	// KindEdgeForward credits flow along an edge's natural direction.
	KindEdgeForward ContributionKind = "EDGE_FORWARD"
	// KindEdgeBackward credits reverse flow along an edge.
	KindEdgeBackward ContributionKind = "EDGE_BACKWARD"
	// KindSyntheticLoop credits the node's own synthetic self-loop.
	KindSyntheticLoop ContributionKind = "SYNTHETIC_LOOP"
)

// Contribution is one in-flow record of a node's decomposition.
type Contribution struct {
	Kind   ContributionKind    `json:"kind"`
	Edge   address.EdgeAddress `json:"edge,omitempty"`
	Source address.NodeAddress `json:"source"`
	Amount float64             `json:"amount"`
}

// NodeScore is a node's final score with the ordered in-flow records
// explaining it. Contributions sum to the score minus the uniform
// teleport share.
type NodeScore struct {
	Score         float64
	Contributions []Contribution
}

// Result is a completed run. It is built fresh per run and never
// mutated afterwards; Normalized returns a rescaled copy.
type Result struct {
	State      TerminalState
	Iterations int
	Scores     map[address.NodeAddress]NodeScore
}

// connection is one inbound flow of a node: source index, un-normalized
// weight, and provenance for the decomposition.
type connection struct {
	source int
	weight float64
	kind   ContributionKind
	edge   address.EdgeAddress
}

type markovChain struct {
	nodes    []address.NodeAddress
	inflows  [][]connection
	totalOut []float64
}

// newMarkovChain indexes the graph into dense per-node inflow lists.
// Every edge contributes in both directions, asymmetrically weighted;
// each node's total out-weight is accumulated so its influence can be
// conserved regardless of out-degree.
func newMarkovChain(g *graph.Graph, ev *weights.EdgeEvaluator, loopWeight float64) *markovChain {
	nodes := g.Nodes()
	index := make(map[address.NodeAddress]int, len(nodes))
	for i, a := range nodes {
		index[a] = i
	}
	mc := &markovChain{
		nodes:    nodes,
		inflows:  make([][]connection, len(nodes)),
		totalOut: make([]float64, len(nodes)),
	}
	for i := range nodes {
		mc.inflows[i] = append(mc.inflows[i], connection{
			source: i,
			weight: loopWeight,
			kind:   KindSyntheticLoop,
		})
		mc.totalOut[i] = loopWeight
	}
	for _, e := range g.Edges() {
		w := ev.Evaluate(e)
		src, dst := index[e.Src], index[e.Dst]
		if w.Forwards > 0 {
			mc.inflows[dst] = append(mc.inflows[dst], connection{
				source: src,
				weight: w.Forwards,
				kind:   KindEdgeForward,
				edge:   e.Address,
			})
			mc.totalOut[src] += w.Forwards
		}
		if w.Backwards > 0 {
			mc.inflows[src] = append(mc.inflows[src], connection{
				source: dst,
				weight: w.Backwards,
				kind:   KindEdgeBackward,
				edge:   e.Address,
			})
			mc.totalOut[dst] += w.Backwards
		}
	}
	return mc
}

// Run computes the score decomposition for the graph. The graph is
// treated as read-only for the whole run; cancellation is checked once
// per iteration. An empty graph is a caller error.
func Run(ctx context.Context, g *graph.Graph, ev *weights.EdgeEvaluator, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if g.NodeCount() == 0 {
		return nil, fmt.Errorf("empty graph: no uniform initialization is definable")
	}

	mc := newMarkovChain(g, ev, opts.SyntheticLoopWeight)
	n := len(mc.nodes)
	teleport := (1 - opts.Alpha) / float64(n)

	cur := make([]float64, n)
	next := make([]float64, n)
	for i := range cur {
		cur[i] = 1 / float64(n)
	}

	state := StateMaxIterationsReached
	iterations := 0
	for iterations < opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rank run cancelled after %d iterations: %w", iterations, err)
		}
		delta := step(mc, cur, next, opts.Alpha, teleport)
		cur, next = next, cur
		iterations++
		if delta < opts.Tolerance {
			state = StateConverged
			break
		}
	}

	return &Result{
		State:      state,
		Iterations: iterations,
		Scores:     decompose(mc, cur, opts.Alpha, teleport),
	}, nil
}

// step computes one iteration into next and returns the maximum
// absolute score change.
func step(mc *markovChain, cur, next []float64, alpha, teleport float64) float64 {
	delta := 0.0
	for i, inflows := range mc.inflows {
		score := teleport
		for _, c := range inflows {
			score += alpha * cur[c.source] * c.weight / mc.totalOut[c.source]
		}
		next[i] = score
		if d := math.Abs(score - cur[i]); d > delta {
			delta = d
		}
	}
	return delta
}

// decompose recomputes every node's in-flow records against the final
// score vector, so that contributions are consistent with the reported
// scores rather than with an intermediate iteration.
func decompose(mc *markovChain, final []float64, alpha, teleport float64) map[address.NodeAddress]NodeScore {
	scores := make(map[address.NodeAddress]NodeScore, len(mc.nodes))
	for i, a := range mc.nodes {
		contribs := make([]Contribution, 0, len(mc.inflows[i]))
		score := teleport
		for _, c := range mc.inflows[i] {
			amount := alpha * final[c.source] * c.weight / mc.totalOut[c.source]
			score += amount
			contribs = append(contribs, Contribution{
				Kind:   c.kind,
				Edge:   c.edge,
				Source: mc.nodes[c.source],
				Amount: amount,
			})
		}
		// Descending by amount, address order as a stable tie break.
		sort.Slice(contribs, func(x, y int) bool {
			if contribs[x].Amount != contribs[y].Amount {
				return contribs[x].Amount > contribs[y].Amount
			}
			if contribs[x].Edge != contribs[y].Edge {
				return contribs[x].Edge < contribs[y].Edge
			}
			return contribs[x].Kind < contribs[y].Kind
		})
		scores[a] = NodeScore{Score: score, Contributions: contribs}
	}
	return scores
}

// Total returns the sum of all node scores.
func (r *Result) Total() float64 {
	total := 0.0
	for _, ns := range r.Scores {
		total += ns.Score
	}
	return total
}
