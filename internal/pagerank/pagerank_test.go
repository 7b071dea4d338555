package pagerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credforge/credgraph/internal/address"
	"github.com/credforge/credgraph/internal/graph"
	"github.com/credforge/credgraph/internal/weights"
)

// chainDeclaration gives unit node weights so edge weights alone drive
// the flow, which keeps the expected behavior easy to reason about.
func chainDeclaration() weights.Declaration {
	return weights.Declaration{
		Name: "chain",
		NodeTypes: []weights.NodeType{
			{Name: "Node", Prefix: address.MustNode("t", "N"), DefaultWeight: 1},
		},
		EdgeTypes: []weights.EdgeType{
			{Name: "Strong", Prefix: address.MustEdge("t", "STRONG"), DefaultForwards: 2, DefaultBackwards: 1},
			{Name: "Weak", Prefix: address.MustEdge("t", "WEAK"), DefaultForwards: 1, DefaultBackwards: 1},
		},
	}
}

func chainEvaluator(t *testing.T) *weights.EdgeEvaluator {
	t.Helper()
	decl := chainDeclaration()
	ev, err := weights.NewEdgeEvaluator(weights.Defaults(decl), decl)
	require.NoError(t, err)
	return ev
}

// threeNodeChain builds a -> b (strong) -> c (weak).
func threeNodeChain(t *testing.T) (*graph.Graph, [3]address.NodeAddress) {
	t.Helper()
	a := address.MustNode("t", "N", "a")
	b := address.MustNode("t", "N", "b")
	c := address.MustNode("t", "N", "c")

	g := graph.New()
	g.AddNode(a)
	g.AddNode(b)
	g.AddNode(c)
	require.NoError(t, g.AddEdge(graph.Edge{Address: address.MustEdge("t", "STRONG", "1"), Src: a, Dst: b}))
	require.NoError(t, g.AddEdge(graph.Edge{Address: address.MustEdge("t", "WEAK", "1"), Src: b, Dst: c}))
	return g, [3]address.NodeAddress{a, b, c}
}

func TestRunRejectsEmptyGraph(t *testing.T) {
	_, err := Run(context.Background(), graph.New(), chainEvaluator(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty graph")
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	g, _ := threeNodeChain(t)
	ev := chainEvaluator(t)

	tests := []struct {
		name string
		opts Options
	}{
		{name: "alpha too large", opts: Options{Alpha: 1.5}},
		{name: "negative alpha", opts: Options{Alpha: -0.5}},
		{name: "negative tolerance", opts: Options{Tolerance: -1}},
		{name: "negative max iterations", opts: Options{MaxIterations: -3}},
		{name: "negative loop weight", opts: Options{SyntheticLoopWeight: -1e-3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), g, ev, tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid options")
		})
	}
}

func TestRunConverges(t *testing.T) {
	g, nodes := threeNodeChain(t)

	result, err := Run(context.Background(), g, chainEvaluator(t), Options{})
	require.NoError(t, err)

	assert.Equal(t, StateConverged, result.State)
	assert.Greater(t, result.Iterations, 1)
	require.Len(t, result.Scores, 3)
	for _, a := range nodes {
		assert.Contains(t, result.Scores, a)
	}
}

func TestScoreSumIsInvariant(t *testing.T) {
	g, _ := threeNodeChain(t)

	result, err := Run(context.Background(), g, chainEvaluator(t), Options{})
	require.NoError(t, err)

	// Per-source normalization conserves total mass exactly, so the
	// scores always sum to 1 regardless of topology.
	assert.InDelta(t, 1.0, result.Total(), 1e-6)
}

func TestChainOrdering(t *testing.T) {
	g, nodes := threeNodeChain(t)
	a, b, c := nodes[0], nodes[1], nodes[2]

	result, err := Run(context.Background(), g, chainEvaluator(t), Options{})
	require.NoError(t, err)

	// b receives the strong forward flow from a plus the backward flow
	// from c, so it outranks both. c retains more of its own mass than a
	// does (a splits its out-weight across the strong edge), so c edges
	// out a.
	sa := result.Scores[a].Score
	sb := result.Scores[b].Score
	sc := result.Scores[c].Score
	assert.Greater(t, sb, sc)
	assert.Greater(t, sc, sa)
}

func TestDecompositionIsConsistent(t *testing.T) {
	g, nodes := threeNodeChain(t)

	result, err := Run(context.Background(), g, chainEvaluator(t), Options{})
	require.NoError(t, err)

	opts := DefaultOptions()
	teleport := (1 - opts.Alpha) / float64(g.NodeCount())

	for _, a := range nodes {
		ns := result.Scores[a]
		sum := teleport
		for _, contrib := range ns.Contributions {
			sum += contrib.Amount
			assert.GreaterOrEqual(t, contrib.Amount, 0.0)
		}
		assert.InDelta(t, ns.Score, sum, 1e-12,
			"contributions plus teleport must reproduce the score of %s", a)

		// Contributions are sorted by descending amount.
		for i := 1; i < len(ns.Contributions); i++ {
			assert.GreaterOrEqual(t,
				ns.Contributions[i-1].Amount, ns.Contributions[i].Amount)
		}
	}

	// c's dominant in-flow is the forward edge from b; its own loop is
	// negligible next to it.
	c := nodes[2]
	top := result.Scores[c].Contributions[0]
	assert.Equal(t, KindEdgeForward, top.Kind)
	assert.Equal(t, nodes[1], top.Source)
}

func TestIsolatedNodeKeepsItsScore(t *testing.T) {
	g := graph.New()
	lone := address.MustNode("t", "N", "lone")
	g.AddNode(lone)

	result, err := Run(context.Background(), g, chainEvaluator(t), Options{})
	require.NoError(t, err)

	// The synthetic self loop returns the node's whole mass to itself,
	// so a single isolated node scores exactly 1.
	assert.Equal(t, StateConverged, result.State)
	assert.InDelta(t, 1.0, result.Scores[lone].Score, 1e-6)

	contribs := result.Scores[lone].Contributions
	require.Len(t, contribs, 1)
	assert.Equal(t, KindSyntheticLoop, contribs[0].Kind)
	assert.Equal(t, lone, contribs[0].Source)
}

func TestMaxIterationsReached(t *testing.T) {
	g, _ := threeNodeChain(t)

	result, err := Run(context.Background(), g, chainEvaluator(t), Options{
		MaxIterations: 1,
		Tolerance:     1e-15,
	})
	require.NoError(t, err)

	assert.Equal(t, StateMaxIterationsReached, result.State)
	assert.Equal(t, 1, result.Iterations)
	// The approximate result still carries a full decomposition.
	assert.Len(t, result.Scores, 3)
	assert.InDelta(t, 1.0, result.Total(), 1e-6)
}

func TestRunHonorsCancellation(t *testing.T) {
	g, _ := threeNodeChain(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, g, chainEvaluator(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank run cancelled")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunIsDeterministic(t *testing.T) {
	g, nodes := threeNodeChain(t)
	ev := chainEvaluator(t)

	first, err := Run(context.Background(), g, ev, Options{})
	require.NoError(t, err)
	second, err := Run(context.Background(), g, ev, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.Iterations, second.Iterations)
	for _, a := range nodes {
		assert.Equal(t, first.Scores[a].Score, second.Scores[a].Score)
		assert.Equal(t, first.Scores[a].Contributions, second.Scores[a].Contributions)
	}
}
