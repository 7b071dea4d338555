package weights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credforge/credgraph/internal/address"
	"github.com/credforge/credgraph/internal/graph"
)

func testDeclaration() Declaration {
	return Declaration{
		Name: "test",
		NodeTypes: []NodeType{
			{Name: "Post", Prefix: address.MustNode("t", "POST"), DefaultWeight: 2},
			{Name: "User", Prefix: address.MustNode("t", "USER"), DefaultWeight: 1},
		},
		EdgeTypes: []EdgeType{
			{Name: "Authors", Prefix: address.MustEdge("t", "AUTHORS"), DefaultForwards: 0.5, DefaultBackwards: 1},
			{Name: "Likes", Prefix: address.MustEdge("t", "LIKES"), DefaultForwards: 1, DefaultBackwards: 0},
		},
	}
}

func TestDefaults(t *testing.T) {
	w := Defaults(testDeclaration())

	assert.Equal(t, 1.0, w.Default)
	assert.Equal(t, 2.0, w.NodeWeights[address.MustNode("t", "POST")])
	assert.Equal(t,
		EdgeWeight{Forwards: 0.5, Backwards: 1},
		w.EdgeWeights[address.MustEdge("t", "AUTHORS")])
}

func TestMerge(t *testing.T) {
	base := Defaults(testDeclaration())
	override := Weights{
		NodeWeights: map[address.NodeAddress]float64{
			address.MustNode("t", "POST"): 8,
		},
		EdgeWeights: map[address.EdgeAddress]EdgeWeight{
			address.MustEdge("t", "LIKES"): {Forwards: 2, Backwards: 0.5},
		},
	}

	merged := Merge(base, override)

	assert.Equal(t, 8.0, merged.NodeWeights[address.MustNode("t", "POST")])
	assert.Equal(t, 1.0, merged.NodeWeights[address.MustNode("t", "USER")], "untouched entries keep base values")
	assert.Equal(t, EdgeWeight{Forwards: 2, Backwards: 0.5}, merged.EdgeWeights[address.MustEdge("t", "LIKES")])
	assert.Equal(t, 1.0, merged.Default, "zero override default keeps the base default")

	// Merge must not mutate its inputs.
	assert.Equal(t, 2.0, base.NodeWeights[address.MustNode("t", "POST")])

	withDefault := Merge(base, Weights{Default: 3})
	assert.Equal(t, 3.0, withDefault.Default)
}

func TestNewEdgeEvaluatorFailsFast(t *testing.T) {
	decl := testDeclaration()

	tests := []struct {
		name    string
		weights Weights
		wantMsg string
	}{
		{
			name:    "negative default",
			weights: Weights{Default: -1},
			wantMsg: "invalid weights: default weight",
		},
		{
			name: "negative node weight",
			weights: Weights{
				NodeWeights: map[address.NodeAddress]float64{address.MustNode("t", "POST"): -2},
			},
			wantMsg: "is negative",
		},
		{
			name: "negative edge weight",
			weights: Weights{
				EdgeWeights: map[address.EdgeAddress]EdgeWeight{
					address.MustEdge("t", "AUTHORS"): {Forwards: 1, Backwards: -0.5},
				},
			},
			wantMsg: "is negative",
		},
		{
			name: "undeclared node type",
			weights: Weights{
				NodeWeights: map[address.NodeAddress]float64{address.MustNode("t", "WIKI"): 1},
			},
			wantMsg: "undeclared type",
		},
		{
			name: "undeclared edge type",
			weights: Weights{
				EdgeWeights: map[address.EdgeAddress]EdgeWeight{address.MustEdge("t", "FOLLOWS"): {}},
			},
			wantMsg: "undeclared type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEdgeEvaluator(tt.weights, decl)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestEvaluate(t *testing.T) {
	decl := testDeclaration()
	ev, err := NewEdgeEvaluator(Defaults(decl), decl)
	require.NoError(t, err)

	user := address.MustNode("t", "USER", "alice")
	post := address.MustNode("t", "POST", "42")

	t.Run("scales forwards by dst type and backwards by src type", func(t *testing.T) {
		// AUTHORS user -> post: forwards 0.5 * post weight 2,
		// backwards 1 * user weight 1.
		w := ev.Evaluate(graph.Edge{
			Address: address.MustEdge("t", "AUTHORS", "alice", "42"),
			Src:     user,
			Dst:     post,
		})
		assert.Equal(t, EdgeWeight{Forwards: 1, Backwards: 1}, w)
	})

	t.Run("zero backwards stays zero", func(t *testing.T) {
		w := ev.Evaluate(graph.Edge{
			Address: address.MustEdge("t", "LIKES", "alice", "42"),
			Src:     user,
			Dst:     post,
		})
		assert.Equal(t, EdgeWeight{Forwards: 2, Backwards: 0}, w)
	})

	t.Run("unmatched edge type falls back to default", func(t *testing.T) {
		w := ev.Evaluate(graph.Edge{
			Address: address.MustEdge("other", "EDGE"),
			Src:     user,
			Dst:     post,
		})
		// Default 1 both ways, still scaled by endpoint node types.
		assert.Equal(t, EdgeWeight{Forwards: 2, Backwards: 1}, w)
	})

	t.Run("unmatched node falls back to default weight", func(t *testing.T) {
		assert.Equal(t, 1.0, ev.NodeWeight(address.MustNode("other", "NODE")))
	})

	t.Run("is deterministic", func(t *testing.T) {
		e := graph.Edge{Address: address.MustEdge("t", "AUTHORS", "x"), Src: user, Dst: post}
		assert.Equal(t, ev.Evaluate(e), ev.Evaluate(e))
	})
}

func TestEvaluateHonorsOverrides(t *testing.T) {
	decl := testDeclaration()
	w := Merge(Defaults(decl), Weights{
		NodeWeights: map[address.NodeAddress]float64{
			address.MustNode("t", "POST"): 4,
		},
		EdgeWeights: map[address.EdgeAddress]EdgeWeight{
			address.MustEdge("t", "AUTHORS"): {Forwards: 1, Backwards: 2},
		},
	})
	ev, err := NewEdgeEvaluator(w, decl)
	require.NoError(t, err)

	got := ev.Evaluate(graph.Edge{
		Address: address.MustEdge("t", "AUTHORS", "x"),
		Src:     address.MustNode("t", "USER", "alice"),
		Dst:     address.MustNode("t", "POST", "42"),
	})
	assert.Equal(t, EdgeWeight{Forwards: 4, Backwards: 2}, got)
}
