package weights

import (
	"github.com/credforge/credgraph/internal/address"
	"github.com/credforge/credgraph/internal/graph"
)

// EdgeEvaluator maps any edge to its forward/backward weight pair. It is
// pure: the same edge always evaluates to the same weights, and it holds
// no run-scoped mutable state, so one evaluator is safe to share across
// a whole rank run.
type EdgeEvaluator struct {
	nodeTypes []NodeType
	edgeTypes []EdgeType
	weights   Weights
}

// NewEdgeEvaluator builds an evaluator from a weight configuration and a
// type declaration. Construction fails fast on malformed weights
// (negative values, weights for undeclared types).
func NewEdgeEvaluator(w Weights, decl Declaration) (*EdgeEvaluator, error) {
	if err := validate(w, decl); err != nil {
		return nil, err
	}
	return &EdgeEvaluator{
		nodeTypes: decl.NodeTypes,
		edgeTypes: decl.EdgeTypes,
		weights:   w,
	}, nil
}

// Evaluate returns the weight pair for an edge. The edge's type is found
// by address prefix; edges of a type absent from the weight mapping (or
// matching no declared type at all) fall back to the default weight in
// both directions. The forward flow is additionally scaled by the weight
// of the destination node's type and the backward flow by the source
// node's type, so that e.g. an authorship edge can carry more cred to
// the author than back to the authored content.
func (ev *EdgeEvaluator) Evaluate(e graph.Edge) EdgeWeight {
	w := ev.edgeWeight(e.Address)
	w.Forwards *= ev.NodeWeight(e.Dst)
	w.Backwards *= ev.NodeWeight(e.Src)
	return w
}

// NodeWeight returns the weight of the node's declared type, or the
// default weight when the node matches no declared type.
func (ev *EdgeEvaluator) NodeWeight(a address.NodeAddress) float64 {
	for _, nt := range ev.nodeTypes {
		if a.HasPrefix(nt.Prefix) {
			if w, ok := ev.weights.NodeWeights[nt.Prefix]; ok {
				return w
			}
			return nt.DefaultWeight
		}
	}
	return ev.weights.Default
}

func (ev *EdgeEvaluator) edgeWeight(a address.EdgeAddress) EdgeWeight {
	for _, et := range ev.edgeTypes {
		if a.HasPrefix(et.Prefix) {
			if w, ok := ev.weights.EdgeWeights[et.Prefix]; ok {
				return w
			}
			return EdgeWeight{Forwards: et.DefaultForwards, Backwards: et.DefaultBackwards}
		}
	}
	return EdgeWeight{Forwards: ev.weights.Default, Backwards: ev.weights.Default}
}
