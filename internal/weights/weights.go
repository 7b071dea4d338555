// Package weights maps node and edge types to numeric weights and turns
// a weight configuration into a pure edge evaluator for the rank engine.
package weights

import (
	"fmt"

	"github.com/credforge/credgraph/internal/address"
)

// NodeType declares one kind of node a plugin may emit, identified by
// its address prefix.
type NodeType struct {
	Name          string
	Prefix        address.NodeAddress
	DefaultWeight float64
	Description   string
}

// EdgeType declares one kind of edge a plugin may emit. Forwards scales
// cred flowing src -> dst along the edge; Backwards scales the reverse
// flow.
type EdgeType struct {
	Name             string
	Prefix           address.EdgeAddress
	DefaultForwards  float64
	DefaultBackwards float64
	Description      string
}

// Declaration is the closed enumeration of all node and edge types a
// plugin may put into a graph. The evaluator trusts it and does not
// infer types from addresses.
type Declaration struct {
	Name      string
	NodeTypes []NodeType
	EdgeTypes []EdgeType
}

// EdgeWeight is a forward/backward multiplier pair.
type EdgeWeight struct {
	Forwards  float64 `json:"forwards"`
	Backwards float64 `json:"backwards"`
}

// Weights configures per-type weights, keyed by type address prefix,
// plus a default used for any type absent from the mappings. A Weights
// value is treated as immutable once handed to NewEdgeEvaluator;
// re-weighting means building a new evaluator.
type Weights struct {
	NodeWeights map[address.NodeAddress]float64   `json:"node_weights"`
	EdgeWeights map[address.EdgeAddress]EdgeWeight `json:"edge_weights"`
	Default     float64                            `json:"default"`
}

// Defaults returns the weights a declaration carries for its own types.
func Defaults(decl Declaration) Weights {
	w := Weights{
		NodeWeights: make(map[address.NodeAddress]float64, len(decl.NodeTypes)),
		EdgeWeights: make(map[address.EdgeAddress]EdgeWeight, len(decl.EdgeTypes)),
		Default:     1,
	}
	for _, nt := range decl.NodeTypes {
		w.NodeWeights[nt.Prefix] = nt.DefaultWeight
	}
	for _, et := range decl.EdgeTypes {
		w.EdgeWeights[et.Prefix] = EdgeWeight{Forwards: et.DefaultForwards, Backwards: et.DefaultBackwards}
	}
	return w
}

// Merge overlays overrides onto base, returning a new Weights. Entries
// in override win; the override default wins when it is non-zero.
func Merge(base, override Weights) Weights {
	out := Weights{
		NodeWeights: make(map[address.NodeAddress]float64, len(base.NodeWeights)),
		EdgeWeights: make(map[address.EdgeAddress]EdgeWeight, len(base.EdgeWeights)),
		Default:     base.Default,
	}
	for k, v := range base.NodeWeights {
		out.NodeWeights[k] = v
	}
	for k, v := range base.EdgeWeights {
		out.EdgeWeights[k] = v
	}
	for k, v := range override.NodeWeights {
		out.NodeWeights[k] = v
	}
	for k, v := range override.EdgeWeights {
		out.EdgeWeights[k] = v
	}
	if override.Default != 0 {
		out.Default = override.Default
	}
	return out
}

// validate enforces the fail-fast policy: every weight must be
// non-negative and keyed by a prefix belonging to a declared type.
// Malformed weights abort evaluator construction instead of being
// silently clamped.
func validate(w Weights, decl Declaration) error {
	if w.Default < 0 {
		return fmt.Errorf("invalid weights: default weight %v is negative", w.Default)
	}
	declaredNodes := make(map[address.NodeAddress]bool, len(decl.NodeTypes))
	for _, nt := range decl.NodeTypes {
		declaredNodes[nt.Prefix] = true
	}
	declaredEdges := make(map[address.EdgeAddress]bool, len(decl.EdgeTypes))
	for _, et := range decl.EdgeTypes {
		declaredEdges[et.Prefix] = true
	}
	for prefix, weight := range w.NodeWeights {
		if weight < 0 {
			return fmt.Errorf("invalid weights: node weight %v for %s is negative", weight, prefix)
		}
		if !declaredNodes[prefix] {
			return fmt.Errorf("invalid weights: node weight for undeclared type %s", prefix)
		}
	}
	for prefix, weight := range w.EdgeWeights {
		if weight.Forwards < 0 || weight.Backwards < 0 {
			return fmt.Errorf("invalid weights: edge weight %+v for %s is negative", weight, prefix)
		}
		if !declaredEdges[prefix] {
			return fmt.Errorf("invalid weights: edge weight for undeclared type %s", prefix)
		}
	}
	return nil
}
