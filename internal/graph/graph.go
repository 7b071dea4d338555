// Package graph implements the cred graph: a directed multigraph whose
// nodes and edges are keyed by flat addresses. The graph enforces
// address uniqueness and edge-endpoint existence, supports idempotent
// incremental construction, and (de)serializes to a canonical JSON
// interchange form.
package graph

import (
	"fmt"
	"sort"

	"github.com/credforge/credgraph/internal/address"
)

// Edge is a directed edge between two existing nodes. The edge's own
// address is its identity; Src and Dst are node addresses.
type Edge struct {
	Address address.EdgeAddress
	Src     address.NodeAddress
	Dst     address.NodeAddress
}

// Graph owns a set of nodes and directed edges. The zero value is not
// usable; construct with New.
type Graph struct {
	nodes    map[address.NodeAddress]struct{}
	edges    map[address.EdgeAddress]Edge
	inEdges  map[address.NodeAddress][]address.EdgeAddress
	outEdges map[address.NodeAddress][]address.EdgeAddress
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[address.NodeAddress]struct{}),
		edges:    make(map[address.EdgeAddress]Edge),
		inEdges:  make(map[address.NodeAddress][]address.EdgeAddress),
		outEdges: make(map[address.NodeAddress][]address.EdgeAddress),
	}
}

// AddNode inserts a node. Re-adding a present node is a no-op.
func (g *Graph) AddNode(a address.NodeAddress) {
	g.nodes[a] = struct{}{}
}

// AddEdge inserts a directed edge. Both endpoints must already be nodes.
// Re-adding the identical triple is a no-op; re-using an edge address
// with different endpoints is a conflict. The graph is unmodified on
// failure.
func (g *Graph) AddEdge(e Edge) error {
	if existing, ok := g.edges[e.Address]; ok {
		if existing.Src == e.Src && existing.Dst == e.Dst {
			return nil
		}
		return fmt.Errorf("conflicting edge: %s already joins %s -> %s",
			e.Address, existing.Src, existing.Dst)
	}
	if _, ok := g.nodes[e.Src]; !ok {
		return fmt.Errorf("missing endpoint: src %s is not in the graph", e.Src)
	}
	if _, ok := g.nodes[e.Dst]; !ok {
		return fmt.Errorf("missing endpoint: dst %s is not in the graph", e.Dst)
	}
	g.edges[e.Address] = e
	g.outEdges[e.Src] = append(g.outEdges[e.Src], e.Address)
	g.inEdges[e.Dst] = append(g.inEdges[e.Dst], e.Address)
	return nil
}

// HasNode reports whether the node is present.
func (g *Graph) HasNode(a address.NodeAddress) bool {
	_, ok := g.nodes[a]
	return ok
}

// Edge returns the edge stored under the address, if any.
func (g *Graph) Edge(a address.EdgeAddress) (Edge, bool) {
	e, ok := g.edges[a]
	return e, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes enumerates all node addresses in canonical (sorted) order.
func (g *Graph) Nodes() []address.NodeAddress {
	out := make([]address.NodeAddress, 0, len(g.nodes))
	for a := range g.nodes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Edges enumerates all edges in canonical (sorted by address) order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// InEdges enumerates the edges whose destination is the node, sorted.
func (g *Graph) InEdges(a address.NodeAddress) []Edge {
	return g.incident(g.inEdges[a])
}

// OutEdges enumerates the edges whose source is the node, sorted.
func (g *Graph) OutEdges(a address.NodeAddress) []Edge {
	return g.incident(g.outEdges[a])
}

func (g *Graph) incident(addrs []address.EdgeAddress) []Edge {
	out := make([]Edge, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, g.edges[a])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Equal reports structural equality: same node set and same edge set
// with identical endpoints, independent of insertion order.
func (g *Graph) Equal(other *Graph) bool {
	if other == nil {
		return false
	}
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for a := range g.nodes {
		if _, ok := other.nodes[a]; !ok {
			return false
		}
	}
	for a, e := range g.edges {
		oe, ok := other.edges[a]
		if !ok || oe.Src != e.Src || oe.Dst != e.Dst {
			return false
		}
	}
	return true
}

// Copy returns an independent graph with the same nodes and edges.
func (g *Graph) Copy() *Graph {
	c := New()
	for a := range g.nodes {
		c.AddNode(a)
	}
	for _, e := range g.edges {
		// Endpoints are present by the invariant, so AddEdge cannot fail.
		if err := c.AddEdge(e); err != nil {
			panic(fmt.Sprintf("graph copy violated invariant: %v", err))
		}
	}
	return c
}
