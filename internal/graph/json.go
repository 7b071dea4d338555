package graph

import (
	"encoding/json"
	"fmt"

	"github.com/credforge/credgraph/internal/address"
)

// formatVersion tags the interchange format. Bump on incompatible
// changes so a reader can reject graphs it does not understand.
const formatVersion = 1

// graphJSON is the wire form of a graph. Addresses travel as part
// arrays so the separator byte never appears in the serialized output,
// and both collections are sorted by address, making serialization a
// canonical form: serializing a deserialized graph reproduces the bytes.
type graphJSON struct {
	Version int        `json:"version"`
	Nodes   [][]string `json:"nodes"`
	Edges   []edgeJSON `json:"edges"`
}

type edgeJSON struct {
	Address []string `json:"address"`
	Src     []string `json:"src"`
	Dst     []string `json:"dst"`
}

// MarshalJSON serializes the graph in canonical order.
func (g *Graph) MarshalJSON() ([]byte, error) {
	gj := graphJSON{Version: formatVersion, Nodes: [][]string{}, Edges: []edgeJSON{}}
	for _, n := range g.Nodes() {
		gj.Nodes = append(gj.Nodes, n.Parts())
	}
	for _, e := range g.Edges() {
		gj.Edges = append(gj.Edges, edgeJSON{
			Address: e.Address.Parts(),
			Src:     e.Src.Parts(),
			Dst:     e.Dst.Parts(),
		})
	}
	return json.Marshal(gj)
}

// UnmarshalJSON rebuilds a graph from its wire form, re-validating every
// graph invariant on the way in.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var gj graphJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return fmt.Errorf("decode graph: %w", err)
	}
	if gj.Version != formatVersion {
		return fmt.Errorf("decode graph: unsupported format version %d", gj.Version)
	}
	fresh := New()
	for _, parts := range gj.Nodes {
		a, err := address.NewNode(parts...)
		if err != nil {
			return fmt.Errorf("decode graph: %w", err)
		}
		fresh.AddNode(a)
	}
	for _, ej := range gj.Edges {
		ea, err := address.NewEdge(ej.Address...)
		if err != nil {
			return fmt.Errorf("decode graph: %w", err)
		}
		src, err := address.NewNode(ej.Src...)
		if err != nil {
			return fmt.Errorf("decode graph: %w", err)
		}
		dst, err := address.NewNode(ej.Dst...)
		if err != nil {
			return fmt.Errorf("decode graph: %w", err)
		}
		if err := fresh.AddEdge(Edge{Address: ea, Src: src, Dst: dst}); err != nil {
			return fmt.Errorf("decode graph: %w", err)
		}
	}
	*g = *fresh
	return nil
}
