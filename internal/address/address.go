// Package address implements the flat address key space used by the cred
// graph. An address is an ordered sequence of non-empty string parts,
// stored as a single string in which every part is followed by a
// separator byte. Node and edge addresses are distinct types so the two
// key spaces can never collide.
package address

import (
	"fmt"
	"strings"
)

// separator terminates every part of a flat address. Parts may not
// contain it, which makes the part-sequence <-> string mapping a
// bijection and turns prefix testing into a plain string prefix check.
const separator = "\x00"

// NodeAddress is the flat address of a node.
type NodeAddress string

// EdgeAddress is the flat address of an edge.
type EdgeAddress string

// ErrEmptyPart reports a part that is empty or contains the separator.
var ErrEmptyPart = fmt.Errorf("address part must be non-empty and separator-free")

func join(parts []string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("address must have at least one part")
	}
	var sb strings.Builder
	for _, p := range parts {
		if p == "" || strings.Contains(p, separator) {
			return "", fmt.Errorf("%w: %q", ErrEmptyPart, p)
		}
		sb.WriteString(p)
		sb.WriteString(separator)
	}
	return sb.String(), nil
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	// Every part carries a trailing separator, so drop the final empty
	// piece produced by Split.
	pieces := strings.Split(s, separator)
	return pieces[:len(pieces)-1]
}

// NewNode builds a node address from parts.
func NewNode(parts ...string) (NodeAddress, error) {
	s, err := join(parts)
	if err != nil {
		return "", fmt.Errorf("node address: %w", err)
	}
	return NodeAddress(s), nil
}

// MustNode is NewNode for statically known parts; it panics on invalid
// input and is intended for plugin prefix constants.
func MustNode(parts ...string) NodeAddress {
	a, err := NewNode(parts...)
	if err != nil {
		panic(err)
	}
	return a
}

// NewEdge builds an edge address from parts.
func NewEdge(parts ...string) (EdgeAddress, error) {
	s, err := join(parts)
	if err != nil {
		return "", fmt.Errorf("edge address: %w", err)
	}
	return EdgeAddress(s), nil
}

// MustEdge is NewEdge for statically known parts.
func MustEdge(parts ...string) EdgeAddress {
	a, err := NewEdge(parts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Parts recovers the ordered part sequence of a node address.
func (a NodeAddress) Parts() []string { return split(string(a)) }

// Parts recovers the ordered part sequence of an edge address.
func (a EdgeAddress) Parts() []string { return split(string(a)) }

// HasPrefix reports whether a begins with the parts of prefix.
func (a NodeAddress) HasPrefix(prefix NodeAddress) bool {
	return strings.HasPrefix(string(a), string(prefix))
}

// HasPrefix reports whether a begins with the parts of prefix.
func (a EdgeAddress) HasPrefix(prefix EdgeAddress) bool {
	return strings.HasPrefix(string(a), string(prefix))
}

// String renders the address for logs and error messages.
func (a NodeAddress) String() string {
	return "node[" + strings.Join(a.Parts(), "/") + "]"
}

// String renders the address for logs and error messages.
func (a EdgeAddress) String() string {
	return "edge[" + strings.Join(a.Parts(), "/") + "]"
}

// AppendNode extends a node address with more parts.
func AppendNode(a NodeAddress, parts ...string) (NodeAddress, error) {
	s, err := join(parts)
	if err != nil {
		return "", fmt.Errorf("node address: %w", err)
	}
	return a + NodeAddress(s), nil
}

// AppendEdge extends an edge address with more parts.
func AppendEdge(a EdgeAddress, parts ...string) (EdgeAddress, error) {
	s, err := join(parts)
	if err != nil {
		return "", fmt.Errorf("edge address: %w", err)
	}
	return a + EdgeAddress(s), nil
}
