// Package github defines the GitHub plugin's structured addresses, the
// codec between structured and flat addresses, and the plugin's type
// declaration. Every structured value maps to exactly one flat address
// and back; the codec is the only component that interprets flat
// address parts.
package github

import (
	"fmt"
	"strings"

	"github.com/credforge/credgraph/internal/address"
)

// The owner/plugin namespace prefix every github address begins with.
const (
	ownerPart  = "credgraph"
	pluginPart = "github"
)

// Node kind discriminators.
const (
	kindRepo     = "REPO"
	kindIssue    = "ISSUE"
	kindPull     = "PULL"
	kindReview   = "REVIEW"
	kindComment  = "COMMENT"
	kindUserlike = "USERLIKE"
	kindCommit   = "COMMIT"
)

// Userlike subtypes.
const (
	SubtypeUser = "USER"
	SubtypeBot  = "BOT"
)

// NodePrefix is the flat prefix of every github node address.
func NodePrefix() address.NodeAddress {
	return address.MustNode(ownerPart, pluginPart)
}

// StructuredNode is the closed set of github node address shapes. New
// kinds require a new case here and in both codec directions, which
// keeps the mapping exhaustively checkable.
type StructuredNode interface {
	// kindParts returns the discriminator and kind-specific parts,
	// without the namespace prefix. Fields must be non-empty; the codec
	// panics on malformed programmatic input rather than producing an
	// ambiguous address.
	kindParts() []string
}

// Repo is a repository, e.g. torvalds/linux.
type Repo struct {
	Owner string
	Name  string
}

// Issue is an issue of a repository.
type Issue struct {
	Repo   Repo
	Number string
}

// Pull is a pull request of a repository.
type Pull struct {
	Repo   Repo
	Number string
}

// Review is a review of a pull request.
type Review struct {
	Pull Pull
	ID   string
}

// CommentParent is the subset of node kinds that can host comments.
type CommentParent interface {
	StructuredNode
	commentParent()
}

func (Issue) commentParent()  {}
func (Pull) commentParent()   {}
func (Review) commentParent() {}

// Comment is a comment on an issue, pull request, or review. Its address
// embeds the parent's address parts inline plus a disambiguating
// fragment.
type Comment struct {
	Parent   CommentParent
	Fragment string
}

// Userlike is a user-shaped identity (human user or bot).
type Userlike struct {
	Subtype string
	Login   string
}

// Commit is a git commit, identified by hash.
type Commit struct {
	Hash string
}

func (r Repo) kindParts() []string  { return []string{kindRepo, r.Owner, r.Name} }
func (i Issue) kindParts() []string { return []string{kindIssue, i.Repo.Owner, i.Repo.Name, i.Number} }
func (p Pull) kindParts() []string  { return []string{kindPull, p.Repo.Owner, p.Repo.Name, p.Number} }
func (r Review) kindParts() []string {
	return []string{kindReview, r.Pull.Repo.Owner, r.Pull.Repo.Name, r.Pull.Number, r.ID}
}
func (c Comment) kindParts() []string {
	parts := []string{kindComment}
	parts = append(parts, c.Parent.kindParts()...)
	return append(parts, c.Fragment)
}
func (u Userlike) kindParts() []string { return []string{kindUserlike, u.Subtype, u.Login} }
func (c Commit) kindParts() []string   { return []string{kindCommit, c.Hash} }

// DestructureNode translates a structured node address to its flat form.
// It is total over the closed StructuredNode set: identical input always
// yields byte-identical output, with no environment dependency.
func DestructureNode(n StructuredNode) address.NodeAddress {
	parts := append([]string{ownerPart, pluginPart}, n.kindParts()...)
	return address.MustNode(parts...)
}

// StructureNode translates a flat address back to its structured form.
// Every malformation fails with a message naming the specific defect.
func StructureNode(a address.NodeAddress) (StructuredNode, error) {
	parts := a.Parts()
	if len(parts) == 0 {
		return nil, fmt.Errorf("bad address: empty")
	}
	n, rest, err := consumeNode(parts)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("bad address: wrong length (%d trailing parts after %s)",
			len(rest), strings.Join(parts[:len(parts)-len(rest)], "/"))
	}
	return n, nil
}

// kindArity gives the number of kind-specific parts following each fixed
// discriminator. COMMENT is absent: its arity depends on the parent.
var kindArity = map[string]int{
	kindRepo:     2,
	kindIssue:    3,
	kindPull:     3,
	kindReview:   4,
	kindUserlike: 2,
	kindCommit:   1,
}

// consumeNode reads exactly one flat node address from the front of
// parts, returning the remainder. Edge addresses embed node addresses
// back to back, so the parse must be self-delimiting: the kind
// discriminator fixes the arity (recursively through comment parents).
func consumeNode(parts []string) (StructuredNode, []string, error) {
	if len(parts) < 3 {
		return nil, nil, fmt.Errorf("bad address: wrong length (want at least prefix and kind, got %d parts)", len(parts))
	}
	if parts[0] != ownerPart || parts[1] != pluginPart {
		return nil, nil, fmt.Errorf("bad address: wrong prefix %q/%q", parts[0], parts[1])
	}
	kind := parts[2]
	body := parts[3:]
	if kind == kindComment {
		return consumeComment(body)
	}
	arity, ok := kindArity[kind]
	if !ok {
		return nil, nil, fmt.Errorf("bad address: unknown kind %q", kind)
	}
	if len(body) < arity {
		return nil, nil, fmt.Errorf("bad address: wrong length (kind %s wants %d parts, got %d)", kind, arity, len(body))
	}
	fields, rest := body[:arity], body[arity:]
	switch kind {
	case kindRepo:
		return Repo{Owner: fields[0], Name: fields[1]}, rest, nil
	case kindIssue:
		return Issue{Repo: Repo{Owner: fields[0], Name: fields[1]}, Number: fields[2]}, rest, nil
	case kindPull:
		return Pull{Repo: Repo{Owner: fields[0], Name: fields[1]}, Number: fields[2]}, rest, nil
	case kindReview:
		return Review{
			Pull: Pull{Repo: Repo{Owner: fields[0], Name: fields[1]}, Number: fields[2]},
			ID:   fields[3],
		}, rest, nil
	case kindUserlike:
		if fields[0] != SubtypeUser && fields[0] != SubtypeBot {
			return nil, nil, fmt.Errorf("bad address: unknown kind USERLIKE/%q", fields[0])
		}
		return Userlike{Subtype: fields[0], Login: fields[1]}, rest, nil
	case kindCommit:
		return Commit{Hash: fields[0]}, rest, nil
	}
	// Unreachable: kindArity and the switch cover the same kinds.
	return nil, nil, fmt.Errorf("bad address: unknown kind %q", kind)
}

// consumeComment parses [parentKind, parentFields..., fragment]. The
// parent's shape is re-derived recursively; parents that cannot host
// comments are rejected.
func consumeComment(body []string) (StructuredNode, []string, error) {
	if len(body) == 0 {
		return nil, nil, fmt.Errorf("bad address: wrong length (comment wants a parent kind)")
	}
	parentKind := body[0]
	arity, ok := kindArity[parentKind]
	if parentKind == kindComment {
		return nil, nil, fmt.Errorf("bad comment parent type %q", parentKind)
	}
	if !ok {
		return nil, nil, fmt.Errorf("bad address: unknown kind %q", parentKind)
	}
	if len(body) < 1+arity+1 {
		return nil, nil, fmt.Errorf("bad address: wrong length (comment on %s wants %d parts, got %d)",
			parentKind, 1+arity+1, len(body))
	}
	parentParts := append([]string{ownerPart, pluginPart, parentKind}, body[1:1+arity]...)
	parent, leftover, err := consumeNode(parentParts)
	if err != nil {
		return nil, nil, err
	}
	if len(leftover) != 0 {
		return nil, nil, fmt.Errorf("bad address: wrong length (comment parent %s)", parentKind)
	}
	hostable, ok := parent.(CommentParent)
	if !ok {
		return nil, nil, fmt.Errorf("bad comment parent type %q", parentKind)
	}
	fragment := body[1+arity]
	return Comment{Parent: hostable, Fragment: fragment}, body[1+arity+1:], nil
}
