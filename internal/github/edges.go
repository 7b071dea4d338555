package github

import (
	"fmt"

	"github.com/credforge/credgraph/internal/address"
	"github.com/credforge/credgraph/internal/graph"
)

// Edge kind discriminators.
const (
	kindAuthors    = "AUTHORS"
	kindMergedAs   = "MERGED_AS"
	kindHasParent  = "HAS_PARENT"
	kindReferences = "REFERENCES"
	kindReacts     = "REACTS"
)

// Reaction kinds.
const (
	ReactionThumbsUp = "THUMBS_UP"
	ReactionHeart    = "HEART"
	ReactionHooray   = "HOORAY"
	ReactionRocket   = "ROCKET"
)

// EdgePrefix is the flat prefix of every github edge address.
func EdgePrefix() address.EdgeAddress {
	return address.MustEdge(ownerPart, pluginPart)
}

// Authorable is the subset of node kinds that have an author.
type Authorable interface {
	StructuredNode
	authorable()
}

func (Issue) authorable()   {}
func (Pull) authorable()    {}
func (Review) authorable()  {}
func (Comment) authorable() {}
func (Commit) authorable()  {}

// Childlike is the subset of node kinds with a containing parent.
type Childlike interface {
	StructuredNode
	childlike()
}

func (Issue) childlike()   {}
func (Pull) childlike()    {}
func (Review) childlike()  {}
func (Comment) childlike() {}

// TextContent is the subset of node kinds whose body text can reference
// other entities.
type TextContent interface {
	StructuredNode
	textContent()
}

func (Issue) textContent()   {}
func (Pull) textContent()    {}
func (Review) textContent()  {}
func (Comment) textContent() {}

// Reactable is the subset of node kinds users can react to.
type Reactable interface {
	StructuredNode
	reactable()
}

func (Issue) reactable()   {}
func (Pull) reactable()    {}
func (Comment) reactable() {}

// StructuredEdge is the closed set of github edge address shapes.
// Embedded node addresses are stored as their full flat parts, which
// keeps the flat form self-delimiting and therefore parseable.
type StructuredEdge interface {
	edgeParts() []string
}

// Authors connects an author to content they authored.
type Authors struct {
	Author  Userlike
	Content Authorable
}

// MergedAs connects a pull request to the commit it merged as. A pull
// merges as at most one commit, so the pull alone identifies the edge.
type MergedAs struct {
	Pull Pull
}

// HasParent connects a child entity to its container. An entity has
// exactly one parent, so the child alone identifies the edge.
type HasParent struct {
	Child Childlike
}

// References connects content to an entity its body mentions.
type References struct {
	Referrer TextContent
	Referent StructuredNode
}

// Reacts connects a user to content they reacted to, one edge per
// reaction kind.
type Reacts struct {
	Kind    string
	User    Userlike
	Content Reactable
}

func embed(n StructuredNode) []string {
	return DestructureNode(n).Parts()
}

func (a Authors) edgeParts() []string {
	parts := []string{kindAuthors}
	parts = append(parts, embed(a.Author)...)
	return append(parts, embed(a.Content)...)
}

func (m MergedAs) edgeParts() []string {
	return append([]string{kindMergedAs}, embed(m.Pull)...)
}

func (h HasParent) edgeParts() []string {
	return append([]string{kindHasParent}, embed(h.Child)...)
}

func (r References) edgeParts() []string {
	parts := []string{kindReferences}
	parts = append(parts, embed(r.Referrer)...)
	return append(parts, embed(r.Referent)...)
}

func (r Reacts) edgeParts() []string {
	parts := []string{kindReacts, r.Kind}
	parts = append(parts, embed(r.User)...)
	return append(parts, embed(r.Content)...)
}

// DestructureEdge translates a structured edge address to its flat form.
// Total over the closed StructuredEdge set.
func DestructureEdge(e StructuredEdge) address.EdgeAddress {
	parts := append([]string{ownerPart, pluginPart}, e.edgeParts()...)
	return address.MustEdge(parts...)
}

// StructureEdge translates a flat edge address back to its structured
// form, with the same failure taxonomy as StructureNode.
func StructureEdge(a address.EdgeAddress) (StructuredEdge, error) {
	parts := a.Parts()
	if len(parts) == 0 {
		return nil, fmt.Errorf("bad address: empty")
	}
	if len(parts) < 3 {
		return nil, fmt.Errorf("bad address: wrong length (want at least prefix and kind, got %d parts)", len(parts))
	}
	if parts[0] != ownerPart || parts[1] != pluginPart {
		return nil, fmt.Errorf("bad address: wrong prefix %q/%q", parts[0], parts[1])
	}
	kind := parts[2]
	body := parts[3:]
	switch kind {
	case kindAuthors:
		author, rest, err := consumeUserlike(body)
		if err != nil {
			return nil, err
		}
		content, rest, err := consumeNode(rest)
		if err != nil {
			return nil, err
		}
		authorable, ok := content.(Authorable)
		if !ok {
			return nil, fmt.Errorf("bad address: %T cannot be authored", content)
		}
		return requireConsumed(Authors{Author: author, Content: authorable}, rest)
	case kindMergedAs:
		n, rest, err := consumeNode(body)
		if err != nil {
			return nil, err
		}
		pull, ok := n.(Pull)
		if !ok {
			return nil, fmt.Errorf("bad address: MERGED_AS wants a pull, got %T", n)
		}
		return requireConsumed(MergedAs{Pull: pull}, rest)
	case kindHasParent:
		n, rest, err := consumeNode(body)
		if err != nil {
			return nil, err
		}
		child, ok := n.(Childlike)
		if !ok {
			return nil, fmt.Errorf("bad address: %T has no parent", n)
		}
		return requireConsumed(HasParent{Child: child}, rest)
	case kindReferences:
		referrer, rest, err := consumeNode(body)
		if err != nil {
			return nil, err
		}
		text, ok := referrer.(TextContent)
		if !ok {
			return nil, fmt.Errorf("bad address: %T cannot reference", referrer)
		}
		referent, rest, err := consumeNode(rest)
		if err != nil {
			return nil, err
		}
		return requireConsumed(References{Referrer: text, Referent: referent}, rest)
	case kindReacts:
		if len(body) == 0 {
			return nil, fmt.Errorf("bad address: wrong length (REACTS wants a reaction kind)")
		}
		reaction := body[0]
		switch reaction {
		case ReactionThumbsUp, ReactionHeart, ReactionHooray, ReactionRocket:
		default:
			return nil, fmt.Errorf("bad address: unknown kind REACTS/%q", reaction)
		}
		user, rest, err := consumeUserlike(body[1:])
		if err != nil {
			return nil, err
		}
		content, rest, err := consumeNode(rest)
		if err != nil {
			return nil, err
		}
		reactable, ok := content.(Reactable)
		if !ok {
			return nil, fmt.Errorf("bad address: cannot react to %T", content)
		}
		return requireConsumed(Reacts{Kind: reaction, User: user, Content: reactable}, rest)
	default:
		return nil, fmt.Errorf("bad address: unknown kind %q", kind)
	}
}

func consumeUserlike(parts []string) (Userlike, []string, error) {
	n, rest, err := consumeNode(parts)
	if err != nil {
		return Userlike{}, nil, err
	}
	u, ok := n.(Userlike)
	if !ok {
		return Userlike{}, nil, fmt.Errorf("bad address: want a userlike, got %T", n)
	}
	return u, rest, nil
}

func requireConsumed(e StructuredEdge, rest []string) (StructuredEdge, error) {
	if len(rest) != 0 {
		return nil, fmt.Errorf("bad address: wrong length (%d trailing parts)", len(rest))
	}
	return e, nil
}

// AuthorsEdge builds the graph edge from an author to their content.
func AuthorsEdge(author Userlike, content Authorable) graph.Edge {
	return graph.Edge{
		Address: DestructureEdge(Authors{Author: author, Content: content}),
		Src:     DestructureNode(author),
		Dst:     DestructureNode(content),
	}
}

// MergedAsEdge builds the graph edge from a pull to its merge commit.
func MergedAsEdge(pull Pull, commit Commit) graph.Edge {
	return graph.Edge{
		Address: DestructureEdge(MergedAs{Pull: pull}),
		Src:     DestructureNode(pull),
		Dst:     DestructureNode(commit),
	}
}

// HasParentEdge builds the graph edge from a child entity to its parent.
func HasParentEdge(child Childlike, parent StructuredNode) graph.Edge {
	return graph.Edge{
		Address: DestructureEdge(HasParent{Child: child}),
		Src:     DestructureNode(child),
		Dst:     DestructureNode(parent),
	}
}

// ReferencesEdge builds the graph edge from referring content to the
// referenced entity.
func ReferencesEdge(referrer TextContent, referent StructuredNode) graph.Edge {
	return graph.Edge{
		Address: DestructureEdge(References{Referrer: referrer, Referent: referent}),
		Src:     DestructureNode(referrer),
		Dst:     DestructureNode(referent),
	}
}

// ReactsEdge builds the graph edge from a reacting user to the content.
func ReactsEdge(kind string, user Userlike, content Reactable) graph.Edge {
	return graph.Edge{
		Address: DestructureEdge(Reacts{Kind: kind, User: user, Content: content}),
		Src:     DestructureNode(user),
		Dst:     DestructureNode(content),
	}
}
