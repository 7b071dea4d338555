package github

import (
	"github.com/credforge/credgraph/internal/address"
	"github.com/credforge/credgraph/internal/weights"
)

func nodeTypePrefix(kind string) address.NodeAddress {
	return address.MustNode(ownerPart, pluginPart, kind)
}

func edgeTypePrefix(kind string) address.EdgeAddress {
	return address.MustEdge(ownerPart, pluginPart, kind)
}

// Declaration enumerates every node and edge type the github plugin may
// put into a graph, with the default weights user configuration starts
// from. The review weight is low because review cred mostly belongs to
// the review's comments; bots are heavily discounted.
func Declaration() weights.Declaration {
	return weights.Declaration{
		Name: "github",
		NodeTypes: []weights.NodeType{
			{Name: "Repository", Prefix: nodeTypePrefix(kindRepo), DefaultWeight: 4, Description: "a repository"},
			{Name: "Issue", Prefix: nodeTypePrefix(kindIssue), DefaultWeight: 2, Description: "an issue"},
			{Name: "Pull request", Prefix: nodeTypePrefix(kindPull), DefaultWeight: 4, Description: "a pull request"},
			{Name: "Pull request review", Prefix: nodeTypePrefix(kindReview), DefaultWeight: 1, Description: "a review of a pull request"},
			{Name: "Comment", Prefix: nodeTypePrefix(kindComment), DefaultWeight: 1, Description: "a comment on an issue, pull, or review"},
			{Name: "User", Prefix: address.MustNode(ownerPart, pluginPart, kindUserlike, SubtypeUser), DefaultWeight: 1, Description: "a user identity"},
			{Name: "Bot", Prefix: address.MustNode(ownerPart, pluginPart, kindUserlike, SubtypeBot), DefaultWeight: 0.25, Description: "a bot identity"},
			{Name: "Commit", Prefix: nodeTypePrefix(kindCommit), DefaultWeight: 2, Description: "a commit"},
		},
		EdgeTypes: []weights.EdgeType{
			{
				Name: "Authors", Prefix: edgeTypePrefix(kindAuthors),
				DefaultForwards: 0.5, DefaultBackwards: 1,
				Description: "author -> content; the author gains more cred from the content than vice versa",
			},
			{
				Name: "Merged as", Prefix: edgeTypePrefix(kindMergedAs),
				DefaultForwards: 0.5, DefaultBackwards: 1,
				Description: "pull request -> merge commit",
			},
			{
				Name: "Has parent", Prefix: edgeTypePrefix(kindHasParent),
				DefaultForwards: 1, DefaultBackwards: 0.25,
				Description: "child entity -> containing entity",
			},
			{
				Name: "References", Prefix: edgeTypePrefix(kindReferences),
				DefaultForwards: 1, DefaultBackwards: 0,
				Description: "content -> entity mentioned in its body",
			},
			{
				Name: "Reacts", Prefix: edgeTypePrefix(kindReacts),
				DefaultForwards: 1, DefaultBackwards: 0.125,
				Description: "user -> content they reacted to",
			},
		},
	}
}

// UserPrefix selects every user-like node; the score normalizer
// typically rescales so that users' cred sums to a fixed total.
func UserPrefix() address.NodeAddress {
	return nodeTypePrefix(kindUserlike)
}
