package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeAddressRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{name: "single part", parts: []string{"credgraph"}},
		{name: "plugin prefix", parts: []string{"credgraph", "github"}},
		{name: "deep address", parts: []string{"credgraph", "github", "ISSUE", "torvalds", "linux", "1"}},
		{name: "parts with spaces and slashes", parts: []string{"a b", "c/d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewNode(tt.parts...)
			require.NoError(t, err)
			assert.Equal(t, tt.parts, a.Parts())
		})
	}
}

func TestNewNodeRejectsBadParts(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{name: "no parts", parts: nil},
		{name: "empty part", parts: []string{"credgraph", ""}},
		{name: "separator in part", parts: []string{"credgraph", "a\x00b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNode(tt.parts...)
			assert.Error(t, err)
		})
	}
}

func TestDistinctPartitionsDoNotCollide(t *testing.T) {
	// ["ab","c"] and ["a","bc"] must map to different flat keys.
	a1, err := NewNode("ab", "c")
	require.NoError(t, err)
	a2, err := NewNode("a", "bc")
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)
}

func TestHasPrefix(t *testing.T) {
	base := MustNode("credgraph", "github")
	issue := MustNode("credgraph", "github", "ISSUE", "o", "r", "1")
	other := MustNode("credgraph", "discord", "MESSAGE", "1")

	assert.True(t, issue.HasPrefix(base))
	assert.False(t, other.HasPrefix(base))
	assert.True(t, issue.HasPrefix(issue))

	// A part boundary is required: "git" is not a prefix of "github".
	partial := MustNode("credgraph", "git")
	assert.False(t, issue.HasPrefix(partial))
}

func TestEdgeAddressRoundTrip(t *testing.T) {
	parts := []string{"credgraph", "github", "AUTHORS", "x"}
	a, err := NewEdge(parts...)
	require.NoError(t, err)
	assert.Equal(t, parts, a.Parts())
}

func TestAppendNode(t *testing.T) {
	base := MustNode("credgraph", "github")
	extended, err := AppendNode(base, "REPO", "o", "r")
	require.NoError(t, err)
	assert.Equal(t, []string{"credgraph", "github", "REPO", "o", "r"}, extended.Parts())
	assert.True(t, extended.HasPrefix(base))
}

func TestAppendEdge(t *testing.T) {
	base := MustEdge("credgraph", "github")
	extended, err := AppendEdge(base, "AUTHORS", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"credgraph", "github", "AUTHORS", "x"}, extended.Parts())
	assert.True(t, extended.HasPrefix(base))

	_, err = AppendEdge(base, "")
	assert.Error(t, err)
}
