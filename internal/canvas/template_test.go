// internal/canvas/template_test.go
package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_IndependentOfLaterEdits(t *testing.T) {
	c := New(Background{Color: "#eeeeee"})
	id := c.AddItem(KindText, Patch{Content: str("before")})

	snap := c.Snapshot()
	c.UpdateItem(id, Patch{Content: str("after")})

	require.Len(t, snap.Items, 1)
	assert.Equal(t, "before", snap.Items[0].Content)
}

func TestProposal_ApplyCommitsProposed(t *testing.T) {
	current := Template{Items: []Item{{Kind: KindText, Content: "old"}}}
	proposed := Template{Items: []Item{{Kind: KindText, Content: "new"}}}

	p := NewProposal(current, proposed)
	got, ok := p.Proposed()
	require.True(t, ok)
	assert.Equal(t, "new", got.Items[0].Content)

	result := p.Apply()
	assert.Equal(t, "new", result.Items[0].Content)
	assert.Equal(t, "new", p.Current().Items[0].Content)

	// closed after apply
	_, ok = p.Proposed()
	assert.False(t, ok)
}

func TestProposal_RevertKeepsCurrent(t *testing.T) {
	current := Template{Items: []Item{{Kind: KindText, Content: "old"}}}
	proposed := Template{Items: []Item{{Kind: KindText, Content: "new"}}}

	p := NewProposal(current, proposed)
	result := p.Revert()

	assert.Equal(t, "old", result.Items[0].Content)
	_, ok := p.Proposed()
	assert.False(t, ok)

	// apply after revert changes nothing
	result = p.Apply()
	assert.Equal(t, "old", result.Items[0].Content)
}

func TestRestore_RoundTrip(t *testing.T) {
	c := New(Background{Color: "#101010"})
	c.AddItem(KindText, Patch{Content: str("hello")})
	c.AddItem(KindImage, Patch{SourceRef: str("img://x")})

	snap := c.Snapshot()
	restored := Restore(snap)

	assert.Equal(t, snap.Background, restored.Background())
	assert.Equal(t, snap.Items, restored.Items())
}
