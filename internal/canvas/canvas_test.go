// internal/canvas/canvas_test.go
package canvas

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func str(v string) *string { return &v }
func b(v bool) *bool       { return &v }

func TestAddItem_TextDefaults(t *testing.T) {
	c := New(Background{Color: "#ffffff"})

	id := c.AddItem(KindText, Patch{})
	require.NotEmpty(t, id)

	it, ok := c.Item(id)
	require.True(t, ok)
	assert.Equal(t, KindText, it.Kind)
	assert.Equal(t, 100.0, it.OpacityPct)
	assert.Equal(t, 100.0, it.Filters.BrightnessPct)
	assert.Equal(t, 100.0, it.Filters.ContrastPct)
	assert.Equal(t, 100.0, it.Filters.SaturationPct)
	assert.Equal(t, 16.0, it.FontSizePx)
	assert.Equal(t, "Arial", it.FontFamily)
	assert.Equal(t, "normal", it.FontWeight)
	assert.Equal(t, "left", it.TextAlign)
	assert.Equal(t, "#000000", it.Color)
}

func TestAddItem_MediaDefaults(t *testing.T) {
	c := New(Background{})

	tests := []struct {
		name     string
		kind     Kind
		validate func(t *testing.T, it Item)
	}{
		{
			name: "image gets default dimensions",
			kind: KindImage,
			validate: func(t *testing.T, it Item) {
				assert.Equal(t, 200.0, it.WidthPx)
				assert.Equal(t, 200.0, it.HeightPx)
				assert.False(t, it.Muted)
			},
		},
		{
			name: "video starts muted",
			kind: KindVideo,
			validate: func(t *testing.T, it Item) {
				assert.True(t, it.Muted)
				assert.False(t, it.AutoPlay)
				assert.False(t, it.Loop)
			},
		},
		{
			name: "loop media autoplays muted in a loop",
			kind: KindLoopMedia,
			validate: func(t *testing.T, it Item) {
				assert.True(t, it.AutoPlay)
				assert.True(t, it.Loop)
				assert.True(t, it.Muted)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := c.AddItem(tt.kind, Patch{})
			it, ok := c.Item(id)
			require.True(t, ok)
			tt.validate(t, it)
		})
	}
}

func TestAddThenUpdate_CoordinatesOnly(t *testing.T) {
	c := New(Background{})

	id := c.AddItem(KindText, Patch{})
	c.UpdateItem(id, Patch{X: f(40), Y: f(10)})

	assert.Equal(t, 1, c.Len())
	it, ok := c.Item(id)
	require.True(t, ok)
	assert.Equal(t, 40.0, it.X)
	assert.Equal(t, 10.0, it.Y)

	// everything else stays at the declared defaults
	assert.Equal(t, 16.0, it.FontSizePx)
	assert.Equal(t, "Arial", it.FontFamily)
	assert.Equal(t, 100.0, it.OpacityPct)
}

func TestUpdateItem_ClampsRanges(t *testing.T) {
	c := New(Background{})
	id := c.AddItem(KindImage, Patch{SourceRef: str("img://1")})

	c.UpdateItem(id, Patch{
		RotationDeg: f(500),
		OpacityPct:  f(-20),
		WidthPx:     f(0),
		HeightPx:    f(99999),
		Filters: &Filters{
			BrightnessPct: 5000,
			ContrastPct:   100,
			SaturationPct: 100,
			BlurPx:        300,
			GrayscalePct:  150,
		},
	})

	it, _ := c.Item(id)
	assert.Equal(t, 360.0, it.RotationDeg)
	assert.Equal(t, 0.0, it.OpacityPct)
	assert.Equal(t, 1.0, it.WidthPx)
	assert.Equal(t, 10000.0, it.HeightPx)
	assert.Equal(t, 1000.0, it.Filters.BrightnessPct)
	assert.Equal(t, 100.0, it.Filters.BlurPx)
	assert.Equal(t, 100.0, it.Filters.GrayscalePct)
}

func TestUpdateItem_UnknownIDIsNoOp(t *testing.T) {
	c := New(Background{})
	id := c.AddItem(KindText, Patch{Content: str("hello")})

	before, _ := c.Item(id)
	c.UpdateItem("no-such-id", Patch{Content: str("changed")})
	after, _ := c.Item(id)

	assert.Equal(t, before, after)
	assert.Equal(t, 1, c.Len())
}

func TestUpdateItem_DisjointIDsCommute(t *testing.T) {
	build := func() (*Canvas, []string) {
		c := New(Background{})
		ids := []string{
			c.AddItem(KindText, Patch{}),
			c.AddItem(KindText, Patch{}),
			c.AddItem(KindImage, Patch{SourceRef: str("img://a")}),
		}
		return c, ids
	}

	patches := []Patch{
		{X: f(10), Content: str("first")},
		{Y: f(20), OpacityPct: f(50)},
		{WidthPx: f(300), RotationDeg: f(45)},
	}

	c1, ids1 := build()
	for i, p := range patches {
		c1.UpdateItem(ids1[i], p)
	}

	// apply the same disjoint patches in random orders
	for seed := int64(0); seed < 5; seed++ {
		c2, ids2 := build()
		order := rand.New(rand.NewSource(seed)).Perm(len(patches))
		for _, i := range order {
			c2.UpdateItem(ids2[i], patches[i])
		}

		got := c2.Items()
		want := c1.Items()
		require.Len(t, got, len(want))
		for i := range want {
			want[i].ID = ""
			got[i].ID = ""
			assert.Equal(t, want[i], got[i])
		}
	}
}

func TestRemoveItem_PreservesOrderAndClearsSelection(t *testing.T) {
	c := New(Background{})
	a := c.AddItem(KindText, Patch{Content: str("a")})
	bID := c.AddItem(KindText, Patch{Content: str("b")})
	cID := c.AddItem(KindText, Patch{Content: str("c")})

	c.SetSelected(bID)
	c.RemoveItem(bID)

	assert.Equal(t, 2, c.Len())
	_, selected := c.Selected()
	assert.False(t, selected)

	items := c.Items()
	assert.Equal(t, a, items[0].ID)
	assert.Equal(t, cID, items[1].ID)
}

func TestSetSelected(t *testing.T) {
	c := New(Background{})
	id := c.AddItem(KindText, Patch{})

	c.SetSelected(id)
	it, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, id, it.ID)

	// nonexistent id leaves the selection alone
	c.SetSelected("ghost")
	it, ok = c.Selected()
	require.True(t, ok)
	assert.Equal(t, id, it.ID)

	// empty id clears
	c.SetSelected("")
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestAddItem_RenderOrderIsInsertionOrder(t *testing.T) {
	c := New(Background{})
	first := c.AddItem(KindText, Patch{})
	second := c.AddItem(KindImage, Patch{SourceRef: str("img://x")})

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, first, items[0].ID)
	assert.Equal(t, second, items[1].ID)
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New(Background{})
	id := c.AddItem(KindText, Patch{Content: str("original")})

	items := c.Items()
	items[0].Content = "mutated"

	it, _ := c.Item(id)
	assert.Equal(t, "original", it.Content)
}

func TestFlipPatches(t *testing.T) {
	c := New(Background{})
	id := c.AddItem(KindImage, Patch{SourceRef: str("img://f")})

	c.UpdateItem(id, Patch{FlipX: b(true), FlipY: b(true)})
	it, _ := c.Item(id)
	assert.True(t, it.FlipX)
	assert.True(t, it.FlipY)
}
