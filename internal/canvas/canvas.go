// internal/canvas/canvas.go
package canvas

import (
	"sync"

	"github.com/google/uuid"
)

// Background is the card backdrop: a flat color, a CSS gradient spec, or an
// image reference. The first non-empty field wins at render time, in that order.
type Background struct {
	Color    string `json:"color,omitempty"`
	Gradient string `json:"gradient,omitempty"`
	ImageRef string `json:"imageRef,omitempty"`
}

// Canvas is the mutable editing surface: an ordered sequence of items plus a
// background and at most one selection. Slice order is render (z-) order,
// last element topmost. The in-memory canvas is the single source of truth;
// any remote persistence is write-behind and never blocks mutation here.
//
// The surface is single-writer: every commit is an atomic replace-by-id under
// the mutex, so updates to disjoint ids commute.
type Canvas struct {
	mu         sync.RWMutex
	items      []Item
	background Background
	selectedID string
}

func New(bg Background) *Canvas {
	return &Canvas{background: bg}
}

// AddItem appends a new item of the given kind on top of the stack. Declared
// defaults fill every field the initial patch omits. Returns the fresh id.
func (c *Canvas) AddItem(kind Kind, initial Patch) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	it := applyPatch(defaultItem(uuid.New().String(), kind), initial)
	c.items = append(c.items, it)
	return it.ID
}

// UpdateItem replaces the item matching id with a clamped, shallow-merged
// copy. Unknown id is a no-op; the canvas is unchanged and no error is raised.
func (c *Canvas) UpdateItem(id string, patch Patch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i] = applyPatch(c.items[i], patch)
			return
		}
	}
}

// RemoveItem deletes the item matching id, preserving the order of the rest.
// The selection is cleared if it pointed at the removed item.
func (c *Canvas) RemoveItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			if c.selectedID == id {
				c.selectedID = ""
			}
			return
		}
	}
}

// SetSelected marks the item matching id as the active one. An empty id
// clears the selection; a nonexistent id is a no-op.
func (c *Canvas) SetSelected(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		c.selectedID = ""
		return
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.selectedID = id
			return
		}
	}
}

// Selected returns the currently selected item, if any.
func (c *Canvas) Selected() (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.selectedID == "" {
		return Item{}, false
	}
	for i := range c.items {
		if c.items[i].ID == c.selectedID {
			return c.items[i], true
		}
	}
	return Item{}, false
}

// Item returns a copy of the item matching id.
func (c *Canvas) Item(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.items {
		if c.items[i].ID == id {
			return c.items[i], true
		}
	}
	return Item{}, false
}

// Items returns a copy of the item stack in render order.
func (c *Canvas) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// SetBackground replaces the backdrop.
func (c *Canvas) SetBackground(bg Background) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = bg
}

// Background returns the current backdrop.
func (c *Canvas) Background() Background {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.background
}

// Len returns the number of items on the canvas.
func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
