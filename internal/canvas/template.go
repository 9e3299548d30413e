// internal/canvas/template.go
package canvas

// Template is an immutable snapshot of a canvas, captured at send time. It is
// the unit handed to the composer and the gallery store; nothing mutates it
// after capture.
type Template struct {
	Background Background `json:"background"`
	Items      []Item     `json:"items"`
}

// Snapshot captures the current canvas state as a Template. The item slice is
// copied so later edits to the canvas cannot leak into a captured template.
func (c *Canvas) Snapshot() Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]Item, len(c.items))
	copy(items, c.items)
	return Template{Background: c.background, Items: items}
}

// Clone returns an independent copy of the template.
func (t Template) Clone() Template {
	items := make([]Item, len(t.Items))
	copy(items, t.Items)
	return Template{Background: t.Background, Items: items}
}

// Proposal is a two-state snapshot used for assistant-driven redesigns: the
// pre-change template stays current until Apply commits the proposed one.
type Proposal struct {
	current  Template
	proposed Template
	open     bool
}

// NewProposal opens a proposal over the current template.
func NewProposal(current, proposed Template) *Proposal {
	return &Proposal{
		current:  current.Clone(),
		proposed: proposed.Clone(),
		open:     true,
	}
}

// Current returns the template that is live right now.
func (p *Proposal) Current() Template {
	return p.current
}

// Proposed returns the candidate template, valid only while the proposal is open.
func (p *Proposal) Proposed() (Template, bool) {
	if !p.open {
		return Template{}, false
	}
	return p.proposed, true
}

// Apply commits the proposed template as current and closes the proposal.
func (p *Proposal) Apply() Template {
	if p.open {
		p.current = p.proposed
		p.open = false
	}
	return p.current
}

// Revert discards the proposed template and closes the proposal.
func (p *Proposal) Revert() Template {
	p.open = false
	return p.current
}

// Restore loads a template back onto a fresh canvas for further editing.
func Restore(t Template) *Canvas {
	c := New(t.Background)
	c.items = make([]Item, len(t.Items))
	copy(c.items, t.Items)
	return c
}
