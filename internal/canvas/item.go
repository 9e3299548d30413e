// internal/canvas/item.go
package canvas

// Kind discriminates the item union. The renderer matches on it exhaustively;
// no other code switches on item type.
type Kind string

const (
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindVideo     Kind = "video"
	KindLoopMedia Kind = "loopMedia"
)

// Filters holds the per-item filter chain parameters. Composition order at
// render time is fixed: brightness, contrast, saturate, blur, grayscale.
type Filters struct {
	BrightnessPct float64 `json:"brightnessPct"`
	ContrastPct   float64 `json:"contrastPct"`
	SaturationPct float64 `json:"saturationPct"`
	BlurPx        float64 `json:"blurPx"`
	GrayscalePct  float64 `json:"grayscalePct"`
}

// Shadow is the optional drop-shadow appended after the filter chain.
type Shadow struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	BlurPx  float64 `json:"blurPx"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Item is one positioned, styled visual element of a card. Kind selects which
// variant fields are meaningful; text fields are ignored for media kinds and
// vice versa. Range-bounded numeric fields are clamped on write, never on read.
type Item struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"kind"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	RotationDeg float64 `json:"rotationDeg"` // [0,360]
	FlipX       bool    `json:"flipX"`
	FlipY       bool    `json:"flipY"`
	OpacityPct  float64 `json:"opacityPct"` // [0,100]
	Filters     Filters `json:"filters"`
	Shadow      Shadow  `json:"shadow"`

	// text variant
	Content    string  `json:"content,omitempty"`
	Color      string  `json:"color,omitempty"`
	FontSizePx float64 `json:"fontSizePx,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
	TextShadow string  `json:"textShadow,omitempty"`

	// media variants (image, video, loopMedia)
	SourceRef      string  `json:"sourceRef,omitempty"`
	WidthPx        float64 `json:"widthPx,omitempty"`
	HeightPx       float64 `json:"heightPx,omitempty"`
	BorderRadiusPx float64 `json:"borderRadiusPx,omitempty"`

	// video only
	AutoPlay bool `json:"autoPlay,omitempty"`
	Loop     bool `json:"loop,omitempty"`
	Muted    bool `json:"muted,omitempty"`
	Playing  bool `json:"playing,omitempty"`
}

// Patch is a partial item update. Nil fields are left untouched; set fields
// are clamped to their declared range before the merge is committed.
type Patch struct {
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	RotationDeg *float64 `json:"rotationDeg,omitempty"`
	FlipX       *bool    `json:"flipX,omitempty"`
	FlipY       *bool    `json:"flipY,omitempty"`
	OpacityPct  *float64 `json:"opacityPct,omitempty"`
	Filters     *Filters `json:"filters,omitempty"`
	Shadow      *Shadow  `json:"shadow,omitempty"`

	Content    *string  `json:"content,omitempty"`
	Color      *string  `json:"color,omitempty"`
	FontSizePx *float64 `json:"fontSizePx,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	FontWeight *string  `json:"fontWeight,omitempty"`
	TextAlign  *string  `json:"textAlign,omitempty"`
	TextShadow *string  `json:"textShadow,omitempty"`

	SourceRef      *string  `json:"sourceRef,omitempty"`
	WidthPx        *float64 `json:"widthPx,omitempty"`
	HeightPx       *float64 `json:"heightPx,omitempty"`
	BorderRadiusPx *float64 `json:"borderRadiusPx,omitempty"`

	AutoPlay *bool `json:"autoPlay,omitempty"`
	Loop     *bool `json:"loop,omitempty"`
	Muted    *bool `json:"muted,omitempty"`
	Playing  *bool `json:"playing,omitempty"`
}

// Declared defaults for omitted numeric fields on add.
const (
	defaultOpacityPct    = 100.0
	defaultBrightnessPct = 100.0
	defaultContrastPct   = 100.0
	defaultSaturationPct = 100.0
	defaultFontSizePx    = 16.0
	defaultFontFamily    = "Arial"
	defaultFontWeight    = "normal"
	defaultTextAlign     = "left"
	defaultTextColor     = "#000000"
	defaultMediaWidthPx  = 200.0
	defaultMediaHeightPx = 200.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// defaultItem returns a fresh item of the given kind with declared defaults.
func defaultItem(id string, kind Kind) Item {
	it := Item{
		ID:         id,
		Kind:       kind,
		OpacityPct: defaultOpacityPct,
		Filters: Filters{
			BrightnessPct: defaultBrightnessPct,
			ContrastPct:   defaultContrastPct,
			SaturationPct: defaultSaturationPct,
		},
	}

	switch kind {
	case KindText:
		it.Color = defaultTextColor
		it.FontSizePx = defaultFontSizePx
		it.FontFamily = defaultFontFamily
		it.FontWeight = defaultFontWeight
		it.TextAlign = defaultTextAlign
	case KindImage, KindVideo, KindLoopMedia:
		it.WidthPx = defaultMediaWidthPx
		it.HeightPx = defaultMediaHeightPx
		if kind == KindVideo {
			it.Muted = true
		}
		if kind == KindLoopMedia {
			it.AutoPlay = true
			it.Loop = true
			it.Muted = true
		}
	}

	return it
}

// applyPatch merges p into a copy of it, clamping range-bounded fields.
func applyPatch(it Item, p Patch) Item {
	if p.X != nil {
		it.X = *p.X
	}
	if p.Y != nil {
		it.Y = *p.Y
	}
	if p.RotationDeg != nil {
		it.RotationDeg = clamp(*p.RotationDeg, 0, 360)
	}
	if p.FlipX != nil {
		it.FlipX = *p.FlipX
	}
	if p.FlipY != nil {
		it.FlipY = *p.FlipY
	}
	if p.OpacityPct != nil {
		it.OpacityPct = clamp(*p.OpacityPct, 0, 100)
	}
	if p.Filters != nil {
		f := *p.Filters
		f.BrightnessPct = clamp(f.BrightnessPct, 0, 1000)
		f.ContrastPct = clamp(f.ContrastPct, 0, 1000)
		f.SaturationPct = clamp(f.SaturationPct, 0, 1000)
		f.BlurPx = clamp(f.BlurPx, 0, 100)
		f.GrayscalePct = clamp(f.GrayscalePct, 0, 100)
		it.Filters = f
	}
	if p.Shadow != nil {
		s := *p.Shadow
		s.BlurPx = clamp(s.BlurPx, 0, 100)
		it.Shadow = s
	}

	if p.Content != nil {
		it.Content = *p.Content
	}
	if p.Color != nil {
		it.Color = *p.Color
	}
	if p.FontSizePx != nil {
		it.FontSizePx = clamp(*p.FontSizePx, 1, 500)
	}
	if p.FontFamily != nil {
		it.FontFamily = *p.FontFamily
	}
	if p.FontWeight != nil {
		it.FontWeight = *p.FontWeight
	}
	if p.TextAlign != nil {
		it.TextAlign = *p.TextAlign
	}
	if p.TextShadow != nil {
		it.TextShadow = *p.TextShadow
	}

	if p.SourceRef != nil {
		it.SourceRef = *p.SourceRef
	}
	if p.WidthPx != nil {
		it.WidthPx = clamp(*p.WidthPx, 1, 10000)
	}
	if p.HeightPx != nil {
		it.HeightPx = clamp(*p.HeightPx, 1, 10000)
	}
	if p.BorderRadiusPx != nil {
		it.BorderRadiusPx = clamp(*p.BorderRadiusPx, 0, 5000)
	}

	if p.AutoPlay != nil {
		it.AutoPlay = *p.AutoPlay
	}
	if p.Loop != nil {
		it.Loop = *p.Loop
	}
	if p.Muted != nil {
		it.Muted = *p.Muted
	}
	if p.Playing != nil {
		it.Playing = *p.Playing
	}

	return it
}
