// internal/canvas/render.go
package canvas

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	apperrors "card-dispatch/internal/common/errors"
)

// RenderHTML turns a template into self-contained static markup with every
// style inlined per item. This is the artifact delivered on the email channel
// and the read-only visual handed to preview/envelope wrappers.
//
// Visual fidelity contract, reproduced exactly:
//   - transform order: rotate, then horizontal flip, then vertical flip
//   - filter chain: brightness, contrast, saturate, blur, grayscale,
//     optional drop-shadow appended last
//   - opacity applied independently of filters
//   - text laid out left-to-right honoring textAlign, overflow allowed
func RenderHTML(t Template) (string, error) {
	var b strings.Builder

	b.WriteString(`<div style="position:relative;overflow:hidden;`)
	b.WriteString(backgroundStyle(t.Background))
	b.WriteString(`">`)

	for _, it := range t.Items {
		markup, err := renderItem(it)
		if err != nil {
			return "", err
		}
		b.WriteString(markup)
	}

	b.WriteString(`</div>`)
	return b.String(), nil
}

// renderItem is the single per-kind renderer; every preview variant goes
// through here rather than re-implementing the switch.
func renderItem(it Item) (string, error) {
	switch it.Kind {
	case KindText:
		return renderText(it), nil
	case KindImage:
		return renderImage(it)
	case KindVideo, KindLoopMedia:
		return renderVideo(it)
	default:
		return "", fmt.Errorf("unknown item kind: %q", it.Kind)
	}
}

func renderText(it Item) string {
	var b strings.Builder
	b.WriteString(`<div style="`)
	b.WriteString(commonStyle(it))
	b.WriteString("color:" + it.Color + ";")
	b.WriteString("font-size:" + px(it.FontSizePx) + ";")
	b.WriteString("font-family:" + it.FontFamily + ";")
	b.WriteString("font-weight:" + it.FontWeight + ";")
	b.WriteString("text-align:" + it.TextAlign + ";")
	if it.TextShadow != "" {
		b.WriteString("text-shadow:" + it.TextShadow + ";")
	}
	// Overflow allowed: no width constraint, no clipping.
	b.WriteString("white-space:pre-wrap;")
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(it.Content))
	b.WriteString(`</div>`)
	return b.String()
}

func renderImage(it Item) (string, error) {
	if it.SourceRef == "" {
		return "", apperrors.NewAssetMissingError(it.ID, it.SourceRef)
	}

	var b strings.Builder
	b.WriteString(`<img src="` + html.EscapeString(it.SourceRef) + `" style="`)
	b.WriteString(commonStyle(it))
	b.WriteString(mediaStyle(it))
	b.WriteString(`" alt=""/>`)
	return b.String(), nil
}

func renderVideo(it Item) (string, error) {
	if it.SourceRef == "" {
		return "", apperrors.NewAssetMissingError(it.ID, it.SourceRef)
	}

	var b strings.Builder
	b.WriteString(`<video src="` + html.EscapeString(it.SourceRef) + `"`)
	if it.AutoPlay {
		b.WriteString(" autoplay")
	}
	if it.Loop || it.Kind == KindLoopMedia {
		b.WriteString(" loop")
	}
	if it.Muted {
		b.WriteString(" muted")
	}
	b.WriteString(` playsinline style="`)
	b.WriteString(commonStyle(it))
	b.WriteString(mediaStyle(it))
	b.WriteString(`"></video>`)
	return b.String(), nil
}

// commonStyle emits position, transform, filters and opacity shared by all kinds.
func commonStyle(it Item) string {
	var b strings.Builder
	b.WriteString("position:absolute;")
	b.WriteString("left:" + px(it.X) + ";")
	b.WriteString("top:" + px(it.Y) + ";")

	if tr := transformStyle(it); tr != "" {
		b.WriteString("transform:" + tr + ";")
	}
	if f := filterStyle(it); f != "" {
		b.WriteString("filter:" + f + ";")
	}
	if it.OpacityPct != 100 {
		b.WriteString("opacity:" + num(it.OpacityPct/100) + ";")
	}
	return b.String()
}

// transformStyle composes rotate, then flipX, then flipY. The order is part
// of the visual contract and must not be rearranged.
func transformStyle(it Item) string {
	var parts []string
	if it.RotationDeg != 0 {
		parts = append(parts, "rotate("+num(it.RotationDeg)+"deg)")
	}
	if it.FlipX {
		parts = append(parts, "scaleX(-1)")
	}
	if it.FlipY {
		parts = append(parts, "scaleY(-1)")
	}
	return strings.Join(parts, " ")
}

// filterStyle composes brightness, contrast, saturate, blur, grayscale, then
// the optional drop-shadow. Identity values are omitted.
func filterStyle(it Item) string {
	var parts []string
	f := it.Filters
	if f.BrightnessPct != 100 {
		parts = append(parts, "brightness("+num(f.BrightnessPct)+"%)")
	}
	if f.ContrastPct != 100 {
		parts = append(parts, "contrast("+num(f.ContrastPct)+"%)")
	}
	if f.SaturationPct != 100 {
		parts = append(parts, "saturate("+num(f.SaturationPct)+"%)")
	}
	if f.BlurPx != 0 {
		parts = append(parts, "blur("+px(f.BlurPx)+")")
	}
	if f.GrayscalePct != 0 {
		parts = append(parts, "grayscale("+num(f.GrayscalePct)+"%)")
	}
	if it.Shadow.Enabled {
		parts = append(parts, fmt.Sprintf("drop-shadow(%s %s %s %s)",
			px(it.Shadow.OffsetX), px(it.Shadow.OffsetY), px(it.Shadow.BlurPx), it.Shadow.Color))
	}
	return strings.Join(parts, " ")
}

func mediaStyle(it Item) string {
	var b strings.Builder
	b.WriteString("width:" + px(it.WidthPx) + ";")
	b.WriteString("height:" + px(it.HeightPx) + ";")
	if it.BorderRadiusPx != 0 {
		b.WriteString("border-radius:" + px(it.BorderRadiusPx) + ";")
	}
	b.WriteString("object-fit:cover;")
	return b.String()
}

func backgroundStyle(bg Background) string {
	switch {
	case bg.Color != "":
		return "background-color:" + bg.Color + ";"
	case bg.Gradient != "":
		return "background-image:" + bg.Gradient + ";"
	case bg.ImageRef != "":
		return "background-image:url('" + html.EscapeString(bg.ImageRef) + "');background-size:cover;"
	default:
		return "background-color:#ffffff;"
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}
