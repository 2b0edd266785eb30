package meta

// GeometryPolicy synthesizes a plausible box for nodes that cannot be
// measured (static HTML at build time, server-side generation). The
// constants are a tunable policy, not a contract: callers only rely on
// monotonic scaling (longer text ⇒ wider, higher heading level ⇒ shorter).
type GeometryPolicy struct {
	CharWidthPx   float64 // approximate width of one character
	LineHeightPx  float64 // height of one text line
	MaxTextWidth  float64 // cap for text-derived widths
	HeadingBasePx float64 // h1 height; each level down shrinks by HeadingStepPx
	HeadingStepPx float64
	DefaultWidth  float64 // fallback for non-text elements
	DefaultHeight float64
}

// DefaultGeometryPolicy returns the stock heuristics.
func DefaultGeometryPolicy() GeometryPolicy {
	return GeometryPolicy{
		CharWidthPx:   9,
		LineHeightPx:  20,
		MaxTextWidth:  600,
		HeadingBasePx: 32,
		HeadingStepPx: 3,
		DefaultWidth:  200,
		DefaultHeight: 40,
	}
}

// Synthesize derives a box for a non-measurable node from its kind and
// text content.
func (p GeometryPolicy) Synthesize(kind, text string) Box {
	switch kind {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := float64(kind[1] - '0')
		return Box{
			Width:  p.textWidth(text, 1.5),
			Height: p.HeadingBasePx - (level-1)*p.HeadingStepPx,
		}
	case "p", "blockquote", "pre", "li":
		lines := float64(len(text))*p.CharWidthPx/p.MaxTextWidth + 1
		return Box{Width: p.MaxTextWidth, Height: lines * p.LineHeightPx}
	case "span", "a", "label", "strong", "em", "small", "td", "th":
		return Box{Width: p.textWidth(text, 1), Height: p.LineHeightPx}
	case "img", "picture", "video", "canvas", "iframe":
		return Box{Width: 320, Height: 180}
	case "svg":
		return Box{Width: 24, Height: 24}
	case "audio":
		return Box{Width: 300, Height: 54}
	case "button", "input", "select":
		return Box{Width: 120, Height: 36}
	case "textarea":
		return Box{Width: p.MaxTextWidth, Height: 3 * p.LineHeightPx}
	case "hr":
		return Box{Width: p.MaxTextWidth, Height: 1}
	default:
		return Box{Width: p.DefaultWidth, Height: p.DefaultHeight}
	}
}

// textWidth scales width by text length, capped at MaxTextWidth. A node
// with no text still gets a minimal non-zero width so it is not dropped
// as zero-area by the scanner.
func (p GeometryPolicy) textWidth(text string, scale float64) float64 {
	w := float64(len(text)) * p.CharWidthPx * scale
	if w < p.CharWidthPx {
		w = p.CharWidthPx
	}
	if w > p.MaxTextWidth {
		w = p.MaxTextWidth
	}
	return w
}
