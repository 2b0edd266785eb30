// Package spec defines the skeleton specification model, its structural
// validator, and the JSON codec used for transport and caching.
package spec

// Shape is the placeholder shape of a primitive.
type Shape string

const (
	ShapeRect   Shape = "rect"
	ShapeCircle Shape = "circle"
	ShapeLine   Shape = "line"
)

// ValidShape reports whether s is a legal shape value.
func ValidShape(s Shape) bool {
	switch s {
	case ShapeRect, ShapeCircle, ShapeLine:
		return true
	}
	return false
}

// SkipClassName is the sentinel class marking a primitive that must be
// omitted from final rendering. It is produced only by an explicit
// per-node skip directive and filtered by the generator before emission.
const SkipClassName = "__skeleton-skip__"

// Primitive is one placeholder shape within a specification. Width,
// Height and BorderRadius are CSS-style length strings ("40px", "2rem",
// "auto"); Lines is meaningful for line shapes only.
type Primitive struct {
	Key          string            `json:"key"`
	Shape        Shape             `json:"shape"`
	Width        string            `json:"width,omitempty"`
	Height       string            `json:"height,omitempty"`
	BorderRadius string            `json:"borderRadius,omitempty"`
	Lines        int               `json:"lines,omitempty"`
	Style        map[string]string `json:"style,omitempty"`
	ClassName    string            `json:"className,omitempty"`
}

// Skip reports whether the primitive carries the skip sentinel.
func (p Primitive) Skip() bool {
	return p.ClassName == SkipClassName
}

// Layout is the arrangement hint for a specification's children.
const (
	LayoutStack = "stack"
	LayoutRow   = "row"
	LayoutGrid  = "grid"
)

// Spec is a full skeleton specification: an ordered list of primitives
// plus a layout hint. Specs are immutable once generated; every mutation
// path (cache import, merge) produces a new value instead.
type Spec struct {
	RootKey  string      `json:"rootKey,omitempty"`
	Children []Primitive `json:"children"`
	Layout   string      `json:"layout,omitempty"`
	Gap      string      `json:"gap,omitempty"`
}

// Clone returns a deep copy of the spec.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	out := &Spec{RootKey: s.RootKey, Layout: s.Layout, Gap: s.Gap}
	if s.Children != nil {
		out.Children = make([]Primitive, len(s.Children))
		for i, p := range s.Children {
			if p.Style != nil {
				style := make(map[string]string, len(p.Style))
				for k, v := range p.Style {
					style[k] = v
				}
				p.Style = style
			}
			out.Children[i] = p
		}
	}
	return out
}

// Minimal returns the smallest useful specification: a single full-width
// rectangle. Used as the last-resort fallback when generation fails and
// the caller supplied nothing better.
func Minimal() *Spec {
	return &Spec{
		Children: []Primitive{{Key: "fallback-0", Shape: ShapeRect, Width: "100%", Height: "1rem"}},
		Layout:   LayoutStack,
	}
}
