// Package meta defines the structural metadata model for visual-tree nodes
// and the extractor that produces it.
//
// A Node is supplied by a host adapter (live browser page, parsed static
// HTML). The Extractor turns one Node into an ElementMetadata snapshot,
// substituting documented defaults for any fact the host fails to provide.
package meta

// Box is the measured or synthesized geometry of a node. Values are
// propagated as reported: zero, negative and non-finite inputs are
// tolerated, not rejected.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ZeroArea reports whether the box has no extent on either axis.
func (b Box) ZeroArea() bool {
	return b.Width == 0 && b.Height == 0
}

// StyleFacts is the small fixed set of computed-style facts the engine
// consumes. Absent facts fall back to the defaults below.
type StyleFacts struct {
	Display  string `json:"display"`
	Position string `json:"position"`
	FontSize string `json:"fontSize"`
}

// DefaultStyleFacts are the documented fallbacks used when a style lookup
// fails or the host has no style surface.
func DefaultStyleFacts() StyleFacts {
	return StyleFacts{Display: "block", Position: "static", FontSize: "16px"}
}

// ElementMetadata is the per-node structural snapshot. It is ephemeral:
// produced fresh on every scan, never cached.
type ElementMetadata struct {
	Kind        string             `json:"kind"`        // lower-cased element identity
	ClassTokens string             `json:"classTokens"` // raw class string, may be empty
	Text        string             `json:"text"`        // trimmed text content
	Box         Box                `json:"box"`
	Style       StyleFacts         `json:"style"`
	Attributes  map[string]string  `json:"attributes"`
	Children    []*ElementMetadata `json:"children,omitempty"` // populated by the scanner
}

// Attr returns the named attribute or "".
func (m *ElementMetadata) Attr(name string) string {
	if m.Attributes == nil {
		return ""
	}
	return m.Attributes[name]
}

// Node is the host visual-tree adapter boundary. Implementations wrap a
// real rendering engine (livedom) or a parsed document (staticdom).
//
// Measurable reports whether the host can produce real geometry. When it
// returns false the extractor synthesizes a box from heuristics instead
// of calling Measure.
type Node interface {
	Kind() string
	ClassTokens() string
	Text() string
	Attributes() map[string]string
	Children() []Node

	Measurable() bool
	Measure() (Box, error)
	Style() (StyleFacts, error)
}
