package meta

import (
	"fmt"
	"log/slog"
	"strings"
)

// Extractor produces ElementMetadata snapshots from host nodes.
//
// Extract is total: a failure in any single host call (measurement, style
// lookup, attribute enumeration) substitutes the documented default for
// that one fact and leaves the others intact. A panicking host adapter is
// treated the same as one returning an error.
type Extractor struct {
	Geometry GeometryPolicy
	Logger   *slog.Logger
}

// NewExtractor creates an Extractor with the default geometry policy.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Geometry: DefaultGeometryPolicy(), Logger: logger}
}

// Extract builds the structural snapshot for one node. Children are left
// empty; the scanner fills them in.
func (e *Extractor) Extract(node Node) *ElementMetadata {
	md := &ElementMetadata{Style: DefaultStyleFacts()}

	md.Kind = strings.ToLower(e.str("kind", func() string { return node.Kind() }))
	md.ClassTokens = e.str("class", func() string { return node.ClassTokens() })
	md.Text = strings.TrimSpace(e.str("text", func() string { return node.Text() }))

	if attrs, err := guard(func() (map[string]string, error) { return node.Attributes(), nil }); err == nil && attrs != nil {
		md.Attributes = attrs
	} else {
		md.Attributes = map[string]string{}
		if err != nil {
			e.Logger.Debug("meta: attribute enumeration failed", "kind", md.Kind, "error", err)
		}
	}

	md.Box = e.box(node, md.Kind, md.Text)

	if facts, err := guard(node.Style); err == nil {
		md.Style = normalizeStyle(facts)
	} else {
		e.Logger.Debug("meta: style lookup failed", "kind", md.Kind, "error", err)
	}

	return md
}

// box measures the node, or synthesizes geometry when the host has no
// measurement surface. A failing measurement call degrades to the
// synthesized path as well.
func (e *Extractor) box(node Node, kind, text string) Box {
	measurable, err := guard(func() (bool, error) { return node.Measurable(), nil })
	if err != nil {
		measurable = false
	}
	if measurable {
		b, err := guard(node.Measure)
		if err == nil {
			return b
		}
		e.Logger.Debug("meta: measurement failed, synthesizing geometry", "kind", kind, "error", err)
	}
	return e.Geometry.Synthesize(kind, text)
}

// str runs a string-valued host call, degrading to "" on failure.
func (e *Extractor) str(fact string, fn func() string) string {
	v, err := guard(func() (string, error) { return fn(), nil })
	if err != nil {
		e.Logger.Debug("meta: host call failed", "fact", fact, "error", err)
		return ""
	}
	return v
}

// guard runs a host call, converting panics into errors so one broken
// adapter fact cannot take down the whole extraction.
func guard[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host adapter panic: %v", r)
		}
	}()
	return fn()
}

// normalizeStyle fills empty facts with the documented defaults.
func normalizeStyle(f StyleFacts) StyleFacts {
	d := DefaultStyleFacts()
	if f.Display == "" {
		f.Display = d.Display
	}
	if f.Position == "" {
		f.Position = d.Position
	}
	if f.FontSize == "" {
		f.FontSize = d.FontSize
	}
	return f
}
