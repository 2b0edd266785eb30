package classify

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/shimware/skel/idgen"
	"github.com/shimware/skel/meta"
	"github.com/shimware/skel/spec"
)

// Engine classifies element metadata into skeleton primitives. The rule
// set is fixed at construction; key generation is pluggable so that one
// engine instance per generation pass yields deterministic keys.
type Engine struct {
	rules  []Rule
	keys   idgen.Generator
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithKeys sets the primitive key generator. Default: Sequence("sk"),
// one counter per engine instance.
func WithKeys(gen idgen.Generator) Option {
	return func(e *Engine) { e.keys = gen }
}

// WithoutDefaults drops the built-in rule set, leaving only the custom
// rules. Unmatched nodes still fall back to a generic rectangle.
func WithoutDefaults() Option {
	return func(e *Engine) { e.rules = nil }
}

// NewEngine merges custom rules with the defaults and returns a ready
// engine. Invalid custom rules are dropped with a logged reason.
func NewEngine(custom []Rule, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		rules:  DefaultRules(),
		keys:   idgen.Sequence("sk"),
		logger: logger,
	}
	for _, o := range opts {
		o(e)
	}
	e.rules = Merge(custom, e.rules, logger)
	return e
}

// Rules returns the merged rule set in match order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Classify maps one node's metadata to a primitive. Precedence:
//
//  1. skip directive → sentinel skip primitive, zero size
//  2. literal override directive → primitive built from the override
//  3. highest-priority matching rule, first match wins
//  4. generic rectangle sized to the measured box
//
// It is total for well-formed metadata; a nil argument indicates a
// broken extractor upstream and is allowed to fail loudly.
func (e *Engine) Classify(md *meta.ElementMetadata) spec.Primitive {
	if d := ParseDirective(md.Attr(DirectiveAttr), e.logger); d != nil {
		if d.Skip {
			return spec.Primitive{
				Key:       e.keys(),
				Shape:     spec.ShapeRect,
				Width:     "0px",
				Height:    "0px",
				ClassName: spec.SkipClassName,
			}
		}
		p := *d.Override
		p.Key = e.keys()
		return p
	}

	for _, r := range e.rules {
		if r.Matches(md) {
			return e.fromTarget(md, r.To)
		}
	}

	return e.genericRect(md)
}

// fromTarget builds a primitive from a rule target, filling unspecified
// sizes from the node's box and computing line counts for body text.
func (e *Engine) fromTarget(md *meta.ElementMetadata, t Target) spec.Primitive {
	p := spec.Primitive{
		Key:          e.keys(),
		Shape:        t.Shape,
		Width:        t.Width,
		Height:       t.Height,
		BorderRadius: t.Radius,
		Lines:        t.Lines,
	}

	if t.Shape == spec.ShapeLine && t.Lines == 0 {
		if paragraphLike(md.Kind) {
			p.Lines = ComputeLines(len(md.Text), md.Box.Width, fontSizePx(md.Style.FontSize))
		} else {
			p.Lines = 1
		}
	}

	w, h := boxSizes(md.Box)
	if p.Width == "" {
		p.Width = w
	}
	if p.Height == "" && t.Shape != spec.ShapeLine {
		p.Height = h
	}
	return p
}

// genericRect is the no-match fallback: a rectangle sized to the node's
// measured box, or "auto" on both axes for a fully degenerate box.
func (e *Engine) genericRect(md *meta.ElementMetadata) spec.Primitive {
	w, h := boxSizes(md.Box)
	return spec.Primitive{Key: e.keys(), Shape: spec.ShapeRect, Width: w, Height: h}
}

// boxSizes renders box dimensions as CSS lengths. A box that is zero on
// both dimensions yields "auto" for both.
func boxSizes(b meta.Box) (w, h string) {
	if b.Width == 0 && b.Height == 0 {
		return "auto", "auto"
	}
	return px(b.Width), px(b.Height)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// ComputeLines estimates line count for body text: textLen characters at
// roughly fontSize*0.6 px per character across containerWidth, clamped
// to [1, 10]. A fixed count would truncate long paragraphs or look
// empty for short ones.
func ComputeLines(textLen int, containerWidth, fontSizePx float64) int {
	if fontSizePx <= 0 {
		fontSizePx = 16
	}
	charsPerLine := math.Floor(containerWidth / (fontSizePx * 0.6))
	if charsPerLine < 1 || math.IsNaN(charsPerLine) || math.IsInf(charsPerLine, 0) {
		charsPerLine = 1
	}
	lines := int(math.Ceil(float64(textLen) / charsPerLine))
	if lines < 1 {
		return 1
	}
	if lines > 10 {
		return 10
	}
	return lines
}

// paragraphLike reports whether kind is a body-text container whose line
// count should be computed rather than fixed.
func paragraphLike(kind string) bool {
	switch kind {
	case "p", "blockquote":
		return true
	}
	return false
}

// fontSizePx parses a computed font-size fact like "16px". Anything
// unparseable falls back to the 16px default.
func fontSizePx(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 16
	}
	return v
}
