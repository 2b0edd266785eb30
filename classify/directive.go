package classify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shimware/skel/spec"
)

// DirectiveAttr is the attribute carrying a per-node directive.
const DirectiveAttr = "data-skeleton"

// Directive is a parsed per-node instruction. Either Skip is set, or
// Override holds a literal primitive (key left empty for the engine to
// assign).
type Directive struct {
	Skip     bool
	Override *spec.Primitive
}

// ParseDirective parses a directive string:
//
//	"skip"                     omit the node
//	"rect" | "circle" | "line" bare shape
//	"<shape>:<size>"           size is "<n>" (both axes) or "<w>x<h>"
//	{"shape": ..., ...}        JSON object with shape, width, height,
//	                           borderRadius/radius, lines, style, className
//
// Malformed input resolves to nil ("no override", rule matching applies)
// with a logged warning. It never fails the classification.
func ParseDirective(raw string, logger *slog.Logger) *Directive {
	if logger == nil {
		logger = slog.Default()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if raw == "skip" {
		return &Directive{Skip: true}
	}

	if strings.HasPrefix(raw, "{") {
		d, err := parseDirectiveJSON(raw)
		if err != nil {
			logger.Warn("classify: malformed JSON directive ignored", "directive", raw, "error", err)
			return nil
		}
		return d
	}

	shapeStr, sizeStr, hasSize := strings.Cut(raw, ":")
	shape := spec.Shape(strings.ToLower(strings.TrimSpace(shapeStr)))
	if !spec.ValidShape(shape) {
		logger.Warn("classify: unknown directive shape ignored", "directive", raw)
		return nil
	}

	p := &spec.Primitive{Shape: shape}
	if shape == spec.ShapeLine {
		p.Lines = 1
	}
	if hasSize {
		w, h, ok := parseSize(strings.TrimSpace(sizeStr))
		if !ok {
			logger.Warn("classify: malformed directive size ignored", "directive", raw)
			return nil
		}
		p.Width, p.Height = w, h
	}
	return &Directive{Override: p}
}

// parseSize parses "40" (applied to both axes) or "100x20".
func parseSize(s string) (w, h string, ok bool) {
	if s == "" {
		return "", "", false
	}
	if ws, hs, split := strings.Cut(s, "x"); split {
		if !numeric(ws) || !numeric(hs) {
			return "", "", false
		}
		return ws + "px", hs + "px", true
	}
	if !numeric(s) {
		return "", "", false
	}
	return s + "px", s + "px", true
}

func numeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// directiveJSON mirrors the JSON directive object. Width and height
// tolerate both numbers (pixels) and strings (any CSS length).
type directiveJSON struct {
	Shape        string            `json:"shape"`
	Width        any               `json:"width"`
	Height       any               `json:"height"`
	BorderRadius any               `json:"borderRadius"`
	Radius       any               `json:"radius"`
	Lines        int               `json:"lines"`
	Style        map[string]string `json:"style"`
	ClassName    string            `json:"className"`
}

func parseDirectiveJSON(raw string) (*Directive, error) {
	var dj directiveJSON
	if err := json.Unmarshal([]byte(raw), &dj); err != nil {
		return nil, err
	}
	shape := spec.Shape(strings.ToLower(dj.Shape))
	if !spec.ValidShape(shape) {
		return nil, fmt.Errorf("unsupported shape %q", dj.Shape)
	}

	p := &spec.Primitive{
		Shape:     shape,
		Width:     lengthValue(dj.Width),
		Height:    lengthValue(dj.Height),
		Lines:     dj.Lines,
		Style:     dj.Style,
		ClassName: dj.ClassName,
	}
	if p.BorderRadius = lengthValue(dj.BorderRadius); p.BorderRadius == "" {
		p.BorderRadius = lengthValue(dj.Radius)
	}
	if shape == spec.ShapeLine && p.Lines < 1 {
		p.Lines = 1
	}
	return &Directive{Override: p}, nil
}

// lengthValue coerces a JSON value into a CSS length string. Numbers are
// pixels; strings pass through.
func lengthValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64) + "px"
	default:
		return ""
	}
}
