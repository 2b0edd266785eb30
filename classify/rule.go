// Package classify maps element metadata to skeleton primitives through
// a priority-ordered rule set, with a per-node directive channel that
// bypasses rule matching entirely.
package classify

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/shimware/skel/meta"
	"github.com/shimware/skel/spec"
)

// Match is the predicate side of a mapping rule. All present fields are
// ANDed; absent (empty) fields are wildcards. Kind and ClassContains
// match case-insensitively; ClassContains is substring containment.
// Attr entries must all be present on the node; an empty value means
// "attribute exists".
type Match struct {
	Kind          string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	ClassContains string            `json:"classContains,omitempty" yaml:"class_contains,omitempty"`
	Role          string            `json:"role,omitempty" yaml:"role,omitempty"`
	Attr          map[string]string `json:"attr,omitempty" yaml:"attr,omitempty"`
}

// Target describes the primitive a matching rule produces. Empty size
// fields fall back to the node's measured box. Lines zero on a line
// shape means "compute from text" for paragraph-like nodes.
type Target struct {
	Shape  spec.Shape `json:"shape" yaml:"shape"`
	Width  string     `json:"width,omitempty" yaml:"width,omitempty"`
	Height string     `json:"height,omitempty" yaml:"height,omitempty"`
	Lines  int        `json:"lines,omitempty" yaml:"lines,omitempty"`
	Radius string     `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// Rule is one mapping rule. Higher priority wins; ties are broken by
// position in the merged set, where custom rules precede defaults.
type Rule struct {
	Match    Match   `json:"match" yaml:"match"`
	To       Target  `json:"to" yaml:"to"`
	Priority float64 `json:"priority" yaml:"priority"`
}

// Valid reports whether the rule is structurally usable: a legal target
// shape and a finite priority.
func (r Rule) Valid() bool {
	return spec.ValidShape(r.To.Shape) && !math.IsNaN(r.Priority) && !math.IsInf(r.Priority, 0)
}

// Matches reports whether the rule's predicate accepts the metadata.
func (r Rule) Matches(md *meta.ElementMetadata) bool {
	m := r.Match
	if m.Kind != "" && !strings.EqualFold(m.Kind, md.Kind) {
		return false
	}
	if m.ClassContains != "" &&
		!strings.Contains(strings.ToLower(md.ClassTokens), strings.ToLower(m.ClassContains)) {
		return false
	}
	if m.Role != "" && md.Attr("role") != m.Role {
		return false
	}
	for k, v := range m.Attr {
		got, ok := md.Attributes[k]
		if !ok {
			return false
		}
		if v != "" && got != v {
			return false
		}
	}
	return true
}

// Merge validates custom rules, concatenates them with the defaults and
// sorts the combined set by priority descending. Invalid custom rules
// are dropped with a logged reason, never silently coerced.
func Merge(custom, defaults []Rule, logger *slog.Logger) []Rule {
	if logger == nil {
		logger = slog.Default()
	}

	merged := make([]Rule, 0, len(custom)+len(defaults))
	for i, r := range custom {
		if !r.Valid() {
			logger.Warn("classify: dropping invalid rule",
				"index", i, "shape", string(r.To.Shape), "priority", r.Priority)
			continue
		}
		merged = append(merged, r)
	}
	merged = append(merged, defaults...)

	// Stable: custom rules stay ahead of defaults at equal priority.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Priority > merged[j].Priority
	})
	return merged
}
