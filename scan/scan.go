// Package scan walks a visual tree under strict budgets and produces the
// metadata tree consumed by classification.
//
// Three budgets bound every traversal: node count, wall-clock time, and
// depth. They are global across the whole walk, not per-subtree, so a
// pathological tree yields a deterministically truncated result instead
// of unbounded latency. The time budget is a cooperative check between
// nodes: it prevents starting more work past the deadline but cannot
// interrupt a single slow host call.
package scan

import (
	"log/slog"
	"time"

	"github.com/shimware/skel/meta"
)

// Budget bounds a single traversal.
type Budget struct {
	MaxNodes int
	MaxDepth int
	MaxTime  time.Duration
}

// DefaultBudget returns the stock limits.
func DefaultBudget() Budget {
	return Budget{MaxNodes: 200, MaxDepth: 10, MaxTime: 50 * time.Millisecond}
}

func (b *Budget) applyDefaults() {
	d := DefaultBudget()
	if b.MaxNodes <= 0 {
		b.MaxNodes = d.MaxNodes
	}
	if b.MaxDepth <= 0 {
		b.MaxDepth = d.MaxDepth
	}
	if b.MaxTime == 0 {
		b.MaxTime = d.MaxTime
	}
}

// Scanner drives budgeted depth-first traversal.
type Scanner struct {
	Extractor *meta.Extractor
	Budget    Budget
	Logger    *slog.Logger

	now func() time.Time // test hook
}

// New creates a Scanner with default budgets.
func New(extractor *meta.Extractor, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = meta.NewExtractor(logger)
	}
	return &Scanner{Extractor: extractor, Budget: DefaultBudget(), Logger: logger, now: time.Now}
}

// state is the shared mutable budget carried through one traversal.
type state struct {
	nodes     int
	deadline  time.Time
	truncated bool
}

// Scan traverses root and its descendants. The result holds zero or one
// top-level entries: empty when the root itself is skipped (zero-area)
// or the budget is exhausted before the root is visited.
//
// Budget-exceeded truncation does not error; it is logged at debug
// level and the partial tree is returned as-is.
func (s *Scanner) Scan(root meta.Node) []*meta.ElementMetadata {
	b := s.Budget
	b.applyDefaults()
	now := s.now
	if now == nil {
		now = time.Now
	}

	st := &state{deadline: now().Add(b.MaxTime)}
	md := s.visit(root, 0, &b, st, now)
	if st.truncated {
		s.Logger.Debug("scan: budget exhausted, tree truncated",
			"nodes", st.nodes, "max_nodes", b.MaxNodes, "max_time", b.MaxTime)
	}
	if md == nil {
		return nil
	}
	return []*meta.ElementMetadata{md}
}

// visit extracts one node and recurses into its children under the shared
// budget. Returns nil when the node is skipped or the budget stops it.
func (s *Scanner) visit(node meta.Node, depth int, b *Budget, st *state, now func() time.Time) *meta.ElementMetadata {
	if node == nil {
		return nil
	}
	if !now().Before(st.deadline) || st.nodes >= b.MaxNodes || depth > b.MaxDepth {
		st.truncated = true
		return nil
	}

	md := s.Extractor.Extract(node)

	// Zero-area nodes are skipped without counting, subtree included:
	// a collapsed container contributes nothing to a loading placeholder.
	if md.Box.ZeroArea() {
		return nil
	}

	st.nodes++

	for _, child := range node.Children() {
		if cm := s.visit(child, depth+1, b, st, now); cm != nil {
			md.Children = append(md.Children, cm)
		}
	}
	return md
}
