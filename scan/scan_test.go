package scan

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shimware/skel/meta"
)

// stub is a minimal measurable tree node for driving the scanner.
type stub struct {
	kind     string
	box      meta.Box
	children []meta.Node
}

func (s *stub) Kind() string                    { return s.kind }
func (s *stub) ClassTokens() string             { return "" }
func (s *stub) Text() string                    { return "" }
func (s *stub) Attributes() map[string]string   { return nil }
func (s *stub) Children() []meta.Node           { return s.children }
func (s *stub) Measurable() bool                { return true }
func (s *stub) Measure() (meta.Box, error)      { return s.box, nil }
func (s *stub) Style() (meta.StyleFacts, error) { return meta.DefaultStyleFacts(), nil }

func el(kind string, children ...meta.Node) *stub {
	return &stub{kind: kind, box: meta.Box{Width: 100, Height: 20}, children: children}
}

func countNodes(mds []*meta.ElementMetadata) int {
	n := 0
	for _, md := range mds {
		n += 1 + countNodes(md.Children)
	}
	return n
}

func maxDepth(mds []*meta.ElementMetadata) int {
	d := 0
	for _, md := range mds {
		if cd := 1 + maxDepth(md.Children); cd > d {
			d = cd
		}
	}
	return d
}

func TestScanSimpleTree(t *testing.T) {
	root := el("div", el("img"), el("h1"), el("p"))
	got := New(nil, slog.Default()).Scan(root)

	if len(got) != 1 {
		t.Fatalf("Scan: got %d roots, want 1", len(got))
	}
	if got[0].Kind != "div" {
		t.Errorf("root kind = %q, want %q", got[0].Kind, "div")
	}
	if len(got[0].Children) != 3 {
		t.Fatalf("root children = %d, want 3", len(got[0].Children))
	}
	kinds := []string{"img", "h1", "p"}
	for i, want := range kinds {
		if got[0].Children[i].Kind != want {
			t.Errorf("child %d kind = %q, want %q", i, got[0].Children[i].Kind, want)
		}
	}
}

func TestScanNodeBudgetIsGlobal(t *testing.T) {
	// A wide tree: 1 root + 300 leaves.
	children := make([]meta.Node, 300)
	for i := range children {
		children[i] = el("span")
	}
	root := &stub{kind: "div", box: meta.Box{Width: 100, Height: 20}, children: children}

	s := New(nil, slog.Default())
	got := s.Scan(root)

	if n := countNodes(got); n > s.Budget.MaxNodes {
		t.Errorf("scanned %d nodes, budget is %d", n, s.Budget.MaxNodes)
	}
}

func TestScanDepthBudget(t *testing.T) {
	// A chain deeper than the limit.
	leaf := el("span")
	node := meta.Node(leaf)
	for i := 0; i < 30; i++ {
		node = el("div", node)
	}

	s := New(nil, slog.Default())
	s.Budget.MaxDepth = 5
	got := s.Scan(node)

	if d := maxDepth(got); d > 6 {
		t.Errorf("result depth %d, want <= 6 (root at depth 0, limit 5)", d)
	}
}

func TestScanTimeBudgetExhausted(t *testing.T) {
	root := el("div", el("p"), el("p"))
	s := New(nil, slog.Default())

	s.Budget.MaxTime = 50 * time.Millisecond

	// The deadline is computed from the same clock, so advance it by
	// an hour per call to simulate elapsed time.
	base := time.Now()
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Hour)
	}

	got := s.Scan(root)
	if n := countNodes(got); n != 0 {
		t.Errorf("scanned %d nodes past the deadline, want 0", n)
	}
}

func TestScanZeroAreaRootYieldsEmpty(t *testing.T) {
	root := &stub{kind: "div", children: []meta.Node{el("p")}}
	got := New(nil, slog.Default()).Scan(root)
	if len(got) != 0 {
		t.Fatalf("Scan: got %d roots for zero-area root, want 0", len(got))
	}
}

func TestScanZeroAreaSubtreeDropped(t *testing.T) {
	hidden := &stub{kind: "aside", children: []meta.Node{el("p"), el("p")}}
	root := el("div", el("h1"), hidden, el("p"))
	got := New(nil, slog.Default()).Scan(root)

	if len(got) != 1 {
		t.Fatalf("Scan: got %d roots, want 1", len(got))
	}
	if len(got[0].Children) != 2 {
		t.Fatalf("root children = %d, want 2 (collapsed subtree dropped)", len(got[0].Children))
	}
	for _, c := range got[0].Children {
		if c.Kind == "aside" {
			t.Error("zero-area subtree survived the scan")
		}
	}
}

func TestScanZeroAreaDoesNotConsumeBudget(t *testing.T) {
	// 5 zero-area nodes then 3 real ones under a budget of 4.
	var children []meta.Node
	for i := 0; i < 5; i++ {
		children = append(children, &stub{kind: "i"})
	}
	children = append(children, el("p"), el("p"), el("p"))
	root := &stub{kind: "div", box: meta.Box{Width: 100, Height: 20}, children: children}

	s := New(nil, slog.Default())
	s.Budget.MaxNodes = 4
	got := s.Scan(root)

	if len(got) != 1 {
		t.Fatalf("Scan: got %d roots, want 1", len(got))
	}
	if len(got[0].Children) != 3 {
		t.Errorf("root children = %d, want 3 (zero-area nodes must not count)", len(got[0].Children))
	}
}

func TestScanNilRoot(t *testing.T) {
	if got := New(nil, slog.Default()).Scan(nil); len(got) != 0 {
		t.Fatalf("Scan(nil): got %d roots, want 0", len(got))
	}
}

func TestBudgetDefaults(t *testing.T) {
	b := Budget{}
	b.applyDefaults()
	if b != DefaultBudget() {
		t.Errorf("applyDefaults: got %+v, want %+v", b, DefaultBudget())
	}

	b = Budget{MaxNodes: 10}
	b.applyDefaults()
	if b.MaxNodes != 10 {
		t.Errorf("applyDefaults clobbered MaxNodes: %d", b.MaxNodes)
	}
	if b.MaxDepth != DefaultBudget().MaxDepth {
		t.Errorf("MaxDepth = %d, want default", b.MaxDepth)
	}
}
