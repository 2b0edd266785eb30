package livedom

import (
	"context"

	"github.com/shimware/skel/meta"
)

// Node is one element captured by a page snapshot. It carries the
// browser's real measurements, so Measurable is always true.
type Node struct {
	NodeKind  string            `json:"kind"`
	Class     string            `json:"class"`
	NodeText  string            `json:"text"`
	Box       meta.Box          `json:"box"`
	StyleData meta.StyleFacts   `json:"style"`
	Attrs     map[string]string `json:"attrs"`
	Kids      []*Node           `json:"children"`
}

func (n *Node) Kind() string                  { return n.NodeKind }
func (n *Node) ClassTokens() string           { return n.Class }
func (n *Node) Text() string                  { return n.NodeText }
func (n *Node) Attributes() map[string]string { return n.Attrs }
func (n *Node) Measurable() bool              { return true }

func (n *Node) Measure() (meta.Box, error) {
	return n.Box, nil
}

func (n *Node) Style() (meta.StyleFacts, error) {
	return n.StyleData, nil
}

func (n *Node) Children() []meta.Node {
	out := make([]meta.Node, len(n.Kids))
	for i, k := range n.Kids {
		out[i] = k
	}
	return out
}

// Source binds a page and selector as a live generation source.
type Source struct {
	page     *Page
	name     string
	selector string
	maxDepth int
}

// Source creates a generation source for the subtree at selector.
func (p *Page) Source(name, selector string, maxDepth int) *Source {
	return &Source{page: p, name: name, selector: selector, maxDepth: maxDepth}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Root(ctx context.Context) (meta.Node, error) {
	return s.page.Snapshot(ctx, s.selector, s.maxDepth)
}
