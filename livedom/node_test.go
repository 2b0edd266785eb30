package livedom

import (
	"encoding/json"
	"testing"

	"github.com/shimware/skel/meta"
)

// The snapshot payload shape produced by snapshot.js.
const samplePayload = `{
	"kind": "div",
	"class": "card",
	"text": "Title Body",
	"box": {"width": 400, "height": 120, "x": 10, "y": 20},
	"style": {"display": "flex", "position": "static", "fontSize": "16px"},
	"attrs": {"data-skeleton": "rect:40"},
	"children": [
		{"kind": "h1", "class": "", "text": "Title",
		 "box": {"width": 300, "height": 32, "x": 10, "y": 20},
		 "style": {"display": "block", "position": "static", "fontSize": "32px"},
		 "attrs": {}, "children": []}
	]
}`

func TestNodeFromSnapshotPayload(t *testing.T) {
	var n Node
	if err := json.Unmarshal([]byte(samplePayload), &n); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if n.Kind() != "div" {
		t.Errorf("kind = %q, want %q", n.Kind(), "div")
	}
	if n.ClassTokens() != "card" {
		t.Errorf("class = %q, want %q", n.ClassTokens(), "card")
	}
	if !n.Measurable() {
		t.Error("live node not measurable")
	}

	box, err := n.Measure()
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if box.Width != 400 || box.Height != 120 {
		t.Errorf("box = %+v, want 400x120", box)
	}

	facts, err := n.Style()
	if err != nil {
		t.Fatalf("Style: %v", err)
	}
	if facts.Display != "flex" {
		t.Errorf("display = %q, want %q", facts.Display, "flex")
	}

	if n.Attributes()["data-skeleton"] != "rect:40" {
		t.Errorf("attrs = %v", n.Attributes())
	}

	kids := n.Children()
	if len(kids) != 1 {
		t.Fatalf("children = %d, want 1", len(kids))
	}
	if kids[0].Kind() != "h1" {
		t.Errorf("child kind = %q, want %q", kids[0].Kind(), "h1")
	}
	childFacts, _ := kids[0].Style()
	if childFacts.FontSize != "32px" {
		t.Errorf("child fontSize = %q, want %q", childFacts.FontSize, "32px")
	}
}

func TestNodeSatisfiesMetaNode(t *testing.T) {
	var _ meta.Node = (*Node)(nil)
}

func TestEmptyChildren(t *testing.T) {
	n := &Node{NodeKind: "img"}
	if got := n.Children(); len(got) != 0 {
		t.Errorf("children = %d, want 0", len(got))
	}
}
