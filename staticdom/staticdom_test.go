package staticdom

import (
	"context"
	"testing"
)

func TestParseFragmentRoot(t *testing.T) {
	root, err := Parse([]byte(`<div class="card"><h1>Title</h1><p>Body</p></div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Kind() != "div" {
		t.Errorf("root kind = %q, want %q", root.Kind(), "div")
	}
	if root.ClassTokens() != "card" {
		t.Errorf("root class = %q, want %q", root.ClassTokens(), "card")
	}
	kids := root.Children()
	if len(kids) != 2 {
		t.Fatalf("root children = %d, want 2", len(kids))
	}
	if kids[0].Kind() != "h1" || kids[1].Kind() != "p" {
		t.Errorf("children = %q, %q, want h1, p", kids[0].Kind(), kids[1].Kind())
	}
}

func TestParseMultipleTopLevelUsesBody(t *testing.T) {
	root, err := Parse([]byte(`<h1>A</h1><p>B</p>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Kind() != "body" {
		t.Errorf("root kind = %q, want %q", root.Kind(), "body")
	}
	if len(root.Children()) != 2 {
		t.Errorf("root children = %d, want 2", len(root.Children()))
	}
}

func TestTextExcludesScriptAndStyle(t *testing.T) {
	root, err := Parse([]byte(`<div>visible<script>var x = 1;</script><style>.a{}</style> text</div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := root.Text(); got != "visible text" {
		t.Errorf("text = %q, want %q", got, "visible text")
	}
}

func TestAttributesLowercased(t *testing.T) {
	root, err := Parse([]byte(`<div DATA-Skeleton="skip" ROLE="button"></div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	attrs := root.Attributes()
	if attrs["data-skeleton"] != "skip" {
		t.Errorf("data-skeleton = %q, want %q", attrs["data-skeleton"], "skip")
	}
	if attrs["role"] != "button" {
		t.Errorf("role = %q, want %q", attrs["role"], "button")
	}
}

func TestNotMeasurable(t *testing.T) {
	root, err := Parse([]byte(`<div></div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Measurable() {
		t.Error("static node claims to be measurable")
	}
	if _, err := root.Measure(); err != ErrNotMeasurable {
		t.Errorf("Measure: got %v, want ErrNotMeasurable", err)
	}
}

func TestInlineStyleFacts(t *testing.T) {
	root, err := Parse([]byte(`<div style="display: flex; font-size: 14px; color: red"></div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	facts, err := root.Style()
	if err != nil {
		t.Fatalf("Style: %v", err)
	}
	if facts.Display != "flex" {
		t.Errorf("display = %q, want %q", facts.Display, "flex")
	}
	if facts.FontSize != "14px" {
		t.Errorf("fontSize = %q, want %q", facts.FontSize, "14px")
	}
	if facts.Position != "" {
		t.Errorf("position = %q, want empty (extractor applies the default)", facts.Position)
	}
}

func TestSourceHonoursContext(t *testing.T) {
	src := NewSource("card", []byte(`<div></div>`))
	if src.Name() != "card" {
		t.Errorf("name = %q, want %q", src.Name(), "card")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Root(ctx); err == nil {
		t.Error("Root: no error for a cancelled context")
	}

	if _, err := src.Root(context.Background()); err != nil {
		t.Errorf("Root: %v", err)
	}
}
