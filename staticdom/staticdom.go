// Package staticdom adapts parsed HTML into the meta.Node interface for
// build-time / server-side generation, where no live rendering surface
// exists. Nodes report no measurement capability, which routes the
// extractor onto the heuristic geometry path.
package staticdom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/shimware/skel/meta"
)

// ErrNotMeasurable is returned by Measure on every static node.
var ErrNotMeasurable = errors.New("staticdom: node has no measurement surface")

// Parse parses an HTML document or fragment and returns its root as a
// meta.Node. When the document body holds exactly one element — the
// common fragment case, `<div>…</div>` — that element is the root;
// otherwise the body itself is.
func Parse(data []byte) (meta.Node, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("staticdom: parse HTML: %w", err)
	}

	body := findBody(doc)
	if body == nil {
		return nil, errors.New("staticdom: document has no body")
	}

	elems := elementChildren(body)
	if len(elems) == 1 {
		return &node{n: elems[0]}, nil
	}
	return &node{n: body}, nil
}

// node wraps one *html.Node element.
type node struct {
	n *html.Node
}

func (s *node) Kind() string {
	return strings.ToLower(s.n.Data)
}

func (s *node) ClassTokens() string {
	return s.attr("class")
}

// Text returns the concatenated visible text of the subtree, matching
// what a rendered node would display. Script, style and noscript
// content is excluded.
func (s *node) Text() string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(s.n)
	return sb.String()
}

func (s *node) Attributes() map[string]string {
	out := make(map[string]string, len(s.n.Attr))
	for _, a := range s.n.Attr {
		out[strings.ToLower(a.Key)] = a.Val
	}
	return out
}

func (s *node) Children() []meta.Node {
	elems := elementChildren(s.n)
	out := make([]meta.Node, len(elems))
	for i, e := range elems {
		out[i] = &node{n: e}
	}
	return out
}

func (s *node) Measurable() bool {
	return false
}

func (s *node) Measure() (meta.Box, error) {
	return meta.Box{}, ErrNotMeasurable
}

// Style surfaces the three consumed facts from the inline style
// attribute when present; everything else falls back to the extractor's
// defaults.
func (s *node) Style() (meta.StyleFacts, error) {
	var facts meta.StyleFacts
	for _, decl := range strings.Split(s.attr("style"), ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		switch prop {
		case "display":
			facts.Display = val
		case "position":
			facts.Position = val
		case "font-size":
			facts.FontSize = val
		}
	}
	return facts, nil
}

func (s *node) attr(name string) string {
	for _, a := range s.n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)
	return body
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}
