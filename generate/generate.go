// Package generate assembles full skeleton specifications by driving the
// scanner and the classification engine over a metadata source.
//
// Two source modes exist: live (a real rendered page, measured geometry)
// and static (parsed HTML, heuristic geometry). Both funnel into the
// classification engine identically.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shimware/skel/classify"
	"github.com/shimware/skel/idgen"
	"github.com/shimware/skel/meta"
	"github.com/shimware/skel/scan"
	"github.com/shimware/skel/spec"
)

// Source supplies the root node of a visual tree. Name identifies the
// component for cache keys and diagnostics. Root may block (a static
// render completing off-surface) and must honour ctx.
type Source interface {
	Name() string
	Root(ctx context.Context) (meta.Node, error)
}

// Options tune one generation call.
type Options struct {
	Rules  []classify.Rule // custom rules, merged ahead of the defaults
	Layout string          // override the layout hint derived from the root
	Gap    string
}

// Generator turns sources into validated skeleton specifications.
type Generator struct {
	Scanner *scan.Scanner
	Logger  *slog.Logger

	// Keys constructs the per-pass primitive key generator. Defaults to
	// a fresh Sequence("sk") per call, so equal inputs yield equal keys.
	Keys func() idgen.Generator
}

// New creates a Generator with a default scanner.
func New(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		Scanner: scan.New(nil, logger),
		Logger:  logger,
		Keys:    func() idgen.Generator { return idgen.Sequence("sk") },
	}
}

// Generate scans the source and classifies every surviving node. The
// root node becomes the spec root (key + layout hint); its descendants
// become the ordered primitive list, depth-first. Skip-sentinel
// primitives are filtered before emission.
//
// On failure the error is a *Error wrapping the inner cause; nothing is
// swallowed here — fallback behaviour belongs to the caller.
func (g *Generator) Generate(ctx context.Context, source Source, opts Options) (*spec.Spec, error) {
	root, err := source.Root(ctx)
	if err != nil {
		return nil, &Error{Component: source.Name(), Err: fmt.Errorf("obtain root: %w", err)}
	}

	tree := g.Scanner.Scan(root)

	engine := classify.NewEngine(opts.Rules, g.Logger, classify.WithKeys(g.keys()))

	s := &spec.Spec{Children: []spec.Primitive{}, Layout: opts.Layout, Gap: opts.Gap}
	if len(tree) > 0 {
		rootMD := tree[0]
		rootPrim := engine.Classify(rootMD)
		s.RootKey = rootPrim.Key
		if s.Layout == "" {
			s.Layout = layoutHint(rootMD)
		}

		if len(rootMD.Children) == 0 {
			// Leaf root: the root's own primitive is the sole entry.
			if !rootPrim.Skip() {
				s.Children = append(s.Children, rootPrim)
			}
		} else {
			collect(engine, rootMD.Children, &s.Children)
		}
	}
	if s.Layout == "" {
		s.Layout = spec.LayoutStack
	}

	if res := spec.Validate(s); !res.Valid {
		return nil, &Error{
			Component: source.Name(),
			Err:       fmt.Errorf("generated spec failed validation: %s", strings.Join(res.Errors, "; ")),
		}
	}
	return s, nil
}

// GenerateWithFallback is the crash-proof variant for loading UIs: on
// failure it logs, then substitutes the caller's fallback, then a
// minimal one-rectangle spec.
func (g *Generator) GenerateWithFallback(ctx context.Context, source Source, opts Options, fallback *spec.Spec) *spec.Spec {
	s, err := g.Generate(ctx, source, opts)
	if err == nil {
		return s
	}
	g.Logger.Warn("generate: generation failed, using fallback", "component", source.Name(), "error", err)
	if fallback != nil {
		return fallback
	}
	return spec.Minimal()
}

func (g *Generator) keys() idgen.Generator {
	if g.Keys != nil {
		return g.Keys()
	}
	return idgen.Sequence("sk")
}

// collect classifies a metadata subtree depth-first into out, dropping
// skip sentinels.
func collect(engine *classify.Engine, nodes []*meta.ElementMetadata, out *[]spec.Primitive) {
	for _, md := range nodes {
		p := engine.Classify(md)
		if !p.Skip() {
			*out = append(*out, p)
		}
		collect(engine, md.Children, out)
	}
}

// layoutHint derives the arrangement hint from the root's display fact.
func layoutHint(md *meta.ElementMetadata) string {
	switch md.Style.Display {
	case "flex", "inline-flex":
		return spec.LayoutRow
	case "grid", "inline-grid":
		return spec.LayoutGrid
	default:
		return spec.LayoutStack
	}
}
