package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shimware/skel/generate"
	"github.com/shimware/skel/meta"
	"github.com/shimware/skel/spec"
)

// countingSource counts how many times generation actually reaches it,
// and can be flipped between failing and succeeding.
type countingSource struct {
	name  string
	calls atomic.Int64
	fail  atomic.Bool
}

func (c *countingSource) Name() string { return c.name }

func (c *countingSource) Root(_ context.Context) (meta.Node, error) {
	c.calls.Add(1)
	if c.fail.Load() {
		return nil, errors.New("transient render failure")
	}
	return &leafNode{}, nil
}

// leafNode is a single measurable element.
type leafNode struct{}

func (l *leafNode) Kind() string                    { return "div" }
func (l *leafNode) ClassTokens() string             { return "" }
func (l *leafNode) Text() string                    { return "" }
func (l *leafNode) Attributes() map[string]string   { return nil }
func (l *leafNode) Children() []meta.Node           { return nil }
func (l *leafNode) Measurable() bool                { return true }
func (l *leafNode) Measure() (meta.Box, error)      { return meta.Box{Width: 100, Height: 40}, nil }
func (l *leafNode) Style() (meta.StyleFacts, error) { return meta.DefaultStyleFacts(), nil }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(generate.New(slog.Default()), 0, slog.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestKeyStable(t *testing.T) {
	a := Key("card", map[string]any{"size": "large", "n": 3})
	b := Key("card", map[string]any{"n": 3, "size": "large"})
	if a != b {
		t.Errorf("equal params produced different keys: %q vs %q", a, b)
	}
	if Key("card", nil) != "card" {
		t.Errorf("Key with no params = %q, want %q", Key("card", nil), "card")
	}
	if Key("card", map[string]any{"n": 1}) == Key("card", map[string]any{"n": 2}) {
		t.Error("different params produced the same key")
	}
}

func TestGetOrGenerateMemoizes(t *testing.T) {
	r := newTestRegistry(t)
	src := &countingSource{name: "card"}
	ctx := context.Background()

	first, hit, err := r.GetOrGenerate(ctx, src, nil, generate.Options{})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if hit {
		t.Error("first call reported a cache hit")
	}
	second, hit, err := r.GetOrGenerate(ctx, src, nil, generate.Options{})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if !hit {
		t.Error("second call did not report a cache hit")
	}

	if src.calls.Load() != 1 {
		t.Errorf("source reached %d times, want 1", src.calls.Load())
	}
	if first != second {
		t.Error("second call did not return the memoized instance")
	}

	stats := r.StatsSnapshot()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Generations != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 generation", stats)
	}
}

func TestFailureIsNotCached(t *testing.T) {
	r := newTestRegistry(t)
	src := &countingSource{name: "card"}
	src.fail.Store(true)
	ctx := context.Background()

	if _, _, err := r.GetOrGenerate(ctx, src, nil, generate.Options{}); err == nil {
		t.Fatal("GetOrGenerate: no error from a failing source")
	}
	if _, ok := r.Get("card"); ok {
		t.Fatal("failed generation was stored")
	}

	// The next attempt retries instead of replaying the failure.
	src.fail.Store(false)
	s, _, err := r.GetOrGenerate(ctx, src, nil, generate.Options{})
	if err != nil {
		t.Fatalf("GetOrGenerate after recovery: %v", err)
	}
	if len(s.Children) != 1 {
		t.Errorf("recovered spec has %d children, want 1", len(s.Children))
	}
	if src.calls.Load() != 2 {
		t.Errorf("source reached %d times, want 2", src.calls.Load())
	}
}

func TestConcurrentCallersShareOneGeneration(t *testing.T) {
	r := newTestRegistry(t)
	src := &countingSource{name: "card"}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := r.GetOrGenerate(ctx, src, nil, generate.Options{}); err != nil {
				t.Errorf("GetOrGenerate: %v", err)
			}
		}()
	}
	wg.Wait()

	if src.calls.Load() != 1 {
		t.Errorf("source reached %d times under concurrency, want 1", src.calls.Load())
	}
}

func TestParamsSeparateCacheSlots(t *testing.T) {
	r := newTestRegistry(t)
	src := &countingSource{name: "card"}
	ctx := context.Background()

	if _, _, err := r.GetOrGenerate(ctx, src, map[string]any{"v": 1}, generate.Options{}); err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if _, _, err := r.GetOrGenerate(ctx, src, map[string]any{"v": 2}, generate.Options{}); err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if src.calls.Load() != 2 {
		t.Errorf("source reached %d times for distinct params, want 2", src.calls.Load())
	}
}

func TestPreloadToleratesFailures(t *testing.T) {
	r := newTestRegistry(t)
	broken := &countingSource{name: "broken"}
	broken.fail.Store(true)
	sources := []generate.Source{
		&countingSource{name: "card"},
		broken,
		&countingSource{name: "list"},
	}

	n := r.Preload(context.Background(), sources, nil, generate.Options{})
	if n != 2 {
		t.Errorf("Preload loaded %d entries, want 2", n)
	}
	if _, ok := r.Get(Key("card", nil)); !ok {
		t.Error("card missing after preload")
	}
	if _, ok := r.Get(Key("broken", nil)); ok {
		t.Error("failed source must not be cached")
	}

	// Already-warm entries are served from cache, not regenerated.
	cached := sources[0].(*countingSource)
	r.Preload(context.Background(), sources[:1], nil, generate.Options{})
	if cached.calls.Load() != 1 {
		t.Errorf("source reached %d times after warm preload, want 1", cached.calls.Load())
	}
}

func TestPredefinedWinsAndSurvivesClear(t *testing.T) {
	r := newTestRegistry(t)
	hand := &spec.Spec{Children: []spec.Primitive{{Key: "h-0", Shape: spec.ShapeRect}}}
	if err := r.RegisterPredefined("card", hand); err != nil {
		t.Fatalf("RegisterPredefined: %v", err)
	}

	src := &countingSource{name: "card"}
	got, hit, err := r.GetOrGenerate(context.Background(), src, nil, generate.Options{})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if !hit {
		t.Error("predefined entry was not reported as a hit")
	}
	if src.calls.Load() != 0 {
		t.Error("predefined key still reached the source")
	}
	if got.Children[0].Key != "h-0" {
		t.Errorf("got %+v, want the predefined spec", got)
	}

	r.Clear()
	if _, ok := r.Get("card"); !ok {
		t.Error("predefined entry lost on Clear")
	}
}

func TestRegisterPredefinedRejectsInvalid(t *testing.T) {
	r := newTestRegistry(t)
	bad := &spec.Spec{Children: []spec.Primitive{{Key: "", Shape: "oval"}}}
	if err := r.RegisterPredefined("card", bad); !errors.Is(err, spec.ErrInvalidSpec) {
		t.Fatalf("RegisterPredefined: got %v, want ErrInvalidSpec", err)
	}
}

func TestHydrate(t *testing.T) {
	r := newTestRegistry(t)
	base := &spec.Spec{Layout: spec.LayoutStack, Children: []spec.Primitive{{Key: "a", Shape: spec.ShapeRect}}}
	if err := r.RegisterPredefined("card", base); err != nil {
		t.Fatalf("RegisterPredefined: %v", err)
	}

	merged, err := r.Hydrate("card", &spec.Spec{Gap: "12px"})
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if merged.Gap != "12px" || merged.Layout != spec.LayoutStack {
		t.Errorf("merged = %+v", merged)
	}

	if _, err := r.Hydrate("missing", &spec.Spec{}); err == nil {
		t.Error("Hydrate: no error for an unknown key")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.RegisterPredefined("list", &spec.Spec{Children: []spec.Primitive{{Key: "l-0", Shape: spec.ShapeLine, Lines: 3}}}); err != nil {
		t.Fatalf("RegisterPredefined: %v", err)
	}
	if _, _, err := r.GetOrGenerate(context.Background(), &countingSource{name: "card"}, nil, generate.Options{}); err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}

	data, err := r.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("exported %d entries, want 2", len(entries))
	}
	if entries[0].Key > entries[1].Key {
		t.Error("export not sorted by key")
	}

	other := newTestRegistry(t)
	n, err := other.Import(data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d entries, want 2", n)
	}
	if _, ok := other.Get("card"); !ok {
		t.Error("imported entry not retrievable")
	}
}

func TestImportMalformedRejectedWhole(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.Import([]byte("not json at all")); !errors.Is(err, spec.ErrBadFormat) {
		t.Fatalf("Import: got %v, want ErrBadFormat", err)
	}
}

func TestImportDropsInvalidEntries(t *testing.T) {
	r := newTestRegistry(t)
	data := []byte(`[
		{"key": "good", "spec": {"children": [{"key": "a", "shape": "rect"}]}},
		{"key": "", "spec": {"children": []}},
		{"key": "bad", "spec": {"children": [{"key": "x", "shape": "oval"}]}}
	]`)

	n, err := r.Import(data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d entries, want 1", n)
	}
	if _, ok := r.Get("good"); !ok {
		t.Error("valid entry was not imported")
	}
	if _, ok := r.Get("bad"); ok {
		t.Error("invalid entry was imported")
	}
}

func TestLRUEviction(t *testing.T) {
	r, err := New(generate.New(slog.Default()), 2, slog.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, _, err := r.GetOrGenerate(ctx, &countingSource{name: name}, nil, generate.Options{}); err != nil {
			t.Fatalf("GetOrGenerate(%s): %v", name, err)
		}
	}

	if stats := r.StatsSnapshot(); stats.Entries != 2 {
		t.Errorf("entries = %d, want capacity 2", stats.Entries)
	}
	if _, ok := r.Get("a"); ok {
		t.Error("oldest entry survived past capacity")
	}
}
