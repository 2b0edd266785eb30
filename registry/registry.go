// Package registry is the specification registry and generation cache.
//
// It memoizes generated specs keyed by component identity plus a stable
// serialization of the input parameters, bounded by an LRU. The
// check-then-generate-then-store sequence is atomic per key: concurrent
// requests for the same key collapse onto a single in-flight generation.
// Failed generations are never stored, so a transient failure cannot
// poison the cache.
//
// A Registry is an explicitly constructed, passed-around instance with
// its own lifecycle — there is no process-wide singleton.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shimware/skel/generate"
	"github.com/shimware/skel/spec"
)

// DefaultCapacity bounds the memoization cache when none is configured.
const DefaultCapacity = 256

// Stats is a point-in-time snapshot of registry counters.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Generations uint64 `json:"generations"`
	Failures    uint64 `json:"failures"`
	Entries     int    `json:"entries"`
	Predefined  int    `json:"predefined"`
}

// Registry memoizes spec generation and holds predefined specs.
type Registry struct {
	gen    *generate.Generator
	logger *slog.Logger

	mu         sync.Mutex
	cache      *lru.Cache[string, *spec.Spec]
	predefined map[string]*spec.Spec
	inflight   map[string]*call
	stats      Stats
}

type call struct {
	done chan struct{}
	spec *spec.Spec
	err  error
}

// New creates a Registry backed by the given generator. Capacity <= 0
// uses DefaultCapacity.
func New(gen *generate.Generator, capacity int, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = generate.New(logger)
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, *spec.Spec](capacity)
	if err != nil {
		return nil, fmt.Errorf("registry: create cache: %w", err)
	}
	return &Registry{
		gen:        gen,
		logger:     logger,
		cache:      cache,
		predefined: make(map[string]*spec.Spec),
		inflight:   make(map[string]*call),
	}, nil
}

// Key derives the cache key for a component and its input parameters.
// encoding/json sorts map keys, so equal parameter maps always produce
// equal keys.
func Key(component string, params map[string]any) string {
	if len(params) == 0 {
		return component
	}
	data, err := json.Marshal(params)
	if err != nil {
		// Unencodable params still need a usable key; fall back to the
		// component alone rather than failing the lookup path.
		return component
	}
	return component + "::" + string(data)
}

// GetOrGenerate returns the memoized spec for (source, params) or runs
// one generation. The second return reports whether the spec was served
// from the cache (or a predefined entry) without generating. Only
// successful results are stored; concurrent callers for the same key
// share a single generation.
func (r *Registry) GetOrGenerate(ctx context.Context, source generate.Source, params map[string]any, opts generate.Options) (*spec.Spec, bool, error) {
	key := Key(source.Name(), params)

	r.mu.Lock()
	if s, ok := r.predefined[key]; ok {
		r.stats.Hits++
		r.mu.Unlock()
		return s, true, nil
	}
	if s, ok := r.cache.Get(key); ok {
		r.stats.Hits++
		r.mu.Unlock()
		return s, true, nil
	}
	if c, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		<-c.done
		return c.spec, false, c.err
	}
	c := &call{done: make(chan struct{})}
	r.inflight[key] = c
	r.stats.Misses++
	r.mu.Unlock()

	s, err := r.gen.Generate(ctx, source, opts)

	r.mu.Lock()
	delete(r.inflight, key)
	if err == nil {
		r.cache.Add(key, s)
		r.stats.Generations++
	} else {
		r.stats.Failures++
	}
	r.mu.Unlock()

	c.spec, c.err = s, err
	close(c.done)
	return s, false, err
}

// Get retrieves a cached or predefined spec without generating.
func (r *Registry) Get(key string) (*spec.Spec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.predefined[key]; ok {
		return s, true
	}
	return r.cache.Get(key)
}

// RegisterPredefined installs a hand-authored spec under key. Predefined
// entries are never evicted and take precedence over generated ones.
func (r *Registry) RegisterPredefined(key string, s *spec.Spec) error {
	if res := spec.Validate(s); !res.Valid {
		return fmt.Errorf("%w: %v", spec.ErrInvalidSpec, res.Errors)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predefined[key] = s.Clone()
	return nil
}

// Hydrate merges an overlay onto the spec stored under key and stores
// the result as a new entry. The stored spec is never mutated in place.
func (r *Registry) Hydrate(key string, overlay *spec.Spec) (*spec.Spec, error) {
	base, ok := r.Get(key)
	if !ok {
		return nil, fmt.Errorf("registry: no spec under key %q", key)
	}
	merged := spec.MergeSpecs(base, overlay)
	if res := spec.Validate(merged); !res.Valid {
		return nil, fmt.Errorf("%w: %v", spec.ErrInvalidSpec, res.Errors)
	}
	r.mu.Lock()
	r.cache.Add(key, merged)
	r.mu.Unlock()
	return merged, nil
}

// Preload warms the cache for a set of sources concurrently. Individual
// failures are logged and skipped; the count of entries now resident is
// returned. Sources already cached are not regenerated.
func (r *Registry) Preload(ctx context.Context, sources []generate.Source, params map[string]any, opts generate.Options) int {
	var wg sync.WaitGroup
	ok := make([]bool, len(sources))
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := r.GetOrGenerate(ctx, src, params, opts); err != nil {
				r.logger.Warn("registry: preload item failed", "component", src.Name(), "error", err)
				return
			}
			ok[i] = true
		}()
	}
	wg.Wait()

	n := 0
	for _, v := range ok {
		if v {
			n++
		}
	}
	return n
}

// StatsSnapshot returns current counters.
func (r *Registry) StatsSnapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Entries = r.cache.Len()
	s.Predefined = len(r.predefined)
	return s
}

// Clear drops all memoized entries. Predefined specs survive; they are
// definitions, not cache state.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
}

// Close releases the registry. The instance must not be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
	r.predefined = map[string]*spec.Spec{}
	return nil
}
