package registry

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shimware/skel/spec"
)

// Entry is one {key, spec} pair in the bulk export format.
type Entry struct {
	Key  string     `json:"key"`
	Spec *spec.Spec `json:"spec"`
}

// Export serializes every predefined and memoized entry as a JSON array
// of {key, spec} pairs, sorted by key for stable diffs.
func (r *Registry) Export() ([]byte, error) {
	r.mu.Lock()
	entries := make([]Entry, 0, r.cache.Len()+len(r.predefined))
	for key, s := range r.predefined {
		entries = append(entries, Entry{Key: key, Spec: s})
	}
	for _, key := range r.cache.Keys() {
		if _, shadowed := r.predefined[key]; shadowed {
			continue
		}
		if s, ok := r.cache.Peek(key); ok {
			entries = append(entries, Entry{Key: key, Spec: s})
		}
	}
	r.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("registry: export: %w", err)
	}
	return data, nil
}

// Import loads a bulk export. The operation is all-or-nothing at the
// parse level, but per-entry tolerant at the validation level: entries
// failing re-validation are dropped with a log instead of failing the
// whole import. Returns the number imported.
func (r *Registry) Import(data []byte) (int, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("%w: %v", spec.ErrBadFormat, err)
	}

	imported := 0
	for i, e := range entries {
		if e.Key == "" {
			r.logger.Warn("registry: import dropped entry with empty key", "index", i)
			continue
		}
		if res := spec.Validate(e.Spec); !res.Valid {
			r.logger.Warn("registry: import dropped invalid spec",
				"key", e.Key, "errors", res.Errors)
			continue
		}
		r.mu.Lock()
		r.cache.Add(e.Key, e.Spec)
		r.mu.Unlock()
		imported++
	}
	return imported, nil
}
