package generate

import (
	"context"
	"sync"

	"github.com/shimware/skel/spec"
)

// BatchResult pairs a component name with its generated spec.
type BatchResult struct {
	Component string
	Spec      *spec.Spec
}

// GenerateBatch runs independent generations concurrently. Individual
// failures are logged and excluded from the result list; the batch never
// aborts as a whole. Result order follows source order.
func (g *Generator) GenerateBatch(ctx context.Context, sources []Source, opts Options) []BatchResult {
	results := make([]*spec.Spec, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := g.Generate(ctx, src, opts)
			if err != nil {
				g.Logger.Warn("generate: batch item failed", "component", src.Name(), "error", err)
				return
			}
			results[i] = s
		}()
	}
	wg.Wait()

	out := make([]BatchResult, 0, len(sources))
	for i, s := range results {
		if s != nil {
			out = append(out, BatchResult{Component: sources[i].Name(), Spec: s})
		}
	}
	return out
}
