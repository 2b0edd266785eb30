package staticdom

import (
	"context"

	"github.com/shimware/skel/meta"
)

// Source is a static-mode generation source: named raw HTML, parsed on
// demand. It satisfies the generator's Source interface.
type Source struct {
	name string
	data []byte
}

// NewSource wraps raw HTML as a generation source.
func NewSource(name string, data []byte) *Source {
	return &Source{name: name, data: data}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Root(ctx context.Context) (meta.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(s.data)
}
