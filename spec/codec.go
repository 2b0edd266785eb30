package spec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadFormat marks deserialization input that is not valid JSON for
// the specification shape.
var ErrBadFormat = errors.New("spec: malformed specification data")

// ErrInvalidSpec marks input that parsed cleanly but fails structural
// validation. Distinct from ErrBadFormat so callers can tell a corrupt
// payload from a well-formed but broken one.
var ErrInvalidSpec = errors.New("spec: specification failed validation")

// Marshal serializes a specification to its transport JSON. The format
// is stable and versionless.
func Marshal(s *Spec) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil spec", ErrInvalidSpec)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("spec: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal parses and re-validates a serialized specification. It never
// returns a partially-trusted spec: any validation violation fails the
// whole operation.
func Unmarshal(data []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if res := Validate(&s); !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSpec, strings.Join(res.Errors, "; "))
	}
	return &s, nil
}
