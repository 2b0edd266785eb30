package spec

import "fmt"

// Result is the outcome of structural validation. Errors holds every
// violation found, not just the first: a caller can report all problems
// in one pass.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate structurally checks a specification. A nil spec is itself a
// reported violation, never a panic. Validation never short-circuits.
func Validate(s *Spec) Result {
	if s == nil {
		return Result{Errors: []string{"spec is nil"}}
	}

	var errs []string
	if s.Children == nil {
		errs = append(errs, "spec has no children array")
	}

	seen := make(map[string]int, len(s.Children))
	for i, p := range s.Children {
		if p.Key == "" {
			errs = append(errs, fmt.Sprintf("child %d: missing key", i))
		} else if first, dup := seen[p.Key]; dup {
			errs = append(errs, fmt.Sprintf("child %d: duplicate key %q (first used by child %d)", i, p.Key, first))
		} else {
			seen[p.Key] = i
		}

		if p.Shape == "" {
			errs = append(errs, fmt.Sprintf("child %d: missing shape", i))
		} else if !ValidShape(p.Shape) {
			errs = append(errs, fmt.Sprintf("child %d: illegal shape %q", i, p.Shape))
		}

		if p.Shape == ShapeLine && p.Lines < 1 {
			errs = append(errs, fmt.Sprintf("child %d: line shape requires lines >= 1, got %d", i, p.Lines))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}
