package generate

import "fmt"

// Error is a whole-specification generation failure. It always names the
// component and wraps the inner cause; use errors.As to recover it.
type Error struct {
	Component string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generate %q: %v", e.Component, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
