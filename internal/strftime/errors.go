package strftime

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedDirective is matched by every *DirectiveError.
	ErrUnsupportedDirective = errors.New("strftime: unsupported directive")

	// ErrMalformedTemplate reports a trailing '%' with no directive after it.
	ErrMalformedTemplate = errors.New("strftime: malformed template: trailing '%'")
)

// DirectiveError reports a directive that cannot be rendered: either the code
// is unknown, or (when Field is set) a name lookup was asked for a record
// field outside its table.
type DirectiveError struct {
	Directive Directive
	Field     string
	Value     int
}

func (e *DirectiveError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("strftime: unsupported directive %q", rune(e.Directive))
	}
	return fmt.Sprintf("strftime: directive %q: %s %d out of range", rune(e.Directive), e.Field, e.Value)
}

func (e *DirectiveError) Is(target error) bool {
	return target == ErrUnsupportedDirective
}
