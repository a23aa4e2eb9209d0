package strftime

import (
	"strings"
	"unicode/utf8"

	"datetime/internal/calendar"
)

// Render expands every %-directive in template against r and copies all other
// characters unchanged. It stops at the first failure met scanning left to
// right: a *DirectiveError for an unknown code or out-of-range lookup, or
// ErrMalformedTemplate for a trailing '%'.
func Render(r calendar.Record, template string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c, size := utf8.DecodeRuneInString(template[i:])
		if c != '%' {
			b.WriteString(template[i : i+size])
			i += size
			continue
		}
		i += size
		if i >= len(template) {
			return "", ErrMalformedTemplate
		}
		d, size := utf8.DecodeRuneInString(template[i:])
		i += size

		s, err := FormatDirective(r, Directive(d))
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// token is either literal text or a directive.
type token struct {
	literal   string
	directive Directive
}

// Layout is a template parsed once and checked up front, so formatting it
// only fails on out-of-range name lookups.
type Layout struct {
	template string
	tokens   []token
}

// Compile parses template. Unknown directives and a trailing '%' are
// reported here instead of at format time.
func Compile(template string) (*Layout, error) {
	l := &Layout{template: template}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			l.tokens = append(l.tokens, token{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(template); {
		c, size := utf8.DecodeRuneInString(template[i:])
		if c != '%' {
			lit.WriteString(template[i : i+size])
			i += size
			continue
		}
		i += size
		if i >= len(template) {
			return nil, ErrMalformedTemplate
		}
		d, size := utf8.DecodeRuneInString(template[i:])
		i += size
		if !Directive(d).Valid() {
			return nil, &DirectiveError{Directive: Directive(d)}
		}
		flush()
		l.tokens = append(l.tokens, token{directive: Directive(d)})
	}
	flush()

	return l, nil
}

// MustCompile is like Compile but panics on error. It is meant for package
// level layouts.
func MustCompile(template string) *Layout {
	l, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the source template.
func (l *Layout) String() string {
	return l.template
}

// Format renders the layout against r.
func (l *Layout) Format(r calendar.Record) (string, error) {
	var b strings.Builder
	for _, t := range l.tokens {
		if t.directive == 0 {
			b.WriteString(t.literal)
			continue
		}
		s, err := FormatDirective(r, t.directive)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// FormatMillis decomposes ms and formats it.
func (l *Layout) FormatMillis(ms calendar.EpochMillis) (string, error) {
	return l.Format(calendar.Decompose(ms))
}
