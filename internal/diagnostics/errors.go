// Package diagnostics carries the two recoverable error kinds the parser
// can raise, plus a Fault type for internal inconsistencies that the
// rewrite engine, sweep, allocator, and sequencer treat as fatal aborts
// rather than recoverable failures (spec §7).
package diagnostics

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseErrorKind distinguishes the two ways a bracket can fail to match.
type ParseErrorKind int

const (
	KindTooManyClosingBrackets ParseErrorKind = iota
	KindTooFewClosingBrackets
)

// ParseError reports a bracket-matching failure. Offset is meaningful only
// for KindTooManyClosingBrackets, where it names the byte offset of the
// unmatched ']'.
type ParseError struct {
	Kind   ParseErrorKind
	Offset int
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindTooManyClosingBrackets:
		return fmt.Sprintf("too many closing brackets: unmatched ']' at offset %d", e.Offset)
	case KindTooFewClosingBrackets:
		return "too few closing brackets: unclosed '[' at end of input"
	default:
		return "parse error"
	}
}

// ErrTooFewClosingBrackets is raised at EOF when the block stack is
// non-empty.
var ErrTooFewClosingBrackets = &ParseError{Kind: KindTooFewClosingBrackets}

// TooManyClosingBrackets is raised on ']' with an empty block stack.
func TooManyClosingBrackets(offset int) error {
	return &ParseError{Kind: KindTooManyClosingBrackets, Offset: offset}
}

// Fault represents a programmer error: an internal inconsistency such as a
// compound with the wrong arity, discovered by a pass that assumes
// well-formed input. It is always a bug in the compiler itself, never a
// consequence of source text, so it carries a stack trace via pkg/errors
// rather than source location information.
type Fault struct {
	cause error
}

func (f *Fault) Error() string {
	return f.cause.Error()
}

func (f *Fault) Unwrap() error {
	return f.cause
}

// NewFault wraps message with a stack trace, for use at the single point a
// pass gives up on an internally inconsistent graph.
func NewFault(format string, args ...interface{}) *Fault {
	return &Fault{cause: errors.Errorf(format, args...)}
}

// Wrap attaches a stack trace to err, tagging it as a fatal internal
// inconsistency rather than a recoverable ParseError.
func Wrap(err error, message string) *Fault {
	return &Fault{cause: errors.Wrap(err, message)}
}
