// Package reerr defines the CompileError taxonomy shared by the lexer,
// parser, and compile coordinator (spec.md §6).
package reerr

import "fmt"

// Code enumerates the stable compile-error codes from spec.md §6.
type Code int

const (
	UnbalancedBracket Code = iota
	UnbalancedParen
	UnfinishedEscape
	InvalidIntervalContent
	IntervalTooLarge
	InvalidCharacterClass
	InvalidBackReference
	NoSyntaxSpecified
)

func (c Code) String() string {
	switch c {
	case UnbalancedBracket:
		return "unbalanced bracket expression"
	case UnbalancedParen:
		return "unbalanced parenthesis"
	case UnfinishedEscape:
		return "unfinished \\ escape"
	case InvalidIntervalContent:
		return "invalid content of \\{\\}"
	case IntervalTooLarge:
		return "regular expression too big (interval count)"
	case InvalidCharacterClass:
		return "invalid character class"
	case InvalidBackReference:
		return "invalid back reference"
	case NoSyntaxSpecified:
		return "no syntax specified"
	default:
		return "unknown regex syntax error"
	}
}

// Error is a compile-time syntax error. The engine never partially
// compiles: on Error the pattern object is not created.
type Error struct {
	Code    Code
	Pattern string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (pattern %q)", e.Code, e.Detail, e.Pattern)
	}
	return fmt.Sprintf("%s (pattern %q)", e.Code, e.Pattern)
}

// New builds an *Error for code with no extra detail.
func New(code Code, pattern string) *Error {
	return &Error{Code: code, Pattern: pattern}
}

// Newf builds an *Error for code with a formatted detail message.
func Newf(code Code, pattern, format string, args ...any) *Error {
	return &Error{Code: code, Pattern: pattern, Detail: fmt.Sprintf(format, args...)}
}

// Is lets errors.Is(err, reerr.New(code, "")) match any *Error with the
// same Code regardless of Pattern/Detail, the way the teacher's
// dfa/lazy.DFAError.Is compares by Kind rather than pointer identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
