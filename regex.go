// Package coregex is a POSIX-syntax regular-expression matching engine
// in the style of GNU grep's dfa.c: a lexer/parser for Basic, Extended,
// and GNU regex syntax feeding a position-based Thompson construction
// whose subset-construction DFA is materialized lazily, accelerated by
// a Boyer-Moore/Aho-Corasick keyword-set prefilter.
//
// Unlike Go's stdlib regexp, coregex has no capture groups and no
// look-around: it answers exactly one question, fast — where is the
// leftmost match of this pattern in this buffer — which is what a
// line-oriented search tool needs and nothing more.
//
// Basic usage:
//
//	re, err := coregex.Compile(`[0-9]+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, ok := re.SearchLine([]byte("age: 42"), 0)
//	if ok {
//	    fmt.Println(m.Offset, m.Size) // 5 2
//	}
package coregex

import (
	"github.com/coregx/coregex/internal/compile"
	"github.com/coregx/coregex/internal/search"
	"github.com/coregx/coregex/reerr"
	"github.com/coregx/coregex/resyntax"
)

// Config bundles the compile-time options spec.md §6 names: case
// folding, word/line matching, and the knobs the DFA builder and KWset
// prefilter read. Following the teacher's meta/config.go shape, it has
// a Validate method and a functional DefaultConfig constructor rather
// than package-level mutable state.
type Config struct {
	// Syntax selects which RE_* bits govern parsing. Defaults to
	// resyntax.REExtended (POSIX ERE) when left zero.
	Syntax resyntax.Flags

	CaseFold   bool // -i
	MatchWords bool // -w
	MatchLines bool // -x
	Literal    bool // -F: bypass the parser, match the pattern as a literal string
	AnchorOnly bool // passed to internal/compile, which does not read it
	EOLIsNUL   bool

	// MaxDFAStates is not passed to the compiler: internal/posdfa always
	// evicts transition rows at relimits.MaxTrCount, whatever this holds.
	MaxDFAStates int

	// WarnFunc receives non-fatal warnings (e.g. a stray [:space:] used
	// outside a bracket expression). Nil disables warnings.
	WarnFunc func(string)

	// Posixly mirrors grep's POSIXLY_CORRECT environment check: when
	// false (the default), a construct that would otherwise only emit a
	// WarnFunc warning (the [:space:] case) is promoted to a hard
	// CompileError instead.
	Posixly bool
}

// DefaultConfig returns POSIX ERE syntax, no case folding, no word/line
// anchoring.
func DefaultConfig() Config {
	return Config{Syntax: resyntax.REExtended}
}

// Validate reports whether c is internally consistent.
func (c Config) Validate() error {
	if c.Literal && (c.Syntax != 0 && c.Syntax != resyntax.REExtended) {
		return reerr.New(reerr.NoSyntaxSpecified, "")
	}
	return nil
}

// Match is one search_line result: the offset and size of the leftmost
// match in the searched buffer, plus how many newline bytes were
// consumed locating it (spec.md §4.J).
type Match struct {
	Offset   int
	Size     int
	Newlines int
}

// End returns the exclusive end offset of the match.
func (m Match) End() int { return m.Offset + m.Size }

// Regex is one compiled pattern. It is NOT safe for concurrent use: the
// DFA builder materializes states lazily and may evict transition
// tables on a SearchLine call (spec.md §5).
type Regex struct {
	pat     *compile.Pattern
	pattern string
}

// Compile compiles pattern under the default configuration (POSIX
// ERE, case-sensitive).
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("coregex: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles pattern under an explicit Config.
func CompileWithConfig(pattern string, cfg Config) (*Regex, error) {
	return CompilePatterns([]string{pattern}, cfg)
}

// CompilePatterns compiles one or more sub-patterns joined by an
// implicit OR, matching grep's multiple -e convention (spec.md §4.I
// step 1).
func CompilePatterns(patterns []string, cfg Config) (*Regex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	syntax := cfg.Syntax
	if syntax == 0 {
		syntax = resyntax.REExtended
	}
	pat, err := compile.Compile(patterns, syntax, compile.Options{
		CaseFold:   cfg.CaseFold,
		MatchWords: cfg.MatchWords,
		MatchLines: cfg.MatchLines,
		AnchorOnly: cfg.AnchorOnly,
		EOLIsNUL:   cfg.EOLIsNUL,
		Literal:    cfg.Literal,
		Warn:       cfg.WarnFunc,
		Posixly:    cfg.Posixly,
	})
	if err != nil {
		return nil, err
	}
	joined := pattern0(patterns)
	return &Regex{pat: pat, pattern: joined}, nil
}

func pattern0(patterns []string) string {
	if len(patterns) == 0 {
		return ""
	}
	return patterns[0]
}

// SearchLine returns the leftmost match in buf at or after start, the
// engine's one primitive (spec.md §1, §4.J). ok is false on no match.
func (r *Regex) SearchLine(buf []byte, start int) (Match, bool) {
	res, ok := search.Line(r.pat, buf, start)
	if !ok {
		return Match{}, false
	}
	return Match{Offset: res.Offset, Size: res.Size, Newlines: res.Newlines}, true
}

// Match reports whether buf contains any match of the pattern.
func (r *Regex) Match(buf []byte) bool {
	_, ok := r.SearchLine(buf, 0)
	return ok
}

// MatchString reports whether s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// Find returns the leftmost match's bytes in buf, or nil if there is
// none.
func (r *Regex) Find(buf []byte) []byte {
	m, ok := r.SearchLine(buf, 0)
	if !ok {
		return nil
	}
	return buf[m.Offset:m.End()]
}

// FindString is Find for a string input.
func (r *Regex) FindString(s string) string {
	b := r.Find([]byte(s))
	if b == nil {
		return ""
	}
	return string(b)
}

// FindIndex returns the two-element [start, end) of the leftmost
// match, or nil if there is none.
func (r *Regex) FindIndex(buf []byte) []int {
	m, ok := r.SearchLine(buf, 0)
	if !ok {
		return nil
	}
	return []int{m.Offset, m.End()}
}

// FindStringIndex is FindIndex for a string input.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindAll returns every successive, non-overlapping match in buf. n < 0
// returns all matches; n >= 0 caps the count.
func (r *Regex) FindAll(buf []byte, n int) [][]byte {
	if n == 0 {
		return nil
	}
	var out [][]byte
	pos := 0
	for pos <= len(buf) {
		m, ok := r.SearchLine(buf, pos)
		if !ok {
			break
		}
		out = append(out, buf[m.Offset:m.End()])
		if m.End() > pos {
			pos = m.End()
		} else {
			pos++
		}
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out
}

// FindAllString is FindAll for a string input.
func (r *Regex) FindAllString(s string, n int) []string {
	matches := r.FindAll([]byte(s), n)
	if matches == nil {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = string(m)
	}
	return out
}

// String returns the source text used to compile the expression; for
// CompilePatterns it is the first sub-pattern only.
func (r *Regex) String() string {
	return r.pattern
}
