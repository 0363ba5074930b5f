// Package lexer tokenizes POSIX Basic, Extended, and GNU regex syntax into
// the token stream the parser consumes (spec.md §4.B).
//
// The lexer is adapted from GNU grep's lib/dfa.c `lex`: a backslash sets a
// flag and the main switch is driven a second time on the following
// character rather than duplicating every case. Bracket expressions are
// handled by a dedicated sub-scanner (bracket.go) that returns a CSET
// token, or a BACKREF token for constructs the DFA cannot represent.
package lexer

import (
	"unicode/utf8"

	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/internal/token"
	"github.com/coregx/coregex/reerr"
	"github.com/coregx/coregex/resyntax"
)

// Lexer consumes pattern bytes and produces one token per call to Next.
type Lexer struct {
	pattern string
	pos     int
	syntax  resyntax.Syntax
	classes *charclass.Store
	icase   bool
	utf8    bool // locale decodes multibyte characters

	lasttok  token.Token
	parens   int // open, not-yet-closed group count (for lasttok bookkeeping)
	warn     func(string)
	posixly  bool // when false, dfawarn-eliciting constructs are hard errors
	mbprops  []token.MBProp // parallel to postfix-position bytes the parser emits for one wide char
	pendingC rune           // last decoded rune, for WCHAR
}

// Config bundles the lexer's construction-time parameters.
type Config struct {
	Syntax  resyntax.Syntax
	ICase   bool
	UTF8    bool // decode multibyte characters via unicode/utf8 instead of byte-at-a-time
	Classes *charclass.Store
	Warn    func(string) // injected warning sink, spec.md §7

	// Posixly mirrors dfasearch.c's getenv("POSIXLY_CORRECT") check: when
	// false (the default), a dfawarn-eliciting construct is a hard
	// compile error instead of a warning.
	Posixly bool
}

// New returns a lexer over pattern.
func New(pattern string, cfg Config) *Lexer {
	warn := cfg.Warn
	if warn == nil {
		warn = func(string) {}
	}
	return &Lexer{
		pattern: pattern,
		syntax:  cfg.Syntax,
		classes: cfg.Classes,
		icase:   cfg.ICase,
		utf8:    cfg.UTF8,
		lasttok: token.END,
		warn:    warn,
		posixly: cfg.Posixly,
	}
}

func (l *Lexer) left() int { return len(l.pattern) - l.pos }

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.pattern) {
		return 0
	}
	return l.pattern[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.pattern) {
		return 0
	}
	return l.pattern[l.pos+off]
}

// fetch decodes the next input character, advancing pos. In a UTF-8 locale
// a multibyte sequence decodes to its rune; otherwise one byte is one
// character, matching dfa.c's fetch_wc dispatch on dfa->localeinfo.multibyte.
func (l *Lexer) fetch() rune {
	if l.pos >= len(l.pattern) {
		return -1
	}
	if l.utf8 {
		r, size := utf8.DecodeRuneInString(l.pattern[l.pos:])
		l.pos += size
		return r
	}
	b := l.pattern[l.pos]
	l.pos++
	return rune(b)
}

// PendingRune returns the most recently fetched multibyte rune, valid only
// immediately after Next returns WCHAR.
func (l *Lexer) PendingRune() rune { return l.pendingC }

// Result pairs a lex-stream token with the extra data some token kinds
// carry: the decoded rune for WCHAR, the interned class index for CSET.
type Result struct {
	Tok     token.Token
	Rune    rune // valid when Tok == token.WCHAR
	ClassID int  // valid when Tok == token.CSET
	BackRef int  // valid when Tok == token.BACKREF

	// Valid when Tok == token.REPMN. IntervalMax == -1 means "{m,}" (unbounded).
	IntervalMin int
	IntervalMax int
}

// Classes returns the char-class store the lexer interns bracket
// expressions into.
func (l *Lexer) Classes() *charclass.Store { return l.classes }

// Next scans and returns the next token in the lex stream.
func (l *Lexer) Next() (Result, error) {
	backslash := false
	for i := 0; i < 2; i++ {
		if l.left() == 0 {
			l.lasttok = token.END
			return Result{Tok: token.END}, nil
		}
		start := l.pos
		c := l.fetch()

		switch {
		case c == '\\' && !backslash:
			if l.left() == 0 {
				return Result{}, reerr.New(reerr.UnfinishedEscape, l.pattern)
			}
			backslash = true
			continue

		case c == '^' && !backslash:
			if l.syntax.ContextIndepAnch || l.lasttok == token.END ||
				l.lasttok == token.LPAREN || l.lasttok == token.OR {
				return l.emit(token.BEGLINE), nil
			}
			return l.emitLiteral(c), nil

		case c == '$' && !backslash:
			if l.endAnchorHere() {
				return l.emit(token.ENDLINE), nil
			}
			return l.emitLiteral(c), nil

		case c == '.' && !backslash:
			return l.emit(token.ANYCHAR), nil

		case c == '*' && !backslash:
			if l.lasttok == token.END || l.lasttok == token.LPAREN || l.lasttok == token.OR ||
				l.lasttok == token.BEGLINE || (!l.syntax.Extended && !l.syntax.ContextIndepOps && l.atExprStart()) {
				return l.emitLiteral(c), nil
			}
			return l.emit(token.STAR), nil

		case (c == '+' || c == '?') && (l.syntax.Extended || backslash) && !(!l.syntax.Extended && !l.syntax.BkPlusQm && !backslash):
			if !l.syntax.Extended && !backslash {
				return l.emitLiteral(c), nil
			}
			if c == '+' {
				return l.emit(token.PLUS), nil
			}
			return l.emit(token.QMARK), nil

		case c == '|' && (l.syntax.Extended == !backslash):
			return l.emit(token.OR), nil

		case c == '\n' && l.syntax.NewlineAlt && !backslash:
			return l.emit(token.OR), nil

		case c == '(' && (l.syntax.Extended == !backslash):
			l.parens++
			return l.emit(token.LPAREN), nil

		case c == ')' && (l.syntax.Extended == !backslash):
			if l.parens <= 0 && !l.syntax.UnmatchedRParenOK {
				return Result{}, reerr.New(reerr.UnbalancedParen, l.pattern)
			}
			if l.parens > 0 {
				l.parens--
			}
			return l.emit(token.RPAREN), nil

		case c == '{' && l.syntax.Intervals && (l.syntax.Extended == !backslash):
			if res, ok, err := l.lexInterval(start); ok || err != nil {
				return res, err
			}
			return l.emitLiteral(c), nil

		case c == '[' && !backslash:
			return l.lexBracket()

		case backslash && c >= '1' && c <= '9' && !l.syntax.NoBkRefs:
			return Result{Tok: token.BACKREF, BackRef: int(c - '0')}, nil

		case backslash && c == '<':
			return l.emit(token.BEGWORD), nil
		case backslash && c == '>':
			return l.emit(token.ENDWORD), nil
		case backslash && c == 'b':
			return l.emit(token.LIMWORD), nil
		case backslash && c == 'B':
			return l.emit(token.NOTLIMWORD), nil

		case backslash && (c == 'w' || c == 'W'):
			return l.classToken(wordClass(), c == 'W'), nil
		case backslash && (c == 's' || c == 'S'):
			return l.classToken(spaceClass(), c == 'S'), nil

		default:
			if backslash {
				// Any other escaped metacharacter becomes literal, per
				// the "pattern escape contract" in spec.md §6.
				return l.emitLiteral(c), nil
			}
			return l.emitLiteral(c), nil
		}
	}
	return Result{}, reerr.New(reerr.UnfinishedEscape, l.pattern)
}

func (l *Lexer) atExprStart() bool {
	return l.lasttok == token.END || l.lasttok == token.LPAREN || l.lasttok == token.OR
}

// endAnchorHere reproduces dfa.c's context-dependent test for whether `$`
// is the end-of-line anchor: true at end of pattern, or directly before a
// closing group/alternation delimiter.
func (l *Lexer) endAnchorHere() bool {
	if l.syntax.ContextIndepAnch || l.left() == 0 {
		return true
	}
	rest := l.pattern[l.pos:]
	if l.syntax.Extended {
		return len(rest) >= 1 && (rest[0] == ')' || rest[0] == '|')
	}
	if len(rest) >= 2 && rest[0] == '\\' && (rest[1] == ')' || rest[1] == '|') {
		return true
	}
	return false
}

func (l *Lexer) emit(t token.Token) Result {
	l.lasttok = t
	return Result{Tok: t}
}

func (l *Lexer) emitLiteral(c rune) Result {
	if l.utf8 && c > 0x7f {
		l.lasttok = token.WCHAR
		l.pendingC = c
		return Result{Tok: token.WCHAR, Rune: c}
	}
	b := byte(c)
	if l.icase {
		id := l.classes.Intern(foldSet(b))
		l.lasttok = token.FromClassIndex(id)
		return Result{Tok: token.FromClassIndex(id), ClassID: id}
	}
	l.lasttok = token.Token(b)
	return Result{Tok: token.Token(b)}
}

// classToken interns set (or its complement, for the uppercase \W \S \B
// forms) and returns the resulting CSET token.
func (l *Lexer) classToken(set charclass.Set, negate bool) Result {
	if negate {
		set = set.Complement()
	}
	id := l.classes.Intern(set)
	l.lasttok = token.FromClassIndex(id)
	return Result{Tok: token.FromClassIndex(id), ClassID: id}
}

func wordClass() charclass.Set {
	var s charclass.Set
	s.AddRange('a', 'z')
	s.AddRange('A', 'Z')
	s.AddRange('0', '9')
	s.Add('_')
	return s
}

func spaceClass() charclass.Set {
	var s charclass.Set
	for _, b := range []byte{' ', '\t', '\n', '\v', '\f', '\r'} {
		s.Add(b)
	}
	return s
}

// foldSet returns the case-insensitive class for a single ASCII letter
// byte, or the singleton {b} if b is not a letter.
func foldSet(b byte) charclass.Set {
	var s charclass.Set
	s.Add(b)
	switch {
	case b >= 'a' && b <= 'z':
		s.Add(b - 32)
	case b >= 'A' && b <= 'Z':
		s.Add(b + 32)
	}
	return s
}
