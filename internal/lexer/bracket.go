package lexer

import (
	"strings"

	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/internal/token"
	"github.com/coregx/coregex/reerr"
)

// bareColonClassWarning is dfa.c's sole dfawarn-eliciting message (the
// "colon_warning_state == 7" case): a bracket expression whose entire
// body is ":name:", i.e. the writer meant [[:name:]] but forgot the
// outer brackets.
const bareColonClassWarning = "character class syntax is [[:space:]], not [:space:]"

var posixClasses = map[string]func(charclass.Set) charclass.Set{
	"alpha":  func(s charclass.Set) charclass.Set { s.AddRange('a', 'z'); s.AddRange('A', 'Z'); return s },
	"upper":  func(s charclass.Set) charclass.Set { s.AddRange('A', 'Z'); return s },
	"lower":  func(s charclass.Set) charclass.Set { s.AddRange('a', 'z'); return s },
	"digit":  func(s charclass.Set) charclass.Set { s.AddRange('0', '9'); return s },
	"xdigit": func(s charclass.Set) charclass.Set { s.AddRange('0', '9'); s.AddRange('a', 'f'); s.AddRange('A', 'F'); return s },
	"space": func(s charclass.Set) charclass.Set {
		for _, b := range []byte{' ', '\t', '\n', '\v', '\f', '\r'} {
			s.Add(b)
		}
		return s
	},
	"punct": func(s charclass.Set) charclass.Set {
		for c := byte('!'); c <= '/'; c++ {
			s.Add(c)
		}
		for c := byte(':'); c <= '@'; c++ {
			s.Add(c)
		}
		for c := byte('['); c <= '`'; c++ {
			s.Add(c)
		}
		for c := byte('{'); c <= '~'; c++ {
			s.Add(c)
		}
		return s
	},
	"alnum": func(s charclass.Set) charclass.Set {
		s.AddRange('a', 'z')
		s.AddRange('A', 'Z')
		s.AddRange('0', '9')
		return s
	},
	"print": func(s charclass.Set) charclass.Set { s.AddRange(0x20, 0x7e); return s },
	"graph": func(s charclass.Set) charclass.Set { s.AddRange(0x21, 0x7e); return s },
	"cntrl": func(s charclass.Set) charclass.Set { s.AddRange(0, 0x1f); s.Add(0x7f); return s },
	"blank": func(s charclass.Set) charclass.Set { s.Add(' '); s.Add('\t'); return s },
}

// lexBracket scans a bracket expression starting just after the opening
// `[`, returning a CSET (or, for constructs this byte-level engine cannot
// faithfully evaluate in a UTF-8 locale, a BACKREF escape-hatch token, per
// spec.md §4.B / §6).
func (l *Lexer) lexBracket() (Result, error) {
	negate := false
	if l.peekByte() == '^' {
		negate = true
		l.pos++
	}

	if l.looksLikeBareColonClass() {
		// grep.c's dfasearch.c dfawarn: without POSIXLY_CORRECT this is
		// promoted to a hard compile error; with it, just a warning and
		// the bracket is still parsed as a literal-character class.
		if !l.posixly {
			return Result{}, reerr.New(reerr.InvalidCharacterClass, l.pattern)
		}
		l.warn(bareColonClassWarning)
	}

	var set charclass.Set
	first := true
	sawHighByte := false

	for {
		if l.left() == 0 {
			return Result{}, reerr.New(reerr.UnbalancedBracket, l.pattern)
		}
		if l.peekByte() == ']' && !first {
			l.pos++
			break
		}
		first = false

		if l.peekByte() == '[' && (l.peekByteAt(1) == ':' || l.peekByteAt(1) == '.' || l.peekByteAt(1) == '=') {
			kind := l.peekByteAt(1)
			end := strings.Index(l.pattern[l.pos+2:], string(kind)+"]")
			if end < 0 {
				return Result{}, reerr.New(reerr.UnbalancedBracket, l.pattern)
			}
			name := l.pattern[l.pos+2 : l.pos+2+end]
			l.pos += 2 + end + 2

			switch kind {
			case ':':
				if !l.syntax.CharClasses {
					return Result{}, reerr.New(reerr.InvalidCharacterClass, l.pattern)
				}
				fn, ok := posixClasses[name]
				if !ok {
					return Result{}, reerr.Newf(reerr.InvalidCharacterClass, l.pattern, "unknown class %q", name)
				}
				set = fn(set)
			case '.', '=':
				// Collating symbols / equivalence classes: in the C/byte
				// locale these reduce to the literal byte; in a UTF-8
				// locale correct handling needs the backtracker, per
				// spec.md §6.
				if l.utf8 && len(name) > 0 && name[0] > 0x7f {
					return Result{Tok: token.BACKREF, BackRef: -1}, nil
				}
				if len(name) == 1 {
					set.Add(name[0])
				}
			}
			continue
		}

		lo := l.fetch()
		if lo > 0x7f {
			sawHighByte = true
		}
		if l.peekByte() == '-' && l.peekByteAt(1) != ']' && l.left() > 1 {
			l.pos++ // consume '-'
			hi := l.fetch()
			if lo > 0x7f || hi > 0x7f {
				sawHighByte = true
				continue
			}
			if hi < lo {
				return Result{}, reerr.New(reerr.UnbalancedBracket, l.pattern)
			}
			set.AddRange(byte(lo), byte(hi))
			if l.icase {
				addFoldRange(&set, byte(lo), byte(hi))
			}
			continue
		}
		if lo <= 0x7f {
			set.Add(byte(lo))
			if l.icase {
				set = foldSet(byte(lo)).Union(set)
			}
		}
	}

	if sawHighByte {
		// A multibyte character literal inside a bracket expression: fall
		// back to the backtracker rather than approximate it as bytes.
		return Result{Tok: token.BACKREF, BackRef: -1}, nil
	}

	if negate {
		set = set.Complement()
		if l.syntax.HatListsNotNL {
			set.Remove('\n')
		}
	}
	id := l.classes.Intern(set)
	l.lasttok = token.FromClassIndex(id)
	return Result{Tok: token.FromClassIndex(id), ClassID: id}, nil
}

// looksLikeBareColonClass reports whether the bracket body starting at
// l.pos (just past the opening '[' or '[^') is of the form ":name:",
// matching dfa.c's colon_warning_state heuristic for "[:space:]" used in
// place of "[[:space:]]".
func (l *Lexer) looksLikeBareColonClass() bool {
	rest := l.pattern[l.pos:]
	end := strings.IndexByte(rest, ']')
	if end < 2 {
		return false
	}
	body := rest[:end]
	if strings.ContainsRune(body, '[') {
		return false
	}
	return body[0] == ':' && body[len(body)-1] == ':'
}

func addFoldRange(set *charclass.Set, lo, hi byte) {
	for c := int(lo); c <= int(hi); c++ {
		*set = foldSet(byte(c)).Union(*set)
	}
}
