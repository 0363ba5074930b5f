// Package backtrack is the "backref escape hatch" spec.md §4.F and §9
// name but leave unspecified: a small self-contained backtracking matcher
// used only to verify the handful of sub-patterns containing `\1..\9`
// that the position DFA cannot evaluate. It is never on the hot path —
// the compile coordinator routes a pattern here only when the parser
// recorded a BackRefInfo for it.
//
// It builds its own parse tree (rather than reusing the main postfix
// array, which drops group boundaries once parsed) so it can track
// capturing-group spans and replay them for `\N`.
package backtrack

import (
	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/internal/lexer"
	"github.com/coregx/coregex/internal/token"
	"github.com/coregx/coregex/reerr"
	"github.com/coregx/coregex/resyntax"
)

// Pattern is a compiled backtracking matcher for one sub-expression.
type Pattern struct {
	root    node
	ngroups int
	classes *charclass.Store
	icase   bool
}

// Config mirrors the subset of parser.Config the backtracker needs.
type Config struct {
	Syntax resyntax.Syntax
	ICase  bool
}

// Compile builds a Pattern from raw pattern text.
func Compile(pattern string, cfg Config) (*Pattern, error) {
	classes := charclass.NewStore()
	lx := lexer.New(pattern, lexer.Config{Syntax: cfg.Syntax, ICase: cfg.ICase, Classes: classes})
	p := &btParser{lex: lx, classes: classes}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if p.cur.Tok != token.END {
		return nil, reerr.New(reerr.UnbalancedParen, pattern)
	}
	return &Pattern{root: root, ngroups: p.ngroups, classes: classes, icase: cfg.ICase}, nil
}

// Find returns the leftmost-longest match starting at or after `from`, or
// ok=false if the pattern has no match in buf[from:].
func (p *Pattern) Find(buf []byte, from int) (start, end int, ok bool) {
	for s := from; s <= len(buf); s++ {
		m := &matcher{buf: buf, classes: p.classes, groups: make([][2]int, p.ngroups+1), icase: p.icase}
		best := -1
		m.match(p.root, s, func(pos int) bool {
			if pos > best {
				best = pos
			}
			return false // keep searching for the longest continuation
		})
		if best >= 0 {
			return s, best, true
		}
	}
	return 0, 0, false
}

// --- parse tree ---

type nodeKind int

const (
	nLit nodeKind = iota
	nClass
	nAny
	nConcat
	nAlt
	nStar
	nPlus
	nQues
	nGroup
	nBackref
	nBegline
	nEndline
	nBegword
	nEndword
	nLimword
	nNotlimword
	nEmpty
)

type node struct {
	kind     nodeKind
	b        byte
	class    int
	children []node // nConcat, nAlt (2+); nStar/nPlus/nQues/nGroup (1)
	group    int    // nGroup, nBackref
}

type btParser struct {
	lex     *lexer.Lexer
	cur     lexer.Result
	classes *charclass.Store
	ngroups int
}

func (p *btParser) advance() error {
	r, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = r
	return nil
}

func (p *btParser) parseAlt() (node, error) {
	left, err := p.parseConcat()
	if err != nil {
		return node{}, err
	}
	for p.cur.Tok == token.OR {
		if err := p.advance(); err != nil {
			return node{}, err
		}
		right, err := p.parseConcat()
		if err != nil {
			return node{}, err
		}
		left = node{kind: nAlt, children: []node{left, right}}
	}
	return left, nil
}

func (p *btParser) branchEnd() bool {
	switch p.cur.Tok {
	case token.END, token.OR, token.RPAREN:
		return true
	}
	return false
}

func (p *btParser) parseConcat() (node, error) {
	if p.branchEnd() {
		return node{kind: nEmpty}, nil
	}
	left, err := p.parseClosure()
	if err != nil {
		return node{}, err
	}
	for !p.branchEnd() {
		right, err := p.parseClosure()
		if err != nil {
			return node{}, err
		}
		left = node{kind: nConcat, children: []node{left, right}}
	}
	return left, nil
}

func (p *btParser) parseClosure() (node, error) {
	a, err := p.parseAtom()
	if err != nil {
		return node{}, err
	}
	for {
		switch p.cur.Tok {
		case token.STAR:
			a = node{kind: nStar, children: []node{a}}
		case token.PLUS:
			a = node{kind: nPlus, children: []node{a}}
		case token.QMARK:
			a = node{kind: nQues, children: []node{a}}
		case token.REPMN:
			min, max := p.cur.IntervalMin, p.cur.IntervalMax
			if err := p.advance(); err != nil {
				return node{}, err
			}
			a = expandInterval(a, min, max)
			continue
		default:
			return a, nil
		}
		if err := p.advance(); err != nil {
			return node{}, err
		}
	}
}

func expandInterval(a node, min, max int) node {
	var out node = node{kind: nEmpty}
	n := 0
	push := func(x node) {
		if n == 0 {
			out = x
		} else {
			out = node{kind: nConcat, children: []node{out, x}}
		}
		n++
	}
	for i := 0; i < min; i++ {
		push(a)
	}
	switch {
	case max < 0:
		push(node{kind: nStar, children: []node{a}})
	default:
		for i := 0; i < max-min; i++ {
			push(node{kind: nQues, children: []node{a}})
		}
	}
	return out
}

func (p *btParser) parseAtom() (node, error) {
	switch {
	case p.cur.Tok == token.LPAREN:
		p.ngroups++
		idx := p.ngroups
		if err := p.advance(); err != nil {
			return node{}, err
		}
		inner, err := p.parseAlt()
		if err != nil {
			return node{}, err
		}
		if p.cur.Tok != token.RPAREN {
			return node{}, reerr.New(reerr.UnbalancedParen, "")
		}
		if err := p.advance(); err != nil {
			return node{}, err
		}
		return node{kind: nGroup, group: idx, children: []node{inner}}, nil

	case p.cur.Tok == token.BACKREF:
		g := p.cur.BackRef
		if err := p.advance(); err != nil {
			return node{}, err
		}
		return node{kind: nBackref, group: g}, nil

	case p.cur.Tok == token.ANYCHAR:
		if err := p.advance(); err != nil {
			return node{}, err
		}
		return node{kind: nAny}, nil

	case p.cur.Tok == token.BEGLINE:
		p.advance()
		return node{kind: nBegline}, nil
	case p.cur.Tok == token.ENDLINE:
		p.advance()
		return node{kind: nEndline}, nil
	case p.cur.Tok == token.BEGWORD:
		p.advance()
		return node{kind: nBegword}, nil
	case p.cur.Tok == token.ENDWORD:
		p.advance()
		return node{kind: nEndword}, nil
	case p.cur.Tok == token.LIMWORD:
		p.advance()
		return node{kind: nLimword}, nil
	case p.cur.Tok == token.NOTLIMWORD:
		p.advance()
		return node{kind: nNotlimword}, nil

	case p.cur.Tok.IsCharClass():
		n := node{kind: nClass, class: p.cur.Tok.ClassIndex()}
		return n, p.advance()

	case p.cur.Tok.IsByte():
		n := node{kind: nLit, b: byte(p.cur.Tok)}
		return n, p.advance()

	default:
		return node{kind: nEmpty}, nil
	}
}

// --- matching ---

type matcher struct {
	buf     []byte
	classes *charclass.Store
	groups  [][2]int
	icase   bool // back-references compare ASCII letters case-insensitively
}

// match attempts to match n starting at pos, invoking k with every
// position it could continue from. k returns true to stop early.
func (m *matcher) match(n node, pos int, k func(int) bool) bool {
	switch n.kind {
	case nEmpty:
		return k(pos)
	case nLit:
		if pos < len(m.buf) && m.buf[pos] == n.b {
			return k(pos + 1)
		}
		return false
	case nClass:
		if pos < len(m.buf) && m.classes.Test(n.class, m.buf[pos]) {
			return k(pos + 1)
		}
		return false
	case nAny:
		if pos < len(m.buf) && m.buf[pos] != '\n' {
			return k(pos + 1)
		}
		return false
	case nBegline:
		if pos == 0 || m.buf[pos-1] == '\n' {
			return k(pos)
		}
		return false
	case nEndline:
		if pos == len(m.buf) || m.buf[pos] == '\n' {
			return k(pos)
		}
		return false
	case nBegword:
		if m.wordAt(pos) && !m.wordAt(pos-1) {
			return k(pos)
		}
		return false
	case nEndword:
		if !m.wordAt(pos) && m.wordAt(pos-1) {
			return k(pos)
		}
		return false
	case nLimword:
		if m.wordAt(pos) != m.wordAt(pos-1) {
			return k(pos)
		}
		return false
	case nNotlimword:
		if m.wordAt(pos) == m.wordAt(pos-1) {
			return k(pos)
		}
		return false
	case nBackref:
		g := m.groups[n.group]
		if g[0] < 0 {
			return k(pos) // unmatched group: treated as empty, glibc-style
		}
		text := m.buf[g[0]:g[1]]
		if pos+len(text) > len(m.buf) {
			return false
		}
		for i, c := range text {
			d := m.buf[pos+i]
			if d == c {
				continue
			}
			if !m.icase || d|0x20 != c|0x20 || d|0x20 < 'a' || d|0x20 > 'z' {
				return false
			}
		}
		return k(pos + len(text))
	case nConcat:
		left, right := n.children[0], n.children[1]
		return m.match(left, pos, func(p int) bool {
			return m.match(right, p, k)
		})
	case nAlt:
		if m.match(n.children[0], pos, k) {
			return true
		}
		return m.match(n.children[1], pos, k)
	case nGroup:
		savedStart, savedEnd := -1, -1
		if m.groups[n.group][0] != 0 || m.groups[n.group][1] != 0 {
			savedStart, savedEnd = m.groups[n.group][0], m.groups[n.group][1]
		}
		ok := m.match(n.children[0], pos, func(p int) bool {
			m.groups[n.group] = [2]int{pos, p}
			return k(p)
		})
		if !ok {
			m.groups[n.group] = [2]int{savedStart, savedEnd}
		}
		return ok
	case nQues:
		if m.match(n.children[0], pos, k) {
			return true
		}
		return k(pos)
	case nStar:
		return m.matchStar(n.children[0], pos, k, pos)
	case nPlus:
		return m.match(n.children[0], pos, func(p int) bool {
			return m.matchStar(n.children[0], p, k, p)
		})
	default:
		return k(pos)
	}
}

// matchStar greedily repeats child, refusing to loop on a zero-width
// repetition (guarded by lastPos).
func (m *matcher) matchStar(child node, pos int, k func(int) bool, lastPos int) bool {
	matched := m.match(child, pos, func(p int) bool {
		if p == pos {
			return false // zero-width repetition: stop, fall through to k
		}
		return m.matchStar(child, p, k, p)
	})
	if matched {
		return true
	}
	return k(pos)
}

func (m *matcher) wordAt(pos int) bool {
	if pos < 0 || pos >= len(m.buf) {
		return false
	}
	c := m.buf[pos]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
