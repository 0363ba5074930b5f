// Package parser implements the recursive-descent parser that turns a lex
// token stream into the postfix token array described in spec.md §3/§4.C.
//
//	regexp := branch ('|' branch)*
//	branch := closure closure*
//	closure := atom (? | * | + | {m,n})*
//	atom := CHAR | WCHAR | ANYCHAR | MBCSET | CSET | BACKREF
//	      | BEGLINE | ENDLINE | BEGWORD | ENDWORD | LIMWORD | NOTLIMWORD
//	      | '(' regexp ')' | ε
//
// `{m,n}` is expanded by literally duplicating the preceding subexpression's
// postfix slice, matching dfa.c's copytoks; a UTF-8 locale's `.` is lowered
// to the fixed 29-token byte-range subgraph from spec.md §4.C verbatim
// rather than re-derived.
package parser

import (
	"unicode/utf8"

	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/internal/lexer"
	"github.com/coregx/coregex/internal/token"
	"github.com/coregx/coregex/reerr"
	"github.com/coregx/coregex/resyntax"
)

// BackRefInfo records a BACKREF leaf's postfix position and which group it
// refers to (-1 for a generic escape-hatch, e.g. a locale-dependent bracket
// construct the DFA cannot evaluate).
type BackRefInfo struct {
	Position int32
	Group    int
}

// Parsed is the parser's output: the postfix token array, the parallel
// multibyte-property array, the char-class table it was built against, and
// bookkeeping the analyzer and DFA builder need.
type Parsed struct {
	Postfix   []token.Token
	MBProps   []token.MBProp
	Classes   *charclass.Store
	MaxDepth  int
	BackRefs  []BackRefInfo
	HasBacked bool // true if any BACKREF leaf is present
}

// Config bundles parse-time parameters.
type Config struct {
	Syntax  resyntax.Syntax
	ICase   bool
	UTF8    bool
	Warn    func(string)
	Posixly bool
}

// Parser drives the lexer and assembles the postfix array.
type Parser struct {
	lex     *lexer.Lexer
	cur     lexer.Result
	classes *charclass.Store
	cfg     Config

	postfix  []token.Token
	mbprops  []token.MBProp
	depth    int
	maxDepth int
	backrefs []BackRefInfo
}

// Parse compiles pattern into a Parsed postfix program.
func Parse(pattern string, cfg Config) (*Parsed, error) {
	classes := charclass.NewStore()
	lx := lexer.New(pattern, lexer.Config{
		Syntax:  cfg.Syntax,
		ICase:   cfg.ICase,
		UTF8:    cfg.UTF8,
		Classes: classes,
		Warn:    cfg.Warn,
		Posixly: cfg.Posixly,
	})
	p := &Parser{lex: lx, classes: classes, cfg: cfg}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.parseRegexp(); err != nil {
		return nil, err
	}
	if p.cur.Tok != token.END {
		return nil, reerr.New(reerr.UnbalancedParen, pattern)
	}
	return &Parsed{
		Postfix:   p.postfix,
		MBProps:   p.mbprops,
		Classes:   classes,
		MaxDepth:  p.maxDepth,
		BackRefs:  p.backrefs,
		HasBacked: len(p.backrefs) > 0,
	}, nil
}

func (p *Parser) advance() error {
	r, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = r
	return nil
}

// --- postfix emission primitives ---

func (p *Parser) pushLeaf(t token.Token, mb token.MBProp) {
	p.postfix = append(p.postfix, t)
	p.mbprops = append(p.mbprops, mb)
	p.depth++
	if p.depth > p.maxDepth {
		p.maxDepth = p.depth
	}
}

func (p *Parser) pushOp(t token.Token) {
	p.postfix = append(p.postfix, t)
	p.mbprops = append(p.mbprops, 0)
	switch t {
	case token.CAT, token.OR:
		p.depth--
	}
}

func (p *Parser) pushEmpty() { p.pushLeaf(token.EMPTY, 0) }

// --- grammar ---

func (p *Parser) parseRegexp() error {
	if err := p.parseBranch(); err != nil {
		return err
	}
	for p.cur.Tok == token.OR {
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.parseBranch(); err != nil {
			return err
		}
		p.pushOp(token.OR)
	}
	return nil
}

func (p *Parser) branchEnd() bool {
	switch p.cur.Tok {
	case token.END, token.OR, token.RPAREN:
		return true
	default:
		return false
	}
}

func (p *Parser) parseBranch() error {
	if p.branchEnd() {
		p.pushEmpty()
		return nil
	}
	if err := p.parseClosure(); err != nil {
		return err
	}
	for !p.branchEnd() {
		if err := p.parseClosure(); err != nil {
			return err
		}
		p.pushOp(token.CAT)
	}
	return nil
}

func (p *Parser) parseClosure() error {
	start := len(p.postfix)
	if err := p.parseAtom(); err != nil {
		return err
	}
	for {
		switch p.cur.Tok {
		case token.STAR:
			p.pushOp(token.STAR)
			if err := p.advance(); err != nil {
				return err
			}
		case token.PLUS:
			p.pushOp(token.PLUS)
			if err := p.advance(); err != nil {
				return err
			}
		case token.QMARK:
			p.pushOp(token.QMARK)
			if err := p.advance(); err != nil {
				return err
			}
		case token.REPMN:
			min, max := p.cur.IntervalMin, p.cur.IntervalMax
			if err := p.advance(); err != nil {
				return err
			}
			p.applyInterval(start, min, max)
		default:
			return nil
		}
	}
}

func (p *Parser) parseAtom() error {
	switch {
	case p.cur.Tok == token.LPAREN:
		if err := p.advance(); err != nil {
			return err
		}
		if err := p.parseRegexp(); err != nil {
			return err
		}
		if p.cur.Tok != token.RPAREN {
			return reerr.New(reerr.UnbalancedParen, "")
		}
		return p.advance()

	case p.cur.Tok == token.BACKREF:
		p.backrefs = append(p.backrefs, BackRefInfo{Position: int32(len(p.postfix)), Group: p.cur.BackRef})
		p.pushLeaf(token.BACKREF, 0)
		return p.advance()

	case p.cur.Tok == token.ANYCHAR:
		if p.cfg.UTF8 {
			p.emitUTF8Any()
		} else {
			p.pushLeaf(token.ANYCHAR, 0)
		}
		return p.advance()

	case p.cur.Tok == token.WCHAR:
		p.emitWideChar(p.cur.Rune)
		return p.advance()

	case p.cur.Tok == token.BEGLINE, p.cur.Tok == token.ENDLINE,
		p.cur.Tok == token.BEGWORD, p.cur.Tok == token.ENDWORD,
		p.cur.Tok == token.LIMWORD, p.cur.Tok == token.NOTLIMWORD:
		p.pushLeaf(p.cur.Tok, 0)
		return p.advance()

	case p.cur.Tok.IsByte() || p.cur.Tok.IsCharClass():
		p.pushLeaf(p.cur.Tok, 0)
		return p.advance()

	default:
		p.pushEmpty()
		return nil
	}
}

// emitWideChar lowers a non-ASCII literal rune (decoded by the lexer in a
// multibyte, non-UTF-8-optimized locale) into a concatenation of its byte
// sequence, each byte position tagged with the 2-bit multibyte property
// (bit0 = first byte, bit1 = last byte) per spec.md §4.C / §9.
func (p *Parser) emitWideChar(r rune) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	for i := 0; i < n; i++ {
		var mb token.MBProp
		if i == 0 {
			mb |= token.MBFirst
		}
		if i == n-1 {
			mb |= token.MBLast
		}
		p.pushLeaf(token.Token(buf[i]), mb)
	}
	for i := 1; i < n; i++ {
		p.pushOp(token.CAT)
	}
}

// applyInterval expands the `{min,max}` just parsed by duplicating the
// subexpression that starts at postfix index `start` (and runs to the
// current end), per spec.md §4.C. max == -1 means unbounded ("{min,}").
func (p *Parser) applyInterval(start, min, max int) {
	sub := append([]token.Token(nil), p.postfix[start:]...)
	subMB := append([]token.MBProp(nil), p.mbprops[start:]...)
	p.postfix = p.postfix[:start]
	p.mbprops = p.mbprops[:start]
	p.depth -= countLeaves(subMB) // remove the original copy's contribution; re-added below
	if p.depth < 0 {
		p.depth = 0
	}

	pushCopy := func() {
		p.postfix = append(p.postfix, sub...)
		p.mbprops = append(p.mbprops, subMB...)
		p.depth += countLeaves(subMB)
		if p.depth > p.maxDepth {
			p.maxDepth = p.depth
		}
	}

	count := 0
	addMandatory := func() {
		pushCopy()
		if count > 0 {
			p.pushOp(token.CAT)
		}
		count++
	}
	addOptional := func() {
		pushCopy()
		p.pushOp(token.QMARK)
		if count > 0 {
			p.pushOp(token.CAT)
		}
		count++
	}

	switch {
	case max == min:
		if min == 0 {
			p.pushEmpty()
			return
		}
		for i := 0; i < min; i++ {
			addMandatory()
		}
	case max < 0 && min == 0:
		addMandatory()
		p.pushOp(token.STAR)
	case max < 0:
		for i := 0; i < min-1; i++ {
			addMandatory()
		}
		pushCopy()
		p.pushOp(token.PLUS)
		if count > 0 {
			p.pushOp(token.CAT)
		}
	default:
		for i := 0; i < min; i++ {
			addMandatory()
		}
		for i := 0; i < max-min; i++ {
			addOptional()
		}
	}
}

// countLeaves returns the net stack-depth contribution of a subtree for
// maxDepth bookkeeping while duplicating subtrees for {m,n}: a freshly
// parsed, self-contained subexpression always nets to exactly one stack
// slot, so any non-empty slice counts as 1 and an empty one as 0.
func countLeaves(mb []token.MBProp) int {
	if len(mb) == 0 {
		return 0
	}
	return 1
}
