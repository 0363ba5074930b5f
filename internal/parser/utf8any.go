package parser

import (
	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/internal/token"
)

// The UTF-8 byte-range table from spec.md §4.C, verbatim — do not re-derive.
//
//	A 00-7f   B c2-df   C 80-bf   D e0
//	E a0-bf   F e1-ec+ee-ef       G ed
//	H 80-9f   I f0      J 90-bf   K f1-f3
//	L f4      M 80-8f
func utf8AnyClasses(store *charclass.Store) (a, b, c, d, e, f, g, h, i, j, k, l, m token.Token) {
	mk := func(ranges ...[2]byte) token.Token {
		var s charclass.Set
		for _, r := range ranges {
			s.AddRange(r[0], r[1])
		}
		return token.FromClassIndex(store.Intern(s))
	}
	a = mk([2]byte{0x00, 0x7f})
	b = mk([2]byte{0xc2, 0xdf})
	c = mk([2]byte{0x80, 0xbf})
	d = mk([2]byte{0xe0, 0xe0})
	e = mk([2]byte{0xa0, 0xbf})
	f = mk([2]byte{0xe1, 0xec}, [2]byte{0xee, 0xef})
	g = mk([2]byte{0xed, 0xed})
	h = mk([2]byte{0x80, 0x9f})
	i = mk([2]byte{0xf0, 0xf0})
	j = mk([2]byte{0x90, 0xbf})
	k = mk([2]byte{0xf1, 0xf3})
	l = mk([2]byte{0xf4, 0xf4})
	m = mk([2]byte{0x80, 0x8f})
	return
}

// emitUTF8Any lowers `.` in a UTF-8 locale to the fixed subgraph
// `A|(B|DE|GH|(F|IJ|LM|KC)C)C`, the regex that matches exactly one
// well-formed UTF-8 encoded code point, byte by byte. Each leaf is tagged
// with its multibyte role so the DFA builder can track partially-consumed
// multibyte characters (spec.md §4.E step 7/8, §9 "multibyte_prop").
func (p *Parser) emitUTF8Any() {
	a, b, c, d, e, f, g, h, i, j, k, l, m := utf8AnyClasses(p.classes)

	leaf := func(t token.Token, mb token.MBProp) { p.pushLeaf(t, mb) }
	cat := func() { p.pushOp(token.CAT) }
	or := func() { p.pushOp(token.OR) }

	// Z = F | IJ | LM | KC
	leaf(f, token.MBFirst)
	leaf(i, token.MBFirst)
	leaf(j, 0)
	cat()
	or()
	leaf(l, token.MBFirst)
	leaf(m, 0)
	cat()
	or()
	leaf(k, token.MBFirst)
	leaf(c, 0)
	cat()
	or()

	// Y's 4th branch: Z . C
	leaf(c, 0)
	cat()

	// Y = B | D E | G H | (Z C)
	leaf(b, token.MBFirst)
	leaf(d, token.MBFirst)
	leaf(e, 0)
	cat()
	or()
	leaf(g, token.MBFirst)
	leaf(h, 0)
	cat()
	or()
	or() // combine with Z·C computed above

	// Top = A | (Y . C)
	leaf(c, token.MBLast)
	cat()
	leaf(a, token.MBFirst|token.MBLast)
	or()
}
