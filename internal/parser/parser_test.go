package parser

import (
	"testing"

	"github.com/coregx/coregex/internal/token"
	"github.com/coregx/coregex/reerr"
	"github.com/coregx/coregex/resyntax"
)

func mustParse(t *testing.T, pattern string, cfg Config) *Parsed {
	t.Helper()
	p, err := Parse(pattern, cfg)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	return p
}

func TestParseLiteral(t *testing.T) {
	p := mustParse(t, "abc", Config{Syntax: resyntax.Decode(resyntax.REExtended)})
	if len(p.Postfix) == 0 {
		t.Fatal("expected a non-empty postfix program")
	}
	if p.HasBacked {
		t.Error("plain literal should not report backreferences")
	}
	// "abc" -> a b CAT c CAT
	want := []token.Token{'a', 'b', token.CAT, 'c', token.CAT}
	if len(p.Postfix) != len(want) {
		t.Fatalf("Postfix = %v, want shape of length %d", p.Postfix, len(want))
	}
	for i, tok := range want {
		if p.Postfix[i] != tok {
			t.Errorf("Postfix[%d] = %v, want %v", i, p.Postfix[i], tok)
		}
	}
}

func TestParseAlternation(t *testing.T) {
	p := mustParse(t, "a|b", Config{Syntax: resyntax.Decode(resyntax.REExtended)})
	last := p.Postfix[len(p.Postfix)-1]
	if last != token.OR {
		t.Errorf("last postfix token = %v, want OR", last)
	}
}

func TestParseStarPlusQmark(t *testing.T) {
	for _, tt := range []struct {
		pattern string
		op      token.Token
	}{
		{"a*", token.STAR},
		{"a+", token.PLUS},
		{"a?", token.QMARK},
	} {
		p := mustParse(t, tt.pattern, Config{Syntax: resyntax.Decode(resyntax.REExtended)})
		last := p.Postfix[len(p.Postfix)-1]
		if last != tt.op {
			t.Errorf("%q: last token = %v, want %v", tt.pattern, last, tt.op)
		}
	}
}

func TestParseInterval(t *testing.T) {
	// a{2,4} duplicates 'a' four times: 2 mandatory plus 2 optional copies.
	p := mustParse(t, "a{2,4}", Config{Syntax: resyntax.Decode(resyntax.REExtended)})
	count := 0
	for _, tok := range p.Postfix {
		if tok == token.Token('a') {
			count++
		}
	}
	if count != 4 {
		t.Errorf("a{2,4} should expand to 4 copies of 'a', got %d", count)
	}
}

func TestParseBracketExpression(t *testing.T) {
	p := mustParse(t, "[a-c]", Config{Syntax: resyntax.Decode(resyntax.REExtended)})
	if p.Classes.Len() == 0 {
		t.Fatal("expected an interned character class for [a-c]")
	}
	found := false
	for _, tok := range p.Postfix {
		if tok.IsCharClass() {
			found = true
			if !p.Classes.Test(tok.ClassIndex(), 'b') {
				t.Error("[a-c] class should contain 'b'")
			}
		}
	}
	if !found {
		t.Fatal("no CSET token emitted for [a-c]")
	}
}

func TestParseBackreference(t *testing.T) {
	cfg := Config{Syntax: resyntax.Decode(resyntax.REBasic)}
	p := mustParse(t, `\(a\)\1`, cfg)
	if !p.HasBacked {
		t.Error(`\(a\)\1 should report HasBacked=true`)
	}
	if len(p.BackRefs) != 1 {
		t.Fatalf("BackRefs = %v, want 1 entry", p.BackRefs)
	}
}

func TestParseUnbalancedParen(t *testing.T) {
	_, err := Parse("(abc", Config{Syntax: resyntax.Decode(resyntax.REExtended)})
	if err == nil {
		t.Fatal("expected an error for unbalanced paren")
	}
	rerr, ok := err.(*reerr.Error)
	if !ok {
		t.Fatalf("error type = %T, want *reerr.Error", err)
	}
	if rerr.Code != reerr.UnbalancedParen {
		t.Errorf("Code = %v, want UnbalancedParen", rerr.Code)
	}
}

func TestParseEmptyPattern(t *testing.T) {
	p := mustParse(t, "", Config{Syntax: resyntax.Decode(resyntax.REExtended)})
	if len(p.Postfix) != 1 || p.Postfix[0] != token.EMPTY {
		t.Errorf("empty pattern postfix = %v, want [EMPTY]", p.Postfix)
	}
}

func TestParseUTF8AnyChar(t *testing.T) {
	p := mustParse(t, ".", Config{Syntax: resyntax.Decode(resyntax.REExtended), UTF8: true})
	// The UTF-8 "." lowering emits many tokens (the fixed subgraph), not a
	// single ANYCHAR leaf.
	if len(p.Postfix) < 10 {
		t.Errorf("UTF-8 any-char lowering should emit the full subgraph, got %d tokens", len(p.Postfix))
	}
	for _, tok := range p.Postfix {
		if tok == token.ANYCHAR {
			t.Error("UTF8 mode should never emit a bare ANYCHAR token")
		}
	}
}

func TestParseNonUTF8AnyChar(t *testing.T) {
	p := mustParse(t, ".", Config{Syntax: resyntax.Decode(resyntax.REExtended), UTF8: false})
	if len(p.Postfix) != 1 || p.Postfix[0] != token.ANYCHAR {
		t.Errorf("non-UTF8 '.' postfix = %v, want [ANYCHAR]", p.Postfix)
	}
}
