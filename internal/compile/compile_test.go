package compile

import (
	"testing"

	"github.com/coregx/coregex/resyntax"
)

func TestCompileLiteralMustString(t *testing.T) {
	pat, err := Compile([]string{"hello"}, resyntax.REExtended, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if pat.KW == nil {
		t.Fatal("a plain literal pattern should get a KWset")
	}
	if !pat.KWExact {
		t.Error("a bare literal with no anchors should be KWExact")
	}
}

func TestCompileAnchoredPatternIsNotKWExact(t *testing.T) {
	pat, err := Compile([]string{"^abc"}, resyntax.REExtended, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if pat.KW == nil {
		t.Fatal("expected a KWset built from the 'abc' must-string")
	}
	if pat.KWExact {
		t.Error("'^abc' must not be KWExact: the anchor still needs DFA verification")
	}
}

func TestCompileMultiplePatternsOred(t *testing.T) {
	pat, err := Compile([]string{"foo", "bar"}, resyntax.REExtended, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if pat.DFA == nil {
		t.Fatal("expected a DFA for a multi-pattern OR")
	}
	if out := pat.DFA.ExecuteShortest([]byte("xxbarxx"), 0); !out.Matched {
		t.Error("multi-pattern compile should match 'bar'")
	}
	if out := pat.DFA.ExecuteShortest([]byte("xxfooxx"), 0); !out.Matched {
		t.Error("multi-pattern compile should match 'foo'")
	}
}

func TestCompileLiteralOption(t *testing.T) {
	pat, err := Compile([]string{"a.b"}, resyntax.REExtended, Options{Literal: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !pat.IsLiteral {
		t.Fatal("Options.Literal should produce IsLiteral=true")
	}
	if _, ok := pat.KW.Search([]byte("xxa.bxx"), 0); !ok {
		t.Error("literal mode should match 'a.b' verbatim, not as a regex")
	}
	if _, ok := pat.KW.Search([]byte("xxaXbxx"), 0); ok {
		t.Error("literal mode must not treat '.' as a wildcard")
	}
}

func TestCompileBackreferencePattern(t *testing.T) {
	pat, err := Compile([]string{`\(ab\)\1`}, resyntax.REBasic, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !pat.HasBackref || pat.Backtrack == nil {
		t.Fatal("a pattern with a backreference should set HasBackref and compile a Backtrack matcher")
	}
}

func TestCompileNoPatternsErrors(t *testing.T) {
	if _, err := Compile(nil, resyntax.REExtended, Options{}); err == nil {
		t.Error("Compile with zero patterns should error")
	}
}
