package coregex

import (
	"errors"
	"testing"

	"github.com/coregx/coregex/reerr"
)

// TestCompileErrorTaxonomy checks that Compile reports the stable
// enumerated codes from spec.md §6's CompileError taxonomy.
func TestCompileErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		code    reerr.Code
	}{
		{"unbalanced paren", "(abc", reerr.UnbalancedParen},
		{"unbalanced bracket", "[abc", reerr.UnbalancedBracket},
		{"trailing backslash", `abc\`, reerr.UnfinishedEscape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern)
			if err == nil {
				t.Fatalf("Compile(%q): expected error, got nil", tt.pattern)
			}
			var rerr *reerr.Error
			if !errors.As(err, &rerr) {
				t.Fatalf("Compile(%q): error %v is not *reerr.Error", tt.pattern, err)
			}
			if rerr.Code != tt.code {
				t.Errorf("Compile(%q): code = %v, want %v", tt.pattern, rerr.Code, tt.code)
			}
		})
	}
}

// TestNoPartialCompile verifies spec.md §7: "the engine never partially
// compiles: on error the pattern object is not created."
func TestNoPartialCompile(t *testing.T) {
	re, err := Compile("(unterminated")
	if err == nil {
		t.Fatal("expected error")
	}
	if re != nil {
		t.Fatal("Compile returned a non-nil Regex alongside an error")
	}
}

// TestCompileErrorIsComparesByCode checks that errors.Is compares two
// *reerr.Error values by Code, ignoring Pattern/Detail, the way the
// teacher's dfa/lazy.DFAError.Is compares by Kind.
func TestCompileErrorIsComparesByCode(t *testing.T) {
	_, err := Compile("[abc")
	if err == nil {
		t.Fatal("expected an error")
	}
	sentinel := reerr.New(reerr.UnbalancedBracket, "")
	if !errors.Is(err, sentinel) {
		t.Errorf("errors.Is(%v, %v) = false, want true", err, sentinel)
	}
	if errors.Is(err, reerr.New(reerr.UnbalancedParen, "")) {
		t.Error("errors.Is matched a different Code")
	}
}
