package coregex

import "testing"

func TestWordBoundaryEscapes(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		buf     string
		offset  int
		size    int
	}{
		{"begword", `\<cat`, "concat cat dog\n", 7, 3},
		{"endword", `cat\>`, "catalog cat\n", 8, 3},
		{"anyboundary-b", `\bcat\b`, "scatter cat dog\n", 8, 3},
		{"notlimword-B", `c\Bat`, "scatter\n", 1, 3},
		{"gnu-word-class", `\w+`, "  hello_world! \n", 2, 11},
		{"gnu-space-class", `\s+`, "a   b\n", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := CompileWithConfig(tt.pattern, Config{})
			if err != nil {
				t.Fatalf("CompileWithConfig(%q): %v", tt.pattern, err)
			}
			m, ok := re.SearchLine([]byte(tt.buf), 0)
			if !ok {
				t.Fatalf("SearchLine(%q, %q): no match, want (%d,%d)", tt.pattern, tt.buf, tt.offset, tt.size)
			}
			if m.Offset != tt.offset || m.Size != tt.size {
				t.Errorf("SearchLine(%q, %q) = (%d,%d), want (%d,%d)", tt.pattern, tt.buf, m.Offset, m.Size, tt.offset, tt.size)
			}
		})
	}
}

// TestMatchWordsOption exercises the -w decoration internal/compile
// wraps the pattern in (spec.md §4.I step 3): a bare substring match
// inside a larger word must be rejected.
func TestMatchWordsOption(t *testing.T) {
	re, err := CompileWithConfig("cat", Config{MatchWords: true})
	if err != nil {
		t.Fatalf("CompileWithConfig: %v", err)
	}

	if _, ok := re.SearchLine([]byte("concatenate\n"), 0); ok {
		t.Error("matched cat inside concatenate with -w")
	}

	m, ok := re.SearchLine([]byte("a cat sat\n"), 0)
	if !ok || m.Offset != 2 || m.Size != 3 {
		t.Errorf("got (%v, %v), want (2,3,true)", m, ok)
	}
}

// TestMatchLinesOption exercises the -x decoration (spec.md §4.I step
// 3): the match must span the entire line.
func TestMatchLinesOption(t *testing.T) {
	re, err := CompileWithConfig("cat", Config{MatchLines: true})
	if err != nil {
		t.Fatalf("CompileWithConfig: %v", err)
	}

	if _, ok := re.SearchLine([]byte("a cat\n"), 0); ok {
		t.Error("matched cat as a non-full-line substring with -x")
	}

	m, ok := re.SearchLine([]byte("cat\n"), 0)
	if !ok || m.Offset != 0 || m.Size != 3 {
		t.Errorf("got (%v, %v), want (0,3,true)", m, ok)
	}
}
