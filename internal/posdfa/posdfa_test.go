package posdfa

import (
	"testing"

	"github.com/coregx/coregex/internal/analyzer"
	"github.com/coregx/coregex/internal/parser"
	"github.com/coregx/coregex/resyntax"
)

func build(t *testing.T, pattern string) *Builder {
	t.Helper()
	p, err := parser.Parse(pattern, parser.Config{Syntax: resyntax.Decode(resyntax.REExtended)})
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	an := analyzer.Analyze(p.Postfix, p.MBProps, p.Classes)
	return NewBuilder(an, p.Classes, false, false)
}

func TestExecuteShortestUnanchoredSearch(t *testing.T) {
	b := build(t, "bc")
	out := b.ExecuteShortest([]byte("abcabc"), 0)
	if !out.Matched || out.Start != 1 || out.End != 3 {
		t.Fatalf("ExecuteShortest = %+v, want Start=1 End=3", out)
	}
}

func TestExecuteShortestRestartsPastDeadEnd(t *testing.T) {
	// The first byte 'x' can never start a match of "bc", so the executor
	// must restart past it rather than failing outright.
	b := build(t, "bc")
	out := b.ExecuteShortest([]byte("xxxbc"), 0)
	if !out.Matched || out.Start != 3 {
		t.Fatalf("ExecuteShortest = %+v, want Start=3", out)
	}
}

func TestExecuteShortestNoMatch(t *testing.T) {
	b := build(t, "zzz")
	out := b.ExecuteShortest([]byte("abcabc"), 0)
	if out.Matched {
		t.Fatalf("ExecuteShortest = %+v, want no match", out)
	}
}

func TestExecuteAnchorBegline(t *testing.T) {
	b := build(t, "^abc")
	if out := b.ExecuteShortest([]byte("xabc\n"), 0); out.Matched {
		t.Fatalf("'^abc' should not match mid-line, got %+v", out)
	}
	out := b.ExecuteShortest([]byte("xyz\nabc\n"), 0)
	if !out.Matched || out.Start != 4 {
		t.Fatalf("'^abc' vs 'xyz\\nabc\\n' = %+v, want Start=4", out)
	}
}

func TestExecuteLongestVsShortest(t *testing.T) {
	b := build(t, "a+")
	shortest := b.ExecuteShortest([]byte("aaa"), 0)
	if !shortest.Matched || shortest.End-shortest.Start != 1 {
		t.Fatalf("ExecuteShortest on 'a+' vs 'aaa' = %+v, want a single-byte match", shortest)
	}
	longest := b.ExecuteLongest([]byte("aaa"), 0)
	if !longest.Matched || longest.End-longest.Start != 3 {
		t.Fatalf("ExecuteLongest on 'a+' vs 'aaa' = %+v, want a 3-byte match", longest)
	}
}

func TestExecuteEmptyPatternMatchesEmptyString(t *testing.T) {
	b := build(t, "")
	out := b.ExecuteShortest([]byte("xyz"), 0)
	if !out.Matched || out.Start != 0 || out.End != 0 {
		t.Fatalf("empty pattern = %+v, want a zero-width match at 0", out)
	}
}
