package literal

import (
	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/internal/token"
)

// Must is the must-string extractor's output for one postfix subtree:
// a guaranteed prefix, suffix, exact match, and the set of substrings
// known to appear anywhere in any match, per spec.md §4.G's table.
type Must struct {
	Left, Right, Is string
	In              []string
	Begline, Endline bool
}

// ExtractMust runs the bottom-up must-string analysis over a parsed
// postfix array (spec.md §4.G), adapted from this package's stdlib-
// regexp-driven extractor to walk the position-automaton's own postfix
// token stream instead of a regexp/syntax.Regexp tree. The result is the
// longest string in the root's `in` list, used by internal/compile to
// decide whether a KWset prefilter is worthwhile.
func ExtractMust(postfix []token.Token, classes *charclass.Store) (longest string, m Must) {
	var stack []Must
	pop := func() Must {
		n := len(stack) - 1
		v := stack[n]
		stack = stack[:n]
		return v
	}

	for _, t := range postfix {
		switch {
		case t.IsByte():
			c := string(byte(t))
			stack = append(stack, Must{Left: c, Right: c, Is: c, In: []string{c}})

		case t.IsCharClass():
			if b, ok := classes.Get(t.ClassIndex()).Singleton(); ok {
				c := string(b)
				stack = append(stack, Must{Left: c, Right: c, Is: c, In: []string{c}})
				continue
			}
			stack = append(stack, Must{})

		case t == token.ANYCHAR, t == token.MBCSET, t == token.BACKREF, t == token.EMPTY:
			stack = append(stack, Must{})

		case t == token.BEGLINE:
			stack = append(stack, Must{Begline: true})
		case t == token.ENDLINE:
			stack = append(stack, Must{Endline: true})
		case t == token.BEGWORD, t == token.ENDWORD, t == token.LIMWORD, t == token.NOTLIMWORD:
			stack = append(stack, Must{})

		case t == token.STAR, t == token.QMARK:
			pop()
			stack = append(stack, Must{})

		case t == token.PLUS:
			p := pop()
			stack = append(stack, Must{Left: p.Left, Right: p.Right, In: p.In})

		case t == token.CAT:
			q := pop()
			p := pop()
			stack = append(stack, catMust(p, q))

		case t == token.OR:
			q := pop()
			p := pop()
			stack = append(stack, orMust(p, q))

		default:
			stack = append(stack, Must{})
		}
	}

	if len(stack) == 0 {
		return "", Must{}
	}
	root := stack[len(stack)-1]
	return longestOf(root.In), root
}

// catMust concatenates two must-string summaries, mirroring dfa.c's
// dfamust CAT case verbatim: `is`/begline/endline survive only when the
// left side is either already exact or pins the start of line, and the
// right side is either already exact or pins the end of line — so an
// anchored literal like `^abc` still comes out with Is="abc",
// Begline=true; internal/compile reads that Begline flag and keeps DFA
// verification of the anchor instead of the exact-match fast path.
func catMust(p, q Must) Must {
	out := Must{}

	if p.Is != "" {
		out.Left = p.Is + q.Left
	} else {
		out.Left = p.Left
	}

	if q.Is != "" {
		out.Right = p.Right + q.Right
	} else {
		out.Right = q.Right
	}

	if (p.Is != "" || p.Begline) && (q.Is != "" || q.Endline) {
		out.Is = p.Is + q.Is
		out.Begline = p.Begline
		out.Endline = q.Endline
	}

	out.In = append(append([]string{}, p.In...), q.In...)
	if p.Right != "" && q.Left != "" {
		out.In = append(out.In, p.Right+q.Left)
	}
	return out
}

// orMust merges two must-string summaries across an alternation,
// mirroring dfa.c's dfamust OR case: an exact match and its begline/
// endline flags survive only when both branches are identically exact.
func orMust(p, q Must) Must {
	out := Must{
		Left:  mustCommonPrefix(p.Left, q.Left),
		Right: mustCommonSuffix(p.Right, q.Right),
		In:    commonSubstrings(p.In, q.In),
	}
	if p.Is == q.Is {
		out.Is = p.Is
		out.Begline = p.Begline && q.Begline
		out.Endline = p.Endline && q.Endline
	}
	return out
}

func mustCommonPrefix(a, b string) string {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n]
}

func mustCommonSuffix(a, b string) string {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return a[len(a)-n:]
}

func commonSubstrings(a, b []string) []string {
	var out []string
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
			}
		}
	}
	return out
}

func longestOf(ss []string) string {
	best := ""
	for _, s := range ss {
		if len(s) > len(best) {
			best = s
		}
	}
	return best
}
