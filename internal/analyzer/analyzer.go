// Package analyzer computes the position/follow sets the DFA state builder
// needs from a parsed postfix token array (spec.md §4.D).
//
// It follows the standard Aho-Ullman construction (nullable / firstpos /
// lastpos / follow) over the postfix array the way GNU grep's dfa.c
// `dfaanalyze` does it: a single left-to-right pass driven by an implicit
// evaluation stack, followed by an ε-closure expansion pass that removes
// zero-width constraint positions (BEGLINE, ENDLINE, BEGWORD, ENDWORD,
// LIMWORD, NOTLIMWORD) from every follow set and replaces them with their
// own follow set, constraint-masked.
package analyzer

import (
	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/internal/token"
)

// virtualStart is the pseudo position index whose "follow" set is the
// automaton's initial position set — the firstpos of the whole tree
// concatenated with the end marker. It is kept negative so it can never
// collide with a real postfix index or the end-marker index.
const virtualStart int32 = -2

// Analysis is the analyzer's output: one follow set per position (leaf
// index in Postfix, plus EndPos for the appended end marker) and the
// automaton's initial position set.
type Analysis struct {
	Postfix []token.Token
	MBProps []token.MBProp
	Classes *charclass.Store

	// EndPos is the position index of the synthetic end-marker leaf
	// appended after the real root, matching dfa.c's tindex.
	EndPos int32

	// Follow[i] is the follow set of position i. Indexed sparsely by a
	// map since EndPos sits past the real postfix array.
	Follow map[int32]*token.PositionSet

	// Initial is the position set of the automaton's start state:
	// firstpos(CAT(root, endmarker)).
	Initial *token.PositionSet
}

type nodeInfo struct {
	nullable bool
	first    *token.PositionSet
	last     *token.PositionSet
}

// Analyze runs the position/follow construction and ε-closure expansion
// over postfix, returning the per-position follow sets and initial state.
func Analyze(postfix []token.Token, mbprops []token.MBProp, classes *charclass.Store) *Analysis {
	a := &Analysis{
		Postfix: postfix,
		MBProps: mbprops,
		Classes: classes,
		EndPos:  int32(len(postfix)),
		Follow:  make(map[int32]*token.PositionSet),
	}

	var stack []nodeInfo
	pop := func() nodeInfo {
		n := len(stack) - 1
		v := stack[n]
		stack = stack[:n]
		return v
	}
	leafSet := func(i int32) *token.PositionSet {
		s := token.NewPositionSet(1)
		s.Append(token.Position{Index: i, Constraint: token.NoConstraint})
		return s
	}
	ensureFollow := func(i int32) *token.PositionSet {
		f, ok := a.Follow[i]
		if !ok {
			f = token.NewPositionSet(2)
			a.Follow[i] = f
		}
		return f
	}

	for i, t := range postfix {
		idx := int32(i)
		switch t {
		case token.EMPTY:
			stack = append(stack, nodeInfo{nullable: true, first: token.NewPositionSet(0), last: token.NewPositionSet(0)})

		case token.CAT:
			right := pop()
			left := pop()
			for _, p := range left.last.Elems() {
				ensureFollow(p.Index).Merge(right.first)
			}
			var first, last *token.PositionSet
			if left.nullable {
				first = left.first.Copy()
				first.Merge(right.first)
			} else {
				first = left.first
			}
			if right.nullable {
				last = right.last.Copy()
				last.Merge(left.last)
			} else {
				last = right.last
			}
			stack = append(stack, nodeInfo{nullable: left.nullable && right.nullable, first: first, last: last})

		case token.OR:
			right := pop()
			left := pop()
			first := left.first.Copy()
			first.Merge(right.first)
			last := left.last.Copy()
			last.Merge(right.last)
			stack = append(stack, nodeInfo{nullable: left.nullable || right.nullable, first: first, last: last})

		case token.STAR, token.PLUS:
			child := pop()
			for _, p := range child.last.Elems() {
				ensureFollow(p.Index).Merge(child.first)
			}
			nullable := child.nullable || t == token.STAR
			stack = append(stack, nodeInfo{nullable: nullable, first: child.first, last: child.last})

		case token.QMARK:
			child := pop()
			stack = append(stack, nodeInfo{nullable: true, first: child.first, last: child.last})

		case token.BACKREF:
			set := leafSet(idx)
			stack = append(stack, nodeInfo{nullable: true, first: set, last: set.Copy()})

		default:
			// Every remaining token kind is a leaf with position idx: byte
			// values, CSET, ANYCHAR, MBCSET, and the zero-width
			// constraint tokens. As in dfa.c, the constraint tokens are
			// not nullable: they stay in firstpos/lastpos like any leaf
			// and are folded into their followers' constraints by
			// expandZeroWidth, so the byte after an anchor is never also
			// reachable unconstrained.
			set := leafSet(idx)
			stack = append(stack, nodeInfo{nullable: false, first: set, last: set.Copy()})
		}
	}

	root := nodeInfo{nullable: true, first: token.NewPositionSet(0), last: token.NewPositionSet(0)}
	if len(stack) > 0 {
		root = stack[len(stack)-1]
	}

	endSet := leafSet(a.EndPos)
	for _, p := range root.last.Elems() {
		ensureFollow(p.Index).Merge(endSet)
	}
	initial := root.first.Copy()
	if root.nullable {
		initial.Merge(endSet)
	}
	a.Follow[virtualStart] = initial

	expandZeroWidth(a)

	a.Initial = a.Follow[virtualStart]
	delete(a.Follow, virtualStart)
	return a
}

func isZeroWidth(t token.Token) bool {
	switch t {
	case token.BEGLINE, token.ENDLINE, token.BEGWORD, token.ENDWORD, token.LIMWORD, token.NOTLIMWORD:
		return true
	}
	return false
}

func constraintMask(t token.Token) token.Constraint {
	switch t {
	case token.BEGLINE:
		return token.BeglineConstraint
	case token.ENDLINE:
		return token.EndlineConstraint
	case token.BEGWORD:
		return token.BegwordConstraint
	case token.ENDWORD:
		return token.EndwordConstraint
	case token.LIMWORD:
		return token.LimwordConstraint
	case token.NOTLIMWORD:
		return token.NotlimwordConstraint
	}
	return token.NoConstraint
}

// expandZeroWidth removes every zero-width constraint position from every
// follow set (including the pseudo initial-state entry), replacing it
// with the elements of its own follow set, each constraint ANDed against
// the zero-width token's mask and the position's own accumulated
// constraint — per spec.md §4.D. Iterates to a fixpoint since a chain of
// adjacent anchors (e.g. `\b\b`, `^$`) requires more than one pass.
func expandZeroWidth(a *Analysis) {
	tokenAt := func(i int32) token.Token {
		if i == a.EndPos || int(i) >= len(a.Postfix) {
			return token.END
		}
		return a.Postfix[i]
	}

	for pass := 0; pass < len(a.Postfix)+2; pass++ {
		changed := false
		for _, set := range a.Follow {
			for _, p := range append([]token.Position(nil), set.Elems()...) {
				tk := tokenAt(p.Index)
				if !isZeroWidth(tk) {
					continue
				}
				mask := constraintMask(tk) & p.Constraint
				set.Delete(p.Index)
				if sub, ok := a.Follow[p.Index]; ok {
					set.MergeWithMask(sub, mask)
				}
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}
