package posdfa

import (
	"github.com/coregx/coregex/internal/token"
	"github.com/coregx/coregex/relimits"
)

// contextBit classifies one input byte into the 3-bit context mask
// dfa.c's CTX_* uses: newline, word-constituent ("letter"), or other.
func contextBit(c byte) token.Context {
	switch {
	case c == '\n':
		return token.CtxNewline
	case isWordByte(c):
		return token.CtxLetter
	default:
		return token.CtxNone
	}
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// ensureRow materializes state s's full 256-entry transition row (plus
// its dedicated newline transition) on first use, grouping bytes that
// reach an identical next-position set onto the same successor state.
func (b *Builder) ensureRow(s int32) []int32 {
	if b.trans[s] != nil {
		return b.trans[s]
	}
	st := &b.states[s]
	row := make([]int32, relimits.NChar)
	groupSig := make(map[string]int32, 8)

	for c := 0; c < relimits.NChar; c++ {
		if byte(c) == '\n' {
			continue // handled by the dedicated newlines[] row below
		}
		next := b.nextPositions(st, byte(c))
		if next.Len() == 0 {
			row[c] = DeadState
			continue
		}
		sig := signature(next)
		if idx, ok := groupSig[sig]; ok {
			row[c] = idx
			continue
		}
		idx := b.stateIndexFor(next, contextBit(byte(c)))
		groupSig[sig] = idx
		row[c] = idx
	}

	nl := b.nextPositions(st, '\n')
	if nl.Len() == 0 {
		b.newlines[s] = DeadState
	} else {
		b.newlines[s] = b.stateIndexFor(nl, token.CtxNewline)
	}

	b.trans[s] = row
	if s >= int32(b.reserved) {
		b.numBuilt++
	}
	b.maybeEvict()
	return row
}

// nextPositions computes the union of follow(p) for every position p in
// st.Elems whose token matches byte c in context st.Context, per spec.md
// §4.E steps 2-4. End-marker positions are zero-width and never consume a
// byte, so they are skipped here (they are folded into Accepting/
// Constraint at state-creation time instead).
func (b *Builder) nextPositions(st *State, c byte) *token.PositionSet {
	out := token.NewPositionSet(4)
	byteCtx := contextBit(c)
	for _, p := range st.Elems {
		if p.Index == b.an.EndPos {
			continue
		}
		if !b.tokenMatches(b.an.Postfix[p.Index], c) {
			continue
		}
		if !token.SucceedsInContext(p.Constraint, st.Context, byteCtx) {
			continue
		}
		if sub, ok := b.an.Follow[p.Index]; ok {
			out.Merge(sub)
		}
	}
	return out
}

// tokenMatches reports whether leaf token tk matches byte c.
func (b *Builder) tokenMatches(tk token.Token, c byte) bool {
	switch {
	case tk.IsByte():
		return byte(tk) == c
	case tk.IsCharClass():
		return b.classes.Test(tk.ClassIndex(), c)
	case tk == token.ANYCHAR:
		if c == '\n' && !b.dot.matchNewline {
			return false
		}
		if c == 0 && !b.dot.matchNUL {
			return false
		}
		return true
	case tk == token.MBCSET:
		// A non-UTF-8-locale wide-character byte class: approximated as
		// matching any non-ASCII byte, since this engine's primary
		// multibyte path is the UTF-8 ANYCHAR lowering table computed by
		// the parser (spec.md §4.C).
		return c >= 0x80
	default:
		return false
	}
}

// signature gives two position sets with identical (Index, Constraint)
// pairs the same string key, so ensureRow can group bytes that reach the
// same successor without allocating a new state per byte.
func signature(s *token.PositionSet) string {
	elems := s.Elems()
	buf := make([]byte, 0, len(elems)*8)
	for _, p := range elems {
		buf = append(buf,
			byte(p.Index>>24), byte(p.Index>>16), byte(p.Index>>8), byte(p.Index),
			byte(p.Constraint>>8), byte(p.Constraint),
		)
	}
	return string(buf)
}
