package posdfa

import "github.com/coregx/coregex/internal/token"

// Outcome is the result of running the DFA over one buffer span
// (spec.md §4.F execute signature).
type Outcome struct {
	Matched  bool
	Start    int // offset of the match start, inclusive; valid iff Matched
	End      int // offset of the match end, exclusive; valid iff Matched
	Newlines int // newline bytes consumed while reaching End, from Start
	Backref  bool
}

// ExecuteShortest runs the unanchored leftmost-shortest search dfa.c's
// search mode (grep's default) requires: on a dead transition with no
// accept recorded yet, it abandons the current start point and resumes
// the automaton fresh at the next byte, rather than failing outright.
func (b *Builder) ExecuteShortest(buf []byte, start int) Outcome {
	return b.execute(buf, start, false)
}

// ExecuteLongest runs anchored at start (no restart on a dead
// transition) and keeps going past the first accept, returning the
// longest reachable match: used for the leftmost-longest refinement
// POSIX exact matching and -w/-x need (spec.md §4.F, §4.J step 8).
func (b *Builder) ExecuteLongest(buf []byte, start int) Outcome {
	return b.execute(buf, start, true)
}

func (b *Builder) execute(buf []byte, start int, longest bool) Outcome {
	matchStart := start
	prevCtx := token.CtxNewline
	if start > 0 && start <= len(buf) {
		prevCtx = contextBit(buf[start-1])
	}
	s := b.InitialState(prevCtx)
	newlines := 0
	var best Outcome
	haveBest := false

	i := start
	for {
		st := &b.states[s]
		var nextCtx token.Context
		if i < len(buf) {
			nextCtx = contextBit(buf[i])
		} else {
			nextCtx = token.CtxNewline
		}
		if st.Accepting && token.SucceedsInContext(st.Constraint, prevCtx, nextCtx) {
			out := Outcome{Matched: true, Start: matchStart, End: i, Newlines: newlines, Backref: st.HasBackref}
			if !longest {
				return out
			}
			best, haveBest = out, true
		}
		if i >= len(buf) {
			break
		}

		c := buf[i]
		row := b.ensureRow(s)
		var next int32
		if c == '\n' {
			next = b.newlines[s]
		} else {
			next = row[c]
		}

		if next == DeadState || next < 0 {
			if longest || haveBest {
				break
			}
			// Unanchored restart (spec.md §4.J): this start point is
			// dead, try the byte after it as a fresh start.
			i = matchStart + 1
			matchStart = i
			newlines = 0
			nc := contextBit(buf[i-1])
			s = b.InitialState(nc)
			prevCtx = nc
			continue
		}

		s = next
		prevCtx = contextBit(c)
		if c == '\n' {
			newlines++
		}
		i++
	}
	if haveBest {
		return best
	}
	return Outcome{}
}
