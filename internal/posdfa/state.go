// Package posdfa implements the lazily materialized subset-construction
// DFA over the position/follow sets produced by internal/analyzer
// (spec.md §4.E, §4.F): state identity by (hash of positions, context),
// MAX_TRCOUNT-bounded transition-table eviction, and a byte-at-a-time
// executor supporting both leftmost-shortest (search) and leftmost-
// longest (exact) modes.
package posdfa

import (
	"github.com/coregx/coregex/charclass"
	"github.com/coregx/coregex/internal/analyzer"
	"github.com/coregx/coregex/internal/token"
	"github.com/coregx/coregex/relimits"
)

// Transition-table sentinels (spec.md §3 "Transition table").
const (
	TransUnknown int32 = -2 // not yet computed
	TransFail    int32 = -1 // dead: no successor from here
)

// DeadState is the reserved state with an empty position set: every byte
// from it transitions to itself and it never accepts.
const DeadState int32 = 0

// State is one DFA state: a position set together with the preceding
// context that produced it and the accepting constraint derived from any
// end-marker position it contains.
type State struct {
	Elems      []token.Position
	Context    token.Context
	Constraint token.Constraint
	Accepting  bool
	HasBackref bool
}

// Builder lazily materializes DFA states and transition rows over one
// compiled pattern's position/follow analysis.
type Builder struct {
	an      *analyzer.Analysis
	classes *charclass.Store
	dot     dotConfig

	states   []State
	trans    [][]int32 // trans[s][c], nil until ensureRow(s)
	newlines []int32   // newlines[s], TransUnknown until ensureRow(s)
	index    map[uint64][]int32

	initial   map[token.Context]int32
	numBuilt  int // count of non-initial states with a materialized row, for eviction
	reserved  int // states[0:reserved] are never evicted (dead + initial states)
}

// dotConfig mirrors the RE_DOT_NEWLINE / RE_DOT_NOT_NULL syntax bits that
// shape which bytes ANYCHAR matches.
type dotConfig struct {
	matchNewline bool
	matchNUL     bool
}

// NewBuilder constructs a Builder over an already-computed analysis. The
// dead state and one initial state per context class are primed eagerly
// and are exempt from eviction.
func NewBuilder(an *analyzer.Analysis, classes *charclass.Store, dotNewline, dotNotNull bool) *Builder {
	b := &Builder{
		an:      an,
		classes: classes,
		dot:     dotConfig{matchNewline: dotNewline, matchNUL: !dotNotNull},
		index:   make(map[uint64][]int32),
		initial: make(map[token.Context]int32),
	}
	b.states = append(b.states, State{}) // DeadState: empty elems, never accepting
	b.trans = append(b.trans, nil)
	b.newlines = append(b.newlines, TransFail)

	for _, ctx := range [...]token.Context{token.CtxNewline, token.CtxNone, token.CtxLetter} {
		b.initial[ctx] = b.stateIndexFor(an.Initial, ctx)
	}
	b.reserved = len(b.states)
	return b
}

// InitialState returns the start state for the given preceding context,
// building it on first use.
func (b *Builder) InitialState(ctx token.Context) int32 {
	if idx, ok := b.initial[ctx]; ok {
		return idx
	}
	idx := b.stateIndexFor(b.an.Initial, ctx)
	b.initial[ctx] = idx
	return idx
}

// State returns the state record at idx.
func (b *Builder) State(idx int32) *State { return &b.states[idx] }

func (b *Builder) stateIndexFor(elems *token.PositionSet, ctx token.Context) int32 {
	list := elems.Elems()
	h := hashElems(list)
	for _, idx := range b.index[h] {
		st := &b.states[idx]
		if st.Context == ctx && positionsEqual(st.Elems, list) {
			return idx
		}
	}
	st := b.newState(list, ctx)
	idx := int32(len(b.states))
	b.states = append(b.states, st)
	b.trans = append(b.trans, nil)
	b.newlines = append(b.newlines, TransUnknown)
	b.index[h] = append(b.index[h], idx)
	return idx
}

func (b *Builder) newState(list []token.Position, ctx token.Context) State {
	cp := append([]token.Position(nil), list...)
	st := State{Elems: cp, Context: ctx}
	for _, p := range cp {
		if p.Index == b.an.EndPos {
			st.Constraint |= p.Constraint
			st.Accepting = true
			continue
		}
		if int(p.Index) < len(b.an.Postfix) && b.an.Postfix[p.Index] == token.BACKREF {
			st.HasBackref = true
		}
	}
	if st.HasBackref {
		// The DFA cannot evaluate a back-reference; defer to the
		// backtracker in every context, per spec.md §4.F.
		st.Constraint = token.NoConstraint
		st.Accepting = true
	}
	return st
}

func hashElems(elems []token.Position) uint64 {
	h := uint64(1469598103934665603)
	for _, p := range elems {
		h ^= uint64(uint32(p.Index))
		h *= 1099511628211
		h ^= uint64(p.Constraint)
		h *= 1099511628211
	}
	return h
}

func positionsEqual(a, b []token.Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// maybeEvict enforces relimits.MaxTrCount on the number of live,
// non-initial transition rows: on overflow every non-initial row is
// cleared so it re-materializes lazily on next use. This caps memory
// growth the way dfa.c's MAX_TRCOUNT table reclamation does; it does not
// additionally discard and renumber State objects themselves, a scoped-
// down version of the source's full state-table eviction.
func (b *Builder) maybeEvict() {
	if b.numBuilt < relimits.MaxTrCount {
		return
	}
	for i := b.reserved; i < len(b.trans); i++ {
		b.trans[i] = nil
		b.newlines[i] = TransUnknown
	}
	b.numBuilt = 0
}
