// Package kwset implements the keyword-set matcher from spec.md §4.H: a
// single keyword runs Boyer-Moore, two or more run Aho-Corasick via the
// teacher's own github.com/coregx/ahocorasick dependency. It is used both
// to execute literal (-F) patterns directly and, from internal/search, as
// a substring prefilter ahead of the position DFA.
package kwset

import (
	"errors"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex/simd"
)

// Match is one hit: the offset of the matched keyword in the searched
// buffer, its byte length, and which keyword (insertion order) matched.
type Match struct {
	Offset int
	Size   int
	Index  int
}

// Set is a built, search-ready keyword set.
type Set struct {
	fold bool

	// Boyer-Moore path (exactly one keyword).
	word   []byte
	delta1 [256]int

	// Aho-Corasick path (two or more keywords), via the teacher's own
	// dependency — spec.md §4.H "two or more ⇒ Aho-Corasick".
	auto  *ahocorasick.Automaton
	words [][]byte
}

// Builder accumulates keywords before Build finalizes delta tables
// (Boyer-Moore) or failure links (Aho-Corasick), matching the kwsincr /
// kwsprep two-phase lifecycle from kwset.c.
type Builder struct {
	words [][]byte
	fold  bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// CaseFold enables case-insensitive matching: ASCII letters in both
// pattern and haystack bytes are lowercased before comparison, per
// spec.md §4.H.
func (b *Builder) CaseFold(fold bool) *Builder {
	b.fold = fold
	return b
}

// Add inserts one literal keyword.
func (b *Builder) Add(word []byte) *Builder {
	b.words = append(b.words, append([]byte(nil), word...))
	return b
}

// AddFoldedMultibyte inserts the distinct multibyte case-fold
// counterparts of a single-byte pattern byte as additional one-character
// keywords, so an Aho-Corasick search still reports a hit when the input
// contains a fold-equivalent multibyte sequence; the caller then falls
// back to the general DFA to verify (spec.md §4.H).
func (b *Builder) AddFoldedMultibyte(counterparts [][]byte) *Builder {
	b.words = append(b.words, counterparts...)
	return b
}

// Build finalizes the set, choosing Boyer-Moore for one keyword or
// Aho-Corasick for two or more.
func (b *Builder) Build() (*Set, error) {
	if len(b.words) == 0 {
		return nil, errors.New("kwset: no keywords")
	}
	words := b.words
	if b.fold {
		words = make([][]byte, len(b.words))
		for i, w := range b.words {
			words[i] = toLowerASCII(w)
		}
	}
	if len(words) == 1 {
		return buildBoyerMoore(words[0], b.fold), nil
	}
	return buildAhoCorasick(words, b.fold)
}

func buildBoyerMoore(word []byte, fold bool) *Set {
	s := &Set{fold: fold, word: word}
	for i := range s.delta1 {
		s.delta1[i] = len(word)
	}
	for i := 0; i < len(word)-1; i++ {
		s.delta1[word[i]] = len(word) - 1 - i
	}
	return s
}

func buildAhoCorasick(words [][]byte, fold bool) (*Set, error) {
	builder := ahocorasick.NewBuilder()
	for _, w := range words {
		builder.AddPattern(w)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Set{fold: fold, auto: auto, words: words}, nil
}

// Search returns the leftmost keyword match in buf at or after from.
func (s *Set) Search(buf []byte, from int) (Match, bool) {
	if s.auto != nil {
		return s.searchAC(buf, from)
	}
	return s.searchBM(buf, from)
}

func (s *Set) searchAC(buf []byte, from int) (Match, bool) {
	hay := buf
	if s.fold {
		hay = toLowerASCII(buf)
	}
	m := s.auto.Find(hay, from)
	if m == nil {
		return Match{}, false
	}
	return Match{Offset: m.Start, Size: m.End - m.Start, Index: s.indexFor(hay[m.Start:m.End])}, true
}

// indexFor returns which inserted keyword a matched span corresponds to.
// Aho-Corasick's Find does not report a pattern id directly, so this
// looks the matched bytes up among the inserted words; the keyword list
// is small (this is the literal/-F path, not the hot DFA loop).
func (s *Set) indexFor(matched []byte) int {
	for i, w := range s.words {
		if len(w) == len(matched) && string(w) == string(matched) {
			return i
		}
	}
	return -1
}

func (s *Set) searchBM(buf []byte, from int) (Match, bool) {
	n := len(s.word)
	if n == 0 || from+n > len(buf) {
		return Match{}, false
	}
	last := n - 1
	i := from
	for i+n <= len(buf) {
		if !s.fold {
			// Terminal-byte probe via the teacher's SIMD memchr, per
			// spec.md §4.H's "memchr-kwset" fast path.
			probe := simd.Memchr(buf[i+last:], s.word[last])
			if probe < 0 {
				return Match{}, false
			}
			i += probe
			if i+n > len(buf) {
				return Match{}, false
			}
		}
		j := last
		for j >= 0 && eqByte(s.fold, buf[i+j], s.word[j]) {
			j--
		}
		if j < 0 {
			return Match{Offset: i, Size: n}, true
		}
		shift := s.delta1[foldKey(s.fold, buf[i+last])]
		if shift < 1 {
			shift = 1
		}
		i += shift
	}
	return Match{}, false
}

func eqByte(fold bool, a, b byte) bool {
	if fold {
		return toLower(a) == toLower(b)
	}
	return a == b
}

func foldKey(fold bool, b byte) byte {
	if fold {
		return toLower(b)
	}
	return b
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}

func toLowerASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = toLower(c)
	}
	return out
}
