// Package search is the search coordinator (spec.md §4.J): given a
// compiled pattern, it runs the KWset prefilter to find a candidate
// line, widens to line boundaries, drives the position DFA over the
// line, and falls back to the backtracker when the DFA signals a
// back-reference it cannot evaluate.
package search

import (
	"bytes"

	"github.com/coregx/coregex/internal/compile"
)

// Result is one search_line outcome: the leftmost match's offset and
// size in the original buffer, plus the newline bytes consumed while
// locating it (spec.md §4.J signature).
type Result struct {
	Offset   int
	Size     int
	Newlines int
}

// Line runs one search_line call over buf starting at or after start,
// returning ok=false when no match exists in buf[start:].
func Line(pat *compile.Pattern, buf []byte, start int) (Result, bool) {
	if pat.IsLiteral {
		return literalSearch(pat, buf, start)
	}

	beg := start
	for beg <= len(buf) {
		var kwAt int
		var kwSize int
		exact := false

		if pat.KW != nil {
			m, ok := pat.KW.Search(buf, beg)
			if !ok {
				return Result{}, false
			}
			kwAt, kwSize = m.Offset, m.Size
			exact = pat.KWExact
		} else if pat.Prefilter != nil {
			p := pat.Prefilter.Find(buf, beg)
			if p < 0 {
				return Result{}, false
			}
			kwAt = p
		} else {
			kwAt = beg
		}

		lineBeg := widenToLineStart(buf, kwAt)
		lineEnd := widenToLineEnd(buf, kwAt+kwSize)

		if exact {
			return refine(pat, buf, kwAt, kwAt+kwSize, 0)
		}

		from := lineBeg
		if beg > from {
			from = beg
		}
		out := pat.DFA.ExecuteShortest(buf, from)
		if !out.Matched || out.Start > lineEnd {
			beg = lineEnd + 1
			continue
		}

		if out.Backref {
			if pat.Backtrack == nil {
				beg = lineEnd + 1
				continue
			}
			s, e, ok := pat.Backtrack.Find(buf[lineBeg:lineEnd], out.Start-lineBeg)
			if !ok {
				beg = lineEnd + 1
				continue
			}
			return refine(pat, buf, lineBeg+s, lineBeg+e, 0)
		}

		// The shortest run fixes the leftmost start; extend it to the
		// longest match from that start.
		if l := pat.DFA.ExecuteLongest(buf, out.Start); l.Matched && !l.Backref {
			out.End, out.Newlines = l.End, l.Newlines
		}
		return refine(pat, buf, out.Start, out.End, out.Newlines)
	}
	return Result{}, false
}

// literalSearch drives -F mode directly off the keyword set, applying
// the word/line decorations as byte-boundary checks since the literal
// path never builds a DFA to encode them (spec.md §4.I step 3).
func literalSearch(pat *compile.Pattern, buf []byte, start int) (Result, bool) {
	beg := start
	for beg <= len(buf) {
		m, ok := pat.KW.Search(buf, beg)
		if !ok {
			return Result{}, false
		}
		s, e := m.Offset, m.Offset+m.Size
		if pat.MatchLines && !(isLineStart(buf, s) && isLineEnd(buf, e)) {
			beg = s + 1
			continue
		}
		if pat.MatchWords && !(isWordStart(buf, s) && isWordEnd(buf, e)) {
			beg = s + 1
			continue
		}
		return Result{Offset: s, Size: e - s, Newlines: bytes.Count(buf[s:e], []byte{'\n'})}, true
	}
	return Result{}, false
}

// refine applies the -w/-x checks (spec.md §4.J step 8): with -x the
// candidate must span its whole line; with -w one anchored-longest rerun
// from s is trimmed of the wrapper's delimiter bytes and must then start
// and end on word boundaries, else the candidate itself is checked.
func refine(pat *compile.Pattern, buf []byte, s, e, newlines int) (Result, bool) {
	if !pat.MatchWords && !pat.MatchLines {
		return Result{Offset: s, Size: e - s, Newlines: newlines}, true
	}
	if pat.MatchLines {
		if isLineStart(buf, s) && isLineEnd(buf, e) {
			return Result{Offset: s, Size: e - s, Newlines: newlines}, true
		}
		return Result{}, false
	}
	// MatchWords: the DFA was compiled with the word-boundary wrapper
	// baked into the pattern text itself (internal/compile), so its match
	// includes the non-word byte the wrapper consumed on either side of
	// the word; trim those off before the boundary check.
	out := pat.DFA.ExecuteLongest(buf, s)
	if out.Matched {
		ms, me := out.Start, out.End
		if ms < me && !isWordByte(buf[ms]) {
			ms++
		}
		if me > ms && !isWordByte(buf[me-1]) {
			me--
		}
		if isWordStart(buf, ms) && isWordEnd(buf, me) {
			return Result{Offset: ms, Size: me - ms, Newlines: bytes.Count(buf[ms:me], []byte{'\n'})}, true
		}
	}
	if isWordStart(buf, s) && isWordEnd(buf, e) {
		return Result{Offset: s, Size: e - s, Newlines: newlines}, true
	}
	return Result{}, false
}

func widenToLineStart(buf []byte, at int) int {
	i := bytes.LastIndexByte(buf[:at], '\n')
	if i < 0 {
		return 0
	}
	return i + 1
}

func widenToLineEnd(buf []byte, at int) int {
	if at >= len(buf) {
		return len(buf)
	}
	i := bytes.IndexByte(buf[at:], '\n')
	if i < 0 {
		return len(buf)
	}
	return at + i
}

func isLineStart(buf []byte, pos int) bool {
	return pos == 0 || buf[pos-1] == '\n'
}

func isLineEnd(buf []byte, pos int) bool {
	return pos == len(buf) || buf[pos] == '\n'
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isWordStart(buf []byte, pos int) bool {
	if pos >= len(buf) || !isWordByte(buf[pos]) {
		return false
	}
	return pos == 0 || !isWordByte(buf[pos-1])
}

func isWordEnd(buf []byte, pos int) bool {
	if pos == 0 || !isWordByte(buf[pos-1]) {
		return false
	}
	return pos >= len(buf) || !isWordByte(buf[pos])
}
