package lexer

import (
	"strconv"

	"github.com/coregx/coregex/internal/token"
	"github.com/coregx/coregex/reerr"
	"github.com/coregx/coregex/relimits"
)

// lexInterval scans the body of a `{m,n}` (or `{m,n\}` in BRE) expression.
// The leading `{` has already been consumed at byteStart. It returns
// ok=false (no error) if the content doesn't parse as an interval and
// RE_INVALID_INTERVAL_ORD permits treating `{` as an ordinary character.
func (l *Lexer) lexInterval(byteStart int) (Result, bool, error) {
	save := l.pos
	min, minDigits, ok := l.scanDigits()
	if !ok {
		return l.intervalFallback(save, byteStart)
	}
	max := min
	if l.peekByte() == ',' {
		l.pos++
		if m, digits, ok := l.scanDigits(); ok {
			max = m
			_ = digits
		} else {
			max = -1 // unbounded {m,}
		}
	} else if minDigits == 0 {
		return l.intervalFallback(save, byteStart)
	}

	if !l.consumeClose() {
		return l.intervalFallback(save, byteStart)
	}

	if min > relimits.REDupMax || (max >= 0 && max > relimits.REDupMax) {
		return Result{}, true, reerr.Newf(reerr.IntervalTooLarge, l.pattern,
			"interval count exceeds limit of %d", relimits.REDupMax)
	}
	if max >= 0 && max < min {
		return Result{}, true, reerr.New(reerr.InvalidIntervalContent, l.pattern)
	}
	l.lasttok = token.REPMN
	return Result{Tok: token.REPMN, IntervalMin: min, IntervalMax: max}, true, nil
}

func (l *Lexer) intervalFallback(restorePos, byteStart int) (Result, bool, error) {
	l.pos = restorePos
	if l.syntax.InvalidIntervalOK {
		return Result{}, false, nil
	}
	return Result{}, true, reerr.New(reerr.InvalidIntervalContent, l.pattern)
}

// scanDigits reads a (possibly empty) run of decimal digits, returning the
// parsed value, how many digits were read, and whether parsing succeeded
// (false only when the run overflows an int; digits==0 signals an empty
// run, which the caller treats contextually).
func (l *Lexer) scanDigits() (int, int, bool) {
	start := l.pos
	for l.pos < len(l.pattern) && l.pattern[l.pos] >= '0' && l.pattern[l.pos] <= '9' {
		l.pos++
	}
	if l.pos == start {
		return 0, 0, true
	}
	n, err := strconv.Atoi(l.pattern[start:l.pos])
	if err != nil {
		return 0, 0, false
	}
	return n, l.pos - start, true
}

// consumeClose expects the interval-closing delimiter: `}` in ERE/GNU
// mode, `\}` in BRE mode.
func (l *Lexer) consumeClose() bool {
	if l.syntax.Extended {
		if l.peekByte() == '}' {
			l.pos++
			return true
		}
		return false
	}
	if l.peekByte() == '\\' && l.peekByteAt(1) == '}' {
		l.pos += 2
		return true
	}
	return false
}
