// Package compile is the compile coordinator (spec.md §4.I): given pattern
// text, syntax flags, and options, it chooses between AC/BM (kwset),
// position DFA, and the backtracker escape hatch, and emits one compiled
// pattern object that internal/search drives.
package compile

import (
	"strings"
	"unicode/utf8"

	"github.com/coregx/coregex/internal/analyzer"
	"github.com/coregx/coregex/internal/backtrack"
	"github.com/coregx/coregex/internal/parser"
	"github.com/coregx/coregex/internal/posdfa"
	"github.com/coregx/coregex/kwset"
	"github.com/coregx/coregex/literal"
	"github.com/coregx/coregex/prefilter"
	"github.com/coregx/coregex/reerr"
	"github.com/coregx/coregex/resyntax"
)

// Options are the per-compile knobs from spec.md §6's Compile API.
type Options struct {
	CaseFold   bool
	MatchWords bool
	MatchLines bool
	AnchorOnly bool // spec.md §6 "anchor_only"; accepted but not read by Compile
	EOLIsNUL   bool
	Literal    bool // -F: bypass the DFA parser entirely
	Warn       func(string)
	Posixly    bool // when false, dfawarn-eliciting constructs are hard errors
}

// Pattern is the compile coordinator's output: everything
// internal/search needs to run one compiled pattern over a buffer.
type Pattern struct {
	IsLiteral bool // true: execute via KW alone, no DFA
	KW        *kwset.Set
	KWExact   bool // a KW hit alone is the whole match (no DFA verification needed)

	Prefilter prefilter.Prefilter // optional extra skip-ahead over multiple must-strings

	DFA        *posdfa.Builder
	Analysis   *analyzer.Analysis
	HasBackref bool
	Backtrack  *backtrack.Pattern // verifies a match when the DFA signals Outcome.Backref

	MatchWords bool
	MatchLines bool
	EOLIsNUL   bool
}

// Compile builds a Pattern from one or more sub-patterns (grep's
// multi -e convention: sub-patterns are joined by an implicit OR).
func Compile(patterns []string, syntax resyntax.Flags, opts Options) (*Pattern, error) {
	if len(patterns) == 0 {
		return nil, reerr.New(reerr.NoSyntaxSpecified, "")
	}
	warn := opts.Warn
	if warn == nil {
		warn = func(string) {}
	}

	if opts.Literal {
		return compileLiteral(patterns, opts)
	}

	decoded := resyntax.Decode(syntax)

	joined := patterns[0]
	if len(patterns) > 1 {
		sep := "\\|"
		if decoded.Extended {
			sep = "|"
		}
		joined = strings.Join(patterns, sep)
	}

	switch {
	case opts.MatchWords:
		joined = `(^|[^[:alnum:]_])(` + joined + `)([^[:alnum:]_]|$)`
	case opts.MatchLines:
		joined = `^(` + joined + `)$`
	}

	parsed, err := parser.Parse(joined, parser.Config{Syntax: decoded, ICase: opts.CaseFold, UTF8: true, Warn: warn, Posixly: opts.Posixly})
	if err != nil {
		return nil, err
	}

	var bt *backtrack.Pattern
	if parsed.HasBacked {
		bt, err = backtrack.Compile(joined, backtrack.Config{Syntax: decoded, ICase: opts.CaseFold})
		if err != nil {
			return nil, err
		}
	}

	an := analyzer.Analyze(parsed.Postfix, parsed.MBProps, parsed.Classes)
	dfa := posdfa.NewBuilder(an, parsed.Classes, decoded.DotNewline, decoded.DotNotNull)

	longest, must := literal.ExtractMust(parsed.Postfix, parsed.Classes)

	pat := &Pattern{
		DFA:        dfa,
		Analysis:   an,
		HasBackref: parsed.HasBacked,
		Backtrack:  bt,
		MatchWords: opts.MatchWords,
		MatchLines: opts.MatchLines,
		EOLIsNUL:   opts.EOLIsNUL,
	}

	if longest != "" {
		kwb := kwset.NewBuilder().CaseFold(opts.CaseFold)
		kwb.Add([]byte(longest))
		// A KWset hit alone settles the match only when the whole
		// pattern reduces to this literal with no surrounding anchor to
		// re-verify (spec.md §4.I step 5).
		exact := must.Is == longest && longest != "" && !must.Begline && !must.Endline
		if opts.CaseFold {
			if counterparts := multibyteFoldCounterparts(longest); len(counterparts) > 0 {
				kwb.AddFoldedMultibyte(counterparts)
				// A counterpart hit is only a fold-equivalent of one
				// byte of the must-string, not the whole pattern: the
				// DFA still has to verify it (spec.md §4.H).
				exact = false
			}
		}
		if kw, err := kwb.Build(); err == nil {
			pat.KW = kw
			pat.KWExact = exact
		}
	}

	if len(must.In) > 1 {
		var lits []literal.Literal
		for _, s := range must.In {
			if s != "" {
				lits = append(lits, literal.NewLiteral([]byte(s), false))
			}
		}
		if len(lits) > 1 {
			pat.Prefilter = prefilter.NewBuilder(literal.NewSeq(lits...), nil).Build()
		}
	}

	return pat, nil
}

// asciiMultibyteFolds is a narrow, hardcoded table of the classic
// ASCII-to-multibyte Unicode case folds dfa.c's case_folded_counterparts
// (gnulib localeinfo.c) draws from a full locale-aware table: 'k'/'K'
// fold with KELVIN SIGN U+212A, 's'/'S' fold with LATIN SMALL LETTER LONG
// S U+017F. This engine has no Unicode case-folding database, so only
// these two well-known pairs are covered.
var asciiMultibyteFolds = map[byte]rune{
	'k': 0x212A, 'K': 0x212A,
	's': 0x017F, 'S': 0x017F,
}

// multibyteFoldCounterparts returns the UTF-8 encoding of every distinct
// multibyte fold counterpart of the ASCII bytes in s, so a case-folded
// KWset search still reports a candidate when the input used the
// multibyte counterpart instead of the ASCII byte (spec.md §4.H).
func multibyteFoldCounterparts(s string) [][]byte {
	var out [][]byte
	seen := make(map[rune]bool)
	for i := 0; i < len(s); i++ {
		r, ok := asciiMultibyteFolds[s[i]]
		if !ok || seen[r] {
			continue
		}
		seen[r] = true
		buf := make([]byte, utf8.RuneLen(r))
		utf8.EncodeRune(buf, r)
		out = append(out, buf)
	}
	return out
}

func compileLiteral(patterns []string, opts Options) (*Pattern, error) {
	kwb := kwset.NewBuilder().CaseFold(opts.CaseFold)
	for _, p := range patterns {
		kwb.Add([]byte(p))
	}
	kw, err := kwb.Build()
	if err != nil {
		return nil, err
	}
	return &Pattern{IsLiteral: true, KW: kw, KWExact: true, MatchWords: opts.MatchWords, MatchLines: opts.MatchLines}, nil
}
