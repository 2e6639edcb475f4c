// Package verification decides whether candidate bytes are plausible
// recovered PHP source. The token oracle is a deliberately conservative
// heuristic, not a parser; callers needing stricter guarantees can layer the
// tree-sitter validator on top.
package verification

import (
	"bytes"
	"regexp"
)

// phpOpen is the target format's opening marker.
var phpOpen = []byte("<?php")

// structuralPatterns are the four signals the oracle counts: a variable
// sigil, a function declaration, a class declaration, and a return
// statement.
var structuralPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[a-zA-Z_][a-zA-Z0-9_]*`),
	regexp.MustCompile(`function\s`),
	regexp.MustCompile(`class\s`),
	regexp.MustCompile(`return\b`),
}

// Verdict is the oracle's judgment on a candidate byte sequence.
type Verdict struct {
	IsValid             bool `json:"is_valid"`
	MatchedPatternCount int  `json:"matched_pattern_count"`
}

// Check reports whether candidate bytes resemble valid PHP source: the
// input must begin with the opening marker (after trimming leading
// whitespace) and match at least two of the four structural patterns. The
// conjunction avoids validating incidentally printable garbage; it can
// still both reject true recoveries and accept false ones.
func Check(candidate []byte) Verdict {
	trimmed := bytes.TrimLeft(candidate, " \t\r\n")
	if !bytes.HasPrefix(trimmed, phpOpen) {
		return Verdict{}
	}

	matched := 0
	for _, pat := range structuralPatterns {
		if pat.Match(candidate) {
			matched++
		}
	}

	return Verdict{
		IsValid:             matched >= 2,
		MatchedPatternCount: matched,
	}
}
