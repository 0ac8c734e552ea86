// Package textnorm normalizes and compares Spanish sentence answers.
//
// Two levels of normalization are used: Strict keeps accents and case and
// only cleans up whitespace and edge punctuation, Relaxed additionally
// lowercases and drops accent marks on vowels. An answer that matches only
// under Relaxed rules is treated as "right, but sloppy" rather than wrong.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Verdict grades a submitted answer against the accepted set.
type Verdict int

const (
	// VerdictExact means the answer matched under strict normalization.
	VerdictExact Verdict = iota
	// VerdictWarning means the answer matched only after dropping vowel
	// accents and case.
	VerdictWarning
	// VerdictWrong means the answer matched nothing.
	VerdictWrong
)

const edgePunctuation = " .,!?:;\"'()[]{}¿¡"

func isSpanishVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Strict collapses inner whitespace, trims edge punctuation (including the
// inverted Spanish marks) and recomposes to NFC. Accents and case survive.
func Strict(s string) string {
	s = collapseWhitespace(s)
	s = strings.Trim(s, edgePunctuation)
	return norm.NFC.String(s)
}

// Relaxed lowercases the strict form and removes combining marks that sit on
// Spanish vowels. Marks on other letters stay, so "ñ" is never collapsed
// into "n": año and ano must not compare equal.
func Relaxed(s string) string {
	return stripVowelMarks(strings.ToLower(Strict(s)))
}

func stripVowelMarks(s string) string {
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	var base rune
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if isSpanishVowel(base) {
				continue
			}
			b.WriteRune(r)
			continue
		}
		b.WriteRune(r)
		base = r
	}
	return norm.NFC.String(b.String())
}

// Evaluate grades answer against the accepted answers: strict match first,
// then the relaxed comparison.
func Evaluate(answer string, accepted []string) Verdict {
	strict := Strict(answer)
	for _, candidate := range accepted {
		if strict == Strict(candidate) {
			return VerdictExact
		}
	}

	relaxed := Relaxed(answer)
	for _, candidate := range accepted {
		if relaxed == Relaxed(candidate) {
			return VerdictWarning
		}
	}

	return VerdictWrong
}
