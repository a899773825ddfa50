// Package hangul maps Korean initial consonants (choseong) to the range of
// precomposed syllables that start with them, for initial-consonant search.
package hangul

import "strings"

const (
	syllableBase  = 0xAC00 // 가
	syllablesPerL = 21 * 28
)

// compatibility jamo -> index in the 19 leading consonants of the syllable block
var initials = map[rune]int{
	'ㄱ': 0,
	'ㄴ': 2,
	'ㄷ': 3,
	'ㄹ': 5,
	'ㅁ': 6,
	'ㅂ': 7,
	'ㅅ': 9,
	'ㅇ': 11,
	'ㅈ': 12,
	'ㅊ': 14,
	'ㅋ': 15,
	'ㅌ': 16,
	'ㅍ': 17,
	'ㅎ': 18,
}

// InitialRange returns the inclusive syllable range for a consonant, e.g. ㄱ -> 가..깋.
func InitialRange(r rune) (lo, hi rune, ok bool) {
	idx, ok := initials[r]
	if !ok {
		return 0, 0, false
	}
	lo = rune(syllableBase + idx*syllablesPerL)
	return lo, lo + syllablesPerL - 1, true
}

// HasInitial reports whether s contains at least one mappable consonant.
func HasInitial(s string) bool {
	for _, r := range s {
		if _, ok := initials[r]; ok {
			return true
		}
	}
	return false
}

// InitialPattern turns a query into a regular expression where every initial
// consonant becomes a character class over its syllable range. The input is
// upper-cased first. Every other rune is copied as is, regex metacharacters
// included, so callers get whatever the raw query means as a pattern.
func InitialPattern(query string) string {
	q := strings.ToUpper(query)
	var b strings.Builder
	b.Grow(len(q) * 3)
	for _, r := range q {
		lo, hi, ok := InitialRange(r)
		if !ok {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('[')
		b.WriteRune(lo)
		b.WriteByte('-')
		b.WriteRune(hi)
		b.WriteByte(']')
	}
	return b.String()
}
