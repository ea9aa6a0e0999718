package ai

import "unicode"

// MajorityKorean reports whether more than half of the letter runes in s are
// Hangul. Used to skip translation of text that is already Korean.
func MajorityKorean(s string) bool {
	var letters, hangul int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if letters == 0 {
		return false
	}
	return hangul*2 > letters
}
