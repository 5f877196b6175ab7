package scoring

import "slices"

// maxAnswerLen caps a normalized answer; no exam item has more than six choices.
const maxAnswerLen = 6

// Normalize canonicalizes a raw answer for comparison: it drops everything but
// ASCII letters and digits, uppercases and sorts what is left, and keeps at
// most six characters. An empty result means the answer cannot be graded.
//
// Uppercasing happens before sorting so that Normalize(Normalize(s)) ==
// Normalize(s) also holds for mixed-case input.
func Normalize(raw string) string {
	kept := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case 'a' <= c && c <= 'z':
			kept = append(kept, c-'a'+'A')
		case 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			kept = append(kept, c)
		}
	}
	slices.Sort(kept)
	if len(kept) > maxAnswerLen {
		kept = kept[:maxAnswerLen]
	}
	return string(kept)
}
