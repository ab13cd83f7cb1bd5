package ferret

import "strings"

// ═══════════════════════════════════════════════════════════════════════════════
// SOUNDEX PHONETIC HASH
// ═══════════════════════════════════════════════════════════════════════════════
// Keep the first letter. Map the rest to digit classes by sound (labials,
// sibilants, ...). Collapse runs of the same class into one digit. Drop
// vowels and h/w/y. Pad or truncate to four characters. Two tokens that
// sound alike in English collide to the same code, which is exactly what
// the phonetic-correction leg of the query pipeline needs.
//
// No example repo in the retrieval pack vendors a Soundex library, and it
// is a small, fixed algorithm with no meaningful third-party variation —
// see DESIGN.md for why this stays hand-written against the standard
// library rather than pulling in a dependency for it.
// ═══════════════════════════════════════════════════════════════════════════════

// Soundex returns the four-character Soundex code for token.
func Soundex(token string) string {
	if token == "" {
		return ""
	}
	upper := strings.ToUpper(token)
	runes := []rune(upper)
	code := make([]byte, 0, 4)
	code = append(code, byte(runes[0]))

	lastDigit := soundexDigit(runes[0])
	for _, r := range runes[1:] {
		d := soundexDigit(r)
		if d == 0 {
			if r != 'H' && r != 'W' {
				lastDigit = 0
			}
			continue
		}
		if d != lastDigit {
			code = append(code, '0'+d)
		}
		lastDigit = d
		if len(code) == 4 {
			break
		}
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code[:4])
}

func soundexDigit(r rune) byte {
	switch r {
	case 'B', 'F', 'P', 'V':
		return 1
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return 2
	case 'D', 'T':
		return 3
	case 'L':
		return 4
	case 'M', 'N':
		return 5
	case 'R':
		return 6
	}
	return 0
}
