package ferret

import "strings"

// ═══════════════════════════════════════════════════════════════════════════════
// CLASSIC PORTER STEMMER
// ═══════════════════════════════════════════════════════════════════════════════
// This is Porter's original 1980 suffix-stripping algorithm (steps 1a-1c,
// 2, 3, 4, 5a, 5b) — a distinct, older algorithm from the Porter2/Snowball
// one the kljensen/snowball dependency provides. Keeping both lets the
// engine offer a "classic" stemmer alongside the pack's Snowball library
// without bundling a second third-party implementation: no example repo in
// the retrieval pack vendors classic-only Porter, so this one is hand
// written (see DESIGN.md).
// ═══════════════════════════════════════════════════════════════════════════════

// PorterStem reduces word to its Porter-stemmed root.
func PorterStem(word string) string {
	w := []byte(strings.ToLower(word))
	if len(w) <= 2 {
		return string(w)
	}
	w = step1a(w)
	w = step1b(w)
	w = step1c(w)
	w = step2(w)
	w = step3(w)
	w = step4(w)
	w = step5a(w)
	w = step5b(w)
	return string(w)
}

func isConsonant(w []byte, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(w, i-1)
	}
	return true
}

// measure counts consonant-vowel sequences (Porter's "m").
func measure(w []byte) int {
	m := 0
	i, n := 0, len(w)
	for i < n && isConsonant(w, i) {
		i++
	}
	for i < n {
		for i < n && !isConsonant(w, i) {
			i++
		}
		if i >= n {
			break
		}
		for i < n && isConsonant(w, i) {
			i++
		}
		m++
	}
	return m
}

func containsVowel(w []byte) bool {
	for i := range w {
		if !isConsonant(w, i) {
			return true
		}
	}
	return false
}

func endsDoubleConsonant(w []byte) bool {
	n := len(w)
	if n < 2 {
		return false
	}
	return w[n-1] == w[n-2] && isConsonant(w, n-1)
}

// cvc reports whether w ends consonant-vowel-consonant, where the final
// consonant is not w, x, or y.
func cvc(w []byte) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	if !isConsonant(w, n-3) || isConsonant(w, n-2) || !isConsonant(w, n-1) {
		return false
	}
	switch w[n-1] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

func hasSuffix(w []byte, suf string) bool {
	return len(w) >= len(suf) && string(w[len(w)-len(suf):]) == suf
}

func trimSuffix(w []byte, suf string) []byte {
	return w[:len(w)-len(suf)]
}

func replaceSuffix(w []byte, suf, repl string) []byte {
	return append(trimSuffix(w, suf), []byte(repl)...)
}

func step1a(w []byte) []byte {
	switch {
	case hasSuffix(w, "sses"):
		return replaceSuffix(w, "sses", "ss")
	case hasSuffix(w, "ies"):
		return replaceSuffix(w, "ies", "i")
	case hasSuffix(w, "ss"):
		return w
	case hasSuffix(w, "s"):
		return trimSuffix(w, "s")
	}
	return w
}

func step1b(w []byte) []byte {
	switch {
	case hasSuffix(w, "eed"):
		stem := trimSuffix(w, "eed")
		if measure(stem) > 0 {
			return append(stem, 'e', 'e')
		}
		return w
	case hasSuffix(w, "ed"):
		stem := trimSuffix(w, "ed")
		if containsVowel(stem) {
			return step1bCleanup(stem)
		}
		return w
	case hasSuffix(w, "ing"):
		stem := trimSuffix(w, "ing")
		if containsVowel(stem) {
			return step1bCleanup(stem)
		}
		return w
	}
	return w
}

func step1bCleanup(w []byte) []byte {
	switch {
	case hasSuffix(w, "at"), hasSuffix(w, "bl"), hasSuffix(w, "iz"):
		return append(w, 'e')
	case endsDoubleConsonant(w) && w[len(w)-1] != 'l' && w[len(w)-1] != 's' && w[len(w)-1] != 'z':
		return w[:len(w)-1]
	case measure(w) == 1 && cvc(w):
		return append(w, 'e')
	}
	return w
}

func step1c(w []byte) []byte {
	if hasSuffix(w, "y") && containsVowel(trimSuffix(w, "y")) {
		w[len(w)-1] = 'i'
	}
	return w
}

type suffixRule struct {
	suffix, replacement string
}

var step2Rules = []suffixRule{
	{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"}, {"anci", "ance"},
	{"izer", "ize"}, {"abli", "able"}, {"alli", "al"}, {"entli", "ent"},
	{"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"}, {"ation", "ate"},
	{"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"}, {"fulness", "ful"},
	{"ousness", "ous"}, {"aliti", "al"}, {"iviti", "ive"}, {"biliti", "ble"},
}

var step3Rules = []suffixRule{
	{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
	{"ical", "ic"}, {"ful", ""}, {"ness", ""},
}

func applyLongestSuffixRule(w []byte, rules []suffixRule, minMeasure int) []byte {
	best := -1
	for i, r := range rules {
		if hasSuffix(w, r.suffix) {
			if best == -1 || len(rules[i].suffix) > len(rules[best].suffix) {
				best = i
			}
		}
	}
	if best == -1 {
		return w
	}
	r := rules[best]
	stem := trimSuffix(w, r.suffix)
	if measure(stem) > minMeasure {
		return append(stem, []byte(r.replacement)...)
	}
	return w
}

func step2(w []byte) []byte { return applyLongestSuffixRule(w, step2Rules, 0) }
func step3(w []byte) []byte { return applyLongestSuffixRule(w, step3Rules, 0) }

var step4Suffixes = []string{
	"al", "ance", "ence", "er", "ic", "able", "ible", "ant", "ement", "ment",
	"ent", "ism", "ate", "iti", "ous", "ive", "ize",
}

func step4(w []byte) []byte {
	if hasSuffix(w, "ion") {
		stem := trimSuffix(w, "ion")
		if len(stem) > 0 {
			last := stem[len(stem)-1]
			if (last == 's' || last == 't') && measure(stem) > 1 {
				return stem
			}
		}
	}
	best := -1
	for i, suf := range step4Suffixes {
		if hasSuffix(w, suf) {
			if best == -1 || len(step4Suffixes[i]) > len(step4Suffixes[best]) {
				best = i
			}
		}
	}
	if best == -1 {
		return w
	}
	stem := trimSuffix(w, step4Suffixes[best])
	if measure(stem) > 1 {
		return stem
	}
	return w
}

func step5a(w []byte) []byte {
	if hasSuffix(w, "e") {
		stem := trimSuffix(w, "e")
		m := measure(stem)
		if m > 1 || (m == 1 && !cvc(stem)) {
			return stem
		}
	}
	return w
}

func step5b(w []byte) []byte {
	if measure(w) > 1 && endsDoubleConsonant(w) && w[len(w)-1] == 'l' {
		return w[:len(w)-1]
	}
	return w
}
