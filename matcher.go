package ferret

import (
	"fmt"
	"strings"
	"time"
)

const defaultMatcherBudget = 20 * time.Millisecond

// ═══════════════════════════════════════════════════════════════════════════════
// WILDCARD RESOLUTION
// ═══════════════════════════════════════════════════════════════════════════════
// A wildcard query term is un-stemmed (it can't survive stemming with a '*'
// in it), but the dictionary only stores stemmed tokens. Resolving "a*b"
// against the dictionary is a four-step procedure:
//
//  1. Rotate the query so its first '*' lands at the end, exactly like a
//     permuterm rotation of a literal token.
//  2. Trim the trailing '*' to get a search prefix.
//  3. Binary-search the permuterm rotation table for that prefix: every
//     match is a dictionary token compatible with the single-wildcard
//     shape.
//  4. If the query has more than one '*', those candidates are only a
//     superset — filter them with the matcher below, which decides
//     whether some un-stemmed expansion of the query could stem down to
//     the (already-stemmed) candidate.
// ═══════════════════════════════════════════════════════════════════════════════

// ResolveWildcard returns the dictionary tokens compatible with the
// normalized wildcard query q (which must contain at least one '*').
func (idx *InvertedIndex) ResolveWildcard(q string) ([]string, error) {
	stars := strings.Count(q, "*")
	if stars == 0 {
		return nil, fmt.Errorf("%w: wildcard query %q has no '*'", ErrMalformedQuery, q)
	}

	firstStar := strings.IndexByte(q, '*')
	w := q + string(permutermTerminator)
	k := firstStar + 1
	rotated := w[k:] + w[:k]
	prefix := strings.TrimSuffix(rotated, "*")
	// With more than one '*', the rotated form still holds the others;
	// searching only up to the next '*' yields the superset step 4 filters.
	if next := strings.IndexByte(prefix, '*'); next >= 0 {
		prefix = prefix[:next]
	}

	idx.mu.RLock()
	candidates := idx.permuterm.lookupPrefix(prefix)
	idx.mu.RUnlock()

	if stars == 1 {
		return candidates, nil
	}

	var matched []string
	for _, cand := range candidates {
		ok, err := idx.matchWildcard(q, cand)
		if err != nil {
			continue // ErrMatcherTimeout is recoverable: candidate rejected
		}
		if ok {
			matched = append(matched, cand)
		}
	}
	return matched, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// FINITE-STATE MATCHER
// ═══════════════════════════════════════════════════════════════════════════════
// The model has named states — NORMAL (consuming literal characters),
// WILDCARD (a '*' entered, trying successively longer consumption from a
// saved checkpoint: SAVE/RECOVERY), TMP (the candidate's stemmed form is
// exhausted but literal query text remains — bridge by re-stemming), and
// the terminal VALID/INVALID. Below, that model is realized as bounded
// backtracking recursion rather than an explicit transition table: each
// named state is marked at the point it is entered, so the mapping stays
// traceable, while recursion keeps the control flow easy to get right.
//
// Termination: a step counter checked against a wall-clock budget
// (the index's matcherBudget, default 20ms, set by SetMatcherBudget) guarantees the search gives up rather than
// explores pathological backtracking forever; a timeout rejects the
// candidate (recoverable, per ErrMatcherTimeout).
// ═══════════════════════════════════════════════════════════════════════════════

func (idx *InvertedIndex) matchWildcard(query, candidate string) (bool, error) {
	deadline := time.Now().Add(idx.matcherBudget)
	steps := 0
	timedOut := false

	var walk func(i, j int) bool
	walk = func(i, j int) bool {
		steps++
		if steps&63 == 0 && time.Now().After(deadline) {
			timedOut = true
			return false
		}
		// NORMAL: consume literal characters until '*' or end of query.
		for i < len(query) && query[i] != '*' {
			if j >= len(candidate) {
				// INVALID_TMP: candidate exhausted, literal text remains.
				return tmpBridge(idx.stemmer, query, i, candidate)
			}
			if query[i] != candidate[j] {
				return false // INVALID
			}
			i++
			j++
		}
		if i == len(query) {
			return j == len(candidate) // VALID iff candidate also exhausted
		}
		// WILDCARD: query[i] == '*'. SAVE a checkpoint at each possible
		// consumption length and RECOVERY-retry on failure.
		for k := j; k <= len(candidate); k++ {
			if walk(i+1, k) {
				return true
			}
			if timedOut {
				return false
			}
		}
		return false
	}

	if walk(0, 0) {
		return true, nil
	}
	if timedOut {
		return false, ErrMatcherTimeout
	}
	return false, nil
}

// tmpBridge implements the TMP transition: candidate (the stemmed
// dictionary form) is exhausted while literal query characters remain.
// Re-stemming candidate + those remaining literal characters and checking
// it still reduces to candidate tests whether the un-stemmed word the
// query describes is consistent with the stemmer having stripped exactly
// that suffix.
func tmpBridge(stemmer Stemmer, query string, i int, candidate string) bool {
	residual := candidate + strings.ReplaceAll(query[i:], "*", "")
	return stemmer.Stem(residual) == candidate
}
