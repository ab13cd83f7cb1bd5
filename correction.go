package ferret

import (
	"sort"
	"sync"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SPELLING / PHONETIC CORRECTION
// ═══════════════════════════════════════════════════════════════════════════════
// A leaf's per-attempt lifecycle is RAW -> ATTEMPT(k) -> {MATCHED,
// EMPTY -> ATTEMPT(k+1), GIVEUP}: starting at edit distance k=SpellingK
// (1 when unset), collect every dictionary token within k (optionally
// intersected with the Soundex-bucket candidates when phonetic correction
// is also requested); if nothing turns up, double k and retry, up to
// MaxAttempts; if candidates are found, keep only the closest (minimum
// edit distance) and rewrite the leaf as an OR over them. Phonetic-only
// correction keeps the whole Soundex bucket. -a (Auto) reruns this once, across
// every unmatched leaf, only if the original query returned zero results.
// ═══════════════════════════════════════════════════════════════════════════════

// CorrectionState names where a correction attempt landed.
type CorrectionState int

const (
	StateRaw CorrectionState = iota
	StateAttempt
	StateMatched
	StateGiveUp
)

// CorrectionOptions configures one correction attempt for a leaf.
type CorrectionOptions struct {
	Spelling    bool
	SpellingK   int // initial edit distance; doubles each failed attempt
	MaxAttempts int
	Phonetic    bool
	Auto        bool
}

// correctionCache memoizes spelling-candidate lookups per (token, k), so a
// repeated lookup of the same token at the same distance (the same
// misspelling in several leaves, or RunQuery's auto retry) does not rescan
// the dictionary. A lookup at a new k still scans it.
type correctionCache struct {
	mu    sync.Mutex
	cache map[string]map[int][]string
}

func newCorrectionCache() *correctionCache {
	return &correctionCache{cache: make(map[string]map[int][]string)}
}

// Correct attempts to replace an unmatched token with an OR of its closest
// dictionary candidates (with phonetic-only options: an OR of its whole
// Soundex bucket).
func (idx *InvertedIndex) Correct(token string, opts CorrectionOptions, cache *correctionCache) (*Node, CorrectionState, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 4
	}
	k := opts.SpellingK
	if k <= 0 {
		k = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var candidates []string
		if opts.Spelling {
			candidates = idx.spellingCandidates(token, k, cache)
		}
		if opts.Phonetic {
			phon := idx.phoneticCandidates(token)
			if opts.Spelling {
				candidates = intersectStrings(candidates, phon)
			} else {
				candidates = phon
			}
		}
		if len(candidates) > 0 {
			if opts.Spelling {
				candidates = bestCandidates(token, candidates)
			}
			return orOfTerms(candidates), StateMatched, nil
		}
		if !opts.Spelling {
			break // phonetic-only has no k ladder: one attempt is final
		}
		k *= 2
	}
	return nil, StateGiveUp, ErrCorrectionExhausted
}

func (idx *InvertedIndex) spellingCandidates(token string, k int, cache *correctionCache) []string {
	if cache != nil {
		cache.mu.Lock()
		if byK, ok := cache.cache[token]; ok {
			if v, ok := byK[k]; ok {
				cache.mu.Unlock()
				return v
			}
		}
		cache.mu.Unlock()
	}

	idx.mu.RLock()
	var out []string
	for tok := range idx.dictionary {
		if WithinEditDistance(token, tok, k) {
			out = append(out, tok)
		}
	}
	idx.mu.RUnlock()
	sort.Strings(out)

	if cache != nil {
		cache.mu.Lock()
		if cache.cache[token] == nil {
			cache.cache[token] = make(map[int][]string)
		}
		cache.cache[token][k] = out
		cache.mu.Unlock()
	}
	return out
}

func (idx *InvertedIndex) phoneticCandidates(token string) []string {
	code := Soundex(token)
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	bucket := idx.phonetic[code]
	out := make([]string, 0, len(bucket))
	for tok := range bucket {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func bestCandidates(token string, candidates []string) []string {
	bestDist := -1
	var best []string
	for _, c := range candidates {
		d := EditDistance(token, c)
		switch {
		case bestDist == -1 || d < bestDist:
			bestDist = d
			best = []string{c}
		case d == bestDist:
			best = append(best, c)
		}
	}
	return best
}

func orOfTerms(tokens []string) *Node {
	children := make([]*Node, len(tokens))
	for i, tok := range tokens {
		children[i] = &Node{Kind: NodeTerm, Token: tok, Literal: true}
	}
	if len(children) == 1 {
		return children[0]
	}
	return &Node{Kind: NodeOr, Children: children}
}

func intersectStrings(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY EXECUTION WITH CORRECTION
// ═══════════════════════════════════════════════════════════════════════════════

// RunQuery executes node, applying the correction loop to any TERM leaf
// that misses the dictionary. If corr.Auto is set and the (possibly
// already-corrected) query returns zero results, it retries once more with
// both spelling and phonetic correction forced on.
func (e *Evaluator) RunQuery(node *Node, corr CorrectionOptions) (*SkipList[DocumentID], *Node, error) {
	rewritten, err := e.applyCorrections(node, corr)
	if err != nil {
		return nil, nil, err
	}
	results, err := e.Evaluate(rewritten)
	if err != nil {
		return nil, nil, err
	}
	if corr.Auto && results.Len() == 0 {
		autoOpts := CorrectionOptions{Spelling: true, SpellingK: 1, Phonetic: true, MaxAttempts: 2}
		if autoRewritten, err := e.applyCorrections(node, autoOpts); err == nil {
			if res2, err2 := e.Evaluate(autoRewritten); err2 == nil && res2.Len() > 0 {
				return res2, autoRewritten, nil
			}
		}
	}
	return results, rewritten, nil
}

func (e *Evaluator) applyCorrections(node *Node, corr CorrectionOptions) (*Node, error) {
	if node == nil {
		return node, nil
	}
	switch node.Kind {
	case NodeTerm:
		if node.Literal || (!corr.Spelling && !corr.Phonetic) {
			return node, nil
		}
		tok := e.analyzeLeaf(node.Token)
		if _, ok := e.idx.lookup(tok); ok {
			return node, nil
		}
		replacement, _, err := e.idx.Correct(tok, corr, e.cache)
		if err != nil {
			return node, nil // exhausted: leave as-is, evaluates to empty
		}
		return replacement, nil
	case NodeAnd, NodeOr:
		children := make([]*Node, len(node.Children))
		for i, c := range node.Children {
			rc, err := e.applyCorrections(c, corr)
			if err != nil {
				return nil, err
			}
			children[i] = rc
		}
		return &Node{Kind: node.Kind, Children: children}, nil
	case NodeNot:
		rc, err := e.applyCorrections(node.Children[0], corr)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeNot, Children: []*Node{rc}}, nil
	default:
		return node, nil
	}
}
