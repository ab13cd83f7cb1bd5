// Package ferret implements a boolean-model information-retrieval engine:
// an inverted index with skip-pointer-accelerated posting lists, permuterm
// wildcard resolution, Soundex/edit-distance correction, and a query
// language evaluated with wf-idf + zone-weight ranking.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS AN INVERTED INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// Given documents:
//
//	Doc 1: "the quick brown fox"
//	Doc 2: "the lazy dog"
//	Doc 3: "quick brown dogs"
//
// the dictionary maps each surviving token to the documents (and positions)
// it occurs in:
//
//	"quick" → [Doc1:pos0, Doc3:pos0]
//	"brown" → [Doc1:pos1, Doc3:pos1]
//	"fox"   → [Doc1:pos2]
//	"lazi"  → [Doc2:pos0]   (stemmed)
//	"dog"   → [Doc2:pos1, Doc3:pos2]   (stemmed, merges "dog"/"dogs")
//
// (the stopword "the" is dropped and takes no position)
//
// which turns "find documents containing quick AND brown" from a full scan
// into a handful of skip-list intersections.
// ═══════════════════════════════════════════════════════════════════════════════
package ferret

import (
	"sync"
	"sync/atomic"
	"time"
)

// InvertedIndex is the engine's core structure: the dictionary of terms,
// the permuterm and phonetic auxiliary structures derived from it, and the
// document table. It is built once via Build, then read concurrently by
// any number of queries — readers never block each other, and no writer
// runs after Build returns.
type InvertedIndex struct {
	mu sync.RWMutex

	dictionary map[string]*Term
	permuterm  *PermutermIndex
	phonetic   map[string]map[string]struct{} // soundex code -> tokens
	documents  map[DocumentID]*DocumentMeta

	analyzerCfg AnalyzerConfig
	stemmer     Stemmer
	ids         *IDGenerator

	rankEnabled   bool
	matcherBudget time.Duration

	totalDocs    int
	built        bool
	allDocsCache *SkipList[DocumentID]

	buildProgress atomic.Uint64 // fixed-point progress, 0..1_000_000
}

// NewInvertedIndex returns an empty index ready for Build.
func NewInvertedIndex(analyzerCfg AnalyzerConfig, stemmer Stemmer) *InvertedIndex {
	return &InvertedIndex{
		dictionary:    make(map[string]*Term),
		permuterm:     newPermutermIndex(),
		phonetic:      make(map[string]map[string]struct{}),
		documents:     make(map[DocumentID]*DocumentMeta),
		analyzerCfg:   analyzerCfg,
		stemmer:       stemmer,
		ids:           NewIDGenerator(),
		matcherBudget: defaultMatcherBudget,
		rankEnabled:   true,
	}
}

// SetRankEnabled sets the index's ranking flag, which Encode persists in
// the flag byte and Decode restores. Evaluator.Rank does not read it: it
// scores or returns ascending DocumentID order per EvalOptions.Rank.
func (idx *InvertedIndex) SetRankEnabled(enabled bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rankEnabled = enabled
}

// SetMatcherBudget overrides the wildcard matcher's wall-clock budget.
func (idx *InvertedIndex) SetMatcherBudget(d time.Duration) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.matcherBudget = d
}

// TotalDocuments reports how many documents the index has ingested.
func (idx *InvertedIndex) TotalDocuments() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.totalDocs
}

// VocabularySize reports the number of distinct dictionary tokens.
func (idx *InvertedIndex) VocabularySize() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.dictionary)
}

// Progress returns build progress as a fraction in [0,1].
func (idx *InvertedIndex) Progress() float64 {
	return float64(idx.buildProgress.Load()) / 1_000_000
}

func (idx *InvertedIndex) lookup(token string) (*Term, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	t, ok := idx.dictionary[token]
	return t, ok
}

func (idx *InvertedIndex) documentMeta(doc DocumentID) (DocumentMeta, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	m, ok := idx.documents[doc]
	if !ok {
		return DocumentMeta{}, false
	}
	return *m, true
}

func (idx *InvertedIndex) allDocuments() *SkipList[DocumentID] {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.allDocsCache != nil {
		return idx.allDocsCache
	}
	return NewSkipList[DocumentID](compareDocumentID)
}
