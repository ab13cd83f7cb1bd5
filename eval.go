package ferret

import (
	"fmt"
	"sort"
)

// EvalOptions controls ranking behavior; CorrectionOptions (correction.go)
// controls the spelling/phonetic correction loop separately.
type EvalOptions struct {
	Rank     bool
	UseWFIDF bool // wf = 1+ln(tf) when true, wf = tf when false
}

// Evaluator compiles and runs a parsed query against one InvertedIndex.
type Evaluator struct {
	idx   *InvertedIndex
	opts  EvalOptions
	cache *correctionCache
}

// NewEvaluator returns an Evaluator bound to idx.
func NewEvaluator(idx *InvertedIndex, opts EvalOptions) *Evaluator {
	return &Evaluator{idx: idx, opts: opts, cache: newCorrectionCache()}
}

// ═══════════════════════════════════════════════════════════════════════════════
// BOTTOM-UP EVALUATION
// ═══════════════════════════════════════════════════════════════════════════════
// Evaluate compiles the tree into a single DocSet (a *SkipList[DocumentID])
// by recursing post-order: every leaf resolves to a DocSet (TERM/WILDCARD
// via the dictionary, PHRASE via an AND-then-adjacency-filter), and every
// internal node combines its children's DocSets with the matching
// skip-accelerated set operation (AND -> Intersect, OR -> Union,
// NOT -> Difference against the full document set).
// ═══════════════════════════════════════════════════════════════════════════════

// Evaluate compiles node into the document set matching it.
func (e *Evaluator) Evaluate(node *Node) (*SkipList[DocumentID], error) {
	switch node.Kind {
	case NodeTerm:
		return e.evalTerm(node), nil
	case NodeWildcard:
		return e.evalWildcard(node)
	case NodePhrase:
		return e.evalPhrase(node.Phrase), nil
	case NodeAnd:
		return e.evalAnd(node.Children)
	case NodeOr:
		return e.evalOr(node.Children)
	case NodeNot:
		return e.evalNot(node.Children[0])
	default:
		return nil, fmt.Errorf("%w: unknown node kind", ErrMalformedQuery)
	}
}

// analyzeLeaf runs a raw query word through the same normalize/stopword/
// stem pipeline indexing used, so dictionary lookups are meaningful.
func (e *Evaluator) analyzeLeaf(raw string) string {
	n := Normalize(raw)
	if n == "" {
		return ""
	}
	if e.idx.analyzerCfg.EnableStopwords && isStopword(n) {
		return ""
	}
	if e.idx.analyzerCfg.EnableStemming {
		return e.idx.stemmer.Stem(n)
	}
	return n
}

func (e *Evaluator) lookupDocSet(tok string) *SkipList[DocumentID] {
	if tok == "" {
		return NewSkipList[DocumentID](compareDocumentID)
	}
	term, ok := e.idx.lookup(tok)
	if !ok {
		return NewSkipList[DocumentID](compareDocumentID)
	}
	return term.docIDs()
}

func (e *Evaluator) evalTerm(n *Node) *SkipList[DocumentID] {
	tok := n.Token
	if !n.Literal {
		tok = e.analyzeLeaf(n.Token)
	}
	return e.lookupDocSet(tok)
}

func (e *Evaluator) evalWildcard(n *Node) (*SkipList[DocumentID], error) {
	q := NormalizeWildcard(n.Token)
	tokens, err := e.idx.ResolveWildcard(q)
	if err != nil {
		return nil, err
	}
	result := NewSkipList[DocumentID](compareDocumentID)
	for _, tok := range tokens {
		result = Union(result, e.lookupDocSet(tok), compareDocumentID)
	}
	return result, nil
}

// evalPhrase intersects the participating terms' document sets (smallest
// first), then filters to documents where the terms occur at strictly
// consecutive positions in the original phrase order.
func (e *Evaluator) evalPhrase(rawTokens []string) *SkipList[DocumentID] {
	var terms []string
	for _, raw := range rawTokens {
		if tok := e.analyzeLeaf(raw); tok != "" {
			terms = append(terms, tok)
		}
	}
	if len(terms) == 0 {
		return NewSkipList[DocumentID](compareDocumentID)
	}
	if len(terms) == 1 {
		return e.lookupDocSet(terms[0])
	}

	ordered := make([]*Term, len(terms))
	for i, tok := range terms {
		t, ok := e.idx.lookup(tok)
		if !ok {
			return NewSkipList[DocumentID](compareDocumentID)
		}
		ordered[i] = t
	}

	bySize := append([]*Term(nil), ordered...)
	sort.Slice(bySize, func(i, j int) bool { return bySize[i].DocumentFrequency() < bySize[j].DocumentFrequency() })
	candidates := bySize[0].docIDs()
	for _, t := range bySize[1:] {
		candidates = Intersect(candidates, t.docIDs(), compareDocumentID)
	}

	result := NewSkipList[DocumentID](compareDocumentID)
	for i := 0; i < candidates.Len(); i++ {
		doc := candidates.At(i)
		if phraseAdjacentInDoc(ordered, doc) {
			result.elems = append(result.elems, doc)
		}
	}
	result.Finalize()
	return result
}

func phraseAdjacentInDoc(ordered []*Term, doc DocumentID) bool {
	positionSets := make([][]uint32, len(ordered))
	for i, t := range ordered {
		p, ok := findPosting(t.Postings, doc)
		if !ok {
			return false
		}
		positionSets[i] = p.Positions
	}
	for _, start := range positionSets[0] {
		match := true
		for offset := 1; offset < len(positionSets); offset++ {
			if !containsPosition(positionSets[offset], start+uint32(offset)) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (e *Evaluator) evalAnd(children []*Node) (*SkipList[DocumentID], error) {
	sets := make([]*SkipList[DocumentID], len(children))
	for i, c := range children {
		s, err := e.Evaluate(c)
		if err != nil {
			return nil, err
		}
		sets[i] = s
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Len() < sets[j].Len() })
	result := sets[0]
	for _, s := range sets[1:] {
		result = Intersect(result, s, compareDocumentID)
	}
	return result, nil
}

func (e *Evaluator) evalOr(children []*Node) (*SkipList[DocumentID], error) {
	result := NewSkipList[DocumentID](compareDocumentID)
	for _, c := range children {
		s, err := e.Evaluate(c)
		if err != nil {
			return nil, err
		}
		result = Union(result, s, compareDocumentID)
	}
	return result, nil
}

func (e *Evaluator) evalNot(child *Node) (*SkipList[DocumentID], error) {
	s, err := e.Evaluate(child)
	if err != nil {
		return nil, err
	}
	return Difference(e.idx.allDocuments(), s, compareDocumentID), nil
}
