package ferret

import (
	"math"
	"sort"
)

// RankedDocument pairs a matched document with its score (0 when ranking
// is disabled).
type RankedDocument struct {
	Doc   DocumentID
	Score float64
}

// ═══════════════════════════════════════════════════════════════════════════════
// wf-idf + ZONE WEIGHT RANKING
// ═══════════════════════════════════════════════════════════════════════════════
//
//	score(d) = Σ over query leaves ℓ of  wf(d,ℓ) · idf(ℓ) · zoneWeight(d,ℓ)
//
// wf(d,ℓ) is 1+ln(tf) (log-dampened) or plain tf, per EvalOptions.UseWFIDF.
// idf(ℓ) is ln(N/df), cached per Term. zoneWeight(d,ℓ) sums the zone-rank
// weight (Zone.Weight) of every position ℓ occurs at in d — a title hit
// counts for more than a body hit. NOT-negated leaves contribute no
// positive weight; they only ever remove documents from the result set.
// ═══════════════════════════════════════════════════════════════════════════════

// Rank scores and orders results. When ranking is disabled it returns
// documents in ascending DocumentID order with a zero score.
func (e *Evaluator) Rank(node *Node, results *SkipList[DocumentID]) []RankedDocument {
	ranked := make([]RankedDocument, 0, results.Len())
	if !e.opts.Rank {
		for i := 0; i < results.Len(); i++ {
			ranked = append(ranked, RankedDocument{Doc: results.At(i)})
		}
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].Doc < ranked[j].Doc })
		return ranked
	}

	leaves := e.collectLeafTerms(node)
	for i := 0; i < results.Len(); i++ {
		doc := results.At(i)
		ranked = append(ranked, RankedDocument{Doc: doc, Score: e.scoreDocument(doc, leaves)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Doc < ranked[j].Doc
	})
	return ranked
}

// collectLeafTerms flattens TERM/PHRASE/WILDCARD leaves under AND/OR into
// their resolved dictionary terms. NOT subtrees are skipped: negated terms
// exclude documents but never contribute positive ranking weight.
func (e *Evaluator) collectLeafTerms(node *Node) []*Term {
	var out []*Term
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Kind {
		case NodeTerm:
			tok := n.Token
			if !n.Literal {
				tok = e.analyzeLeaf(n.Token)
			}
			if t, ok := e.idx.lookup(tok); ok {
				out = append(out, t)
			}
		case NodePhrase:
			for _, raw := range n.Phrase {
				if tok := e.analyzeLeaf(raw); tok != "" {
					if t, ok := e.idx.lookup(tok); ok {
						out = append(out, t)
					}
				}
			}
		case NodeWildcard:
			q := NormalizeWildcard(n.Token)
			if toks, err := e.idx.ResolveWildcard(q); err == nil {
				for _, tok := range toks {
					if t, ok := e.idx.lookup(tok); ok {
						out = append(out, t)
					}
				}
			}
		case NodeAnd, NodeOr:
			for _, c := range n.Children {
				walk(c)
			}
		case NodeNot:
			// negated leaves never contribute ranking weight
		}
	}
	walk(node)
	return out
}

func (e *Evaluator) scoreDocument(doc DocumentID, leaves []*Term) float64 {
	meta, ok := e.idx.documentMeta(doc)
	if !ok {
		return 0
	}
	score := 0.0
	for _, term := range leaves {
		posting, ok := findPosting(term.Postings, doc)
		if !ok || len(posting.Positions) == 0 {
			continue
		}
		tf := len(posting.Positions)
		var wf float64
		if e.opts.UseWFIDF {
			wf = 1 + math.Log(float64(tf))
		} else {
			wf = float64(tf)
		}
		score += wf * term.IDF(e.idx.totalDocs) * zoneWeightForPositions(meta, posting.Positions)
	}
	return score
}

// zoneWeightForPositions sums the zone weight of every position a term
// occurs at within a document.
func zoneWeightForPositions(meta DocumentMeta, positions []uint32) float64 {
	total := 0.0
	for _, p := range positions {
		if rank, ok := meta.zoneAt(p); ok {
			total += rank.Weight()
		} else {
			total += 1.0
		}
	}
	return total
}
