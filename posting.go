package ferret

import (
	"math"

	"github.com/RoaringBitmap/roaring"
)

// Posting is one (term, document) occurrence record: the document and the
// ascending positions of occurrence within its unified position space.
type Posting struct {
	Doc       DocumentID
	Positions []uint32
}

// TermFrequency is the number of times the term occurs in this document.
func (p *Posting) TermFrequency() int { return len(p.Positions) }

func compareDocumentID(a, b DocumentID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func comparePostingByDoc(a, b *Posting) int {
	return compareDocumentID(a.Doc, b.Doc)
}

// Term is one dictionary entry: its posting list, a cached idf, and a
// roaring.Bitmap mirror of the posting list's document ids, filled during
// build and decode. DocumentFrequency and the evaluator's set operations
// read the skip list, not the bitmap; the skip list is the system of
// record, and is what Encode persists.
type Term struct {
	Token    string
	Postings *SkipList[*Posting]
	Bitmap   *roaring.Bitmap

	idf      float64
	idfValid bool
}

func newTerm(token string) *Term {
	return &Term{
		Token:    token,
		Postings: NewSkipList[*Posting](comparePostingByDoc),
		Bitmap:   roaring.New(),
	}
}

// DocumentFrequency is the number of documents containing this term.
func (t *Term) DocumentFrequency() int { return t.Postings.Len() }

// IDF computes (and caches) the inverse document frequency of the term
// against a corpus of totalDocs documents: ln(N / df).
func (t *Term) IDF(totalDocs int) float64 {
	if !t.idfValid {
		df := t.DocumentFrequency()
		if df == 0 || totalDocs == 0 {
			t.idf = 0
		} else {
			t.idf = math.Log(float64(totalDocs) / float64(df))
		}
		t.idfValid = true
	}
	return t.idf
}

// docIDs projects the posting list down to a DocSet (document ids only),
// for boolean combination in the evaluator.
func (t *Term) docIDs() *SkipList[DocumentID] {
	sl := NewSkipList[DocumentID](compareDocumentID)
	sl.elems = make([]DocumentID, t.Postings.Len())
	for i := 0; i < t.Postings.Len(); i++ {
		sl.elems[i] = t.Postings.At(i).Doc
	}
	sl.Finalize()
	return sl
}

// findPosting binary-searches term's posting list for doc.
func findPosting(postings *SkipList[*Posting], doc DocumentID) (*Posting, bool) {
	lo, hi := 0, postings.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		if postings.At(mid).Doc < doc {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < postings.Len() && postings.At(lo).Doc == doc {
		return postings.At(lo), true
	}
	return nil, false
}

// containsPosition binary-searches an ascending position slice.
func containsPosition(positions []uint32, p uint32) bool {
	lo, hi := 0, len(positions)
	for lo < hi {
		mid := (lo + hi) / 2
		if positions[mid] < p {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(positions) && positions[lo] == p
}
