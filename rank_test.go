package ferret

import "testing"

func TestRank_TitleHitOutranksBodyOnlyHit(t *testing.T) {
	idx := buildTestIndex(t)
	node, err := ParseQuery("fox")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	e := NewEvaluator(idx, EvalOptions{Rank: true, UseWFIDF: true})
	results, err := e.Evaluate(node)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	ranked := e.Rank(node, results)
	if len(ranked) < 2 {
		t.Fatalf("expected at least 2 ranked results, got %d", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("ranked results not in descending score order at index %d", i)
		}
	}
	// "Fox Tale" has "fox" in its title (zone weight 3.0) as well as its
	// body; it should outrank "Quick Brown Things", where "foxes" appears
	// only in the body (zone weight 1.0). ("dog" would not do here: it
	// occurs in every document, so its idf ln(3/3) is 0 and all scores tie.)
	foxTaleMeta, _ := idx.documentMeta(findDocByTitle(idx, "Fox Tale"))
	quickMeta, _ := idx.documentMeta(findDocByTitle(idx, "Quick Brown Things"))
	var foxTaleScore, quickScore float64
	for _, r := range ranked {
		if r.Doc == foxTaleMeta.ID {
			foxTaleScore = r.Score
		}
		if r.Doc == quickMeta.ID {
			quickScore = r.Score
		}
	}
	if foxTaleScore <= quickScore {
		t.Errorf("title-zone hit (%f) did not outrank body-only hit (%f)", foxTaleScore, quickScore)
	}
}

func TestRank_Disabled_OrdersByDocumentID(t *testing.T) {
	idx := buildTestIndex(t)
	node, _ := ParseQuery("dog")
	e := NewEvaluator(idx, EvalOptions{Rank: false})
	results, _ := e.Evaluate(node)
	ranked := e.Rank(node, results)
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Doc < ranked[i-1].Doc {
			t.Errorf("unranked results not in ascending DocumentID order at index %d", i)
		}
		if ranked[i].Score != 0 {
			t.Errorf("unranked result has non-zero score %f", ranked[i].Score)
		}
	}
}

func findDocByTitle(idx *InvertedIndex, title string) DocumentID {
	for id, meta := range idx.documents {
		if meta.Title == title {
			return id
		}
	}
	return 0
}
