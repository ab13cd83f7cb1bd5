package ferret

import "testing"

func newTestIndexForMatching() *InvertedIndex {
	idx := NewInvertedIndex(AnalyzerConfig{MinTokenLength: 1, EnableStemming: false}, NewStemmer(StemmerNone, "", nil))
	for _, tok := range []string{"space", "spice", "spade", "cart", "running", "runner"} {
		idx.dictionary[tok] = newTerm(tok)
	}
	idx.rebuildPermuterm()
	return idx
}

func TestResolveWildcard_SingleStar(t *testing.T) {
	idx := newTestIndexForMatching()
	got, err := idx.ResolveWildcard("sp*e")
	if err != nil {
		t.Fatalf("ResolveWildcard() error = %v", err)
	}
	want := map[string]bool{"space": true, "spice": true, "spade": true}
	if len(got) != len(want) {
		t.Fatalf("ResolveWildcard(sp*e) = %v, want keys %v", got, want)
	}
	for _, tok := range got {
		if !want[tok] {
			t.Errorf("unexpected token %q", tok)
		}
	}
}

func TestResolveWildcard_NoStar(t *testing.T) {
	idx := newTestIndexForMatching()
	if _, err := idx.ResolveWildcard("space"); err == nil {
		t.Error("ResolveWildcard(space) error = nil, want ErrMalformedQuery")
	}
}

func TestMatchWildcard_MultiStar(t *testing.T) {
	idx := newTestIndexForMatching()
	ok, err := idx.matchWildcard("r*n*r", "runner")
	if err != nil {
		t.Fatalf("matchWildcard() error = %v", err)
	}
	if !ok {
		t.Error("matchWildcard(r*n*r, runner) = false, want true")
	}
}

func TestMatchWildcard_Rejects(t *testing.T) {
	idx := newTestIndexForMatching()
	ok, err := idx.matchWildcard("r*z*r", "runner")
	if err != nil {
		t.Fatalf("matchWildcard() error = %v", err)
	}
	if ok {
		t.Error("matchWildcard(r*z*r, runner) = true, want false")
	}
}
