package ferret

import (
	"context"
	"testing"
	"time"
)

// Invariant 1: posting lists are strictly ascending by DocumentId, with no
// duplicates, and df(T) = |postings(T)| > 0 for every dictionary term.
func TestInvariant1_PostingListsAscendingNoDuplicates(t *testing.T) {
	idx := buildTestIndex(t)
	for token, term := range idx.dictionary {
		n := term.Postings.Len()
		if n == 0 {
			t.Errorf("token %q: df = 0, want > 0", token)
		}
		if n != term.DocumentFrequency() {
			t.Errorf("token %q: |postings| = %d, DocumentFrequency() = %d", token, n, term.DocumentFrequency())
		}
		for i := 1; i < n; i++ {
			prev := term.Postings.At(i - 1).Doc
			cur := term.Postings.At(i).Doc
			if cur <= prev {
				t.Errorf("token %q: postings not strictly ascending at %d: %d then %d", token, i, prev, cur)
			}
		}
	}
}

// Invariant 2 (scenario S6): for P=6 elements, F = ceil(sqrt(6)) = 3,
// S = floor(6/3) = 2, forward pointers live at positions {0, 2, 4}; the
// last element (index 5 = P-1) has none.
func TestInvariant2_SkipPointerFormula_SixElements(t *testing.T) {
	sl := NewSkipList[int](intCmp)
	for _, v := range []int{1, 3, 5, 7, 9, 11} {
		sl.Insert(v)
	}
	sl.Finalize()

	want := map[int]bool{0: true, 2: true, 4: true}
	for i := 0; i < sl.Len(); i++ {
		hasPointer := sl.forward[i] != -1
		if want[i] && !hasPointer {
			t.Errorf("position %d: want forward pointer, got none", i)
		}
		if !want[i] && hasPointer {
			t.Errorf("position %d: want no forward pointer, got one to %d", i, sl.forward[i])
		}
	}
	if sl.forward[sl.Len()-1] != -1 {
		t.Errorf("last element has a forward pointer, want none")
	}
}

// Invariant 3: for every dictionary token t, the rotations recorded in the
// permuterm map whose origin is t equal the full cyclic rotation set of
// t + "$".
func TestInvariant3_PermutermRotationCompleteness(t *testing.T) {
	idx := buildTestIndex(t)
	for token := range idx.dictionary {
		want := make(map[string]bool)
		for _, r := range rotationsOf(token) {
			want[r] = true
		}
		got := make(map[string]bool)
		for _, e := range idx.permuterm.rotations {
			if e.Token == token {
				got[e.Rotation] = true
			}
		}
		if len(got) != len(want) {
			t.Fatalf("token %q: %d rotations recorded, want %d", token, len(got), len(want))
		}
		for r := range want {
			if !got[r] {
				t.Errorf("token %q: missing rotation %q", token, r)
			}
		}
	}
}

// Invariant 4: the Soundex bucket for code c equals exactly the set of
// dictionary tokens whose Soundex code is c, and the union of all buckets
// equals the dictionary.
func TestInvariant4_SoundexBucketPartition(t *testing.T) {
	idx := buildTestIndex(t)

	union := make(map[string]bool)
	for code, bucket := range idx.phonetic {
		for token := range bucket {
			if Soundex(token) != code {
				t.Errorf("token %q in bucket %q, but Soundex(%q) = %q", token, code, token, Soundex(token))
			}
			union[token] = true
		}
	}
	for token := range idx.dictionary {
		code := Soundex(token)
		bucket, ok := idx.phonetic[code]
		if !ok || !bucket[token] {
			t.Errorf("token %q not found in its Soundex bucket %q", token, code)
		}
		if !union[token] {
			t.Errorf("token %q missing from bucket union", token)
		}
	}
	if len(union) != len(idx.dictionary) {
		t.Errorf("bucket union has %d tokens, dictionary has %d", len(union), len(idx.dictionary))
	}
}

// Invariant 5: normalization is idempotent.
func TestInvariant5_NormalizationIdempotent(t *testing.T) {
	cases := []string{"Hello, World!", "  spaced  out  ", "ALLCAPS", "already-normal", "", "Ünïcode-ish"}
	for _, c := range cases {
		once := Normalize(c)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", c, twice, once)
		}
	}
}

// Invariant 6: stemming is deterministic for a fixed configuration.
func TestInvariant6_StemmingDeterministic(t *testing.T) {
	words := []string{"running", "flies", "happiness", "agreed", "fox", "universal"}
	for _, kind := range []StemmerKind{StemmerNone, StemmerPorter, StemmerSnowball} {
		stemmer := NewStemmer(kind, "english", nil)
		for _, w := range words {
			a := stemmer.Stem(w)
			b := stemmer.Stem(w)
			if a != b {
				t.Errorf("stemmer %v: Stem(%q) not deterministic: %q vs %q", kind, w, a, b)
			}
		}
	}
}

// Invariant 7: boolean algebra laws over result sets.
func TestInvariant7_BooleanAlgebraLaws(t *testing.T) {
	idx := buildTestIndex(t)
	fox := toSet(evalQuery(t, idx, "fox"))

	// Commutativity: A & B = B & A.
	ab := toSet(evalQuery(t, idx, "fox dog"))
	ba := toSet(evalQuery(t, idx, "dog fox"))
	if !sameSet(ab, ba) {
		t.Errorf("AND not commutative: fox&dog = %v, dog&fox = %v", ab, ba)
	}

	// A | !A = U.
	notFox := toSet(evalQuery(t, idx, "!fox"))
	if len(fox)+len(notFox) != idx.TotalDocuments() {
		t.Errorf("fox | !fox does not complement to the universe: %d + %d != %d", len(fox), len(notFox), idx.TotalDocuments())
	}

	// !!A = A.
	notNotFox := toSet(evalQuery(t, idx, "!!fox"))
	if !sameSet(fox, notNotFox) {
		t.Errorf("double negation failed: fox = %v, !!fox = %v", fox, notNotFox)
	}

	// A & (B | C) = (A&B) | (A&C) — use fox & (dog | quick).
	lhs := toSet(evalQuery(t, idx, "fox (dog | quick)"))
	rhsDog := toSet(evalQuery(t, idx, "fox dog"))
	rhsQuick := toSet(evalQuery(t, idx, "fox quick"))
	rhs := unionSet(rhsDog, rhsQuick)
	if !sameSet(lhs, rhs) {
		t.Errorf("distributivity failed: fox&(dog|quick) = %v, (fox&dog)|(fox&quick) = %v", lhs, rhs)
	}
}

// Invariant 9 / scenario S7: round-trip serialization answers S1's queries
// identically before and after.
func TestInvariant9_RoundTripIdenticalAnswers(t *testing.T) {
	idx := buildScenarioCorpus(t, []scenarioDoc{
		{title: "d1", body: "space jam"},
		{title: "d2", body: "the sandlot"},
		{title: "d3", body: "space movie"},
	})
	blob, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	for _, q := range []string{"space & jam", "space | sandlot", "!space"} {
		before := evalQuery(t, idx, q)
		after := evalQuery(t, decoded, q)
		if !sameSet(toSet(before), toSet(after)) {
			t.Errorf("query %q: before = %v, after round-trip = %v", q, before, after)
		}
	}
}

// scenarioDoc is a minimal fixture document for the concrete S1-S7 scenarios.
type scenarioDoc struct {
	title string
	body  string
}

func buildScenarioCorpus(t *testing.T, docs []scenarioDoc) *InvertedIndex {
	t.Helper()
	src := &memSource{}
	for _, d := range docs {
		src.docs = append(src.docs, Document{
			Title:    d.title,
			Language: "english",
			Zones:    []Zone{{Rank: ZoneBody, Text: d.body}},
		})
	}
	idx := NewInvertedIndex(DefaultAnalyzerConfig(), NewStemmer(StemmerSnowball, "english", nil))
	if err := idx.Build(context.Background(), src, time.Hour, nil); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return idx
}

// S1: AND/OR/NOT over a three-document corpus.
func TestScenario_S1_BooleanQueries(t *testing.T) {
	idx := buildScenarioCorpus(t, []scenarioDoc{
		{title: "d1", body: "space jam"},
		{title: "d2", body: "the sandlot"},
		{title: "d3", body: "space movie"},
	})
	d1 := findDocByTitle(idx, "d1")
	d2 := findDocByTitle(idx, "d2")
	d3 := findDocByTitle(idx, "d3")

	assertResultSet(t, idx, "space & jam", []DocumentID{d1})
	assertResultSet(t, idx, "space | sandlot", []DocumentID{d1, d2, d3})
	assertResultSet(t, idx, "!space", []DocumentID{d2})
}

// S2: phrase queries are order-sensitive.
func TestScenario_S2_PhraseOrderSensitive(t *testing.T) {
	idx := buildScenarioCorpus(t, []scenarioDoc{
		{title: "d1", body: "space jam"},
		{title: "d2", body: "the sandlot"},
		{title: "d3", body: "space movie"},
	})
	d1 := findDocByTitle(idx, "d1")

	assertResultSet(t, idx, `"space jam"`, []DocumentID{d1})
	assertResultSet(t, idx, `"jam space"`, nil)
}

// S3: wildcard resolution over a small vocabulary.
func TestScenario_S3_Wildcard(t *testing.T) {
	idx := buildScenarioCorpus(t, []scenarioDoc{
		{title: "d1", body: "space"},
		{title: "d2", body: "spade"},
		{title: "d3", body: "spare"},
		{title: "d4", body: "spice"},
	})
	d1 := findDocByTitle(idx, "d1")
	d2 := findDocByTitle(idx, "d2")
	d3 := findDocByTitle(idx, "d3")
	d4 := findDocByTitle(idx, "d4")

	assertResultSet(t, idx, "sp*e", []DocumentID{d1, d2, d3, d4})
	assertResultSet(t, idx, "sp*ce", []DocumentID{d1, d4})
}

// S4: phonetic correction resolves to the Soundex bucket, excluding
// tokens whose code differs.
func TestScenario_S4_PhoneticBucket(t *testing.T) {
	idx := buildScenarioCorpus(t, []scenarioDoc{
		{title: "d1", body: "robert"},
		{title: "d2", body: "rupert"},
		{title: "d3", body: "rubin"},
	})
	cache := newCorrectionCache()
	node, state, err := idx.Correct("robbert", CorrectionOptions{Phonetic: true}, cache)
	if err != nil {
		t.Fatalf("Correct() error = %v", err)
	}
	if state != StateMatched {
		t.Fatalf("state = %v, want StateMatched", state)
	}

	e := NewEvaluator(idx, EvalOptions{Rank: false})
	results, err := e.Evaluate(node)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	got := toSet(resultIDs(results))
	want := toSet([]DocumentID{findDocByTitle(idx, "d1"), findDocByTitle(idx, "d2")})
	if !sameSet(got, want) {
		t.Errorf("phonetic correction for %q = %v, want %v (rubin excluded)", "robbert", got, want)
	}
}

// S5: spelling correction at k=2 resolves "spack" to "space" (edit
// distance 1).
func TestScenario_S5_SpellingLadder(t *testing.T) {
	idx := buildScenarioCorpus(t, []scenarioDoc{
		{title: "d1", body: "space"},
	})
	cache := newCorrectionCache()
	node, state, err := idx.Correct("spack", CorrectionOptions{Spelling: true, SpellingK: 2, MaxAttempts: 2}, cache)
	if err != nil {
		t.Fatalf("Correct() error = %v", err)
	}
	if state != StateMatched {
		t.Fatalf("state = %v, want StateMatched", state)
	}
	if node.Token != "space" {
		t.Errorf("corrected token = %q, want %q", node.Token, "space")
	}
}

// S6: skip-list intersection and forward-pointer placement.
func TestScenario_S6_SkipListIntersection(t *testing.T) {
	left := NewSkipList[int](intCmp)
	for _, v := range []int{1, 3, 5, 7, 9, 11} {
		left.Insert(v)
	}
	left.Finalize()
	right := NewSkipList[int](intCmp)
	for _, v := range []int{2, 5, 7, 12} {
		right.Insert(v)
	}
	right.Finalize()

	inter := Intersect(left, right, intCmp)
	var got []int
	for i := 0; i < inter.Len(); i++ {
		got = append(got, inter.At(i))
	}
	want := []int{5, 7}
	if len(got) != len(want) {
		t.Fatalf("intersection = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("intersection[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

// S7: build, persist, reload, rerun S1 with identical ranking order too.
func TestScenario_S7_PersistReloadRerun(t *testing.T) {
	idx := buildScenarioCorpus(t, []scenarioDoc{
		{title: "d1", body: "space jam"},
		{title: "d2", body: "the sandlot"},
		{title: "d3", body: "space movie"},
	})
	blob, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	node, err := ParseQuery("space | sandlot")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	eBefore := NewEvaluator(idx, EvalOptions{Rank: true, UseWFIDF: true})
	eAfter := NewEvaluator(decoded, EvalOptions{Rank: true, UseWFIDF: true})

	resBefore, err := eBefore.Evaluate(node)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	resAfter, err := eAfter.Evaluate(node)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	rankedBefore := eBefore.Rank(node, resBefore)
	rankedAfter := eAfter.Rank(node, resAfter)

	if len(rankedBefore) != len(rankedAfter) {
		t.Fatalf("result count changed: %d vs %d", len(rankedBefore), len(rankedAfter))
	}
	for i := range rankedBefore {
		if rankedBefore[i].Doc != rankedAfter[i].Doc {
			t.Errorf("rank order differs at %d: %d vs %d", i, rankedBefore[i].Doc, rankedAfter[i].Doc)
		}
		if rankedBefore[i].Score != rankedAfter[i].Score {
			t.Errorf("score differs at %d: %f vs %f", i, rankedBefore[i].Score, rankedAfter[i].Score)
		}
	}
}

func assertResultSet(t *testing.T, idx *InvertedIndex, query string, want []DocumentID) {
	t.Helper()
	got := evalQuery(t, idx, query)
	gotSet := toSet(got)
	wantSet := toSet(want)
	if !sameSet(gotSet, wantSet) {
		t.Errorf("query %q = %v, want %v", query, got, want)
	}
}

func resultIDs(r *SkipList[DocumentID]) []DocumentID {
	out := make([]DocumentID, r.Len())
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

func sameSet(a, b map[DocumentID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func unionSet(a, b map[DocumentID]bool) map[DocumentID]bool {
	out := make(map[DocumentID]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}
